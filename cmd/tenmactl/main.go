// Command tenmactl controls a Tenma 72-13200 DC load over its serial port
// and logs battery discharge runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Blup1980/tenma-DC-load/internal/config"
	"github.com/Blup1980/tenma-DC-load/internal/logging"
	"github.com/Blup1980/tenma-DC-load/tenma"
)

// app carries the state shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.Logger

	// transport replaces the serial port when set.
	transport tenma.Transport
}

func newApp() *app {
	return &app{v: config.NewViper()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tenmactl",
		Short: "Tenma 72-13200 DC load control and battery logger",
		Long: `tenmactl talks to a Tenma 72-13200 programmable DC load over its serial
port. It reads and writes set points, switches the input, takes measurements
and logs discharge runs to CSV with a live chart.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetHelpCommand(&cobra.Command{Hidden: true})

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "Config file (default ./tenma.yaml)")
	pf.StringP("port", "p", "COM4", "Serial port device path")
	pf.Int("baud", 9600, "Serial baud rate")
	pf.Duration("timeout", time.Second, "Response timeout")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")

	mustBind(a.v, "serial.port", pf.Lookup("port"))
	mustBind(a.v, "serial.baudRate", pf.Lookup("baud"))
	mustBind(a.v, "serial.timeout", pf.Lookup("timeout"))
	mustBind(a.v, "logging.level", pf.Lookup("log-level"))

	root.AddCommand(
		newInfoCmd(a),
		newGetCmd(a),
		newSetCmd(a),
		newModeCmd(a),
		newOutputCmd(a),
		newMeasureCmd(a),
		newTriggerCmd(a),
		newLogCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	log, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// withLoad connects to the configured port, runs fn and always releases
// the port.
func (a *app) withLoad(ctx context.Context, fn func(*tenma.Load) error) error {
	return tenma.WithLoad(ctx, tenma.LoadConfig{
		Transport: a.transport,
		Port:      a.cfg.Serial.Port,
		BaudRate:  a.cfg.Serial.BaudRate,
		Timeout:   a.cfg.Serial.Timeout,
		Logger:    a.log,
	}, fn)
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
