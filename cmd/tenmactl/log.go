package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Blup1980/tenma-DC-load/batterylog"
	"github.com/Blup1980/tenma-DC-load/chart"
	"github.com/Blup1980/tenma-DC-load/internal/config"
	"github.com/Blup1980/tenma-DC-load/internal/metrics"
	"github.com/Blup1980/tenma-DC-load/internal/storage/redis"
	"github.com/Blup1980/tenma-DC-load/tenma"
)

func newLogCmd(a *app) *cobra.Command {
	var noChart bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a battery discharge to CSV",
		Long: `log switches the load input on and samples voltage and current every
interval until the load switches its input off, the duration elapses or
Ctrl+C is pressed. Each sample is appended to the CSV file with the
cumulative capacity in amp-hours.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *a.cfg
			if noChart {
				cfg.Chart.Enable = false
			}
			return a.withLoad(cmd.Context(), func(load *tenma.Load) error {
				return a.runLog(cmd.Context(), cmd.OutOrStdout(), &cfg, load)
			})
		},
	}

	f := cmd.Flags()
	f.Duration("interval", time.Second, "Time between samples")
	f.Duration("duration", 0, "Stop after this long (0 runs until the load switches off)")
	f.StringP("out", "o", "battery_log.csv", "CSV output file")
	f.Bool("enable-output", true, "Switch the load input on before logging")
	f.BoolVar(&noChart, "no-chart", false, "Print a line per sample instead of the live chart")

	mustBind(a.v, "session.interval", f.Lookup("interval"))
	mustBind(a.v, "session.duration", f.Lookup("duration"))
	mustBind(a.v, "session.output", f.Lookup("out"))
	mustBind(a.v, "session.enableOutput", f.Lookup("enable-output"))
	return cmd
}

func (a *app) runLog(ctx context.Context, out io.Writer, cfg *config.Config, meter batterylog.Meter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	csvSink, err := batterylog.CreateCSV(cfg.Session.Output)
	if err != nil {
		return err
	}
	sinks := []batterylog.Sink{csvSink}
	var observers []batterylog.Observer

	if cfg.Chart.Enable {
		observers = append(observers, chart.NewTerminal(out, cfg.Chart.Width, cfg.Chart.Height))
	} else {
		sinks = append(sinks, batterylog.NewConsoleSink(out))
	}

	if cfg.Redis.Enabled {
		pub, err := redis.NewPublisher(cfg.Redis, a.log)
		if err != nil {
			csvSink.Close()
			return err
		}
		sinks = append(sinks, pub)
	}

	if cfg.Metrics.Enable {
		reg := metrics.NewRegistry()
		observers = append(observers, metrics.NewSessionMetrics(reg))
		go func() {
			err := metrics.Serve(ctx, cfg.Metrics.Addr, cfg.Metrics.Path, reg, a.log)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	session, err := batterylog.NewSession(batterylog.SessionConfig{
		Meter:        meter,
		Interval:     cfg.Session.Interval,
		MaxDuration:  cfg.Session.Duration,
		EnableOutput: cfg.Session.EnableOutput,
		Sinks:        sinks,
		Observers:    observers,
		Logger:       a.log,
	})
	if err != nil {
		for _, s := range sinks {
			s.Close()
		}
		return err
	}

	fmt.Fprintln(out, "Logging started. Press Ctrl+C to stop.")
	res, err := session.Run(ctx)
	report(out, res, cfg.Session.Output)
	return err
}

func report(out io.Writer, res batterylog.Result, path string) {
	switch res.Reason {
	case batterylog.StopOutputOff:
		fmt.Fprintln(out, "Logging stopped by device switching OFF.")
	case batterylog.StopInterrupted:
		fmt.Fprintln(out, "Logging stopped by user.")
	case batterylog.StopDurationReached:
		fmt.Fprintln(out, "Logging stopped after the configured duration.")
	default:
		fmt.Fprintf(out, "Logging aborted: %s.\n", res.Reason)
	}
	fmt.Fprintf(out, "%d samples over %s, %.4f Ah, %.4f Wh written to %s\n",
		res.Samples, res.Duration.Round(time.Second), res.Capacity, res.Energy, path)
}
