package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Blup1980/tenma-DC-load/tenma"
)

func newInfoCmd(a *app) *cobra.Command {
	var settings bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Identify the load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLoad(cmd.Context(), func(load *tenma.Load) error {
				id, err := load.Identify(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Manufacturer: %s\nModel: %s\nSerial: %s\nFirmware: %s\n",
					id.Manufacturer, id.Model, id.Serial, id.Firmware)
				fmt.Fprintf(out, "Rating: %s\n", load.Model().Description)

				if !settings {
					return nil
				}

				s, err := load.Snapshot(cmd.Context())
				if err != nil && !tenma.IsSoft(err) {
					return err
				}
				for _, p := range tenma.Parameters() {
					fmt.Fprintf(out, "%-20s %s %s\n", p.String()+":", formatValue(s.Value(p)), p.Unit())
				}
				fmt.Fprintf(out, "%-20s %s\n", "mode:", s.Mode)
				fmt.Fprintf(out, "%-20s %s\n", "output:", onOff(s.Output))
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&settings, "settings", false, "Also read back every set point, the mode and the output state")
	return cmd
}

// variantFlags adds the mutually exclusive --min and --max flags to cmd and
// returns a func reporting the selected variant.
func variantFlags(cmd *cobra.Command) func() tenma.Variant {
	var lower, upper bool
	cmd.Flags().BoolVar(&lower, "min", false, "Use the lower limit")
	cmd.Flags().BoolVar(&upper, "max", false, "Use the upper limit")
	cmd.MarkFlagsMutuallyExclusive("min", "max")

	return func() tenma.Variant {
		switch {
		case lower:
			return tenma.Min
		case upper:
			return tenma.Max
		}
		return tenma.Nominal
	}
}

func parseParameter(name string, variant tenma.Variant) (tenma.Parameter, error) {
	q, err := tenma.ParseQuantity(name)
	if err != nil {
		return tenma.Parameter{}, err
	}
	return tenma.Parameter{Quantity: q, Variant: variant}, nil
}

func newGetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <voltage|current|resistance|power>",
		Short: "Read a set point or one of its limits",
		Args:  cobra.ExactArgs(1),
	}
	variant := variantFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p, err := parseParameter(args[0], variant())
		if err != nil {
			return err
		}
		return a.withLoad(cmd.Context(), func(load *tenma.Load) error {
			v, err := load.Get(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatValue(v), p.Unit())
			return nil
		})
	}
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var selectMode bool

	cmd := &cobra.Command{
		Use:   "set <voltage|current|resistance|power> <value>",
		Short: "Write a set point or one of its limits",
		Args:  cobra.ExactArgs(2),
	}
	variant := variantFlags(cmd)
	cmd.Flags().BoolVar(&selectMode, "mode", false, "First switch to the mode that regulates the quantity")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p, err := parseParameter(args[0], variant())
		if err != nil {
			return err
		}
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		return a.withLoad(cmd.Context(), func(load *tenma.Load) error {
			if selectMode {
				if err := load.SetMode(cmd.Context(), p.Quantity.Mode()); err != nil {
					return err
				}
			}
			return load.Set(cmd.Context(), p, value)
		})
	}
	return cmd
}

func newModeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mode [VOLC|CURR|RES|POW]",
		Short: "Show or select the operating mode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLoad(cmd.Context(), func(load *tenma.Load) error {
				if len(args) == 1 {
					return load.SetMode(cmd.Context(), tenma.Mode(strings.ToUpper(args[0])))
				}
				mode, err := load.Mode(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), mode)
				return nil
			})
		},
	}
}

func newOutputCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "output [on|off]",
		Short: "Show or switch the load input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var want *bool
			if len(args) == 1 {
				on, err := parseOnOff(args[0])
				if err != nil {
					return err
				}
				want = &on
			}

			return a.withLoad(cmd.Context(), func(load *tenma.Load) error {
				if want != nil {
					return load.SetOutput(cmd.Context(), *want)
				}
				on, err := load.Output(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), onOff(on))
				return nil
			})
		},
	}
}

func newMeasureCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "measure",
		Short: "Measure voltage, current and power",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLoad(cmd.Context(), func(load *tenma.Load) error {
				m, err := load.Measure(cmd.Context())
				if err != nil && !tenma.IsSoft(err) {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Voltage: %s V\nCurrent: %s A\nPower: %s W\n",
					formatValue(m.Voltage), formatValue(m.Current), formatValue(m.Power))
				return err
			})
		},
	}
}

func newTriggerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Send a bus trigger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLoad(cmd.Context(), func(load *tenma.Load) error {
				return load.Trigger(cmd.Context())
			})
		},
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid output state %q: use on or off", s)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
