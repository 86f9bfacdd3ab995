package tenma_test

import (
	"context"
	"fmt"

	"github.com/Blup1980/tenma-DC-load/tenma"
	"github.com/Blup1980/tenma-DC-load/transports"
)

func Example() {
	// For testing without hardware
	mock := transports.NewMockTransport("TENMA,72-13200,SN001,1.0", "11.98V", "ON")

	err := tenma.WithLoad(context.Background(), tenma.LoadConfig{Transport: mock}, func(load *tenma.Load) error {
		ctx := context.Background()

		if err := load.SetMode(ctx, tenma.ModeCurrent); err != nil {
			return err
		}
		if err := load.SetCurrent(ctx, 1.5); err != nil {
			return err
		}

		v, err := load.MeasureVoltage(ctx)
		if err != nil {
			return err
		}
		on, err := load.Output(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("voltage %.2fV, output on: %v\n", v, on)
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
	}

	fmt.Printf("sent: %q\n", mock.Written())
	// Output:
	// voltage 11.98V, output on: true
	// sent: "*IDN?\n:FUNC CURR\n:CURR 1.5A\n:MEAS:VOLT?\n:INP?\n"
}
