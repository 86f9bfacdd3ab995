package tenma

import (
	"context"
	"errors"
)

// WithLoad connects to a load, runs fn and always disconnects, including
// when fn returns an error or panics. fn runs even if the device did not
// answer the identification query; check Verified if that matters.
func WithLoad(ctx context.Context, cfg LoadConfig, fn func(*Load) error) (err error) {
	load, err := NewLoad(cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, load.Disconnect())
	}()

	if err := load.Connect(ctx); err != nil {
		return err
	}
	return fn(load)
}
