package runner

import (
	"errors"
	"fmt"
	"time"

	"github.com/m-lab/pingslo/pkg/probe"
	"github.com/m-lab/pingslo/pkg/spec"
)

// ErrInvalidConfig is returned by New when a Config violates its contract.
var ErrInvalidConfig = errors.New("invalid runner configuration")

// Config is the configuration for a Runner.
type Config struct {
	// NumProbes is the number of probes sent to each target. Must be >= 1.
	NumProbes int

	// Timeout bounds every single probe. Must be > 0.
	Timeout time.Duration

	// Interval is the delay between two consecutive probes against the same
	// target. It is not applied after the last probe. Must be >= 0.
	Interval time.Duration

	// MaxConcurrent is the maximum number of targets sampled at the same
	// time. Must be >= 1.
	MaxConcurrent int

	// Mode selects the probe strategy.
	Mode spec.Mode

	// Prober overrides the strategy selected by Mode. It is used by tests
	// and by callers that need a custom probe.
	Prober probe.Prober

	// Emitter receives progress events. It can be overridden to provide a
	// custom output. If nil, events are discarded.
	Emitter Emitter
}

func (c Config) validate() error {
	if c.NumProbes < 1 {
		return fmt.Errorf("%w: number of probes must be >= 1, got %d", ErrInvalidConfig, c.NumProbes)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be > 0, got %s", ErrInvalidConfig, c.Timeout)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must be >= 0, got %s", ErrInvalidConfig, c.Interval)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("%w: max concurrent must be >= 1, got %d", ErrInvalidConfig, c.MaxConcurrent)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	return nil
}
