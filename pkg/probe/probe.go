// Package probe implements the pingslo probe strategies: TCP connection time
// and HTTP time to first byte. Probes never return errors to the caller;
// failures are reported as an Outcome without a latency.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/m-lab/pingslo/pkg/model"
	"github.com/m-lab/pingslo/pkg/spec"
)

// ErrUnknownMode is returned by New for modes other than tcp and http.
var ErrUnknownMode = errors.New("unknown probe mode")

// Outcome is the result of a single probe. Err carries the failure detail
// for diagnostic logging only and is nil on success.
type Outcome struct {
	model.Sample
	Err error
}

// Prober measures a single target once.
type Prober interface {
	Probe(ctx context.Context, t model.Target) Outcome
}

// New returns the Prober for the given mode.
func New(mode spec.Mode, timeout time.Duration) (Prober, error) {
	switch mode {
	case spec.ModeTCP:
		return NewTCP(timeout), nil
	case spec.ModeHTTP:
		return NewHTTP(timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func success(elapsed time.Duration) Outcome {
	return Outcome{Sample: model.Sample{LatencyMs: Milliseconds(elapsed)}}
}

func failure(err error) Outcome {
	return Outcome{Sample: model.Sample{Failure: Classify(err)}, Err: err}
}

// Milliseconds converts a duration to fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Classify maps a probe error to a failure kind. Deadline expirations are
// timeouts; everything else is a transport error.
func Classify(err error) model.FailureKind {
	if err == nil {
		return model.FailureNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.FailureTimeout
	}
	return model.FailureTransport
}
