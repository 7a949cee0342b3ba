package probe

import (
	"context"
	"net"
	"time"

	"github.com/m-lab/pingslo/pkg/model"
)

// DialFunc opens a network connection. It has the signature of
// net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// TCP measures TCP connection establishment time.
type TCP struct {
	// Timeout bounds each connection attempt, including name resolution.
	Timeout time.Duration

	dial DialFunc
}

// NewTCP returns a TCP prober with the given per-probe timeout.
func NewTCP(timeout time.Duration) *TCP {
	d := &net.Dialer{}
	return &TCP{
		Timeout: timeout,
		dial:    d.DialContext,
	}
}

// Probe connects to t, stops the clock as soon as the handshake completes and
// closes the connection without sending any data.
func (p *TCP) Probe(ctx context.Context, t model.Target) Outcome {
	elapsed, err := p.Measure(ctx, t)
	if err != nil {
		return failure(err)
	}
	return success(elapsed)
}

// Measure returns the time taken to establish a TCP connection to t.
func (p *TCP) Measure(ctx context.Context, t model.Target) (time.Duration, error) {
	timeout, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.dial(timeout, "tcp", t.String())
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start)
	conn.Close()
	return elapsed, nil
}
