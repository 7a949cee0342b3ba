// Package model contains the data structures produced and consumed by the
// pingslo probing engine.
package model

import (
	"net"
	"strconv"
)

// Target is a network endpoint to probe. Targets are validated when they are
// parsed and never modified afterwards.
type Target struct {
	// Host is a hostname or an IP address.
	Host string
	// Port is a TCP port in the 1-65535 range.
	Port int
}

// String returns the host:port form of the target.
func (t Target) String() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}
