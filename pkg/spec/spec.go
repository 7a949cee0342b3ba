// Package spec contains constants shared by the pingslo probing engine and
// its command-line tools.
package spec

import "time"

const (
	// ToolName is the name written to report metadata.
	ToolName = "PingSLO"

	// DefaultRunSamples is the default number of probes per target for the
	// run command.
	DefaultRunSamples = 10

	// DefaultSampleSamples is the default number of probes for the sample
	// command.
	DefaultSampleSamples = 5

	// DefaultTimeout is the default per-probe timeout.
	DefaultTimeout = 5 * time.Second

	// DefaultInterval is the default delay between two consecutive probes
	// against the same target.
	DefaultInterval = 500 * time.Millisecond

	// DefaultMaxConcurrent is the default number of targets probed at once.
	DefaultMaxConcurrent = 5

	// DefaultConfigPath is the threshold file loaded when none is given
	// explicitly and it exists in the working directory.
	DefaultConfigPath = "config.yaml"

	// HTTPSPort is the only port probed over https in HTTP mode.
	HTTPSPort = 443
)

// Mode selects the probe strategy.
type Mode string

const (
	// ModeTCP measures TCP connection establishment time.
	ModeTCP = Mode("tcp")

	// ModeHTTP measures HTTP time to first byte.
	ModeHTTP = Mode("http")
)

// Modes lists the valid modes, in the order shown to users.
var Modes = []string{string(ModeTCP), string(ModeHTTP)}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeTCP || m == ModeHTTP
}
