package runner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/m-lab/pingslo/pkg/model"
)

// Emitter is an interface for emitting progress events. Methods may be
// called concurrently from different targets' goroutines.
type Emitter interface {
	// OnRunStart is called once before any target is dispatched.
	OnRunStart(numTargets int, cfg Config)
	// OnStart is called when a target acquires its ticket and sampling begins.
	OnStart(t model.Target, cfg Config)
	// OnSample is called after every probe. seq starts at zero.
	OnSample(t model.Target, seq int, s model.Sample)
	// OnResult is called when a target's result is ready.
	OnResult(r model.TargetResult)
	// OnDebug is called to print debug information.
	OnDebug(msg string)
}

// HumanReadable prints human-readable progress to Out (stdout if nil).
// It can be configured to include debug output, too. Writes to Out are
// serialized, so a single HumanReadable can be shared by all targets.
type HumanReadable struct {
	Out   io.Writer
	Debug bool

	mu sync.Mutex
}

func (e *HumanReadable) printf(format string, args ...interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format, args...)
}

// OnRunStart prints the mode, the number of targets and the concurrency.
func (e *HumanReadable) OnRunStart(numTargets int, cfg Config) {
	e.printf("Starting %s probes for %d target(s) (max %d concurrent)...\n\n",
		strings.ToUpper(string(cfg.Mode)), numTargets, cfg.MaxConcurrent)
}

// OnStart prints the target being probed.
func (e *HumanReadable) OnStart(t model.Target, cfg Config) {
	e.printf("  Probing %s (%d samples, mode: %s)...\n", t, cfg.NumProbes, cfg.Mode)
}

// OnSample prints individual samples in debug mode only.
func (e *HumanReadable) OnSample(t model.Target, seq int, s model.Sample) {
	if !e.Debug {
		return
	}
	if s.OK() {
		e.OnDebug(fmt.Sprintf("%s #%d: %.2fms %s", t, seq, s.LatencyMs, s.Method))
		return
	}
	e.OnDebug(fmt.Sprintf("%s #%d: %s failure %s", t, seq, s.Failure, s.Method))
}

// OnResult is called when a target's result is ready.
func (*HumanReadable) OnResult(r model.TargetResult) {
	// NOTHING - results are printed as a table once the run completes.
}

// OnDebug is called to print debug information.
func (e *HumanReadable) OnDebug(msg string) {
	if e.Debug {
		e.printf("DEBUG: %s\n", msg)
	}
}

// nopEmitter discards all events.
type nopEmitter struct{}

func (nopEmitter) OnRunStart(int, Config)                   {}
func (nopEmitter) OnStart(model.Target, Config)             {}
func (nopEmitter) OnSample(model.Target, int, model.Sample) {}
func (nopEmitter) OnResult(model.TargetResult)              {}
func (nopEmitter) OnDebug(string)                           {}

// Checks that HumanReadable implements Emitter.
var _ Emitter = &HumanReadable{}
