// pingslo probes network targets over TCP or HTTP, computes latency and
// loss statistics and checks them against per-target SLO thresholds.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/rtx"
	"github.com/m-lab/locate/api/locate"
	"github.com/m-lab/pingslo/internal/persistence"
	"github.com/m-lab/pingslo/internal/report"
	"github.com/m-lab/pingslo/internal/targets"
	"github.com/m-lab/pingslo/pkg/model"
	"github.com/m-lab/pingslo/pkg/runner"
	"github.com/m-lab/pingslo/pkg/slo"
	"github.com/m-lab/pingslo/pkg/spec"
	"github.com/m-lab/pingslo/pkg/version"
)

const userAgent = "pingslo"

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// newLocator returns the client used by -locate. Tests replace it.
var newLocator = func() targets.Locator {
	return locate.NewClient(userAgent + "/" + version.Version)
}

// probeFlags are the flags shared by run and sample.
type probeFlags struct {
	mode     flagx.Enum
	samples  int
	timeout  time.Duration
	interval time.Duration
	debug    bool
}

func (pf *probeFlags) register(fs *flag.FlagSet, samples int) {
	pf.mode = flagx.Enum{Options: spec.Modes, Value: string(spec.ModeTCP)}
	fs.Var(&pf.mode, "mode", "Probe mode (tcp|http)")
	fs.IntVar(&pf.samples, "samples", samples, "Number of probes per target")
	fs.DurationVar(&pf.timeout, "timeout", spec.DefaultTimeout, "Timeout of each probe")
	fs.DurationVar(&pf.interval, "interval", spec.DefaultInterval, "Delay between probes to the same target")
	fs.BoolVar(&pf.debug, "debug", false, "Enable debug output")
}

func (pf *probeFlags) runnerConfig(concurrent int, out io.Writer) runner.Config {
	return runner.Config{
		NumProbes:     pf.samples,
		Timeout:       pf.timeout,
		Interval:      pf.interval,
		MaxConcurrent: concurrent,
		Mode:          spec.Mode(pf.mode.Value),
		Emitter:       &runner.HumanReadable{Out: out, Debug: pf.debug},
	}
}

func setupLogging(debug bool) {
	log.SetReportTimestamp(true)
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout)
	cancel()
	os.Exit(code)
}

// run executes the subcommand named by args[0] and returns the process
// exit code.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return exitUsage
	}
	switch args[0] {
	case "run":
		return cmdRun(ctx, args[1:], stdout)
	case "sample":
		return cmdSample(ctx, args[1:], stdout)
	case "version":
		fmt.Fprintf(stdout, "%s %s\n", spec.ToolName, version.Version)
		return exitOK
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stdout, "unknown command %q\n\n", args[0])
		usage(stdout)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `%s - network latency SLO monitor

Usage:
  pingslo run -targets <file> [flags]     probe targets and evaluate SLOs
  pingslo run -locate <service> [flags]   probe the nearest M-Lab servers
  pingslo sample -url <target> [flags]    quick sample of a single target
  pingslo version                         print the version

Run "pingslo <command> -h" for the flags of a command.
`, spec.ToolName)
}

func parseExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	return exitUsage
}

func cmdRun(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var pf probeFlags
	pf.register(fs, spec.DefaultRunSamples)
	var (
		targetsFile = fs.String("targets", "", "File with one target per line")
		locateSvc   = fs.String("locate", "", "Probe the nearest M-Lab servers for this service instead of a targets file")
		configFile  = fs.String("config", "", "YAML file with SLO thresholds (default ./"+spec.DefaultConfigPath+" if present)")
		concurrent  = fs.Int("concurrent", spec.DefaultMaxConcurrent, "Maximum number of targets probed at the same time")
		outFile     = fs.String("out", "", "Path to write the JSON report to (gzip if it ends in .gz)")
		rowsFile    = fs.String("rows-out", "", "Path to write newline-delimited archival rows to")
		promFile    = fs.String("prom-out", "", "Path to write a Prometheus textfile to")
	)
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	rtx.Must(flagx.ArgsFromEnv(fs), "cannot read flags from the environment")
	setupLogging(pf.debug)

	if (*targetsFile == "") == (*locateSvc == "") {
		fmt.Fprintln(stdout, "Error: exactly one of -targets and -locate is required")
		return exitUsage
	}

	var list []model.Target
	if *targetsFile != "" {
		var lineErrors []*targets.LineError
		var err error
		list, lineErrors, err = targets.ParseFile(*targetsFile)
		for _, le := range lineErrors {
			fmt.Fprintf(stdout, "Warning: %v\n", le)
		}
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(stdout, "Error: File not found: %s\n", *targetsFile)
			} else {
				fmt.Fprintf(stdout, "\nError: %v\n", err)
			}
			return exitUsage
		}
		if len(lineErrors) > 0 {
			fmt.Fprintf(stdout, "\nWarning: Skipped %d invalid target(s)\n", len(lineErrors))
		}
		fmt.Fprintf(stdout, "Loaded %d target(s) from %s\n", len(list), *targetsFile)
	} else {
		var err error
		list, err = targets.FromLocate(ctx, newLocator(), *locateSvc)
		if err != nil {
			fmt.Fprintf(stdout, "Error: cannot get server list from locate: %v\n", err)
			return exitUsage
		}
		fmt.Fprintf(stdout, "Loaded %d target(s) from locate service %s\n", len(list), *locateSvc)
	}

	cfg, err := loadSLOConfig(*configFile, stdout)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return exitUsage
	}

	rc := pf.runnerConfig(*concurrent, stdout)
	r, err := runner.New(rc)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return exitUsage
	}
	fmt.Fprintln(stdout)

	results := r.Run(ctx, list)
	verdicts := make([]model.Verdict, len(results))
	for i, res := range results {
		verdicts[i] = cfg.Evaluate(res)
	}

	report.PrintTable(stdout, results, verdicts)
	summary := report.Summarize(verdicts)
	fmt.Fprintf(stdout, "\nSLO Summary: %d passed, %d failed (out of %d targets)\n",
		summary.SLOPassed, summary.SLOFailed, summary.TotalTargets)

	info := report.Run{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Config: model.RunConfig{
			Mode:          string(rc.Mode),
			Samples:       rc.NumProbes,
			Timeout:       rc.Timeout.Seconds(),
			Interval:      rc.Interval.Seconds(),
			MaxConcurrent: rc.MaxConcurrent,
		},
	}
	if *outFile != "" {
		rep := report.Build(info, results, verdicts)
		if _, err := persistence.WriteDataFile(*outFile, rep); err != nil {
			log.Error("cannot write report", "path", *outFile, "error", err)
			return exitUsage
		}
		report.PrintSaved(stdout, *outFile, rep)
	}
	if *rowsFile != "" {
		if err := report.WriteRows(*rowsFile, report.Rows(info, results, verdicts)); err != nil {
			log.Error("cannot write archival rows", "path", *rowsFile, "error", err)
			return exitUsage
		}
		log.Debug("archival rows written", "path", *rowsFile)
	}
	if *promFile != "" {
		if err := report.WritePrometheus(*promFile, results, verdicts); err != nil {
			log.Error("cannot write prometheus textfile", "path", *promFile, "error", err)
			return exitUsage
		}
		log.Debug("prometheus textfile written", "path", *promFile)
	}

	if summary.SLOFailed > 0 {
		fmt.Fprintln(stdout, "\nSLO violations detected!")
		return exitFailed
	}
	fmt.Fprintln(stdout, "\nAll SLOs passed!")
	return exitOK
}

// loadSLOConfig loads the thresholds for a run. An explicit path that does
// not exist falls back to the defaults with a warning. Without an explicit
// path, the default config file is used if present.
func loadSLOConfig(path string, stdout io.Writer) (*slo.Config, error) {
	if path != "" {
		cfg, err := slo.Load(path)
		switch {
		case err == nil:
			fmt.Fprintf(stdout, "Loaded SLO config from %s\n", path)
			return cfg, nil
		case errors.Is(err, os.ErrNotExist):
			fmt.Fprintf(stdout, "Warning: Config file not found: %s, using defaults\n", path)
			return slo.DefaultConfig(), nil
		default:
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg, err := slo.Load(spec.DefaultConfigPath)
	switch {
	case err == nil:
		fmt.Fprintf(stdout, "Loaded SLO config from %s\n", spec.DefaultConfigPath)
		return cfg, nil
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(stdout, "Using default SLO thresholds (p95<=100ms, loss<=5%)")
		return slo.DefaultConfig(), nil
	default:
		return nil, fmt.Errorf("%s: %w", spec.DefaultConfigPath, err)
	}
}

func cmdSample(ctx context.Context, args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var pf probeFlags
	pf.register(fs, spec.DefaultSampleSamples)
	target := fs.String("url", "", "Target to sample (host[:port], optionally with http:// or https://)")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	rtx.Must(flagx.ArgsFromEnv(fs), "cannot read flags from the environment")
	setupLogging(pf.debug)

	if *target == "" {
		fmt.Fprintln(stdout, "Error: -url is required")
		return exitUsage
	}
	t, err := targets.ParseTarget(*target)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return exitUsage
	}

	rc := pf.runnerConfig(1, stdout)
	r, err := runner.New(rc)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return exitUsage
	}
	fmt.Fprintf(stdout, "Quick sample: %s (%d probes, mode: %s)\n\n", t, rc.NumProbes, rc.Mode)
	res := r.Sample(ctx, t)
	report.PrintTable(stdout, []model.TargetResult{res}, nil)
	return exitOK
}
