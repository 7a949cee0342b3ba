package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-lab/go/testingx"
	v2 "github.com/m-lab/locate/api/v2"
	"github.com/m-lab/pingslo/internal/targets"
	"github.com/m-lab/pingslo/pkg/model"
)

// listen returns the address of a loopback listener accepting connections
// until the test ends.
func listen(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	testingx.Must(t, err, "failed to listen")
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()
	return ln.Addr().String()
}

// closedAddr returns a loopback address nothing listens on.
func closedAddr(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	testingx.Must(t, err, "failed to listen")
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	testingx.Must(t, os.WriteFile(path, []byte(content), 0644), "failed to write %s", name)
	return path
}

func runArgs(t *testing.T, args ...string) (int, string) {
	buf := &bytes.Buffer{}
	code := run(context.Background(), args, buf)
	return code, buf.String()
}

func TestRun_commands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{name: "no-args", args: nil, code: exitUsage, want: "Usage:"},
		{name: "help", args: []string{"help"}, code: exitOK, want: "Usage:"},
		{name: "version", args: []string{"version"}, code: exitOK, want: "PingSLO v"},
		{name: "unknown", args: []string{"frobnicate"}, code: exitUsage, want: `unknown command "frobnicate"`},
		{name: "run-no-source", args: []string{"run"}, code: exitUsage, want: "exactly one of -targets and -locate"},
		{name: "run-bad-flag", args: []string{"run", "-nope"}, code: exitUsage},
		{name: "run-bad-mode", args: []string{"run", "-mode", "icmp"}, code: exitUsage},
		{name: "run-help", args: []string{"run", "-h"}, code: exitOK, want: "-targets"},
		{name: "run-missing-file", args: []string{"run", "-targets", "/nonexistent/targets.txt"}, code: exitUsage, want: "Error: File not found"},
		{name: "sample-no-url", args: []string{"sample"}, code: exitUsage, want: "-url is required"},
		{name: "sample-bad-url", args: []string{"sample", "-url", "host:99999"}, code: exitUsage, want: "Error:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := runArgs(t, tt.args...)
			if code != tt.code {
				t.Errorf("exit code = %d, want %d\n%s", code, tt.code, out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestRun_run(t *testing.T) {
	good := listen(t)
	bad := closedAddr(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "report.json")
	rows := filepath.Join(dir, "rows.json")
	prom := filepath.Join(dir, "pingslo.prom")

	t.Run("all-pass", func(t *testing.T) {
		list := writeFile(t, "targets.txt", "# targets\n\n"+good+"\nnot:a:target\n")
		config := writeFile(t, "config.yaml", "default_slo:\n  latency_p95_ms: 1000\n")
		code, stdout := runArgs(t, "run", "-targets", list, "-config", config,
			"-samples", "3", "-interval", "0", "-timeout", "1s",
			"-out", out, "-rows-out", rows, "-prom-out", prom)
		if code != exitOK {
			t.Fatalf("exit code = %d, want %d\n%s", code, exitOK, stdout)
		}
		for _, want := range []string{
			"Warning: Line 4:",
			"Skipped 1 invalid target(s)",
			"Loaded 1 target(s) from " + list,
			"Loaded SLO config from " + config,
			"Starting TCP probes for 1 target(s) (max 5 concurrent)",
			"Probing " + good + " (3 samples, mode: tcp)",
			"SLO Summary: 1 passed, 0 failed (out of 1 targets)",
			"Report saved: " + out,
			"All SLOs passed!",
		} {
			if !strings.Contains(stdout, want) {
				t.Errorf("output missing %q:\n%s", want, stdout)
			}
		}

		data, err := os.ReadFile(out)
		testingx.Must(t, err, "failed to read report")
		var rep model.Report
		testingx.Must(t, json.Unmarshal(data, &rep), "failed to parse report")
		if rep.Metadata.RunID == "" || rep.Metadata.Config.Samples != 3 || rep.Metadata.Config.Mode != "tcp" {
			t.Errorf("unexpected metadata %+v", rep.Metadata)
		}
		if len(rep.Targets) != 1 || rep.Targets[0].Statistics.Count != 3 || !rep.Targets[0].SLO.Passed {
			t.Errorf("unexpected targets %+v", rep.Targets)
		}

		data, err = os.ReadFile(rows)
		testingx.Must(t, err, "failed to read rows")
		var row model.ArchivalRow
		testingx.Must(t, json.Unmarshal(bytes.TrimSpace(data), &row), "failed to parse row")
		if row.RunID != rep.Metadata.RunID || row.Count != 3 {
			t.Errorf("unexpected row %+v", row)
		}

		data, err = os.ReadFile(prom)
		testingx.Must(t, err, "failed to read textfile")
		if !strings.Contains(string(data), "pingslo_target_slo_passed{") {
			t.Errorf("textfile missing slo gauge:\n%s", data)
		}
	})

	t.Run("violation", func(t *testing.T) {
		list := writeFile(t, "targets.txt", good+"\n"+bad+"\n")
		code, stdout := runArgs(t, "run", "-targets", list, "-config", filepath.Join(dir, "missing.yaml"),
			"-samples", "2", "-interval", "0", "-timeout", "1s")
		if code != exitFailed {
			t.Fatalf("exit code = %d, want %d\n%s", code, exitFailed, stdout)
		}
		for _, want := range []string{
			"Warning: Config file not found: " + filepath.Join(dir, "missing.yaml") + ", using defaults",
			"FAILED",
			"  ! All probes failed - no data to evaluate",
			"SLO Summary: 1 passed, 1 failed (out of 2 targets)",
			"SLO violations detected!",
		} {
			if !strings.Contains(stdout, want) {
				t.Errorf("output missing %q:\n%s", want, stdout)
			}
		}
	})

	t.Run("bad-config", func(t *testing.T) {
		list := writeFile(t, "targets.txt", good+"\n")
		config := writeFile(t, "config.yaml", "default_slo:\n  latency_p50_ms: 10\n")
		code, stdout := runArgs(t, "run", "-targets", list, "-config", config)
		if code != exitUsage {
			t.Errorf("exit code = %d, want %d\n%s", code, exitUsage, stdout)
		}
	})

	t.Run("bad-samples", func(t *testing.T) {
		list := writeFile(t, "targets.txt", good+"\n")
		code, stdout := runArgs(t, "run", "-targets", list, "-config", filepath.Join(dir, "missing.yaml"), "-samples", "0")
		if code != exitUsage {
			t.Errorf("exit code = %d, want %d\n%s", code, exitUsage, stdout)
		}
		if !strings.Contains(stdout, "number of probes must be >= 1") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})
}

type fakeLocator struct {
	servers []v2.Target
	err     error
}

func (f *fakeLocator) Nearest(ctx context.Context, service string) ([]v2.Target, error) {
	return f.servers, f.err
}

func TestRun_locate(t *testing.T) {
	good := listen(t)
	orig := newLocator
	t.Cleanup(func() { newLocator = orig })

	newLocator = func() targets.Locator {
		return &fakeLocator{servers: []v2.Target{{
			Machine: "mlab1-abc0t.mlab-oti.measurement-lab.org",
			URLs: map[string]string{
				"ws:///ndt/v7/download": fmt.Sprintf("ws://%s/ndt/v7/download", good),
				"ws:///ndt/v7/upload":   fmt.Sprintf("ws://%s/ndt/v7/upload", good),
			},
		}}}
	}
	code, stdout := runArgs(t, "run", "-locate", "ndt/ndt7",
		"-config", filepath.Join(t.TempDir(), "missing.yaml"),
		"-samples", "2", "-interval", "0", "-timeout", "1s")
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d\n%s", code, exitOK, stdout)
	}
	if !strings.Contains(stdout, "Loaded 1 target(s) from locate service ndt/ndt7") {
		t.Errorf("unexpected output:\n%s", stdout)
	}

	newLocator = func() targets.Locator {
		return &fakeLocator{err: fmt.Errorf("no servers")}
	}
	code, stdout = runArgs(t, "run", "-locate", "ndt/ndt7")
	if code != exitUsage || !strings.Contains(stdout, "cannot get server list from locate") {
		t.Errorf("exit code = %d\n%s", code, stdout)
	}
}

func TestRun_sample(t *testing.T) {
	good := listen(t)
	code, stdout := runArgs(t, "sample", "-url", good, "-samples", "2", "-interval", "0", "-timeout", "1s")
	if code != exitOK {
		t.Fatalf("exit code = %d, want %d\n%s", code, exitOK, stdout)
	}
	for _, want := range []string{
		"Quick sample: " + good + " (2 probes, mode: tcp)",
		"RESULTS",
		good,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "PASS") || strings.Contains(stdout, "FAIL") {
		t.Errorf("sample must not evaluate SLOs:\n%s", stdout)
	}
}
