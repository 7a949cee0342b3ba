// Package targets parses probe targets from strings and target files.
package targets

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/m-lab/pingslo/pkg/model"
	"golang.org/x/net/idna"
)

const (
	defaultHTTPSPort = 443
	defaultHTTPPort  = 80

	// maxReportedErrors is how many line errors are included when a file
	// has no valid target.
	maxReportedErrors = 5
)

var (
	// ErrInvalidTarget is returned for target strings that cannot be parsed.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrNoTargets is returned when a target list has no valid target.
	ErrNoTargets = errors.New("no valid targets")
)

// ParseTarget parses a target of the form [scheme://]host[:port][/path].
// The https:// prefix, or no prefix, defaults to port 443; http:// defaults
// to port 80. Any path is ignored. Hostnames are converted to their ASCII
// (punycode) form.
func ParseTarget(s string) (model.Target, error) {
	host := s
	port := defaultHTTPSPort
	switch {
	case strings.HasPrefix(s, "https://"):
		host = strings.TrimPrefix(s, "https://")
	case strings.HasPrefix(s, "http://"):
		host = strings.TrimPrefix(s, "http://")
		port = defaultHTTPPort
	}

	host = strings.TrimRight(host, "/")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}

	if strings.Contains(host, ":") {
		parts := strings.Split(host, ":")
		if len(parts) != 2 {
			return model.Target{}, fmt.Errorf("%w: invalid target format: %s", ErrInvalidTarget, s)
		}
		p, err := strconv.Atoi(parts[1])
		if err != nil {
			return model.Target{}, fmt.Errorf("%w: invalid port number: %s", ErrInvalidTarget, parts[1])
		}
		if p < 1 || p > 65535 {
			return model.Target{}, fmt.Errorf("%w: port must be 1-65535: %d", ErrInvalidTarget, p)
		}
		host, port = parts[0], p
	}

	if host == "" {
		return model.Target{}, fmt.Errorf("%w: empty hostname in: %s", ErrInvalidTarget, s)
	}
	if net.ParseIP(host) == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return model.Target{}, fmt.Errorf("%w: invalid hostname %q: %v", ErrInvalidTarget, host, err)
		}
		host = ascii
	}
	return model.Target{Host: host, Port: port}, nil
}

// LineError is an invalid line in a target list.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("Line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Parse reads one target per line from r. Blank lines and lines starting
// with '#' are skipped. Invalid lines are skipped and returned as
// LineErrors. If no line is valid, Parse returns an error wrapping
// ErrNoTargets.
func Parse(r io.Reader) ([]model.Target, []*LineError, error) {
	var targets []model.Target
	var lineErrors []*LineError

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		t, err := ParseTarget(text)
		if err != nil {
			lineErrors = append(lineErrors, &LineError{Line: line, Err: err})
			continue
		}
		targets = append(targets, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, lineErrors, err
	}

	if len(targets) == 0 {
		msg := make([]string, 0, maxReportedErrors)
		for i, le := range lineErrors {
			if i == maxReportedErrors {
				break
			}
			msg = append(msg, le.Error())
		}
		if len(msg) == 0 {
			return nil, lineErrors, ErrNoTargets
		}
		return nil, lineErrors, fmt.Errorf("%w (%d error(s): %s)", ErrNoTargets,
			len(lineErrors), strings.Join(msg, "; "))
	}
	return targets, lineErrors, nil
}

// ParseFile is like Parse but reads the file at path.
func ParseFile(path string) ([]model.Target, []*LineError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	targets, lineErrors, err := Parse(f)
	if err != nil {
		return nil, lineErrors, fmt.Errorf("%s: %w", path, err)
	}
	return targets, lineErrors, nil
}
