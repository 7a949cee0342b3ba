package targets

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	v2 "github.com/m-lab/locate/api/v2"
	"github.com/m-lab/pingslo/pkg/model"
)

// Locator is an interface used to get a list of available servers to probe.
// It is implemented by the M-Lab Locate API client.
type Locator interface {
	Nearest(ctx context.Context, service string) ([]v2.Target, error)
}

// FromLocate returns the targets behind the URLs of the servers nearest to
// the caller for the given service. Targets are deduplicated and keep the
// order of the returned servers; within a server, URLs are visited in
// sorted key order.
func FromLocate(ctx context.Context, locator Locator, service string) ([]model.Target, error) {
	servers, err := locator.Nearest(ctx, service)
	if err != nil {
		return nil, err
	}

	seen := map[model.Target]bool{}
	var out []model.Target
	for _, s := range servers {
		keys := make([]string, 0, len(s.URLs))
		for k := range s.URLs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t, err := targetFromURL(s.URLs[k])
			if err != nil {
				return nil, err
			}
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: locate returned no servers for %s", ErrNoTargets, service)
	}
	return out, nil
}

func targetFromURL(raw string) (model.Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return model.Target{}, fmt.Errorf("%w: locate returned an invalid URL: %v", ErrInvalidTarget, err)
	}
	if u.Hostname() == "" {
		return model.Target{}, fmt.Errorf("%w: locate returned a URL without host: %s", ErrInvalidTarget, raw)
	}
	port := defaultHTTPSPort
	switch u.Scheme {
	case "http", "ws":
		port = defaultHTTPPort
	}
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return model.Target{}, fmt.Errorf("%w: invalid port in %s", ErrInvalidTarget, raw)
		}
	}
	return model.Target{Host: u.Hostname(), Port: port}, nil
}
