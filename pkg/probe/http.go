package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/m-lab/pingslo/pkg/model"
	"github.com/m-lab/pingslo/pkg/spec"
)

// HTTP measures HTTP time to first byte. Certificate verification is
// disabled: the probe measures timing, not endpoint authenticity.
type HTTP struct {
	// Timeout bounds each request, from dialing to the first body byte.
	Timeout time.Duration

	client *http.Client
}

// NewHTTP returns an HTTP prober with the given per-request timeout.
func NewHTTP(timeout time.Duration) *HTTP {
	// No Proxy: the target itself is dialed even when proxy variables are set.
	transport := &http.Transport{
		TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
		DisableKeepAlives: true,
		ForceAttemptHTTP2: true,
	}
	return &HTTP{
		Timeout: timeout,
		client: &http.Client{
			Transport: transport,
			// The first response is the one being timed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// URL returns the URL probed for t. Port 443 uses https, any other port
// uses http. The port is always explicit.
func URL(t model.Target) *url.URL {
	scheme := "http"
	if t.Port == spec.HTTPSPort {
		scheme = "https"
	}
	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(t.Host, strconv.Itoa(t.Port)),
	}
}

// Probe measures t with HEAD, falling back to GET once if HEAD fails.
func (p *HTTP) Probe(ctx context.Context, t model.Target) Outcome {
	return p.ProbeWithFallback(ctx, URL(t).String())
}

// ProbeWithFallback tries a HEAD request and, if it fails, a single GET
// request. The returned sample's Method is the method that succeeded, or
// model.MethodFailed with the GET error.
func (p *HTTP) ProbeWithFallback(ctx context.Context, rawURL string) Outcome {
	elapsed, err := p.TTFB(ctx, rawURL, http.MethodHead)
	if err == nil {
		o := success(elapsed)
		o.Method = model.MethodHEAD
		return o
	}
	// Some servers reject HEAD.
	elapsed, err = p.TTFB(ctx, rawURL, http.MethodGet)
	if err == nil {
		o := success(elapsed)
		o.Method = model.MethodGET
		return o
	}
	o := failure(err)
	o.Method = model.MethodFailed
	return o
}

// TTFB sends a request with the given method and returns the time until the
// first byte of the response body is read. At most one byte is read. Any
// HTTP response counts, whatever its status code; an empty body counts once
// the response is complete.
func (p *HTTP) TTFB(ctx context.Context, rawURL, method string) (time.Duration, error) {
	timeout, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeout, method, rawURL, nil)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var first [1]byte
	_, err = io.ReadFull(resp.Body, first[:])
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	return elapsed, nil
}
