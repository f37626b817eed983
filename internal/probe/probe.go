// Package probe issues the HTTP requests of health checks.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/storecheck/storecheck/internal/meta"
	api "github.com/storecheck/storecheck/lib-storecheck"
)

const (
	// RedirectMax is the maximum number of redirects to follow.
	RedirectMax = 10

	// DefaultMaxBodyBytes is the default size of the response body kept in memory.
	DefaultMaxBodyBytes = 1 << 20
)

var (
	ErrRedirectLoopDetected = errors.New("redirect loop detected")
)

// Prober probes an endpoint.
type Prober interface {
	Probe(ctx context.Context, e api.Endpoint) api.Outcome
}

// ProberFunc is a function that implements Prober.
type ProberFunc func(ctx context.Context, e api.Endpoint) api.Outcome

func (f ProberFunc) Probe(ctx context.Context, e api.Endpoint) api.Outcome {
	return f(ctx, e)
}

// Options is the options for NewHTTPProber.
type Options struct {
	// UserAgent is the User-Agent header of each request. meta.UserAgent() is used if empty.
	UserAgent string

	// MaxBodyBytes is the size of the response body kept in Outcome. DefaultMaxBodyBytes is used if zero.
	MaxBodyBytes int64
}

// HTTPProber is a Prober that sends exactly one HTTP request per Probe call.
type HTTPProber struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewHTTPProber creates a new HTTPProber.
func NewHTTPProber(opts Options) *HTTPProber {
	if opts.UserAgent == "" {
		opts.UserAgent = meta.UserAgent()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
		}).DialContext,
		DisableKeepAlives:   true,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &HTTPProber{
		client: &http.Client{
			Transport: userAgentTransport{
				rt:        transport,
				userAgent: opts.UserAgent,
			},
			CheckRedirect: checkRedirect,
		},
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > RedirectMax {
		return ErrRedirectLoopDetected
	}
	return nil
}

// userAgentTransport sets User-Agent header to every request.
type userAgentTransport struct {
	rt        http.RoundTripper
	userAgent string
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.rt.RoundTrip(req)
}

// Probe sends a request to the endpoint and waits for the whole response body, or the endpoint's timeout.
func (p *HTTPProber) Probe(ctx context.Context, e api.Endpoint) api.Outcome {
	if e.URL == nil {
		return api.Failed(0, "endpoint has no url")
	}

	method := e.Method
	if method == "" {
		method = http.MethodGet
	}

	pctx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, e.URL.String(), nil)
	if err != nil {
		return api.Failed(0, err.Error())
	}

	st := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return api.Failed(time.Since(st), failureMessage(pctx, ctx, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodyBytes))
	if err == nil {
		_, err = io.Copy(io.Discard, resp.Body)
	}
	latency := time.Since(st)
	if err != nil {
		return api.Failed(latency, failureMessage(pctx, ctx, err))
	}

	return api.Responded(resp.StatusCode, latency, body)
}

// dialErrorToMessage reports the cause of a failed dial, like "127.0.0.1:80: connection refused" or "10.0.0.1:443: no route to host".
func dialErrorToMessage(err *net.OpError) string {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Sprintf("%s: connection refused", err.Addr)
	}

	cause := err.Err
	var errno syscall.Errno
	if errors.As(cause, &errno) {
		cause = errno
	}
	if err.Addr == nil {
		return cause.Error()
	}
	return fmt.Sprintf("%s: %s", err.Addr, cause)
}

func failureMessage(parent, ctx context.Context, err error) string {
	if parent.Err() != nil {
		return "probe aborted"
	}
	if ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return "request timeout"
	}

	dnsErr := &net.DNSError{}
	opErr := &net.OpError{}

	switch {
	case errors.As(err, &dnsErr):
		return dnsErrorToMessage(dnsErr)
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return dialErrorToMessage(opErr)
	case errors.Is(err, ErrRedirectLoopDetected):
		return ErrRedirectLoopDetected.Error()
	default:
		return err.Error()
	}
}

func dnsErrorToMessage(err *net.DNSError) string {
	msg := "dns lookup failed: " + err.Name + ": " + err.Err
	if err.IsNotFound {
		msg = "dns lookup failed: " + err.Name + ": not found"
	}
	if err.Server != "" {
		msg += " on " + err.Server
	}
	return msg
}
