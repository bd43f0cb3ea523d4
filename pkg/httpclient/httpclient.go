// Package httpclient provides the shared pooled HTTP client used for all
// scanning-service API traffic. One transport with keep-alive reuse serves
// the whole process; per-call deadlines come from request contexts.
package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// Config holds HTTP client configuration options.
type Config struct {
	// Timeout is the total request timeout (default: 60s — full result
	// sets for large scans take a while to stream).
	Timeout time.Duration

	// InsecureSkipVerify skips TLS certificate verification, for
	// self-signed scanning-service deployments (default: false).
	InsecureSkipVerify bool

	// Proxy is an optional proxy URL (http, https, socks5, socks5h).
	Proxy string

	// MaxIdleConns caps idle connections in the pool (default: 20).
	MaxIdleConns int

	// IdleConnTimeout is how long idle connections stay pooled (default: 90s).
	IdleConnTimeout time.Duration

	// DialTimeout bounds connection establishment (default: 10s).
	DialTimeout time.Duration
}

// DefaultConfig returns defaults tuned for a single API host.
func DefaultConfig() Config {
	return Config{
		Timeout:         60 * time.Second,
		MaxIdleConns:    20,
		IdleConnTimeout: 90 * time.Second,
		DialTimeout:     10 * time.Second,
	}
}

var (
	defaultClient *http.Client
	defaultOnce   sync.Once
)

// Default returns the shared pre-configured client. Safe for concurrent
// use; all packages should prefer it over constructing their own so the
// connection pool is actually shared.
func Default() *http.Client {
	defaultOnce.Do(func() {
		defaultClient = New(DefaultConfig())
	})
	return defaultClient
}

// New creates a client with the given configuration. Zero values fall
// back to the defaults from DefaultConfig.
func New(cfg Config) *http.Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 20
	}
	if cfg.IdleConnTimeout == 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		DialContext:           dialer.DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	if cfg.Proxy != "" {
		// Malformed proxy URLs are surfaced at config validation time;
		// here a bad value simply leaves the transport direct.
		if pc, err := ParseProxyURL(cfg.Proxy); err == nil && pc != nil {
			if pc.IsSOCKS {
				if d, err := socksDialer(pc, dialer); err == nil {
					transport.DialContext = d.DialContext
				}
			} else {
				transport.Proxy = http.ProxyURL(pc.URL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}
