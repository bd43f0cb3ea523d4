// Proxy URL parsing and SOCKS dialer construction. HTTP proxies go through
// transport.Proxy; SOCKS proxies replace the transport's DialContext.
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"
)

var supportedProxySchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true, // DNS resolved on the proxy side
}

// ProxyConfig is a validated proxy target.
type ProxyConfig struct {
	URL      *url.URL
	Scheme   string
	Host     string
	Port     string
	Username string
	Password string
	IsSOCKS  bool
}

// ParseProxyURL validates and parses a proxy URL. An empty string means no
// proxy and returns (nil, nil). URLs without a scheme default to http://.
func ParseProxyURL(proxyURL string) (*ProxyConfig, error) {
	if proxyURL == "" {
		return nil, nil
	}
	if !strings.Contains(proxyURL, "://") {
		proxyURL = "http://" + proxyURL
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !supportedProxySchemes[scheme] {
		return nil, fmt.Errorf("unsupported proxy scheme %q, supported: http, https, socks5, socks5h", scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("proxy URL missing host")
	}
	port := parsed.Port()
	if port == "" {
		switch scheme {
		case "http":
			port = "8080"
		case "https":
			port = "8443"
		default:
			port = "1080"
		}
	}

	pc := &ProxyConfig{
		URL:     parsed,
		Scheme:  scheme,
		Host:    host,
		Port:    port,
		IsSOCKS: strings.HasPrefix(scheme, "socks"),
	}
	if parsed.User != nil {
		pc.Username = parsed.User.Username()
		pc.Password, _ = parsed.User.Password()
	}
	return pc, nil
}

// Address returns the proxy endpoint in host:port form.
func (p *ProxyConfig) Address() string {
	if p == nil {
		return ""
	}
	return net.JoinHostPort(p.Host, p.Port)
}

// contextDialer is what http.Transport.DialContext needs.
type contextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// dialerFunc adapts a plain proxy.Dialer to contextDialer.
type dialerFunc struct {
	d proxy.Dialer
}

func (f dialerFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := f.d.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}
	conn, err := f.d.Dial(network, address)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		conn.Close()
		return nil, ctx.Err()
	}
	return conn, nil
}

// socksDialer builds a SOCKS5 dialer from the proxy config, forwarding
// the base dialer's timeouts.
func socksDialer(pc *ProxyConfig, forward *net.Dialer) (contextDialer, error) {
	if pc == nil {
		return nil, fmt.Errorf("proxy config is nil")
	}
	var auth *proxy.Auth
	if pc.Username != "" {
		auth = &proxy.Auth{User: pc.Username, Password: pc.Password}
	}
	d, err := proxy.SOCKS5("tcp", pc.Address(), auth, forward)
	if err != nil {
		return nil, fmt.Errorf("socks dialer: %w", err)
	}
	return dialerFunc{d: d}, nil
}
