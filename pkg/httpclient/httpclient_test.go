package httpclient

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AppliesZeroValueDefaults(t *testing.T) {
	t.Parallel()

	c := New(Config{})
	assert.Equal(t, 60*time.Second, c.Timeout)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 20, tr.MaxIdleConns)
	assert.True(t, tr.ForceAttemptHTTP2)
	assert.False(t, tr.TLSClientConfig.InsecureSkipVerify)
}

func TestNew_RespectsExplicitConfig(t *testing.T) {
	t.Parallel()

	c := New(Config{Timeout: 5 * time.Second, InsecureSkipVerify: true})
	assert.Equal(t, 5*time.Second, c.Timeout)
	tr := c.Transport.(*http.Transport)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
}

func TestDefault_ReturnsSameClient(t *testing.T) {
	t.Parallel()

	assert.Same(t, Default(), Default(), "Default must reuse one pooled client")
}

func TestNew_HTTPProxyConfigured(t *testing.T) {
	t.Parallel()

	c := New(Config{Proxy: "http://127.0.0.1:8080"})
	tr := c.Transport.(*http.Transport)
	require.NotNil(t, tr.Proxy, "HTTP proxy must be set on the transport")

	req, _ := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	u, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", u.Host)
}

func TestNew_MalformedProxyIgnored(t *testing.T) {
	t.Parallel()

	c := New(Config{Proxy: "ftp://nope"})
	tr := c.Transport.(*http.Transport)
	assert.Nil(t, tr.Proxy, "unsupported proxy scheme must leave the transport direct")
}
