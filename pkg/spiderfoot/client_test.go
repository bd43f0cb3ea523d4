package spiderfoot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintment/osintment/pkg/retry"
)

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts: 3,
		InitDelay:   time.Millisecond,
		MaxDelay:    time.Millisecond,
		Strategy:    retry.Constant,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:   srv.URL,
		RateLimit: 1000,
		Retry:     fastRetry(),
	})
}

func stubNow(t *testing.T, v time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return v }
	t.Cleanup(func() { timeNow = orig })
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c = New(Config{BaseURL: "http://sf.example.dev:5001/"})
	assert.Equal(t, "http://sf.example.dev:5001", c.BaseURL())
}

func TestStartScan(t *testing.T) {
	var gotMethod, gotAuth string
	var gotQuery map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		q := r.URL.Query()
		gotQuery = map[string]string{
			"q":          q.Get("q"),
			"scanname":   q.Get("scanname"),
			"scantarget": q.Get("scantarget"),
			"modulelist": q.Get("modulelist"),
		}
		w.Write([]byte(`["4DC62C51"]`))
	})
	c.apiKey = "secret-key"

	id, err := c.StartScan(context.Background(), "example.com", StartScanOptions{
		Name:    "Recon sweep",
		Modules: []string{"sfp_dnsresolve", "sfp_ssl"},
	})
	require.NoError(t, err)
	assert.Equal(t, "4DC62C51", id)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "startscan", gotQuery["q"])
	assert.Equal(t, "Recon sweep", gotQuery["scanname"])
	assert.Equal(t, "example.com", gotQuery["scantarget"])
	assert.Equal(t, "sfp_dnsresolve,sfp_ssl", gotQuery["modulelist"])
}

func TestStartScanSynthesizesName(t *testing.T) {
	stubNow(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	var gotName string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("scanname")
		w.Write([]byte(`["AB12"]`))
	})

	_, err := c.StartScan(context.Background(), "example.com", StartScanOptions{
		Modules: []string{"sfp_dnsresolve"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Scan_example.com_20250301_120000", gotName)
}

func TestStartScanModuleSelection(t *testing.T) {
	catalog := `{
		"sfp_shodan":     {"descr": "Shodan lookups", "type": "passive"},
		"sfp_portscan":   {"descr": "TCP port scan", "type": "active"},
		"sfp_dnsresolve": {"descr": "DNS resolution", "type": "passive"}
	}`

	run := func(t *testing.T, scanType, wantModules string) {
		var gotModules string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("q") {
			case "modules":
				w.Write([]byte(catalog))
			case "startscan":
				gotModules = r.URL.Query().Get("modulelist")
				w.Write([]byte(`["AB12"]`))
			default:
				t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
			}
		})

		_, err := c.StartScan(context.Background(), "example.com", StartScanOptions{ScanType: scanType})
		require.NoError(t, err)
		assert.Equal(t, wantModules, gotModules)
	}

	t.Run("passive", func(t *testing.T) {
		run(t, ScanTypePassive, "sfp_dnsresolve,sfp_shodan")
	})
	t.Run("all", func(t *testing.T) {
		run(t, "all", "sfp_dnsresolve,sfp_portscan,sfp_shodan")
	})
}

func TestStartScanRequiresTarget(t *testing.T) {
	c := New(Config{})
	_, err := c.StartScan(context.Background(), "  ", StartScanOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target is required")
}

func TestStartScanBadResponse(t *testing.T) {
	t.Run("empty array", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		})
		_, err := c.StartScan(context.Background(), "example.com", StartScanOptions{Modules: []string{"m"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty response")
	})

	t.Run("non-string id", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[42]`))
		})
		_, err := c.StartScan(context.Background(), "example.com", StartScanOptions{Modules: []string{"m"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected scan id")
	})
}

func TestStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "scanstatus", r.URL.Query().Get("q"))
		assert.Equal(t, "AB12", r.URL.Query().Get("id"))
		w.Write([]byte(`[{"status": "RUNNING", "progress": 42}]`))
	})

	status, err := c.Status(context.Background(), "AB12")
	require.NoError(t, err)
	assert.Equal(t, "RUNNING", status)
}

func TestStatusEmptyRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := c.Status(context.Background(), "AB12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no status for scan AB12")
}

func TestScanFindings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "scanresults", r.URL.Query().Get("q"))
		w.Write([]byte(`[
			{"type": "INTERNET_NAME", "data": "www.example.com", "module": "sfp_dnsresolve", "confidence": 75.0},
			{"type": "IP_ADDRESS", "data": "192.0.2.10", "module": "sfp_dnsresolve"}
		]`))
	})

	findings, raw, err := c.ScanFindings(context.Background(), "AB12")
	require.NoError(t, err)
	require.Len(t, findings, 2)
	require.Len(t, raw, 2)

	assert.Equal(t, "INTERNET_NAME", findings[0].Type)
	assert.Equal(t, "www.example.com", findings[0].Data)
	assert.Equal(t, 75, findings[0].Confidence)
	assert.Equal(t, 100, findings[1].Confidence)
}

func TestScanInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "scansummary", r.URL.Query().Get("q"))
		w.Write([]byte(`{"name": "Recon sweep", "target": "example.com", "created": "2025-03-01 09:58:00"}`))
	})

	info, err := c.ScanInfo(context.Background(), "AB12")
	require.NoError(t, err)
	assert.Equal(t, "AB12", info.ID)
	assert.Equal(t, "Recon sweep", info.Name)
	assert.Equal(t, "example.com", info.Target)
	assert.Equal(t, "2025-03-01 09:58:00", info.Created)
}

func TestAPIErrorOn404(t *testing.T) {
	hits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "scan not found", http.StatusNotFound)
	})

	err := c.DeleteScan(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "scandelete", apiErr.Op)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "spiderfoot: scandelete: status 404")
	assert.Equal(t, 1, hits, "4xx responses must not be retried")
}

func TestRetriesOn500(t *testing.T) {
	hits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 3 {
			http.Error(w, "temporary failure", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"status": "FINISHED"}]`))
	})

	status, err := c.Status(context.Background(), "AB12")
	require.NoError(t, err)
	assert.Equal(t, "FINISHED", status)
	assert.Equal(t, 3, hits)
}

func TestExportScan(t *testing.T) {
	t.Run("json validated", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "scanexport", r.URL.Query().Get("q"))
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			w.Write([]byte(`[{"type": "IP_ADDRESS"}]`))
		})
		data, err := c.ExportScan(context.Background(), "AB12", "")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"type": "IP_ADDRESS"}]`, string(data))
	})

	t.Run("invalid json rejected", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>oops</html>`))
		})
		_, err := c.ExportScan(context.Background(), "AB12", "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid json payload")
	})

	t.Run("csv passthrough", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "csv", r.URL.Query().Get("format"))
			w.Write([]byte("type,data\nIP_ADDRESS,192.0.2.10\n"))
		})
		data, err := c.ExportScan(context.Background(), "AB12", "csv")
		require.NoError(t, err)
		assert.Equal(t, "type,data\nIP_ADDRESS,192.0.2.10\n", string(data))
	})
}

func TestListScansAndPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "scanlist", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"id": "AB12", "name": "Recon sweep", "status": "FINISHED"}]`))
	})

	scans, err := c.ListScans(context.Background())
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, "AB12", scans[0]["id"])

	require.NoError(t, c.Ping(context.Background()))
}

func TestStopScan(t *testing.T) {
	var gotOp string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotOp = r.URL.Query().Get("q")
		w.Write([]byte(`["SUCCESS"]`))
	})

	require.NoError(t, c.StopScan(context.Background(), "AB12"))
	assert.Equal(t, "stopscan", gotOp)
}

// statusSequence serves successive scanstatus responses for wait tests.
type statusSequence struct {
	mu       sync.Mutex
	statuses []string
}

func (s *statusSequence) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.statuses[0]
	if len(s.statuses) > 1 {
		s.statuses = s.statuses[1:]
	}
	s.mu.Unlock()
	w.Write([]byte(`[{"status": "` + status + `"}]`))
}

func TestWaitForScanFinished(t *testing.T) {
	seq := &statusSequence{statuses: []string{"RUNNING", "RUNNING", "FINISHED"}}
	c := newTestClient(t, seq.handler)

	done, err := c.WaitForScan(context.Background(), "AB12", time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestWaitForScanFailedStates(t *testing.T) {
	for _, status := range []string{"ERROR-FAILED", "ABORTED"} {
		t.Run(status, func(t *testing.T) {
			seq := &statusSequence{statuses: []string{status}}
			c := newTestClient(t, seq.handler)

			done, err := c.WaitForScan(context.Background(), "AB12", time.Second, time.Millisecond)
			require.NoError(t, err)
			assert.False(t, done)
		})
	}
}

func TestWaitForScanTimeout(t *testing.T) {
	seq := &statusSequence{statuses: []string{"RUNNING"}}
	c := newTestClient(t, seq.handler)

	done, err := c.WaitForScan(context.Background(), "AB12", 20*time.Millisecond, 5*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestWaitForScanStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "scan not found", http.StatusNotFound)
	})

	done, err := c.WaitForScan(context.Background(), "missing", time.Second, time.Millisecond)
	assert.False(t, done)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestWaitForScanParentCancelled(t *testing.T) {
	seq := &statusSequence{statuses: []string{"RUNNING"}}
	c := newTestClient(t, seq.handler)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done, err := c.WaitForScan(ctx, "AB12", time.Second, time.Millisecond)
	assert.False(t, done)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
