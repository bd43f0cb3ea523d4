package hooks

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, h *PrometheusHook) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestPrometheusHookLifecycle(t *testing.T) {
	h, err := NewPrometheusHook()
	require.NoError(t, err)
	ctx := context.Background()

	h.ScanStarted(ctx, "scan-1", "example.com")
	h.ScanStarted(ctx, "scan-2", "example.org")
	h.ScanTransition(ctx, "scan-1", "RUNNING")
	h.FindingsFetched(ctx, "scan-1", 12)
	h.FindingsFetched(ctx, "scan-1", 0)
	h.ScanCompleted(ctx, "scan-1", "FINISHED", 90*time.Second)
	h.ScanCompleted(ctx, "scan-2", "ERROR-FAILED", 5*time.Second)
	h.ReportGenerated(ctx, "html", 120*time.Millisecond)
	h.ReportFailed(ctx, "pdf")

	body := scrape(t, h)
	assert.Contains(t, body, "osintment_scans_started_total 2")
	assert.Contains(t, body, "osintment_scans_completed_total 1")
	assert.Contains(t, body, "osintment_scans_failed_total 1")
	assert.Contains(t, body, "osintment_active_scans 0")
	assert.Contains(t, body, "osintment_findings_fetched_total 12")
	assert.Contains(t, body, `osintment_reports_generated_total{format="html"} 1`)
	assert.Contains(t, body, `osintment_report_failures_total{format="pdf"} 1`)
	assert.Contains(t, body, `osintment_report_render_seconds_count{format="html"} 1`)

	require.NoError(t, h.Close(ctx))
	require.NoError(t, h.Close(ctx), "close must be idempotent")
}

func TestPrometheusHookActiveScansGauge(t *testing.T) {
	h, err := NewPrometheusHook()
	require.NoError(t, err)
	ctx := context.Background()

	h.ScanStarted(ctx, "scan-1", "example.com")
	assert.Contains(t, scrape(t, h), "osintment_active_scans 1")

	h.ScanCompleted(ctx, "scan-1", "FINISHED", time.Second)
	body := scrape(t, h)
	assert.Contains(t, body, "osintment_active_scans 0")
	assert.Contains(t, body, "osintment_last_scan_duration_seconds 1")
}

// recorderHook captures every notification for Multi tests.
type recorderHook struct {
	Nop
	calls    []string
	closeErr error
}

func (r *recorderHook) ScanStarted(_ context.Context, scanID, target string) {
	r.calls = append(r.calls, "started:"+scanID+":"+target)
}

func (r *recorderHook) ScanCompleted(_ context.Context, scanID, status string, _ time.Duration) {
	r.calls = append(r.calls, "completed:"+scanID+":"+status)
}

func (r *recorderHook) Close(context.Context) error { return r.closeErr }

func TestMultiFansOut(t *testing.T) {
	a := &recorderHook{}
	b := &recorderHook{closeErr: errors.New("flush failed")}
	m := Multi{a, b}
	ctx := context.Background()

	m.ScanStarted(ctx, "scan-1", "example.com")
	m.ScanCompleted(ctx, "scan-1", "FINISHED", time.Second)

	want := []string{"started:scan-1:example.com", "completed:scan-1:FINISHED"}
	assert.Equal(t, want, a.calls)
	assert.Equal(t, want, b.calls)

	err := m.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush failed")
}

func TestNopImplementsHook(t *testing.T) {
	var h Hook = Nop{}
	ctx := context.Background()

	h.ScanStarted(ctx, "scan-1", "example.com")
	h.ScanTransition(ctx, "scan-1", "RUNNING")
	h.ScanCompleted(ctx, "scan-1", "FINISHED", time.Second)
	h.FindingsFetched(ctx, "scan-1", 3)
	h.ReportGenerated(ctx, "html", time.Millisecond)
	h.ReportFailed(ctx, "pdf")
	require.NoError(t, h.Close(ctx))
}

func TestOTelHookDisabledWithoutEndpoint(t *testing.T) {
	ctx := context.Background()
	h, err := NewOTelHook(ctx, OTelOptions{})
	require.NoError(t, err)
	assert.False(t, h.Enabled())

	// Every notification must be a safe no-op.
	h.ScanStarted(ctx, "scan-1", "example.com")
	h.ScanTransition(ctx, "scan-1", "RUNNING")
	h.FindingsFetched(ctx, "scan-1", 5)
	h.ScanCompleted(ctx, "scan-1", "FINISHED", time.Second)
	h.ReportGenerated(ctx, "html", time.Millisecond)
	h.ReportFailed(ctx, "pdf")
	require.NoError(t, h.Close(ctx))
	require.NoError(t, h.Close(ctx))
}

// skipIfNoOTLPCollector skips tests that need a live collector.
func skipIfNoOTLPCollector(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", "localhost:4317", 100*time.Millisecond)
	if err != nil {
		t.Skipf("Skipping: no OTLP collector at localhost:4317: %v", err)
	}
	conn.Close()
}

func TestOTelHookScanLifecycle(t *testing.T) {
	skipIfNoOTLPCollector(t)

	ctx := context.Background()
	h, err := NewOTelHook(ctx, OTelOptions{
		Endpoint:          "localhost:4317",
		Insecure:          true,
		ShutdownTimeout:   time.Second,
		ConnectionTimeout: time.Second,
	})
	require.NoError(t, err)
	assert.True(t, h.Enabled())

	h.ScanStarted(ctx, "scan-1", "example.com")
	h.ScanTransition(ctx, "scan-1", "RUNNING")
	h.FindingsFetched(ctx, "scan-1", 40)
	h.ScanCompleted(ctx, "scan-1", "FINISHED", 3*time.Second)
	h.ReportGenerated(ctx, "pdf", 2*time.Second)

	require.NoError(t, h.Close(ctx))
}
