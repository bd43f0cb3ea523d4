package hooks

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Compile-time interface check.
var _ Hook = (*PrometheusHook)(nil)

// PrometheusHook exposes pipeline metrics for Prometheus scraping. It
// registers everything on its own registry so callers can mount
// Handler on the service mux or start a standalone metrics server via
// Serve.
type PrometheusHook struct {
	registry *prometheus.Registry

	// Counters
	scansStarted     prometheus.Counter
	scansCompleted   prometheus.Counter
	scansFailed      prometheus.Counter
	findingsFetched  prometheus.Counter
	reportsGenerated *prometheus.CounterVec
	reportFailures   *prometheus.CounterVec

	// Gauges
	activeScans     prometheus.Gauge
	lastScanSeconds prometheus.Gauge

	// Histograms
	renderSeconds *prometheus.HistogramVec

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// NewPrometheusHook creates the hook and registers its metrics on a
// fresh registry.
func NewPrometheusHook() (*PrometheusHook, error) {
	h := &PrometheusHook{
		registry: prometheus.NewRegistry(),

		scansStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osintment_scans_started_total",
			Help: "Total number of scans launched",
		}),
		scansCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osintment_scans_completed_total",
			Help: "Total number of scans that finished successfully",
		}),
		scansFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osintment_scans_failed_total",
			Help: "Total number of scans that errored or were aborted",
		}),
		findingsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "osintment_findings_fetched_total",
			Help: "Total number of findings accumulated from the scanning service",
		}),
		reportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "osintment_reports_generated_total",
			Help: "Total number of report artifacts produced",
		}, []string{"format"}),
		reportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "osintment_report_failures_total",
			Help: "Total number of failed report generations",
		}, []string{"format"}),

		activeScans: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osintment_active_scans",
			Help: "Number of scans currently being monitored",
		}),
		lastScanSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "osintment_last_scan_duration_seconds",
			Help: "Wall-clock duration of the most recently settled scan",
		}),

		renderSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "osintment_report_render_seconds",
			Help:    "Report render time distribution in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"format"}),
	}

	collectors := []prometheus.Collector{
		h.scansStarted,
		h.scansCompleted,
		h.scansFailed,
		h.findingsFetched,
		h.reportsGenerated,
		h.reportFailures,
		h.activeScans,
		h.lastScanSeconds,
		h.renderSeconds,
	}
	for _, c := range collectors {
		if err := h.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}

	return h, nil
}

// Registry returns the hook's private registry.
func (h *PrometheusHook) Registry() *prometheus.Registry { return h.registry }

// Handler returns the scrape handler for mounting on an existing mux.
func (h *PrometheusHook) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve starts a standalone metrics server on addr with /metrics as
// the scrape path. It returns once the listener is handed off.
func (h *PrometheusHook) Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h.Handler())

	h.mu.Lock()
	h.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	srv := h.server
	h.mu.Unlock()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
}

func (h *PrometheusHook) ScanStarted(ctx context.Context, scanID, target string) {
	h.scansStarted.Inc()
	h.activeScans.Inc()
}

func (h *PrometheusHook) ScanTransition(ctx context.Context, scanID, status string) {}

func (h *PrometheusHook) ScanCompleted(ctx context.Context, scanID, status string, elapsed time.Duration) {
	h.activeScans.Dec()
	h.lastScanSeconds.Set(elapsed.Seconds())
	if strings.Contains(status, "FINISHED") {
		h.scansCompleted.Inc()
	} else {
		h.scansFailed.Inc()
	}
}

func (h *PrometheusHook) FindingsFetched(ctx context.Context, scanID string, count int) {
	if count > 0 {
		h.findingsFetched.Add(float64(count))
	}
}

func (h *PrometheusHook) ReportGenerated(ctx context.Context, format string, elapsed time.Duration) {
	h.reportsGenerated.WithLabelValues(format).Inc()
	h.renderSeconds.WithLabelValues(format).Observe(elapsed.Seconds())
}

func (h *PrometheusHook) ReportFailed(ctx context.Context, format string) {
	h.reportFailures.WithLabelValues(format).Inc()
}

// Close shuts the standalone metrics server down if one was started.
func (h *PrometheusHook) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.server != nil {
		return h.server.Shutdown(ctx)
	}
	return nil
}
