// Package hooks provides observability hooks for the scan pipeline.
// The HTTP service and the CLI fire lifecycle notifications into a
// Hook; implementations export them as Prometheus metrics or
// OpenTelemetry traces. All implementations must be safe for
// concurrent use because monitor goroutines call them directly.
package hooks

import (
	"context"
	"errors"
	"time"
)

// Hook receives pipeline lifecycle notifications.
type Hook interface {
	// ScanStarted fires once when a scan is launched.
	ScanStarted(ctx context.Context, scanID, target string)

	// ScanTransition fires on every observed status change.
	ScanTransition(ctx context.Context, scanID, status string)

	// ScanCompleted fires once when a scan settles. status is the raw
	// service status (FINISHED, ERROR-FAILED, ABORTED, ...).
	ScanCompleted(ctx context.Context, scanID, status string, elapsed time.Duration)

	// FindingsFetched fires after each result fetch with the number of
	// new findings accumulated.
	FindingsFetched(ctx context.Context, scanID string, count int)

	// ReportGenerated fires per produced artifact.
	ReportGenerated(ctx context.Context, format string, elapsed time.Duration)

	// ReportFailed fires when report generation errors out.
	ReportFailed(ctx context.Context, format string)

	// Close releases exporter resources. Safe to call more than once.
	Close(ctx context.Context) error
}

// Nop discards all notifications. Embed it to implement a partial Hook.
type Nop struct{}

func (Nop) ScanStarted(context.Context, string, string)                  {}
func (Nop) ScanTransition(context.Context, string, string)               {}
func (Nop) ScanCompleted(context.Context, string, string, time.Duration) {}
func (Nop) FindingsFetched(context.Context, string, int)                 {}
func (Nop) ReportGenerated(context.Context, string, time.Duration)       {}
func (Nop) ReportFailed(context.Context, string)                         {}
func (Nop) Close(context.Context) error                                  { return nil }

// Multi fans every notification out to all hooks in order.
type Multi []Hook

func (m Multi) ScanStarted(ctx context.Context, scanID, target string) {
	for _, h := range m {
		h.ScanStarted(ctx, scanID, target)
	}
}

func (m Multi) ScanTransition(ctx context.Context, scanID, status string) {
	for _, h := range m {
		h.ScanTransition(ctx, scanID, status)
	}
}

func (m Multi) ScanCompleted(ctx context.Context, scanID, status string, elapsed time.Duration) {
	for _, h := range m {
		h.ScanCompleted(ctx, scanID, status, elapsed)
	}
}

func (m Multi) FindingsFetched(ctx context.Context, scanID string, count int) {
	for _, h := range m {
		h.FindingsFetched(ctx, scanID, count)
	}
}

func (m Multi) ReportGenerated(ctx context.Context, format string, elapsed time.Duration) {
	for _, h := range m {
		h.ReportGenerated(ctx, format, elapsed)
	}
}

func (m Multi) ReportFailed(ctx context.Context, format string) {
	for _, h := range m {
		h.ReportFailed(ctx, format)
	}
}

func (m Multi) Close(ctx context.Context) error {
	var errs []error
	for _, h := range m {
		if err := h.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
