package server

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/osintment/osintment/pkg/hooks"
	"github.com/osintment/osintment/pkg/spiderfoot"
)

// DefaultPollInterval is the monitor's status polling cadence.
const DefaultPollInterval = 10 * time.Second

// maxPollFailures settles a scan as failed after this many consecutive
// status errors.
const maxPollFailures = 3

// Monitor follows running scans in background goroutines, mirroring
// service status into the store and accumulating findings as they
// appear.
type Monitor struct {
	client   *spiderfoot.Client
	store    ScanStore
	hooks    hooks.Hook
	interval time.Duration
	wg       sync.WaitGroup
}

// NewMonitor creates a monitor. A nil hook disables notifications.
func NewMonitor(client *spiderfoot.Client, store ScanStore, hk hooks.Hook, interval time.Duration) *Monitor {
	if hk == nil {
		hk = hooks.Nop{}
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{client: client, store: store, hooks: hk, interval: interval}
}

// Watch follows one scan until it settles or ctx is cancelled.
func (m *Monitor) Watch(ctx context.Context, scanID string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.watch(ctx, scanID)
	}()
}

// Wait blocks until every watch goroutine has returned.
func (m *Monitor) Wait() { m.wg.Wait() }

func (m *Monitor) watch(ctx context.Context, scanID string) {
	started := time.Now()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var lastStatus string
	failures := 0

	for {
		status, err := m.client.Status(ctx, scanID)
		if err != nil {
			failures++
			log.Printf("monitor: scan %s status poll failed (%d/%d): %v", scanID, failures, maxPollFailures, err)
			if failures >= maxPollFailures {
				m.settle(ctx, scanID, spiderfoot.StatusError, started)
				return
			}
		} else {
			failures = 0
			m.store.UpdateProgress(scanID, status)
			if status != lastStatus {
				m.hooks.ScanTransition(ctx, scanID, status)
				lastStatus = status
			}

			m.collect(ctx, scanID)

			if settled(status) {
				m.settle(ctx, scanID, status, started)
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// collect merges the scan's current findings into the store. Results
// are not available for very young scans, so fetch errors are skipped
// quietly.
func (m *Monitor) collect(ctx context.Context, scanID string) {
	findings, _, err := m.client.ScanFindings(ctx, scanID)
	if err != nil {
		return
	}
	if added := m.store.AddFindings(scanID, findings); added > 0 {
		m.hooks.FindingsFetched(ctx, scanID, added)
	}
}

func (m *Monitor) settle(ctx context.Context, scanID, status string, started time.Time) {
	m.collect(ctx, scanID)
	finished := strings.Contains(status, spiderfoot.StatusFinished)
	m.store.Complete(scanID, finished)
	m.hooks.ScanCompleted(ctx, scanID, status, time.Since(started))
}

func settled(status string) bool {
	return strings.Contains(status, spiderfoot.StatusFinished) ||
		strings.Contains(status, spiderfoot.StatusError) ||
		strings.Contains(status, spiderfoot.StatusAborted)
}
