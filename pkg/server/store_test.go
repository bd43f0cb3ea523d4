package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osintment/osintment/pkg/finding"
	"github.com/osintment/osintment/pkg/testutil"
)

func testFinding(typ, data string) finding.Finding {
	return finding.Finding{
		Type:       typ,
		Data:       data,
		Module:     "sfp_dnsresolve",
		Source:     "example.com",
		Confidence: finding.DefaultConfidence,
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	store.Put(ScanRecord{ID: "AA11", Target: "example.com", Status: StateRunning, StartedAt: time.Now()})
	rec, ok := store.Get("AA11")
	require.True(t, ok)
	assert.Equal(t, "example.com", rec.Target)
	assert.Equal(t, StateRunning, rec.Status)
}

func TestMemoryStoreGetReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	store.Put(ScanRecord{
		ID:        "AA11",
		StartedAt: time.Now(),
		Findings:  []finding.Finding{testFinding("IP_ADDRESS", "192.0.2.1")},
	})

	rec, ok := store.Get("AA11")
	require.True(t, ok)
	rec.Findings[0].Data = "tampered"
	rec.Status = StateFailed

	fresh, ok := store.Get("AA11")
	require.True(t, ok)
	assert.Equal(t, "192.0.2.1", fresh.Findings[0].Data)
	assert.NotEqual(t, StateFailed, fresh.Status)
}

func TestMemoryStoreListOrder(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.Put(ScanRecord{ID: "oldest", StartedAt: now.Add(-2 * time.Hour)})
	store.Put(ScanRecord{ID: "newest", StartedAt: now})
	store.Put(ScanRecord{ID: "middle", StartedAt: now.Add(-time.Hour)})

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, "newest", list[0].ID)
	assert.Equal(t, "middle", list[1].ID)
	assert.Equal(t, "oldest", list[2].ID)
}

func TestMemoryStoreAddFindingsDedup(t *testing.T) {
	store := NewMemoryStore()
	store.Put(ScanRecord{ID: "AA11", StartedAt: time.Now()})

	a := testFinding("IP_ADDRESS", "192.0.2.1")
	b := testFinding("DOMAIN_NAME", "example.com")

	assert.Equal(t, 2, store.AddFindings("AA11", []finding.Finding{a, b}))
	assert.Equal(t, 0, store.AddFindings("AA11", []finding.Finding{a, b}))

	c := testFinding("EMAILADDR", "admin@example.com")
	assert.Equal(t, 1, store.AddFindings("AA11", []finding.Finding{b, c}))

	rec, ok := store.Get("AA11")
	require.True(t, ok)
	assert.Equal(t, 3, rec.FindingCount)
	assert.Len(t, rec.Findings, 3)

	assert.Equal(t, 0, store.AddFindings("missing", []finding.Finding{a}))
}

func TestMemoryStorePutSeedsDedup(t *testing.T) {
	store := NewMemoryStore()
	a := testFinding("IP_ADDRESS", "192.0.2.1")
	store.Put(ScanRecord{ID: "AA11", StartedAt: time.Now(), Findings: []finding.Finding{a}, FindingCount: 1})

	b := testFinding("DOMAIN_NAME", "example.com")
	assert.Equal(t, 1, store.AddFindings("AA11", []finding.Finding{a, b}))

	rec, _ := store.Get("AA11")
	assert.Equal(t, 2, rec.FindingCount)
}

func TestMemoryStoreUpdateProgress(t *testing.T) {
	store := NewMemoryStore()
	store.Put(ScanRecord{ID: "AA11", StartedAt: time.Now()})

	store.UpdateProgress("AA11", "RUNNING")
	rec, ok := store.Get("AA11")
	require.True(t, ok)
	assert.Equal(t, "RUNNING", rec.Progress.Status)
	assert.False(t, rec.Progress.UpdatedAt.IsZero())

	// Unknown scans are a no-op.
	store.UpdateProgress("missing", "RUNNING")
}

func TestMemoryStoreComplete(t *testing.T) {
	store := NewMemoryStore()
	store.Put(ScanRecord{ID: "done", Status: StateRunning, StartedAt: time.Now()})
	store.Put(ScanRecord{ID: "broken", Status: StateRunning, StartedAt: time.Now()})

	store.Complete("done", true)
	store.Complete("broken", false)

	done, _ := store.Get("done")
	assert.Equal(t, StateCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.False(t, done.CompletedAt.IsZero())

	broken, _ := store.Get("broken")
	assert.Equal(t, StateFailed, broken.Status)
	require.NotNil(t, broken.CompletedAt)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	store.Put(ScanRecord{ID: "AA11", StartedAt: time.Now()})

	store.Delete("AA11")
	_, ok := store.Get("AA11")
	assert.False(t, ok)

	store.Delete("missing")
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	store.Put(ScanRecord{ID: "AA11", StartedAt: time.Now()})

	testutil.RunConcurrently(16, func(i int) {
		f := testFinding("IP_ADDRESS", fmt.Sprintf("192.0.2.%d", i))
		store.AddFindings("AA11", []finding.Finding{f})
		store.UpdateProgress("AA11", "RUNNING")
		store.Get("AA11")
		store.List()
	})

	rec, ok := store.Get("AA11")
	require.True(t, ok)
	assert.Equal(t, 16, rec.FindingCount, "every distinct finding lands exactly once")
}

func TestFingerprint(t *testing.T) {
	a := testFinding("IP_ADDRESS", "192.0.2.1")
	assert.Equal(t, fingerprint(a), fingerprint(a))

	b := a
	b.Data = "192.0.2.2"
	assert.NotEqual(t, fingerprint(a), fingerprint(b))

	// Field boundaries matter: "AB"+"C" must not collide with "A"+"BC".
	x := finding.Finding{Type: "AB", Data: "C"}
	y := finding.Finding{Type: "A", Data: "BC"}
	assert.NotEqual(t, fingerprint(x), fingerprint(y))

	// Confidence and timestamp do not change identity.
	c := a
	c.Confidence = 50
	c.Timestamp = "2025-01-01 00:00:00"
	assert.Equal(t, fingerprint(a), fingerprint(c))
}
