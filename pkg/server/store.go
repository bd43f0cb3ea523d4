package server

import (
	"sort"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"

	"github.com/osintment/osintment/pkg/finding"
)

// Lifecycle states for locally tracked scans.
const (
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
)

// Progress is the monitor's last observation of a scan.
type Progress struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScanRecord is the service's local view of one scan. Findings holds
// the deduplicated accumulation across monitor polls; JSON responses
// carry only the count.
type ScanRecord struct {
	ID           string     `json:"id"`
	Target       string     `json:"target"`
	Name         string     `json:"scan_name"`
	Type         string     `json:"scan_type"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Progress     Progress   `json:"progress"`
	FindingCount int        `json:"findings"`

	Findings []finding.Finding `json:"-"`
}

// ScanStore tracks scans the service has started. Implementations must
// be safe for concurrent use; monitor goroutines write while handlers
// read.
type ScanStore interface {
	// Put inserts or replaces a record.
	Put(rec ScanRecord)

	// Get returns a copy of the record.
	Get(id string) (ScanRecord, bool)

	// List returns copies of all records, newest first.
	List() []ScanRecord

	// Delete removes a record.
	Delete(id string)

	// UpdateProgress stores the latest observed service status.
	UpdateProgress(id, status string)

	// Complete marks the scan settled and stamps the completion time.
	Complete(id string, finished bool)

	// AddFindings merges a batch into the record, dropping findings
	// already seen. Returns the number actually added.
	AddFindings(id string, batch []finding.Finding) int
}

type scanEntry struct {
	rec  ScanRecord
	seen map[uint64]struct{}
}

// MemoryStore is the in-process ScanStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*scanEntry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*scanEntry)}
}

func (s *MemoryStore) Put(rec ScanRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &scanEntry{rec: rec, seen: make(map[uint64]struct{})}
	for _, f := range rec.Findings {
		entry.seen[fingerprint(f)] = struct{}{}
	}
	entry.rec.FindingCount = len(rec.Findings)
	s.entries[rec.ID] = entry
}

func (s *MemoryStore) Get(id string) (ScanRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return ScanRecord{}, false
	}
	return copyRecord(entry.rec), true
}

func (s *MemoryStore) List() []ScanRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ScanRecord, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, copyRecord(entry.rec))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

func (s *MemoryStore) UpdateProgress(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return
	}
	entry.rec.Progress = Progress{Status: status, UpdatedAt: time.Now()}
}

func (s *MemoryStore) Complete(id string, finished bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return
	}
	now := time.Now()
	entry.rec.CompletedAt = &now
	if finished {
		entry.rec.Status = StateCompleted
	} else {
		entry.rec.Status = StateFailed
	}
}

func (s *MemoryStore) AddFindings(id string, batch []finding.Finding) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return 0
	}

	added := 0
	for _, f := range batch {
		fp := fingerprint(f)
		if _, dup := entry.seen[fp]; dup {
			continue
		}
		entry.seen[fp] = struct{}{}
		entry.rec.Findings = append(entry.rec.Findings, f)
		added++
	}
	entry.rec.FindingCount = len(entry.rec.Findings)
	return added
}

func copyRecord(rec ScanRecord) ScanRecord {
	out := rec
	if rec.CompletedAt != nil {
		t := *rec.CompletedAt
		out.CompletedAt = &t
	}
	out.Findings = make([]finding.Finding, len(rec.Findings))
	copy(out.Findings, rec.Findings)
	return out
}

// fingerprint identifies a finding for dedup across polls. The service
// re-sends the full result set on every fetch, so identity is content
// based rather than positional.
func fingerprint(f finding.Finding) uint64 {
	h := murmur3.New64()
	h.Write([]byte(f.Type))
	h.Write([]byte{0})
	h.Write([]byte(f.Data))
	h.Write([]byte{0})
	h.Write([]byte(f.Module))
	h.Write([]byte{0})
	h.Write([]byte(f.Source))
	return h.Sum64()
}
