// Package state holds the shared snapshot of what the monitor has seen:
// the most recent classified records, per-label counts, the watermark,
// and the source's failure streak. The monitor goroutine is the only
// writer; the watch UI and the stats ticker read snapshots.
package state

import (
	"fmt"
	"sync"
	"time"

	"picket/internal/classify"
	"picket/internal/event"
)

const defaultCapacity = 200

// Entry is one classified record retained for display.
type Entry struct {
	Record event.Record
	Rule   classify.Rule
}

// Snapshot represents the latest data available to viewers.
type Snapshot struct {
	Source              string
	Recent              []Entry // oldest first, bounded
	Counts              map[string]uint64
	Cycles              uint64
	Records             uint64
	Watermark           time.Time
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the source has been failing for multiple
// polls in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent access to the snapshot. Recent entries
// live in a fixed ring so memory stays bounded however long the monitor
// runs.
type Store struct {
	mu sync.RWMutex

	source    string
	ring      []Entry
	ringIdx   int
	ringCount int

	counts    map[string]uint64
	cycles    uint64
	records   uint64
	watermark time.Time
	updated   time.Time
	lastError error
	failures  int
}

// NewStore returns a Store retaining up to capacity recent entries.
// Non-positive capacity selects the default.
func NewStore(source string, capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Store{
		source: source,
		ring:   make([]Entry, capacity),
		counts: make(map[string]uint64),
	}
}

// Append records one classified record.
func (s *Store) Append(rec event.Record, rule classify.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.ringIdx] = Entry{Record: rec, Rule: rule}
	s.ringIdx = (s.ringIdx + 1) % len(s.ring)
	if s.ringCount < len(s.ring) {
		s.ringCount++
	}
	s.counts[rule.Label]++
	s.records++
}

// CompleteCycle marks a successful poll cycle and the watermark it
// advanced to. The failure streak resets.
func (s *Store) CompleteCycle(watermark time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cycles++
	s.watermark = watermark
	s.lastError = nil
	s.failures = 0
	s.updated = time.Now()
}

// RecordFailure notes a failed poll cycle. Previous data is kept; the
// error is recorded for visibility.
func (s *Store) RecordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cycles++
	s.lastError = err
	s.failures++
	s.updated = time.Now()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Source:              s.source,
		Recent:              s.cloneRecent(),
		Counts:              make(map[string]uint64, len(s.counts)),
		Cycles:              s.cycles,
		Records:             s.records,
		Watermark:           s.watermark,
		LastUpdated:         s.updated,
		ConsecutiveFailures: s.failures,
	}
	for label, n := range s.counts {
		snap.Counts[label] = n
	}
	if s.lastError != nil {
		snap.LastError = fmt.Errorf("%w", s.lastError)
	}
	return snap
}

func (s *Store) cloneRecent() []Entry {
	if s.ringCount == 0 {
		return nil
	}
	entries := make([]Entry, s.ringCount)
	if s.ringCount == len(s.ring) {
		for i := 0; i < s.ringCount; i++ {
			entries[i] = s.ring[(s.ringIdx+i)%len(s.ring)]
		}
	} else {
		copy(entries, s.ring[:s.ringCount])
	}
	return entries
}
