package store

import (
	"sync"
	"time"

	"github.com/windfleet/windfleet/pkg/types"
)

// Entry is a snapshot together with the time it was stored.
type Entry struct {
	Snapshot *types.FleetSnapshot
	StoredAt time.Time
}

// Store is a thread-safe in-memory history of evaluation snapshots,
// newest last, capped at a configured length.
type Store struct {
	mu   sync.RWMutex
	runs []*Entry
	cap  int
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store retaining up to maxRuns snapshots. Values below one
// are raised to one — the store always holds at least the latest run.
func New(maxRuns int) *Store {
	if maxRuns < 1 {
		maxRuns = 1
	}
	return &Store{cap: maxRuns, now: time.Now}
}

// Put appends a completed snapshot, evicting the oldest beyond capacity.
// Callers must not modify snap after calling Put.
func (s *Store) Put(snap *types.FleetSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, &Entry{Snapshot: snap, StoredAt: s.now()})
	if len(s.runs) > s.cap {
		s.runs = s.runs[len(s.runs)-s.cap:]
	}
}

// Latest returns the most recent snapshot, or nil before the first Put.
func (s *Store) Latest() *types.FleetSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.runs) == 0 {
		return nil
	}
	return s.runs[len(s.runs)-1].Snapshot
}

// Get returns the snapshot for the given run ID and whether it was found.
func (s *Store) Get(runID string) (*types.FleetSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.runs {
		if e.Snapshot.RunID == runID {
			return e.Snapshot, true
		}
	}
	return nil, false
}

// List returns all retained entries, newest first.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, len(s.runs))
	for i, e := range s.runs {
		out[len(s.runs)-1-i] = e
	}
	return out
}

// Count returns the number of retained runs.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
