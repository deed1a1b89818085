package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/forecaster-text/internal/world"
)

var (
	// ErrNotFound is returned when no snapshot is available for a world.
	ErrNotFound = errors.New("no snapshot for world")
)

// SnapshotHistory holds a time-ordered list of snapshots for a world.
type SnapshotHistory struct {
	Snapshots []world.Snapshot
}

// MemoryStore is a concurrency-safe in-memory store of world snapshots.
type MemoryStore struct {
	mu sync.RWMutex

	// key: world id, value: history
	data map[string]*SnapshotHistory

	// retention configuration
	maxHistory int           // max number of snapshots per world
	maxAge     time.Duration // optional max age for snapshots
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot appends a snapshot for worldID and enforces retention.
// Snapshots without a timestamp are stamped with the current time.
func (s *MemoryStore) SaveSnapshot(worldID string, snapshot world.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.World = worldID
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = s.now().UTC()
	}

	history, ok := s.data[worldID]
	if !ok {
		history = &SnapshotHistory{}
		s.data[worldID] = history
	}

	history.Snapshots = append(history.Snapshots, snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = history.Snapshots[over:]
	}

	// Enforce retention by age; the newest snapshot is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots)-1; i++ {
			if !history.Snapshots[i].Timestamp.Before(cutoff) {
				break
			}
		}
		history.Snapshots = history.Snapshots[i:]
	}
}

// GetLatest returns the most recent snapshot for a world.
func (s *MemoryStore) GetLatest(worldID string) (world.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[worldID]
	if !ok || len(history.Snapshots) == 0 {
		return world.Snapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRange returns all snapshots for a world between from and to (inclusive).
func (s *MemoryStore) GetRange(worldID string, from, to time.Time) ([]world.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[worldID]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []world.Snapshot
	for _, snap := range history.Snapshots {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}

// Worlds returns the ids of every world with at least one snapshot.
func (s *MemoryStore) Worlds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for id, history := range s.data {
		if len(history.Snapshots) > 0 {
			out = append(out, id)
		}
	}
	return out
}
