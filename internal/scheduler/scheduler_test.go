package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

type recordingSyncer struct {
	mu     sync.Mutex
	synced []string
	fail   map[string]bool
}

func (r *recordingSyncer) SyncWorld(ctx context.Context, worldID string) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("sync without deadline")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synced = append(r.synced, worldID)
	if r.fail[worldID] {
		return errors.New("host down")
	}
	return nil
}

func (r *recordingSyncer) worlds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.synced...)
	sort.Strings(out)
	return out
}

func TestRunOnceSyncsEveryWorld(t *testing.T) {
	syncer := &recordingSyncer{fail: map[string]bool{"farm-b": true}}
	s := New([]string{"farm-a", "farm-b", "farm-c"}, time.Minute, syncer)

	s.RunOnce()

	got := syncer.worlds()
	want := []string{"farm-a", "farm-b", "farm-c"}
	if len(got) != len(want) {
		t.Fatalf("synced %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("synced %v, want %v", got, want)
		}
	}
}

func TestStartRunsImmediately(t *testing.T) {
	syncer := &recordingSyncer{}
	s := New([]string{"farm"}, time.Hour, syncer)

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(syncer.worlds()) > 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected the first sync to run at start")
}

func TestStartWithoutWorlds(t *testing.T) {
	s := New(nil, time.Minute, &recordingSyncer{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
