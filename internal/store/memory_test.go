package store

import (
	"context"
	"testing"
)

func TestMemoryStoreGetSet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if string(value) != "v1" {
		t.Errorf("Get = %q, want v1", value)
	}

	// Returned slices are copies; mutating one must not corrupt the store.
	value[0] = 'X'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != "v1" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("v"))
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("key survived Delete")
	}
}

func TestMemoryStoreWatch(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var calls int
	stop := s.Watch("k", func() { calls++ })

	s.Set(ctx, "k", []byte("a"))
	s.Set(ctx, "other", []byte("b"))
	s.Delete(ctx, "k")

	if calls != 2 {
		t.Errorf("watcher fired %d times, want 2 (set + delete on watched key)", calls)
	}

	stop()
	s.Set(ctx, "k", []byte("c"))
	if calls != 2 {
		t.Errorf("watcher fired after cancellation: %d calls", calls)
	}
}

func TestMemoryStoreDeleteMissingDoesNotNotify(t *testing.T) {
	s := NewMemoryStore()

	var calls int
	s.Watch("k", func() { calls++ })

	s.Delete(context.Background(), "k")
	if calls != 0 {
		t.Errorf("delete of absent key notified %d watcher(s)", calls)
	}
}

func TestMemoryStoreWatchReentrant(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var got []byte
	s.Watch("k", func() {
		// Callbacks run outside the store lock, so reading back is legal.
		got, _, _ = s.Get(ctx, "k")
	})

	s.Set(ctx, "k", []byte("v"))
	if string(got) != "v" {
		t.Errorf("reentrant Get inside watcher = %q, want v", got)
	}
}
