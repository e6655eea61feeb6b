package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hkrewson/collectz/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := NewSQLiteStore(newTestDB(t))
	defer s.Close()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if string(value) != `{"a":1}` {
		t.Errorf("Get = %q", value)
	}

	if err := s.Set(ctx, "k", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	value, _, _ = s.Get(ctx, "k")
	if string(value) != `{"a":2}` {
		t.Errorf("Get after overwrite = %q", value)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Error("key survived Delete")
	}
}

func TestSQLiteStoreRevisionBumps(t *testing.T) {
	s := NewSQLiteStore(newTestDB(t))
	defer s.Close()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("a"))
	first, err := s.revision("k")
	if err != nil {
		t.Fatalf("revision read failed: %v", err)
	}

	s.Set(ctx, "k", []byte("b"))
	second, _ := s.revision("k")
	if second <= first {
		t.Errorf("revision did not advance: %d -> %d", first, second)
	}

	s.Delete(ctx, "k")
	gone, _ := s.revision("k")
	if gone != 0 {
		t.Errorf("deleted key revision = %d, want 0", gone)
	}
}

func TestSQLiteStoreWatch(t *testing.T) {
	s := NewSQLiteStore(newTestDB(t))
	defer s.Close()
	s.interval = 10 * time.Millisecond
	ctx := context.Background()

	fired := make(chan struct{}, 8)
	stop := s.Watch("k", func() { fired <- struct{}{} })
	defer stop()

	s.Set(ctx, "k", []byte("a"))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not observe the write")
	}

	s.Delete(ctx, "k")
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not observe the delete")
	}
}

func TestSQLiteStoreWatchStopIdempotent(t *testing.T) {
	s := NewSQLiteStore(newTestDB(t))
	s.interval = 10 * time.Millisecond

	stop := s.Watch("k", func() {})
	stop()
	stop()
	// Close after individual stop must not panic on a double close.
	s.Close()
	s.Close()

	if got := s.Watch("k", func() {}); got == nil {
		t.Fatal("Watch on closed store returned nil stop func")
	}
}
