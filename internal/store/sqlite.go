package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// defaultWatchInterval is how often SQLite watchers re-read the revision
// counter. Coarse on purpose: watches are a wake-up hint, not a delivery
// guarantee.
const defaultWatchInterval = time.Second

// SQLiteStore implements Store on the kv_state table of the local database.
// Every collectz process on the machine opens the same file, which makes the
// table the shared medium the tracker coordinates through.
type SQLiteStore struct {
	db       *sql.DB
	interval time.Duration

	mu      sync.Mutex
	closed  bool
	watches []*sqliteWatch
}

type sqliteWatch struct {
	done chan struct{}
	once sync.Once
}

func (w *sqliteWatch) stop() {
	w.once.Do(func() { close(w.done) })
}

// NewSQLiteStore creates a SQLiteStore on an open database. The schema is
// managed by shared.RunMigrations.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, interval: defaultWatchInterval}
}

// Get returns the value for key and whether the key exists.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set writes value under key, bumping the revision counter watchers observe.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_state (key, value, revision, updated_at)
		VALUES (?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = kv_state.revision + 1,
			updated_at = CURRENT_TIMESTAMP
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv_state WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Watch polls the revision counter for key and runs fn when it changes.
// A deleted key reads as revision zero, so deletion also notifies.
func (s *SQLiteStore) Watch(key string, fn func()) func() {
	w := &sqliteWatch{done: make(chan struct{})}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	s.watches = append(s.watches, w)
	s.mu.Unlock()

	go func() {
		last, _ := s.revision(key)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.done:
				return
			case <-ticker.C:
				rev, err := s.revision(key)
				if err != nil {
					continue
				}
				if rev != last {
					last = rev
					fn()
				}
			}
		}
	}()

	return w.stop
}

// Close stops all watcher goroutines. The database handle is owned by the caller.
func (s *SQLiteStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, w := range s.watches {
		w.stop()
	}
}

func (s *SQLiteStore) revision(key string) (int64, error) {
	var rev int64
	err := s.db.QueryRow("SELECT revision FROM kv_state WHERE key = ?", key).Scan(&rev)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rev, nil
}
