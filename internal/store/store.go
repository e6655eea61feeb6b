// Package store abstracts the durable key/value state shared between
// collectz processes.
//
// The import tracker coordinates entirely through this interface: the job
// ledger, the poll lease, and the last-poll timestamp are all rows in the
// shared store. Watch notifications are best-effort; heartbeat timers in the
// tracker are the correctness backstop, not the notifications.
//
// [SQLiteStore] backs the real client with the local database. [MemoryStore]
// serves tests and implements identical semantics in-process.
package store

import "context"

// Store is durable mutable state shared between processes.
type Store interface {
	// Get returns the value for key and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes value under key with last-writer-wins semantics.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Watch registers fn to run after the value under key may have changed.
	// Delivery is best-effort: notifications can be coalesced or missed.
	// The returned function cancels the watch.
	Watch(key string, fn func()) (stop func())
}
