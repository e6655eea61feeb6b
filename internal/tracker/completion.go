package tracker

import (
	"sync"

	"github.com/hkrewson/collectz/internal/models"
)

// CompletionWatcher fires a one-shot callback the first time a job is seen
// in the succeeded state. Polling re-delivers terminal states on every tick,
// so the watcher remembers which IDs it has already announced; the set grows
// for the process lifetime and is deliberately not persisted (a restart may
// announce a completion once more, never twice).
//
// Failed jobs never fire the callback: failure is rendered from the ledger,
// not treated as a completion.
type CompletionWatcher struct {
	mu        sync.Mutex
	seen      map[int]bool
	callbacks []func(models.ImportJob)
}

// NewCompletionWatcher creates an empty watcher.
func NewCompletionWatcher() *CompletionWatcher {
	return &CompletionWatcher{seen: make(map[int]bool)}
}

// OnCompleted registers fn to run once per newly succeeded job.
func (w *CompletionWatcher) OnCompleted(fn func(models.ImportJob)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Inspect diffs the current ledger contents against the announced set.
// IDs are marked before any callback runs, so a callback that mutates the
// ledger reentrantly cannot cause a second announcement.
func (w *CompletionWatcher) Inspect(jobs []models.ImportJob) {
	var fresh []models.ImportJob

	w.mu.Lock()
	for _, job := range jobs {
		if job.Status == models.JobSucceeded && !w.seen[job.ID] {
			w.seen[job.ID] = true
			fresh = append(fresh, job)
		}
	}
	callbacks := make([]func(models.ImportJob), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, job := range fresh {
		for _, fn := range callbacks {
			fn(job)
		}
	}
}
