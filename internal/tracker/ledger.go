package tracker

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/hkrewson/collectz/internal/models"
	"github.com/hkrewson/collectz/internal/store"
)

// Ledger is the ordered, capped list of import jobs the user is tracking.
//
// It is the single source of truth for the job dock: poll results are merged
// into it, never shown directly. Every mutation is written through to the
// shared store so the ledger survives restarts and is visible to sibling
// processes. Entries leave only by explicit dismissal or cap eviction.
type Ledger struct {
	store  store.Store
	logger *log.Logger
	cap    int

	mu   sync.Mutex
	jobs []models.ImportJob

	subMu sync.Mutex
	subs  []func()
}

// NewLedger creates a Ledger rehydrated from the shared store. Malformed or
// missing persisted state starts the ledger empty; it never fails.
func NewLedger(s store.Store, cap int, logger *log.Logger) *Ledger {
	l := &Ledger{store: s, logger: logger, cap: cap}

	data, ok, err := s.Get(context.Background(), ledgerKey)
	if err != nil {
		logger.Warn("failed to read job ledger, starting empty", "error", err)
		return l
	}
	if !ok {
		return l
	}
	var jobs []models.ImportJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		logger.Warn("discarding malformed job ledger", "error", err)
		return l
	}
	if len(jobs) > cap {
		jobs = jobs[:cap]
	}
	l.jobs = jobs
	return l
}

// Upsert inserts job at the front if its ID is new, otherwise merges the
// job's fields into the existing record and moves it to the front. The
// ledger is truncated to its cap afterwards. Applying the same upsert twice
// leaves the ledger unchanged the second time.
func (l *Ledger) Upsert(job models.ImportJob) {
	if job.ID == 0 {
		return
	}

	l.mu.Lock()
	changed := l.applyLocked(job)
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	if changed {
		l.persist(snapshot)
		l.notify()
	}
}

// Reconcile merges fetched server state into the ledger. Only jobs already
// present are touched: the server list may contain jobs from other devices,
// and it may have expired old jobs, neither of which changes what this user
// is tracking.
func (l *Ledger) Reconcile(fetched []models.ImportJob) {
	l.mu.Lock()
	changed := false
	for _, f := range fetched {
		if l.indexLocked(f.ID) < 0 {
			continue
		}
		if l.applyLocked(f) {
			changed = true
		}
	}
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	if changed {
		l.persist(snapshot)
		l.notify()
	}
}

// Dismiss removes the job with the given ID. No-op if absent.
func (l *Ledger) Dismiss(id int) {
	l.mu.Lock()
	idx := l.indexLocked(id)
	if idx < 0 {
		l.mu.Unlock()
		return
	}
	l.jobs = append(l.jobs[:idx], l.jobs[idx+1:]...)
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	l.persist(snapshot)
	l.notify()
}

// Jobs returns a copy of the ledger, most recently touched or inserted first.
func (l *Ledger) Jobs() []models.ImportJob {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// HasActive reports whether any entry still needs polling.
func (l *Ledger) HasActive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, j := range l.jobs {
		if j.Active() {
			return true
		}
	}
	return false
}

// Reload re-reads the ledger from the shared store, picking up writes made
// by the polling leader in another process. Corrupt state is ignored.
func (l *Ledger) Reload() {
	data, ok, err := l.store.Get(context.Background(), ledgerKey)
	if err != nil || !ok {
		return
	}
	var jobs []models.ImportJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		l.logger.Warn("ignoring malformed job ledger on reload", "error", err)
		return
	}
	if len(jobs) > l.cap {
		jobs = jobs[:l.cap]
	}

	l.mu.Lock()
	if jobListEqual(l.jobs, jobs) {
		l.mu.Unlock()
		return
	}
	l.jobs = jobs
	l.mu.Unlock()

	l.notify()
}

// Subscribe registers fn to run after every ledger change.
func (l *Ledger) Subscribe(fn func()) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	l.subs = append(l.subs, fn)
}

// applyLocked performs the upsert and reports whether anything changed.
// An existing entry moves to the front only when the merge changed it.
func (l *Ledger) applyLocked(job models.ImportJob) bool {
	idx := l.indexLocked(job.ID)
	if idx < 0 {
		l.jobs = append([]models.ImportJob{job}, l.jobs...)
		if len(l.jobs) > l.cap {
			l.jobs = l.jobs[:l.cap]
		}
		return true
	}

	merged := models.MergeJob(l.jobs[idx], job)
	if jobEqual(l.jobs[idx], merged) {
		return false
	}
	l.jobs = append(l.jobs[:idx], l.jobs[idx+1:]...)
	l.jobs = append([]models.ImportJob{merged}, l.jobs...)
	return true
}

func (l *Ledger) indexLocked(id int) int {
	for i, j := range l.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) snapshotLocked() []models.ImportJob {
	out := make([]models.ImportJob, len(l.jobs))
	copy(out, l.jobs)
	return out
}

// persist writes the snapshot through to the shared store. Failures are
// logged and swallowed: a missed write costs durability, not correctness,
// and the next mutation retries.
func (l *Ledger) persist(snapshot []models.ImportJob) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		l.logger.Warn("failed to encode job ledger", "error", err)
		return
	}
	if err := l.store.Set(context.Background(), ledgerKey, data); err != nil {
		l.logger.Warn("failed to persist job ledger", "error", err)
	}
}

func (l *Ledger) notify() {
	l.subMu.Lock()
	subs := make([]func(), len(l.subs))
	copy(subs, l.subs)
	l.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

func jobEqual(a, b models.ImportJob) bool {
	if a.ID != b.ID || a.Provider != b.Provider || a.Status != b.Status || a.Error != b.Error {
		return false
	}
	if (a.Progress == nil) != (b.Progress == nil) {
		return false
	}
	if a.Progress != nil && *a.Progress != *b.Progress {
		return false
	}
	if (a.Summary == nil) != (b.Summary == nil) {
		return false
	}
	if a.Summary != nil {
		if a.Summary.Created != b.Summary.Created ||
			a.Summary.Updated != b.Summary.Updated ||
			a.Summary.ErrorCount != b.Summary.ErrorCount {
			return false
		}
		if (a.Summary.AuditRows == nil) != (b.Summary.AuditRows == nil) {
			return false
		}
		if a.Summary.AuditRows != nil && *a.Summary.AuditRows != *b.Summary.AuditRows {
			return false
		}
	}
	return true
}

func jobListEqual(a, b []models.ImportJob) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !jobEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
