package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/hkrewson/collectz/internal/models"
	"github.com/hkrewson/collectz/internal/services"
	"github.com/hkrewson/collectz/internal/shared"
	"github.com/hkrewson/collectz/internal/store"
)

// Backend is the server surface the tracker consumes.
type Backend interface {
	SubmitImport(ctx context.Context, req services.ImportRequest) (models.ImportJob, error)
	ListJobs(ctx context.Context, limit int) ([]models.ImportJob, error)
}

// Tracker ties the ledger, coordinator, poller, and completion watcher into
// the surface the CLI and TUI consume.
type Tracker struct {
	store   store.Store
	api     Backend
	ledger  *Ledger
	coord   *Coordinator
	poller  *Poller
	watcher *CompletionWatcher
	logger  *log.Logger

	mu      sync.Mutex
	runCtx  context.Context
	stopFns []func()
}

// New builds a Tracker over the shared store and backend API.
func New(s store.Store, api Backend, opts Options, logger *log.Logger) *Tracker {
	ledger := NewLedger(s, opts.LedgerCap, logger)
	coord := NewCoordinator(s, opts, logger)
	poller := NewPoller(s, ledger, coord, api, opts, logger)
	watcher := NewCompletionWatcher()

	ledger.Subscribe(func() {
		watcher.Inspect(ledger.Jobs())
	})

	return &Tracker{
		store:   s,
		api:     api,
		ledger:  ledger,
		coord:   coord,
		poller:  poller,
		watcher: watcher,
		logger:  logger,
	}
}

// Start launches the heartbeat and the ledger watch, and resumes polling if
// the rehydrated ledger still holds unfinished jobs. It returns immediately;
// everything stops when ctx is done and the lease is released on the way out.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	t.runCtx = ctx
	t.mu.Unlock()

	go t.coord.Run(ctx)

	// Non-leader processes learn about the leader's reconciled state through
	// the ledger key rather than their own fetches.
	stop := t.store.Watch(ledgerKey, func() {
		t.ledger.Reload()
		t.poller.Kick(ctx)
	})
	t.mu.Lock()
	t.stopFns = append(t.stopFns, stop)
	t.mu.Unlock()

	go func() {
		<-ctx.Done()
		t.mu.Lock()
		fns := t.stopFns
		t.stopFns = nil
		t.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}()

	t.poller.Kick(ctx)
}

// SubmitJob submits an import to the backend and records the new job in the
// ledger. Submission failures are returned to the caller: unlike poll errors
// they block a requested action and the user needs to see them.
func (t *Tracker) SubmitJob(ctx context.Context, req services.ImportRequest) (int, error) {
	job, err := t.api.SubmitImport(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrSubmitFailed, err)
	}
	if job.ID == 0 {
		return 0, fmt.Errorf("%w: server returned no job id", shared.ErrSubmitFailed)
	}
	if job.Status == "" {
		job.Status = models.JobQueued
	}
	if job.Provider == "" {
		job.Provider = req.Provider
	}

	t.ledger.Upsert(job)
	t.poller.Kick(t.pollCtx(ctx))
	return job.ID, nil
}

// DismissJob removes a job from the ledger. Server state is unaffected.
func (t *Tracker) DismissJob(id int) {
	t.ledger.Dismiss(id)
}

// Jobs returns the tracked jobs, most recent first.
func (t *Tracker) Jobs() []models.ImportJob {
	return t.ledger.Jobs()
}

// Subscribe registers fn to run on every ledger change, for rendering a
// live status dock.
func (t *Tracker) Subscribe(fn func()) {
	t.ledger.Subscribe(fn)
}

// OnJobCompleted registers fn to run exactly once per job that reaches the
// succeeded state.
func (t *Tracker) OnJobCompleted(fn func(models.ImportJob)) {
	t.watcher.OnCompleted(fn)
}

// SetForegrounded reports focus changes from the host UI to the coordinator.
func (t *Tracker) SetForegrounded(fg bool) {
	t.coord.SetForegrounded(fg)
}

// Leader reports whether this process currently holds a fresh poll lease.
func (t *Tracker) Leader() bool {
	return t.coord.holdsFreshLease()
}

// pollCtx prefers the long-lived context from Start over a per-request one,
// so a submission made from a short-lived CLI context does not cancel the
// poll loop with it.
func (t *Tracker) pollCtx(fallback context.Context) context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.runCtx != nil {
		return t.runCtx
	}
	return fallback
}
