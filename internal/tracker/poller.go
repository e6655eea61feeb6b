package tracker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hkrewson/collectz/internal/models"
	"github.com/hkrewson/collectz/internal/store"
	"golang.org/x/time/rate"
)

// JobFetcher fetches the most recent import jobs from the catalog server.
type JobFetcher interface {
	ListJobs(ctx context.Context, limit int) ([]models.ImportJob, error)
}

// Poller is the timed fetch loop. It runs only while this process holds the
// poll lease and the ledger holds non-terminal jobs; when every tracked job
// is terminal the loop parks itself until the next submission kicks it.
type Poller struct {
	store    store.Store
	ledger   *Ledger
	coord    *Coordinator
	fetch    JobFetcher
	logger   *log.Logger
	interval time.Duration
	minGap   time.Duration
	pageSize int
	limiter  *rate.Limiter
	now      func() time.Time

	mu      sync.Mutex
	running bool
}

// NewPoller wires the fetch loop. The local limiter bounds this process's
// own request rate on top of the cross-process timestamp guard.
func NewPoller(s store.Store, ledger *Ledger, coord *Coordinator, fetch JobFetcher, opts Options, logger *log.Logger) *Poller {
	return &Poller{
		store:    s,
		ledger:   ledger,
		coord:    coord,
		fetch:    fetch,
		logger:   logger,
		interval: opts.PollInterval,
		minGap:   opts.MinPollGap,
		pageSize: opts.PageSize,
		limiter:  rate.NewLimiter(rate.Every(opts.MinPollGap), 1),
		now:      time.Now,
	}
}

// Kick starts the loop if it is parked and there is anything to poll.
// Safe to call on every submission and ledger reload.
func (p *Poller) Kick(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	if !p.ledger.HasActive() {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if !p.ledger.HasActive() {
			p.park()
			return
		}
		p.tick(ctx)

		select {
		case <-ctx.Done():
			p.park()
			return
		case <-ticker.C:
		}
	}
}

func (p *Poller) park() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// tick performs one poll attempt. Leadership is verified first on every
// tick, never assumed from the previous one. All fetch errors are swallowed:
// auth and rate-limit blips are transient here and the next tick retries.
func (p *Poller) tick(ctx context.Context) {
	if !p.coord.Claim() {
		return
	}

	if !p.limiter.Allow() {
		return
	}

	now := p.now()
	if last, ok := p.lastPoll(ctx); ok && now.Sub(last) < p.minGap {
		return
	}
	p.recordPoll(ctx, now)

	jobs, err := p.fetch.ListJobs(ctx, p.pageSize)
	if err != nil {
		p.logger.Debug("job poll failed", "error", err)
		return
	}

	p.ledger.Reconcile(jobs)
}

// lastPoll reads the timestamp of the most recent fetch by any process.
// The read-then-write window means two processes racing the boundary can
// both fetch; that costs one extra request and heals within a heartbeat.
func (p *Poller) lastPoll(ctx context.Context) (time.Time, bool) {
	data, ok, err := p.store.Get(ctx, lastPollKey)
	if err != nil || !ok {
		return time.Time{}, false
	}
	var millis int64
	if err := json.Unmarshal(data, &millis); err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

func (p *Poller) recordPoll(ctx context.Context, now time.Time) {
	data, err := json.Marshal(now.UnixMilli())
	if err != nil {
		return
	}
	if err := p.store.Set(ctx, lastPollKey, data); err != nil {
		p.logger.Debug("failed to record poll timestamp", "error", err)
	}
}
