package tracker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hkrewson/collectz/internal/shared"
	"github.com/hkrewson/collectz/internal/store"
)

// leaseRecord is the coordination token in the shared store. At most one
// non-stale record exists at a time.
type leaseRecord struct {
	OwnerID   string `json:"owner_id"`
	ClaimedAt int64  `json:"claimed_at"` // unix milliseconds
}

// Coordinator elects the single process allowed to poll the server.
//
// Each process generates an owner ID once for its lifetime and competes for
// the lease with last-writer-wins claims. A lease older than the staleness
// threshold may be taken over by anyone; a live leader renews well inside
// that window via the heartbeat in [Coordinator.Run]. Only foregrounded
// processes claim, so a backgrounded TUI yields polling to an active one.
type Coordinator struct {
	store     store.Store
	logger    *log.Logger
	ownerID   string
	heartbeat time.Duration
	staleness time.Duration
	now       func() time.Time

	mu         sync.Mutex
	foreground bool
}

// NewCoordinator creates a Coordinator with a fresh owner ID. The process
// starts backgrounded; the host decides when it is active.
func NewCoordinator(s store.Store, opts Options, logger *log.Logger) *Coordinator {
	return &Coordinator{
		store:     s,
		logger:    logger,
		ownerID:   shared.GenerateID(),
		heartbeat: opts.Heartbeat,
		staleness: opts.Staleness,
		now:       time.Now,
	}
}

// OwnerID returns this process's lease identity.
func (c *Coordinator) OwnerID() string {
	return c.ownerID
}

// Foregrounded reports whether this process currently considers itself active.
func (c *Coordinator) Foregrounded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.foreground
}

// SetForegrounded records focus changes from the host. Gaining the
// foreground claims immediately; losing it releases our lease so another
// process can take over without waiting out the staleness window.
func (c *Coordinator) SetForegrounded(fg bool) {
	c.mu.Lock()
	if c.foreground == fg {
		c.mu.Unlock()
		return
	}
	c.foreground = fg
	c.mu.Unlock()

	if fg {
		c.Claim()
	} else {
		c.Release()
	}
}

// Claim attempts to take or renew the poll lease. It succeeds only when the
// process is foregrounded and the current lease is absent, stale, or already
// ours. On success the lease is rewritten with a fresh timestamp.
func (c *Coordinator) Claim() bool {
	if !c.Foregrounded() {
		return false
	}

	rec, ok := c.read()
	now := c.now()
	if ok && rec.OwnerID != c.ownerID && !c.stale(rec, now) {
		return false
	}

	data, err := json.Marshal(leaseRecord{OwnerID: c.ownerID, ClaimedAt: now.UnixMilli()})
	if err != nil {
		return false
	}
	if err := c.store.Set(context.Background(), leaseKey, data); err != nil {
		c.logger.Warn("failed to write poll lease", "error", err)
		return false
	}
	return true
}

// Release clears the lease if and only if we own it. Another process's lease
// is never touched.
func (c *Coordinator) Release() {
	rec, ok := c.read()
	if !ok || rec.OwnerID != c.ownerID {
		return
	}
	if err := c.store.Delete(context.Background(), leaseKey); err != nil {
		c.logger.Warn("failed to release poll lease", "error", err)
	}
}

// Run drives the heartbeat until ctx is done, then releases the lease.
// Lease-key changes made by other processes wake an eligible claimant
// immediately instead of waiting for its own heartbeat.
func (c *Coordinator) Run(ctx context.Context) {
	stop := c.store.Watch(leaseKey, func() {
		if c.Foregrounded() && !c.holdsFreshLease() {
			c.Claim()
		}
	})
	defer stop()

	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.Release()
			return
		case <-ticker.C:
			if c.Foregrounded() {
				c.Claim()
			}
		}
	}
}

// holdsFreshLease reports whether we own a lease that has not gone stale.
func (c *Coordinator) holdsFreshLease() bool {
	rec, ok := c.read()
	return ok && rec.OwnerID == c.ownerID && !c.stale(rec, c.now())
}

func (c *Coordinator) stale(rec leaseRecord, now time.Time) bool {
	return now.UnixMilli()-rec.ClaimedAt > c.staleness.Milliseconds()
}

func (c *Coordinator) read() (leaseRecord, bool) {
	data, ok, err := c.store.Get(context.Background(), leaseKey)
	if err != nil || !ok {
		return leaseRecord{}, false
	}
	var rec leaseRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// A garbled lease is treated as absent and overwritten by the next claim.
		return leaseRecord{}, false
	}
	return rec, true
}
