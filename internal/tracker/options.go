package tracker

import (
	"time"

	"github.com/hkrewson/collectz/internal/shared"
)

// Store keys for the coordination state shared between processes.
const (
	ledgerKey   = "import.jobs"
	leaseKey    = "import.poll_lease"
	lastPollKey = "import.last_poll"
)

// Options holds the tracker's timing and sizing knobs.
type Options struct {
	Heartbeat    time.Duration // lease renewal interval
	Staleness    time.Duration // lease age after which takeover is allowed
	PollInterval time.Duration // gap between poll ticks
	MinPollGap   time.Duration // minimum gap between fetches across processes
	LedgerCap    int           // most recent jobs retained
	PageSize     int           // jobs fetched per poll
}

// DefaultOptions returns the reference timing: heartbeat 8s, staleness 25s
// (about three missed heartbeats), poll 10s, inter-process gap 6s.
func DefaultOptions() Options {
	return Options{
		Heartbeat:    8 * time.Second,
		Staleness:    25 * time.Second,
		PollInterval: 10 * time.Second,
		MinPollGap:   6 * time.Second,
		LedgerCap:    30,
		PageSize:     50,
	}
}

// OptionsFromConfig builds Options from the tracker section of the config
// file, falling back to defaults for unset values.
func OptionsFromConfig(c shared.TrackerConfig) Options {
	opts := DefaultOptions()
	if c.HeartbeatMS > 0 {
		opts.Heartbeat = c.Heartbeat()
	}
	if c.StalenessMS > 0 {
		opts.Staleness = c.Staleness()
	}
	if c.PollMS > 0 {
		opts.PollInterval = c.Poll()
	}
	if c.MinPollGapMS > 0 {
		opts.MinPollGap = c.MinPollGap()
	}
	if c.LedgerCap > 0 {
		opts.LedgerCap = c.LedgerCap
	}
	if c.PageSize > 0 {
		opts.PageSize = c.PageSize
	}
	return opts
}
