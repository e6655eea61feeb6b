// Package tracker implements client-side tracking of asynchronous import jobs.
//
// The catalog server runs imports (Plex sync, CSV uploads) in a background
// worker and exposes only submit and list endpoints; there is no push
// channel. The tracker observes job progress by polling, with three rules
// that keep multiple collectz processes on one machine well behaved:
//
//  1. [Ledger] : a capped, durable list of the jobs this user cares about,
//     persisted to the shared store so it survives restarts and is visible
//     to every process.
//  2. [Coordinator] : leader election over the shared store. Exactly one
//     foregrounded process holds the poll lease at a time; heartbeats renew
//     it and staleness lets a survivor take over from a crashed leader.
//  3. [Poller] : the timed fetch loop, active only in the leader and only
//     while the ledger holds non-terminal jobs. Fetched state is merged
//     field-by-field into the ledger, never replacing it wholesale.
//
// [CompletionWatcher] diffs ledger changes against the set of jobs already
// announced and fires the registered completion callback exactly once per
// job, even though polling re-delivers terminal states on every tick.
//
// All coordination state lives under three store keys: the job ledger, the
// poll lease, and the shared last-poll timestamp. Everything here degrades
// to "stale data" rather than failing: poll errors are swallowed, corrupt
// persisted state starts the ledger empty, and a missed watch notification
// is recovered by the next heartbeat or tick.
package tracker
