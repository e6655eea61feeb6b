// Package models defines the domain entities shared across the collectZ client.
//
// The package contains two categories of types:
//
// 1. Import tracking: server-assigned job records mirrored into the local ledger
//   - [ImportJob] : One asynchronous import operation with status and progress
//   - [JobProgress] : Running counters reported by the import worker
//   - [JobSummary] : Final counts, present only once a job is terminal
//
// 2. Catalog entities: rows of the user's collection
//   - [Comic] : A single catalogued issue, cached locally from the server
//
// ImportJob carries an explicit merge function, [MergeJob], because ledger
// reconciliation repeatedly layers partial server responses over existing
// records and must never regress a terminal status or drop fields the
// server omitted.
package models
