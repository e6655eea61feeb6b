// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI shows the comic shelf with a live import status dock:
//  1. [ShelfView] : Browse the locally cached collection, sorted by issue
//  2. [JobsView] : Inspect and dismiss import jobs
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via typed msg structs.
// Ledger changes flow through a channel from the tracker subscription, so the
// status dock refreshes without the UI polling anything itself. Terminal focus
// reporting drives foreground tracking: only a focused shelf competes for the
// background poll lease.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, d, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
