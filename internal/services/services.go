// package services implements the HTTP client for the collectZ catalog API.
//
// Authentication is a bearer token issued by the server; CSRF and session
// handling live entirely server-side. The client maps 401 and 429 responses
// to sentinel errors so the background poller can tell transient refusals
// apart from real failures.
package services

import (
	"context"

	"github.com/hkrewson/collectz/internal/models"
)

// API defines the catalog server surface consumed by the tracker and CLI.
type API interface {
	// SubmitImport starts an asynchronous import job on the server.
	// The returned job carries the server-assigned ID.
	SubmitImport(ctx context.Context, req ImportRequest) (models.ImportJob, error)

	// ListJobs retrieves the most recent import jobs, newest first.
	ListJobs(ctx context.Context, limit int) ([]models.ImportJob, error)

	// ListComics retrieves the user's catalog for the local cache.
	ListComics(ctx context.Context) ([]models.Comic, error)
}

// ImportRequest describes one import submission.
type ImportRequest struct {
	Provider models.Provider
	// FilePath names the CSV file to upload; empty for providers that pull
	// server-side (Plex).
	FilePath string
	// Options are provider-specific fields, e.g. the Plex library section.
	Options map[string]string
}
