// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/hkrewson/collectz/internal/models"
	"github.com/hkrewson/collectz/internal/services"
)

// MockAPI is a test double for [services.API].
//
// Each call appends to the matching call log under a mutex so tests can drive
// it from poller goroutines. Responses are scripted: ListJobs pops from
// JobPages one page per call, repeating the last page when the script runs
// out.
type MockAPI struct {
	mu sync.Mutex

	SubmitJob models.ImportJob
	SubmitErr error
	JobPages  [][]models.ImportJob
	ListErr   error
	Comics    []models.Comic
	ComicsErr error

	SubmitCalls []services.ImportRequest
	ListCalls   int
}

func (m *MockAPI) SubmitImport(ctx context.Context, req services.ImportRequest) (models.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmitCalls = append(m.SubmitCalls, req)
	return m.SubmitJob, m.SubmitErr
}

func (m *MockAPI) ListJobs(ctx context.Context, limit int) ([]models.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if len(m.JobPages) == 0 {
		return nil, nil
	}
	page := m.JobPages[0]
	if len(m.JobPages) > 1 {
		m.JobPages = m.JobPages[1:]
	}
	return page, nil
}

func (m *MockAPI) ListComics(ctx context.Context) ([]models.Comic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Comics, m.ComicsErr
}

// ListCount returns how many times ListJobs has been called.
func (m *MockAPI) ListCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListCalls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
