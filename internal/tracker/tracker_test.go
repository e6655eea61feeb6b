package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hkrewson/collectz/internal/models"
	"github.com/hkrewson/collectz/internal/services"
	"github.com/hkrewson/collectz/internal/shared"
	"github.com/hkrewson/collectz/internal/store"
)

type mockBackend struct {
	mockFetcher
	submitJob models.ImportJob
	submitErr error
}

func (b *mockBackend) SubmitImport(ctx context.Context, req services.ImportRequest) (models.ImportJob, error) {
	return b.submitJob, b.submitErr
}

func fastOptions() Options {
	opts := DefaultOptions()
	opts.Heartbeat = 20 * time.Millisecond
	opts.PollInterval = 15 * time.Millisecond
	opts.MinPollGap = 0
	return opts
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestTrackerSubmitFailureCreatesNoEntry(t *testing.T) {
	backend := &mockBackend{submitErr: errors.New("connection refused")}
	trk := New(store.NewMemoryStore(), backend, fastOptions(), testLogger())

	_, err := trk.SubmitJob(context.Background(), services.ImportRequest{Provider: models.ProviderPlex})
	if !errors.Is(err, shared.ErrSubmitFailed) {
		t.Errorf("error = %v, want ErrSubmitFailed", err)
	}
	if len(trk.Jobs()) != 0 {
		t.Error("failed submission left a ledger entry")
	}
}

func TestTrackerSubmitWithoutIDFails(t *testing.T) {
	backend := &mockBackend{submitJob: models.ImportJob{Status: models.JobQueued}}
	trk := New(store.NewMemoryStore(), backend, fastOptions(), testLogger())

	_, err := trk.SubmitJob(context.Background(), services.ImportRequest{Provider: models.ProviderPlex})
	if !errors.Is(err, shared.ErrSubmitFailed) {
		t.Errorf("error = %v, want ErrSubmitFailed for missing job id", err)
	}
}

func TestTrackerImportLifecycle(t *testing.T) {
	backend := &mockBackend{
		submitJob: models.ImportJob{ID: 42, Provider: models.ProviderCSVGeneric, Status: models.JobQueued},
	}
	backend.pages = [][]models.ImportJob{
		{{ID: 42, Status: models.JobRunning, Progress: &models.JobProgress{Processed: 3, Total: 10}}},
		{{ID: 42, Status: models.JobSucceeded, Summary: &models.JobSummary{Created: 7}}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trk := New(store.NewMemoryStore(), backend, fastOptions(), testLogger())

	var mu sync.Mutex
	var completed []models.ImportJob
	trk.OnJobCompleted(func(job models.ImportJob) {
		mu.Lock()
		completed = append(completed, job)
		mu.Unlock()
	})

	trk.Start(ctx)
	trk.SetForegrounded(true)

	jobID, err := trk.SubmitJob(ctx, services.ImportRequest{Provider: models.ProviderCSVGeneric, FilePath: "shelf.csv"})
	if err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}
	if jobID != 42 {
		t.Fatalf("jobID = %d, want 42", jobID)
	}

	jobs := trk.Jobs()
	if len(jobs) != 1 || jobs[0].Status != models.JobQueued || jobs[0].Provider != models.ProviderCSVGeneric {
		t.Fatalf("ledger after submit: %+v", jobs)
	}

	// The poll loop walks the job through running to succeeded.
	waitFor(t, func() bool {
		js := trk.Jobs()
		return len(js) == 1 && js[0].Status == models.JobSucceeded
	}, "job never reached succeeded through polling")

	final := trk.Jobs()[0]
	if final.Summary == nil || final.Summary.Created != 7 {
		t.Errorf("final summary = %+v, want created 7", final.Summary)
	}
	if final.Progress == nil || final.Progress.Processed != 3 {
		t.Errorf("intermediate progress lost: %+v", final.Progress)
	}

	// Later ticks re-deliver the terminal state; the callback stays one-shot.
	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(completed) != 1 {
		t.Fatalf("completion callback fired %d times, want once", len(completed))
	}
	if completed[0].ID != 42 || completed[0].Summary == nil || completed[0].Summary.Created != 7 {
		t.Errorf("completion payload = %+v", completed[0])
	}
}

func TestTrackerFollowerSeesLeaderUpdates(t *testing.T) {
	s := store.NewMemoryStore()
	backend := &mockBackend{
		submitJob: models.ImportJob{ID: 7, Provider: models.ProviderPlex, Status: models.JobQueued},
	}
	backend.pages = [][]models.ImportJob{
		{{ID: 7, Status: models.JobSucceeded, Summary: &models.JobSummary{Created: 2}}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	leader := New(s, backend, fastOptions(), testLogger())
	follower := New(s, &mockBackend{}, fastOptions(), testLogger())

	leader.Start(ctx)
	follower.Start(ctx)
	leader.SetForegrounded(true)

	if _, err := leader.SubmitJob(ctx, services.ImportRequest{Provider: models.ProviderPlex}); err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}

	// The follower never fetches; it learns everything through the shared
	// ledger key.
	waitFor(t, func() bool {
		js := follower.Jobs()
		return len(js) == 1 && js[0].Status == models.JobSucceeded
	}, "follower never observed the leader's reconciled state")

	if follower.Leader() {
		t.Error("follower believes it holds the lease")
	}
	if backendCalls := follower.api.(*mockBackend).callCount(); backendCalls != 0 {
		t.Errorf("follower fetched %d times, want 0", backendCalls)
	}
}
