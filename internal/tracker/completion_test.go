package tracker

import (
	"testing"

	"github.com/hkrewson/collectz/internal/models"
)

func TestCompletionWatcherExactlyOnce(t *testing.T) {
	w := NewCompletionWatcher()

	var fired []int
	w.OnCompleted(func(job models.ImportJob) { fired = append(fired, job.ID) })

	succeeded := []models.ImportJob{{ID: 1, Status: models.JobSucceeded, Summary: &models.JobSummary{Created: 7}}}

	// Polling re-delivers terminal states on every tick.
	w.Inspect(succeeded)
	w.Inspect(succeeded)
	w.Inspect(succeeded)

	if len(fired) != 1 || fired[0] != 1 {
		t.Errorf("callback fired %d times for job 1, want exactly once: %v", len(fired), fired)
	}
}

func TestCompletionWatcherIgnoresActiveAndFailed(t *testing.T) {
	w := NewCompletionWatcher()

	var fired int
	w.OnCompleted(func(models.ImportJob) { fired++ })

	w.Inspect([]models.ImportJob{
		{ID: 1, Status: models.JobQueued},
		{ID: 2, Status: models.JobRunning},
		{ID: 3, Status: models.JobFailed, Error: "boom"},
	})

	if fired != 0 {
		t.Errorf("callback fired %d times for non-succeeded jobs", fired)
	}
}

func TestCompletionWatcherDistinctJobs(t *testing.T) {
	w := NewCompletionWatcher()

	var fired []int
	w.OnCompleted(func(job models.ImportJob) { fired = append(fired, job.ID) })

	w.Inspect([]models.ImportJob{{ID: 1, Status: models.JobSucceeded}})
	w.Inspect([]models.ImportJob{
		{ID: 1, Status: models.JobSucceeded},
		{ID: 2, Status: models.JobSucceeded},
	})

	if len(fired) != 2 || fired[0] != 1 || fired[1] != 2 {
		t.Errorf("fired = %v, want [1 2]", fired)
	}
}

func TestCompletionWatcherReentrantCallback(t *testing.T) {
	w := NewCompletionWatcher()

	var fired int
	w.OnCompleted(func(job models.ImportJob) {
		fired++
		// A callback re-inspecting the same ledger must not re-announce.
		if fired == 1 {
			w.Inspect([]models.ImportJob{job})
		}
	})

	w.Inspect([]models.ImportJob{{ID: 5, Status: models.JobSucceeded}})

	if fired != 1 {
		t.Errorf("reentrant inspection fired the callback %d times", fired)
	}
}

func TestCompletionWatcherMultipleCallbacks(t *testing.T) {
	w := NewCompletionWatcher()

	var first, second int
	w.OnCompleted(func(models.ImportJob) { first++ })
	w.OnCompleted(func(models.ImportJob) { second++ })

	w.Inspect([]models.ImportJob{{ID: 1, Status: models.JobSucceeded}})

	if first != 1 || second != 1 {
		t.Errorf("callbacks fired (%d, %d), want (1, 1)", first, second)
	}
}
