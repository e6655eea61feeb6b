package models

import "testing"

func TestMergeJobStatusMonotonic(t *testing.T) {
	tests := []struct {
		name string
		dst  JobStatus
		src  JobStatus
		want JobStatus
	}{
		{"queued advances to running", JobQueued, JobRunning, JobRunning},
		{"running advances to succeeded", JobRunning, JobSucceeded, JobSucceeded},
		{"running advances to failed", JobRunning, JobFailed, JobFailed},
		{"queued jumps straight to succeeded", JobQueued, JobSucceeded, JobSucceeded},
		{"running never regresses to queued", JobRunning, JobQueued, JobRunning},
		{"succeeded never regresses to running", JobSucceeded, JobRunning, JobSucceeded},
		{"succeeded never becomes failed", JobSucceeded, JobFailed, JobSucceeded},
		{"failed never becomes succeeded", JobFailed, JobSucceeded, JobFailed},
		{"empty status is ignored", JobRunning, "", JobRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeJob(ImportJob{ID: 1, Status: tt.dst}, ImportJob{ID: 1, Status: tt.src})
			if got.Status != tt.want {
				t.Errorf("MergeJob status = %q, want %q", got.Status, tt.want)
			}
		})
	}
}

func TestMergeJobPreservesAbsentFields(t *testing.T) {
	dst := ImportJob{
		ID:       7,
		Provider: ProviderCSVGeneric,
		Status:   JobRunning,
		Progress: &JobProgress{Processed: 3, Total: 10},
	}

	got := MergeJob(dst, ImportJob{ID: 7, Status: JobRunning})

	if got.Provider != ProviderCSVGeneric {
		t.Errorf("provider lost in merge: %q", got.Provider)
	}
	if got.Progress == nil || got.Progress.Processed != 3 {
		t.Error("progress lost when src carried none")
	}
}

func TestMergeJobSummaryTravelsWithTerminalTransition(t *testing.T) {
	dst := ImportJob{ID: 2, Status: JobRunning, Progress: &JobProgress{Processed: 10, Total: 10}}
	src := ImportJob{ID: 2, Status: JobSucceeded, Summary: &JobSummary{Created: 7}}

	got := MergeJob(dst, src)

	if got.Status != JobSucceeded {
		t.Fatalf("status = %q, want succeeded", got.Status)
	}
	if got.Summary == nil || got.Summary.Created != 7 {
		t.Error("summary did not arrive with the terminal transition")
	}
}

func TestMergeJobKeepsTerminalSummaryOnRegression(t *testing.T) {
	dst := ImportJob{ID: 3, Status: JobFailed, Error: "disk full"}
	src := ImportJob{ID: 3, Status: JobRunning, Progress: &JobProgress{Processed: 1}}

	got := MergeJob(dst, src)

	if got.Status != JobFailed {
		t.Fatalf("terminal status regressed to %q", got.Status)
	}
	if got.Error != "disk full" {
		t.Errorf("terminal error lost: %q", got.Error)
	}
}

func TestMergeJobIdempotent(t *testing.T) {
	dst := ImportJob{ID: 4, Provider: ProviderPlex, Status: JobQueued}
	src := ImportJob{ID: 4, Status: JobRunning, Progress: &JobProgress{Processed: 5, Total: 9}}

	once := MergeJob(dst, src)
	twice := MergeJob(once, src)

	if once.Status != twice.Status || once.Provider != twice.Provider {
		t.Error("repeated merge changed scalar fields")
	}
	if *once.Progress != *twice.Progress {
		t.Error("repeated merge changed progress")
	}
}

func TestJobStatusTerminal(t *testing.T) {
	if JobQueued.Terminal() || JobRunning.Terminal() {
		t.Error("active statuses reported terminal")
	}
	if !JobSucceeded.Terminal() || !JobFailed.Terminal() {
		t.Error("terminal statuses not reported terminal")
	}
}

func TestProviderValid(t *testing.T) {
	for _, p := range []Provider{ProviderPlex, ProviderCSVGeneric, ProviderCSVDelicious, ProviderCSVCalibre} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if Provider("goodreads").Valid() {
		t.Error("unknown provider reported valid")
	}
}
