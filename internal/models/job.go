package models

// Provider identifies the source an import job pulls from.
type Provider string

const (
	ProviderPlex         Provider = "plex"
	ProviderCSVGeneric   Provider = "csv_generic"
	ProviderCSVDelicious Provider = "csv_delicious"
	ProviderCSVCalibre   Provider = "csv_calibre"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderPlex, ProviderCSVGeneric, ProviderCSVDelicious, ProviderCSVCalibre:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of an import job.
//
// Transitions are monotonic along queued -> running -> {succeeded | failed};
// a job never leaves a terminal state.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the status is final.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// rank orders statuses along the lifecycle so merges can tell progress from
// regression. Both terminal states share a rank because neither follows the other.
func (s JobStatus) rank() int {
	switch s {
	case JobQueued:
		return 0
	case JobRunning:
		return 1
	case JobSucceeded, JobFailed:
		return 2
	}
	return -1
}

// JobProgress holds the running counters reported by the import worker.
// All counters are monotonic within a job's lifetime.
type JobProgress struct {
	Processed  int `json:"processed"`
	Total      int `json:"total"`
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Skipped    int `json:"skipped"`
	ErrorCount int `json:"error_count"`
}

// JobSummary holds final counts, present only once a job is terminal.
type JobSummary struct {
	Created    int  `json:"created"`
	Updated    int  `json:"updated"`
	ErrorCount int  `json:"error_count"`
	AuditRows  *int `json:"audit_rows,omitempty"`
}

// ImportJob is one asynchronous import operation tracked by the client.
// The ID is server-assigned and immutable.
type ImportJob struct {
	ID       int          `json:"id"`
	Provider Provider     `json:"provider"`
	Status   JobStatus    `json:"status"`
	Progress *JobProgress `json:"progress,omitempty"`
	Summary  *JobSummary  `json:"summary,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Active reports whether the job still needs polling.
func (j ImportJob) Active() bool {
	return j.Status == JobQueued || j.Status == JobRunning
}

// MergeJob layers src over dst field by field: fields present in src
// overwrite, absent fields are preserved. The status only moves forward
// along the lifecycle; once dst is terminal no src value changes it, and the
// summary and error belonging to the kept status are retained with it.
//
// Merging the same src twice yields the same result, which makes ledger
// upserts idempotent.
func MergeJob(dst, src ImportJob) ImportJob {
	out := dst

	if src.Provider != "" {
		out.Provider = src.Provider
	}
	if src.Progress != nil {
		p := *src.Progress
		out.Progress = &p
	}

	if src.Status != "" && src.Status.rank() > dst.Status.rank() {
		out.Status = src.Status
	}

	// Summary and error travel with the terminal status that produced them.
	if out.Status.Terminal() && !dst.Status.Terminal() {
		if src.Summary != nil {
			s := *src.Summary
			out.Summary = &s
		}
		out.Error = src.Error
	} else if out.Status == dst.Status && out.Status == src.Status {
		if src.Summary != nil {
			s := *src.Summary
			out.Summary = &s
		}
		if src.Error != "" {
			out.Error = src.Error
		}
	}

	return out
}
