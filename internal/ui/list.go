package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/hkrewson/collectz/internal/models"
)

var (
	_ list.Item = comicItem{}
	_ list.Item = jobItem{}
)

// comicItem wraps [models.Comic] to implement [list.Item].
type comicItem struct {
	comic models.Comic
}

func (i comicItem) FilterValue() string { return i.comic.Series + " " + i.comic.Title }

func (i comicItem) Title() string {
	if i.comic.Issue != "" {
		return fmt.Sprintf("%s #%s", i.comic.Series, i.comic.Issue)
	}
	return i.comic.Series
}

func (i comicItem) Description() string {
	desc := i.comic.Title
	if i.comic.Publisher != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.comic.Publisher)
	}
	return desc
}

// jobItem wraps [models.ImportJob] to implement [list.Item].
type jobItem struct {
	job models.ImportJob
}

func (i jobItem) FilterValue() string { return string(i.job.Provider) }

func (i jobItem) Title() string {
	return fmt.Sprintf("#%d %s", i.job.ID, i.job.Provider)
}

func (i jobItem) Description() string {
	return describeJob(i.job)
}

// describeJob renders the single-line status used by both the jobs list and
// the status dock.
func describeJob(job models.ImportJob) string {
	switch job.Status {
	case models.JobRunning:
		if job.Progress != nil && job.Progress.Total > 0 {
			return fmt.Sprintf("running %d/%d", job.Progress.Processed, job.Progress.Total)
		}
		return "running"
	case models.JobSucceeded:
		if job.Summary != nil {
			return fmt.Sprintf("done: %d created, %d updated, %d errors",
				job.Summary.Created, job.Summary.Updated, job.Summary.ErrorCount)
		}
		return "done"
	case models.JobFailed:
		if job.Error != "" {
			return fmt.Sprintf("failed: %s", job.Error)
		}
		return "failed"
	default:
		return string(job.Status)
	}
}
