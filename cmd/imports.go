package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hkrewson/collectz/internal/models"
	"github.com/hkrewson/collectz/internal/services"
	"github.com/hkrewson/collectz/internal/shared"
	"github.com/urfave/cli/v3"
)

// ImportPlex submits a server-side Plex library import.
func (r *Runner) ImportPlex(ctx context.Context, cmd *cli.Command) error {
	if err := r.openTracker(ctx); err != nil {
		return err
	}

	options := map[string]string{}
	if section := cmd.String("section"); section != "" {
		options["section"] = section
	}

	jobID, err := r.trk.SubmitJob(ctx, services.ImportRequest{
		Provider: models.ProviderPlex,
		Options:  options,
	})
	if err != nil {
		return err
	}

	r.writePlain("Import started: job #%d (plex)\n", jobID)

	if cmd.Bool("wait") {
		return r.waitForJob(ctx, jobID)
	}
	return nil
}

// ImportCSV uploads a CSV export and submits it as an import job. The dialect
// is sniffed from the header row unless --dialect forces one.
func (r *Runner) ImportCSV(ctx context.Context, cmd *cli.Command) error {
	filePath := cmd.StringArg("file")
	if filePath == "" {
		return fmt.Errorf("%w: CSV file path", shared.ErrMissingArgument)
	}
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("%w: cannot read %s", shared.ErrInvalidInput, filePath)
	}

	var provider models.Provider
	var err error
	if dialect := cmd.String("dialect"); dialect != "" {
		provider, err = services.DialectFromFlag(dialect)
	} else {
		provider, err = services.DetectDialectFile(filePath)
	}
	if err != nil {
		return err
	}

	if err := r.openTracker(ctx); err != nil {
		return err
	}

	jobID, err := r.trk.SubmitJob(ctx, services.ImportRequest{
		Provider: provider,
		FilePath: filePath,
	})
	if err != nil {
		return err
	}

	r.writePlain("Import started: job #%d (%s)\n", jobID, provider)

	if cmd.Bool("wait") {
		return r.waitForJob(ctx, jobID)
	}
	return nil
}

// waitForJob keeps the process foregrounded until the job settles or the user
// interrupts. Foregrounding makes this process compete for the poll lease, so
// progress keeps flowing even when no other instance is running.
func (r *Runner) waitForJob(ctx context.Context, jobID int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.trk.SetForegrounded(true)
	defer r.trk.SetForegrounded(false)

	changes := make(chan struct{}, 1)
	r.trk.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	var lastLine string
	for {
		for _, job := range r.trk.Jobs() {
			if job.ID != jobID {
				continue
			}

			line := describeJobLine(job)
			if line != lastLine {
				r.writePlain("%s\n", line)
				lastLine = line
			}

			if job.Status == models.JobFailed {
				return fmt.Errorf("import failed: %s", job.Error)
			}
			if job.Status == models.JobSucceeded {
				return nil
			}
		}

		select {
		case <-changes:
		case <-ctx.Done():
			r.writePlain("Detached; the import continues server-side. Check 'collectz jobs list'.\n")
			return nil
		}
	}
}

func describeJobLine(job models.ImportJob) string {
	switch job.Status {
	case models.JobRunning:
		if job.Progress != nil && job.Progress.Total > 0 {
			return fmt.Sprintf("#%d running: %d/%d", job.ID, job.Progress.Processed, job.Progress.Total)
		}
		return fmt.Sprintf("#%d running", job.ID)
	case models.JobSucceeded:
		if job.Summary != nil {
			return fmt.Sprintf("#%d succeeded: %d created, %d updated, %d errors",
				job.ID, job.Summary.Created, job.Summary.Updated, job.Summary.ErrorCount)
		}
		return fmt.Sprintf("#%d succeeded", job.ID)
	case models.JobFailed:
		return fmt.Sprintf("#%d failed: %s", job.ID, job.Error)
	default:
		return fmt.Sprintf("#%d %s", job.ID, job.Status)
	}
}
