package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// JobsList prints the tracked import jobs, newest first.
func (r *Runner) JobsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openTracker(ctx); err != nil {
		return err
	}

	jobs := r.trk.Jobs()

	if cmd.Bool("json") {
		return r.writeJSON(jobs, cmd.Bool("pretty"))
	}

	if len(jobs) == 0 {
		return r.writePlain("No tracked imports.\n")
	}

	for _, job := range jobs {
		r.writePlain("%s (%s)\n", describeJobLine(job), job.Provider)
	}
	return nil
}

// JobsDismiss removes one job from the ledger. Server state is untouched.
func (r *Runner) JobsDismiss(ctx context.Context, cmd *cli.Command) error {
	if err := r.openTracker(ctx); err != nil {
		return err
	}

	id := cmd.Int("id")
	r.trk.DismissJob(int(id))
	r.writePlain("Dismissed job #%d\n", id)
	return nil
}

// JobsWatch runs a headless watcher until interrupted. The watcher counts as
// foregrounded the whole time, so it competes for the poll lease and keeps
// the shared ledger fresh for every other instance.
func (r *Runner) JobsWatch(ctx context.Context, cmd *cli.Command) error {
	if err := r.openTracker(ctx); err != nil {
		return err
	}

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

	r.logger.Info("watching import jobs", "database", r.config.Database.Path)

	for {
		select {
		case <-changes:
			for _, job := range r.trk.Jobs() {
				r.logger.Info("ledger update",
					"job", job.ID,
					"provider", job.Provider,
					"status", job.Status,
				)
			}
		case <-ctx.Done():
			r.logger.Info("watcher stopped")
			return nil
		}
	}
}
