package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hkrewson/collectz/internal/shared"
	"github.com/hkrewson/collectz/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive shelf with the live import status dock.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/collectz-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.openTracker(ctx); err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.api, r.trk, r.repo)
	// Focus reporting drives the foreground flag, which decides whether this
	// instance competes for the poll lease.
	p := tea.NewProgram(model, tea.WithReportFocus())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
