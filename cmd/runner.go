package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hkrewson/collectz/internal/repositories"
	"github.com/hkrewson/collectz/internal/services"
	"github.com/hkrewson/collectz/internal/shared"
	"github.com/hkrewson/collectz/internal/store"
	"github.com/hkrewson/collectz/internal/tracker"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, shared store, and tracker are opened lazily because setup has
// to run before any of them exists.
type Runner struct {
	config *shared.Config
	api    services.API
	logger *log.Logger
	output io.Writer

	db     *sql.DB
	kv     *store.SQLiteStore
	repo   *repositories.ComicRepository
	trk    *tracker.Tracker
	cancel context.CancelFunc
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	API    services.API
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		api:    opts.API,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, importCommand, jobsCommand, shelfCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openTracker wires the database, shared key-value store, and tracker, and
// starts the background coordination loops. Idempotent across command actions.
func (r *Runner) openTracker(ctx context.Context) error {
	if r.trk != nil {
		return nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database (run 'collectz setup' first): %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	opts := tracker.OptionsFromConfig(r.config.Tracker)

	r.db = db
	r.kv = store.NewSQLiteStore(db)
	r.repo = repositories.NewComicRepository(db)
	r.trk = tracker.New(r.kv, r.api, opts, r.logger)

	trackerCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.trk.Start(trackerCtx)

	return nil
}

// Close stops background loops and releases the database.
func (r *Runner) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	if r.kv != nil {
		r.kv.Close()
	}
	if r.db != nil {
		r.db.Close()
	}
}

// SetLogger swaps the runner's logger, for commands that must keep the
// terminal clean.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
