package main

import (
	"context"

	"github.com/hkrewson/collectz/internal/catalog"
	"github.com/hkrewson/collectz/internal/formatter"
	"github.com/hkrewson/collectz/internal/models"
	"github.com/urfave/cli/v3"
)

// ShelfList prints the collection sorted by series and issue number.
func (r *Runner) ShelfList(ctx context.Context, cmd *cli.Command) error {
	comics, err := r.loadShelf(ctx, cmd.String("series"), cmd.Bool("cached"))
	if err != nil {
		return err
	}

	catalog.SortComics(comics)

	if cmd.Bool("json") {
		return r.writeJSON(comics, cmd.Bool("pretty"))
	}

	if len(comics) == 0 {
		return r.writePlain("Shelf is empty. Run 'collectz import' to fill it.\n")
	}

	lastSeries := ""
	for _, comic := range comics {
		if comic.Series != lastSeries {
			r.writePlainln("%s", comic.Series)
			lastSeries = comic.Series
		}
		issue := comic.Issue
		if issue == "" {
			issue = "-"
		}
		r.writePlain("  #%-8s %s\n", issue, comic.Title)
	}
	return nil
}

// ShelfExport writes the collection to a file in the requested format.
func (r *Runner) ShelfExport(ctx context.Context, cmd *cli.Command) error {
	series := cmd.String("series")

	comics, err := r.loadShelf(ctx, series, false)
	if err != nil {
		return err
	}

	catalog.SortComics(comics)

	name := "shelf"
	if series != "" {
		name = series
	}

	outFile, err := formatter.WriteExport(&formatter.ShelfExport{
		Name:   name,
		Comics: comics,
	}, cmd.String("format"), cmd.String("output"))
	if err != nil {
		return err
	}

	r.writePlain("Exported %d comics to %s\n", len(comics), outFile)
	return nil
}

// loadShelf fetches the collection from the server, falling back to (or
// forced onto) the local cache.
func (r *Runner) loadShelf(ctx context.Context, series string, cachedOnly bool) ([]models.Comic, error) {
	if err := r.openTracker(ctx); err != nil {
		return nil, err
	}

	criteria := map[string]any{}
	if series != "" {
		criteria["series"] = series
	}

	if cachedOnly {
		return r.repo.List(criteria)
	}

	comics, err := r.api.ListComics(ctx)
	if err != nil {
		r.logger.Warn("server unreachable, using local cache", "error", err)
		return r.repo.List(criteria)
	}

	if err := r.repo.Sync(comics); err != nil {
		r.logger.Warn("failed to refresh local cache", "error", err)
	}

	if series == "" {
		return comics, nil
	}

	filtered := comics[:0]
	for _, comic := range comics {
		if comic.Series == series {
			filtered = append(filtered, comic)
		}
	}
	return filtered, nil
}
