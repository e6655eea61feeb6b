package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hkrewson/collectz/internal/models"
)

// ComicRepository caches server-side comics in the local SQLite database.
//
// Rows are keyed by the server-assigned id, so Upsert is the primary write
// path: every fetch refreshes the cache in place. Soft deletes keep rows
// around for debugging while hiding them from listings.
type ComicRepository struct {
	db *sql.DB
}

// NewComicRepository creates a new ComicRepository with the given database connection
func NewComicRepository(db *sql.DB) *ComicRepository {
	return &ComicRepository{db: db}
}

// Upsert inserts a comic or refreshes the cached copy when the server id is
// already present. A previously soft-deleted row is revived.
func (r *ComicRepository) Upsert(comic models.Comic) error {
	if comic.ID == 0 {
		return fmt.Errorf("comic has no server id")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertComic(tx, comic); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert transaction: %w", err)
	}

	return nil
}

// upsertComic writes one comic through an open transaction. The sequence bump
// shares the transaction so Sync can hold the write lock for the whole batch.
func upsertComic(tx *sql.Tx, comic models.Comic) error {
	if _, err := tx.Exec("UPDATE comics_sequence SET value = value + 1 WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow("SELECT value FROM comics_sequence WHERE id = 1").Scan(&sequence); err != nil {
		return fmt.Errorf("failed to get sequence value: %w", err)
	}

	now := time.Now()

	query := `
		INSERT INTO comics (id, sequence, series, title, issue, volume, publisher, format, added_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			series = excluded.series,
			title = excluded.title,
			issue = excluded.issue,
			volume = excluded.volume,
			publisher = excluded.publisher,
			format = excluded.format,
			added_at = excluded.added_at,
			updated_at = excluded.updated_at,
			deleted_at = NULL
	`

	_, err := tx.Exec(query,
		comic.ID,
		sequence,
		comic.Series,
		comic.Title,
		comic.Issue,
		comic.Volume,
		comic.Publisher,
		comic.Format,
		comic.AddedAt,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert comic: %w", err)
	}

	return nil
}

// Get retrieves a comic by server id, excluding soft-deleted rows
func (r *ComicRepository) Get(id int) (models.Comic, error) {
	query := `
		SELECT id, series, title, issue, volume, publisher, format, added_at
		FROM comics
		WHERE id = ? AND deleted_at IS NULL
	`

	var comic models.Comic
	err := r.db.QueryRow(query, id).Scan(
		&comic.ID,
		&comic.Series,
		&comic.Title,
		&comic.Issue,
		&comic.Volume,
		&comic.Publisher,
		&comic.Format,
		&comic.AddedAt,
	)
	if err == sql.ErrNoRows {
		return models.Comic{}, fmt.Errorf("comic not found: %d", id)
	}
	if err != nil {
		return models.Comic{}, fmt.Errorf("failed to scan comic: %w", err)
	}

	return comic, nil
}

// Delete soft-deletes a comic by server id
func (r *ComicRepository) Delete(id int) error {
	query := `
		UPDATE comics
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete comic: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("comic not found or already deleted: %d", id)
	}

	return nil
}

// List retrieves all cached comics matching the given criteria, excluding
// soft-deleted rows
func (r *ComicRepository) List(criteria map[string]any) ([]models.Comic, error) {
	query := `
		SELECT id, series, title, issue, volume, publisher, format, added_at
		FROM comics
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if series, ok := criteria["series"].(string); ok && series != "" {
		query += " AND series = ?"
		args = append(args, series)
	}

	if publisher, ok := criteria["publisher"].(string); ok && publisher != "" {
		query += " AND publisher = ?"
		args = append(args, publisher)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comics: %w", err)
	}
	defer rows.Close()

	var comics []models.Comic
	for rows.Next() {
		var comic models.Comic
		err := rows.Scan(
			&comic.ID,
			&comic.Series,
			&comic.Title,
			&comic.Issue,
			&comic.Volume,
			&comic.Publisher,
			&comic.Format,
			&comic.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comic: %w", err)
		}
		comics = append(comics, comic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return comics, nil
}

// Sync replaces the cache with the given server snapshot in one transaction.
// Rows absent from the snapshot are soft-deleted rather than dropped.
func (r *ComicRepository) Sync(comics []models.Comic) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	if _, err := tx.Exec("UPDATE comics SET deleted_at = ? WHERE deleted_at IS NULL", now); err != nil {
		return fmt.Errorf("failed to mark stale comics: %w", err)
	}

	for _, comic := range comics {
		if comic.ID == 0 {
			continue
		}
		if err := upsertComic(tx, comic); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sync transaction: %w", err)
	}

	return nil
}
