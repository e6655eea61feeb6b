// package formatter provides functions to export shelf listings to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/hkrewson/collectz/internal/models"
	"github.com/hkrewson/collectz/internal/shared"
)

// ShelfExport bundles a named listing of comics for export.
type ShelfExport struct {
	Name   string         `json:"name"`
	Comics []models.Comic `json:"comics"`
}

// ExportToCSV converts a ShelfExport to CSV format with columns: ID, Series, Title, Issue, Volume, Publisher, Format, Added
func ExportToCSV(export *ShelfExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Series", "Title", "Issue", "Volume", "Publisher", "Format", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, comic := range export.Comics {
		record := []string{
			strconv.Itoa(comic.ID),
			comic.Series,
			comic.Title,
			comic.Issue,
			strconv.Itoa(comic.Volume),
			comic.Publisher,
			comic.Format,
			comic.AddedAt.Format("2006-01-02"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a ShelfExport to a Markdown listing grouped under a single heading
func ExportToMarkdown(export *ShelfExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Name))
	buf.WriteString(fmt.Sprintf("**Comics**: %d\n\n", len(export.Comics)))

	buf.WriteString("## Issues\n\n")
	for i, comic := range export.Comics {
		issuePart := ""
		if comic.Issue != "" {
			issuePart = fmt.Sprintf(" #%s", comic.Issue)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s - %s (%s)\n", i+1, comic.Series, issuePart, comic.Title, comic.Publisher))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a ShelfExport to plain text format
func ExportToText(export *ShelfExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Shelf: %s\n", export.Name))
	buf.WriteString(fmt.Sprintf("Comics: %d\n\n", len(export.Comics)))

	for i, comic := range export.Comics {
		issuePart := ""
		if comic.Issue != "" {
			issuePart = fmt.Sprintf(" #%s", comic.Issue)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s - %s\n", i+1, comic.Series, issuePart, comic.Title))
	}

	return buf.Bytes(), nil
}

// ToJSON generates a pretty-printed JSON representation of the export
func ToJSON(export *ShelfExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// WriteExport writes a shelf export to disk in the requested format.
//
// Defaults to the shelf name as the base filename. Recognized formats are
// "csv", "json", "markdown" (or "md"), and "text" (or "txt"). Returns the
// path of the file written.
func WriteExport(export *ShelfExport, format, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = export.Name
	}

	var (
		data []byte
		ext  string
		err  error
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(export)
		ext = ".csv"
	case "json":
		data, err = ToJSON(export)
		ext = ".json"
	case "markdown", "md":
		data, err = ExportToMarkdown(export)
		ext = ".md"
	case "text", "txt", "":
		data, err = ExportToText(export)
		ext = ".txt"
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	outFile := baseFilepath + ext
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return outFile, nil
}
