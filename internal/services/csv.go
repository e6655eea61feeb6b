package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hkrewson/collectz/internal/models"
	"github.com/hkrewson/collectz/internal/shared"
)

// DialectFromFlag maps the CLI dialect names to providers.
func DialectFromFlag(name string) (models.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "generic":
		return models.ProviderCSVGeneric, nil
	case "delicious":
		return models.ProviderCSVDelicious, nil
	case "calibre":
		return models.ProviderCSVCalibre, nil
	case "":
		return "", fmt.Errorf("%w: empty dialect", shared.ErrUnknownDialect)
	}
	return "", fmt.Errorf("%w: %q", shared.ErrUnknownDialect, name)
}

// DetectDialectFile sniffs the CSV dialect from a file's header row.
func DetectDialectFile(path string) (models.Provider, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return DetectDialect(file)
}

// DetectDialect sniffs the CSV dialect from the header row. The server does
// the real parsing; this only picks the right endpoint, and is conservative:
// anything with a title-like column that matches no known export format is
// treated as generic.
func DetectDialect(r io.Reader) (models.Provider, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return "", fmt.Errorf("%w: unreadable header row", shared.ErrUnknownDialect)
	}

	cols := make(map[string]bool, len(header))
	for _, col := range header {
		cols[strings.ToLower(strings.TrimSpace(col))] = true
	}

	switch {
	// Calibre catalog exports always carry the library uuid and authors columns.
	case cols["uuid"] && cols["authors"]:
		return models.ProviderCSVCalibre, nil
	// Delicious Library exports identify items by retail codes.
	case cols["ean"] || cols["upc"] || cols["asin"]:
		return models.ProviderCSVDelicious, nil
	case cols["title"] || cols["name"]:
		return models.ProviderCSVGeneric, nil
	}

	return "", fmt.Errorf("%w: no recognizable columns", shared.ErrUnknownDialect)
}
