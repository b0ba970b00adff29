// Package loader provides FAQ source loading adapters.
// Clean Architecture: Adapter implementing ports.SourceLoader.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
)

// CSVLoader reads FAQ rows from a comma-delimited file with an
// id,question,answer[,category] header.
type CSVLoader struct{}

// NewCSVLoader creates a new CSV FAQ loader.
func NewCSVLoader() *CSVLoader {
	return &CSVLoader{}
}

// Load returns the valid rows at path. Rows missing question or answer are
// silently skipped; a blank or absent id defaults to the row's position
// among the kept rows. A missing path yields entities.ErrSourceNotFound.
func (l *CSVLoader) Load(ctx context.Context, path string) ([]entities.FAQ, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", entities.ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("opening faq source: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Category column is optional

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}

	var records []entities.FAQ
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		question := strings.TrimSpace(field(row, columns, "question"))
		answer := strings.TrimSpace(field(row, columns, "answer"))
		if question == "" || answer == "" {
			continue
		}

		id := strings.TrimSpace(field(row, columns, "id"))
		if id == "" {
			id = strconv.Itoa(len(records))
		}

		records = append(records, entities.FAQ{
			ID:       id,
			Question: question,
			Answer:   answer,
			Category: strings.TrimSpace(field(row, columns, "category")),
		})
	}

	return records, nil
}

// field returns the named column's value, or "" when the column is absent.
func field(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
