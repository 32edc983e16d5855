// Package etl implements the daily sales pipeline: CSV extraction, typed
// validation and enrichment, append-only loading, and the runner that
// orchestrates the three stages.
package etl

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"salesetl/internal/domain"
)

// sourceColumns is the required header of a daily input file, in order.
var sourceColumns = []string{
	"order_id", "customer_id", "product_name", "quantity", "price", "order_date",
}

// Extractor reads daily input files into raw, untyped records. All values are
// kept as strings; coercion is the transformer's exclusive responsibility.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract reads the delimited file at path into raw records. A missing file
// returns domain.ErrNotFound (wrapped): a day with no recorded sales is an
// expected condition, not a failure. A present but malformed file (bad
// header, unreadable CSV) is an error.
func (e *Extractor) Extract(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("etl: input file %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("etl: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("etl: %s is empty: %w", path, domain.ErrEmptyBatch)
		}
		return nil, fmt.Errorf("etl: read header of %s: %w", path, err)
	}
	if err := checkHeader(header); err != nil {
		return nil, fmt.Errorf("etl: %s: %w", path, err)
	}

	var records []domain.RawRecord
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("etl: read %s line %d: %w", path, line, err)
		}
		records = append(records, domain.RawRecord{
			OrderID:     row[0],
			CustomerID:  row[1],
			ProductName: row[2],
			Quantity:    row[3],
			Price:       row[4],
			OrderDate:   row[5],
			Line:        line,
		})
	}

	e.logger.Info("extracted input file",
		slog.String("path", path),
		slog.Int("rows", len(records)),
	)
	return records, nil
}

func checkHeader(header []string) error {
	if len(header) != len(sourceColumns) {
		return fmt.Errorf("expected %d columns, got %d", len(sourceColumns), len(header))
	}
	for i, want := range sourceColumns {
		if header[i] != want {
			return fmt.Errorf("column %d: expected %q, got %q", i, want, header[i])
		}
	}
	return nil
}
