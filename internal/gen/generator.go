// Package gen produces synthetic daily input files. It stands in for the
// upstream producer of sales data and writes the same CSV layout the
// extractor consumes.
package gen

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"salesetl/internal/domain"
)

// Generator writes randomized sales records for a given day.
type Generator struct {
	faker    *gofakeit.Faker
	records  int
	products []string
	minPrice float64
	maxPrice float64
	maxQty   int
	logger   *slog.Logger
}

// Options configures a Generator.
type Options struct {
	// Records is the number of rows per file.
	Records int
	// Products is the catalog to draw product names from.
	Products []string
	// MinPrice and MaxPrice bound the unit price.
	MinPrice float64
	MaxPrice float64
	// MaxQty bounds the per-order quantity (minimum is always 1).
	MaxQty int
	// Seed makes output reproducible when non-zero.
	Seed uint64
}

// New creates a Generator.
func New(opts Options, logger *slog.Logger) *Generator {
	return &Generator{
		faker:    gofakeit.New(opts.Seed),
		records:  opts.Records,
		products: opts.Products,
		minPrice: opts.MinPrice,
		maxPrice: opts.MaxPrice,
		maxQty:   opts.MaxQty,
		logger:   logger,
	}
}

// WriteDaily writes sales_data_<YYYY_MM_DD>.csv under dataDir with the
// configured number of rows, all dated day. Order IDs are unique 6-digit
// numbers within the file. Returns the written path and row count.
func (g *Generator) WriteDaily(dataDir string, day time.Time) (string, int, error) {
	name := fmt.Sprintf("sales_data_%s.csv", day.Format(domain.FileDateFormat))
	path := filepath.Join(dataDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("gen: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"order_id", "customer_id", "product_name", "quantity", "price", "order_date"}
	if err := w.Write(header); err != nil {
		return "", 0, fmt.Errorf("gen: write header: %w", err)
	}

	seen := make(map[int]bool, g.records)
	for i := 0; i < g.records; i++ {
		orderID := g.faker.Number(100000, 999999)
		for seen[orderID] {
			orderID = g.faker.Number(100000, 999999)
		}
		seen[orderID] = true

		row := []string{
			strconv.Itoa(orderID),
			fmt.Sprintf("CUS_%04d", g.faker.Number(0, 9999)),
			g.faker.RandomString(g.products),
			strconv.Itoa(g.faker.Number(1, g.maxQty)),
			strconv.FormatFloat(g.faker.Price(g.minPrice, g.maxPrice), 'f', 2, 64),
			day.Format(domain.DateFormat),
		}
		if err := w.Write(row); err != nil {
			return "", 0, fmt.Errorf("gen: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", 0, fmt.Errorf("gen: flush %s: %w", path, err)
	}

	g.logger.Info("generated input file",
		slog.String("path", path),
		slog.Int("records", g.records),
	)
	return path, g.records, nil
}
