package etl

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"salesetl/internal/domain"
)

// TransformStats reports what happened to a batch during transformation.
type TransformStats struct {
	Input   int
	Dropped int
	Deduped int
	Output  int
}

// Transformer converts raw extracted rows into validated, enriched sales
// records. It is a pure function of its input apart from diagnostic logging:
// no I/O, no mutation of the input slice, deterministic output.
type Transformer struct {
	// strict additionally drops rows with quantity <= 0 or price < 0.
	// Off by default: source data ranges are trusted as-is.
	strict bool
	logger *slog.Logger
}

// NewTransformer creates a Transformer. strict enables range validation on
// top of the standard type coercion.
func NewTransformer(strict bool, logger *slog.Logger) *Transformer {
	return &Transformer{strict: strict, logger: logger}
}

// Transform validates, enriches, and deduplicates a batch:
//
//  1. coerce order_date, price, and quantity to their types; a row that fails
//     coercion of any field, or has any missing field, is dropped and counted
//  2. derive total_sale = quantity * price for every surviving row
//  3. deduplicate on order_id, keeping the first-seen occurrence
//
// When nothing survives, the returned error is domain.ErrEmptyBatch so the
// caller can skip the load without treating it as a failure. Price keeps full
// float precision here; rounding happens at the storage boundary.
func (t *Transformer) Transform(rows []domain.RawRecord) ([]domain.SalesRecord, TransformStats, error) {
	stats := TransformStats{Input: len(rows)}

	records := make([]domain.SalesRecord, 0, len(rows))
	for _, raw := range rows {
		rec, err := t.coerce(raw)
		if err != nil {
			stats.Dropped++
			t.logger.Debug("dropped invalid row",
				slog.Int("line", raw.Line),
				slog.String("reason", err.Error()),
			)
			continue
		}
		rec.TotalSale = float64(rec.Quantity) * rec.Price
		records = append(records, rec)
	}

	if stats.Dropped > 0 {
		t.logger.Info("dropped rows with missing or invalid values",
			slog.Int("dropped", stats.Dropped),
			slog.Int("input", stats.Input),
		)
	}

	deduped := lo.UniqBy(records, func(r domain.SalesRecord) int64 {
		return r.OrderID
	})
	stats.Deduped = len(records) - len(deduped)
	if stats.Deduped > 0 {
		t.logger.Info("removed duplicate order ids", slog.Int("duplicates", stats.Deduped))
	}

	stats.Output = len(deduped)
	if stats.Output == 0 {
		return nil, stats, domain.ErrEmptyBatch
	}

	t.logger.Info("transform complete",
		slog.Int("input", stats.Input),
		slog.Int("output", stats.Output),
	)
	return deduped, stats, nil
}

// coerce converts one raw row into a typed record, rejecting missing fields
// and values that fail type conversion.
func (t *Transformer) coerce(raw domain.RawRecord) (domain.SalesRecord, error) {
	var rec domain.SalesRecord

	fields := map[string]string{
		"order_id":     raw.OrderID,
		"customer_id":  raw.CustomerID,
		"product_name": raw.ProductName,
		"quantity":     raw.Quantity,
		"price":        raw.Price,
		"order_date":   raw.OrderDate,
	}
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			return rec, fmt.Errorf("missing %s", name)
		}
	}

	orderID, err := strconv.ParseInt(strings.TrimSpace(raw.OrderID), 10, 64)
	if err != nil {
		return rec, fmt.Errorf("order_id %q is not an integer", raw.OrderID)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(raw.Quantity))
	if err != nil {
		return rec, fmt.Errorf("quantity %q is not an integer", raw.Quantity)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(raw.Price), 64)
	if err != nil {
		return rec, fmt.Errorf("price %q is not numeric", raw.Price)
	}

	orderDate, err := time.Parse(domain.DateFormat, strings.TrimSpace(raw.OrderDate))
	if err != nil {
		return rec, fmt.Errorf("order_date %q is not a date", raw.OrderDate)
	}

	if t.strict {
		if quantity <= 0 {
			return rec, fmt.Errorf("quantity %d out of range", quantity)
		}
		if price < 0 {
			return rec, fmt.Errorf("price %v out of range", price)
		}
	}

	rec.OrderID = orderID
	rec.CustomerID = strings.TrimSpace(raw.CustomerID)
	rec.ProductName = strings.TrimSpace(raw.ProductName)
	rec.Quantity = quantity
	rec.Price = price
	rec.OrderDate = orderDate
	return rec, nil
}
