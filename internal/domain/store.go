package domain

import (
	"context"
	"time"
)

// LoadResult reports the outcome of appending a batch to the fact table.
// Inserted and Duplicates partition the attempted rows: a duplicate order_id
// is skipped and counted here rather than failing the load, so operators can
// tell "data already loaded" from a real failure.
type LoadResult struct {
	Attempted  int
	Inserted   int
	Duplicates int
}

// StoreOpener acquires a SalesStore for one stage's unit of work. The
// returned release func must be called on every exit path; connections are
// stage-scoped and never held across stage boundaries.
type StoreOpener func(ctx context.Context) (SalesStore, func(), error)

// SalesStore persists validated sales records and answers aggregate queries
// over the fact table.
type SalesStore interface {
	// InsertBatch appends records to the fact table. Rows whose order_id
	// already exists are skipped and counted in the result; any other
	// failure aborts the batch and returns the cause.
	InsertBatch(ctx context.Context, records []SalesRecord) (LoadResult, error)

	// SummaryForDate aggregates the fact table for a single calendar day:
	// per-product quantity and revenue, ordered by revenue descending.
	// Returns ErrEmptyResult when no rows match.
	SummaryForDate(ctx context.Context, day time.Time) (DailySummary, error)

	// CountRows returns the total number of rows in the fact table.
	CountRows(ctx context.Context) (int64, error)
}
