package etl

import (
	"context"
	"fmt"
	"log/slog"

	"salesetl/internal/domain"
)

// Loader appends validated records to the fact table. The store connection is
// acquired per load and released on every exit path; an empty batch returns
// immediately without opening one.
type Loader struct {
	open   domain.StoreOpener
	logger *slog.Logger
}

// NewLoader creates a Loader that acquires its store through open.
func NewLoader(open domain.StoreOpener, logger *slog.Logger) *Loader {
	return &Loader{open: open, logger: logger}
}

// Load appends records to the fact table. Rows whose order_id is already
// present are skipped and reported as duplicates rather than failing the
// batch: re-loading an already-loaded day is the expected idempotent path.
// Every other storage failure is returned as the stage's cause.
func (l *Loader) Load(ctx context.Context, records []domain.SalesRecord) (domain.LoadResult, error) {
	if len(records) == 0 {
		l.logger.Info("empty batch, load skipped")
		return domain.LoadResult{}, nil
	}

	store, release, err := l.open(ctx)
	if err != nil {
		return domain.LoadResult{}, fmt.Errorf("etl: open store: %w", err)
	}
	defer release()

	res, err := store.InsertBatch(ctx, records)
	if err != nil {
		return res, fmt.Errorf("etl: load batch: %w", err)
	}

	if res.Duplicates > 0 {
		l.logger.Warn("skipped rows already present in fact table",
			slog.Int("duplicates", res.Duplicates),
			slog.Int("inserted", res.Inserted),
		)
	}
	l.logger.Info("load complete",
		slog.Int("attempted", res.Attempted),
		slog.Int("inserted", res.Inserted),
		slog.Int("duplicates", res.Duplicates),
	)
	return res, nil
}
