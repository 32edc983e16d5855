// Package report derives the daily sales summary from the fact table and
// emits it to output sinks.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"salesetl/internal/domain"
)

// Sink writes a daily summary to one output format.
type Sink interface {
	// Write emits the summary and returns the path it was written to.
	Write(summary domain.DailySummary) (string, error)
}

// Reporter runs the daily aggregation query and hands the result to its
// sinks. The summary is recomputed on every invocation and never persisted
// back to the fact table. The store connection is acquired per report and
// released before returning.
type Reporter struct {
	open   domain.StoreOpener
	sinks  []Sink
	logger *slog.Logger
}

// NewReporter creates a Reporter writing to the given sinks.
func NewReporter(open domain.StoreOpener, sinks []Sink, logger *slog.Logger) *Reporter {
	return &Reporter{open: open, sinks: sinks, logger: logger}
}

// Generate queries the per-product summary for day and writes it to every
// sink. An empty result returns domain.ErrEmptyResult and no sink is
// invoked. Sinks are written concurrently; the first sink error is returned.
func (r *Reporter) Generate(ctx context.Context, day time.Time) error {
	store, release, err := r.open(ctx)
	if err != nil {
		return fmt.Errorf("report: open store: %w", err)
	}
	defer release()

	summary, err := store.SummaryForDate(ctx, day)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyResult) {
			r.logger.Info("no sales found for day, report not generated",
				slog.String("day", day.Format(domain.DateFormat)),
			)
			return err
		}
		return fmt.Errorf("report: query summary: %w", err)
	}

	g, _ := errgroup.WithContext(ctx)
	for _, sink := range r.sinks {
		g.Go(func() error {
			path, err := sink.Write(summary)
			if err != nil {
				return err
			}
			r.logger.Info("report written", slog.String("path", path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("report: write sinks: %w", err)
	}

	r.logger.Info("daily report complete",
		slog.String("day", day.Format(domain.DateFormat)),
		slog.Int("products", len(summary.Products)),
	)
	return nil
}
