package etl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"salesetl/internal/domain"
)

// RunRecorder persists pipeline run reports for later inspection. Recording
// is best-effort: failures are logged and never fail the run.
type RunRecorder interface {
	Record(ctx context.Context, report domain.RunReport) error
}

// InputArchiver moves a raw input file to cold storage after a successful
// load. Archival is best-effort in the same way.
type InputArchiver interface {
	ArchiveInput(ctx context.Context, path string, day time.Time) error
}

// Runner orchestrates one pipeline run: extract, transform, load. Each stage
// blocks until complete; any stage producing no usable data short-circuits
// the rest as a skip, and any stage failure is contained in the run report
// rather than raised.
type Runner struct {
	extractor   *Extractor
	transformer *Transformer
	loader      *Loader
	dataDir     string
	recorder    RunRecorder
	archiver    InputArchiver
	logger      *slog.Logger
}

// NewRunner creates a Runner. recorder and archiver may be nil; the
// corresponding hooks are then skipped.
func NewRunner(
	extractor *Extractor,
	transformer *Transformer,
	loader *Loader,
	dataDir string,
	recorder RunRecorder,
	archiver InputArchiver,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		dataDir:     dataDir,
		recorder:    recorder,
		archiver:    archiver,
		logger:      logger,
	}
}

// InputPath resolves the input file for a calendar day under the data
// directory, following the sales_data_<YYYY_MM_DD>.csv convention.
func (r *Runner) InputPath(day time.Time) string {
	name := fmt.Sprintf("sales_data_%s.csv", day.Format(domain.FileDateFormat))
	return filepath.Join(r.dataDir, name)
}

// Run executes the pipeline for a single day and returns its report. The
// report's outcome is success, skipped (missing input or empty batch), or
// failed with a cause; no path panics or propagates an error to the caller.
func (r *Runner) Run(ctx context.Context, day time.Time) (report domain.RunReport) {
	report = domain.RunReport{
		RunID:     uuid.NewString(),
		Day:       day.Format(domain.DateFormat),
		InputPath: r.InputPath(day),
		StartedAt: time.Now().UTC(),
	}
	logger := r.logger.With(slog.String("run_id", report.RunID), slog.String("day", report.Day))
	logger.Info("pipeline run starting", slog.String("input", report.InputPath))

	defer func() {
		report.FinishedAt = time.Now().UTC()
		r.record(ctx, report, logger)
		logger.Info("pipeline run finished",
			slog.String("outcome", string(report.Outcome)),
			slog.Int("inserted", report.Inserted),
		)
	}()

	rows, err := r.extractor.Extract(report.InputPath)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrEmptyBatch) {
			logger.Info("no input for day, skipping run", slog.String("reason", err.Error()))
			report.Outcome = domain.OutcomeSkipped
			report.Reason = err.Error()
			return report
		}
		logger.Error("extract failed", slog.String("error", err.Error()))
		report.Outcome = domain.OutcomeFailed
		report.Reason = err.Error()
		return report
	}
	report.Extracted = len(rows)

	records, stats, err := r.transformer.Transform(rows)
	report.Dropped = stats.Dropped
	report.Deduped = stats.Deduped
	if err != nil {
		if errors.Is(err, domain.ErrEmptyBatch) {
			logger.Info("no rows survived transform, skipping load")
			report.Outcome = domain.OutcomeSkipped
			report.Reason = err.Error()
			return report
		}
		logger.Error("transform failed", slog.String("error", err.Error()))
		report.Outcome = domain.OutcomeFailed
		report.Reason = err.Error()
		return report
	}

	res, err := r.loader.Load(ctx, records)
	report.Inserted = res.Inserted
	report.Duplicates = res.Duplicates
	if err != nil {
		logger.Error("load failed", slog.String("error", err.Error()))
		report.Outcome = domain.OutcomeFailed
		report.Reason = err.Error()
		return report
	}

	report.Outcome = domain.OutcomeSuccess

	if r.archiver != nil {
		if err := r.archiver.ArchiveInput(ctx, report.InputPath, day); err != nil {
			logger.Warn("input archival failed", slog.String("error", err.Error()))
		}
	}

	return report
}

func (r *Runner) record(ctx context.Context, report domain.RunReport, logger *slog.Logger) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.Record(ctx, report); err != nil {
		logger.Warn("recording run history failed", slog.String("error", err.Error()))
	}
}
