package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"salesetl/internal/domain"
)

// runsKey is the list holding the most recent run reports, newest first.
const runsKey = "salesetl:runs"

// RunHistory keeps a bounded window of recent pipeline run reports in a Redis
// list so operators can inspect outcomes without digging through logs. It is
// pure observability: nothing in the pipeline reads it to make decisions.
type RunHistory struct {
	rdb  *redis.Client
	size int
}

// NewRunHistory creates a RunHistory retaining at most size reports.
func NewRunHistory(c *Client, size int) *RunHistory {
	return &RunHistory{rdb: c.Underlying(), size: size}
}

// Record pushes a run report onto the history list and trims it to the
// retention window.
func (h *RunHistory) Record(ctx context.Context, report domain.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("redis: marshal run report: %w", err)
	}

	pipe := h.rdb.TxPipeline()
	pipe.LPush(ctx, runsKey, data)
	pipe.LTrim(ctx, runsKey, 0, int64(h.size-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: record run %s: %w", report.RunID, err)
	}
	return nil
}

// Recent returns up to n of the most recent run reports, newest first.
func (h *RunHistory) Recent(ctx context.Context, n int) ([]domain.RunReport, error) {
	raw, err := h.rdb.LRange(ctx, runsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: read run history: %w", err)
	}

	reports := make([]domain.RunReport, 0, len(raw))
	for _, item := range raw {
		var r domain.RunReport
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("redis: decode run report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}
