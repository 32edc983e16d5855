package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesetl/internal/domain"
)

// pgUniqueViolation is the SQLSTATE for a unique-constraint violation.
const pgUniqueViolation = "23505"

// SalesStore implements domain.SalesStore using PostgreSQL.
type SalesStore struct {
	pool *pgxpool.Pool
}

// NewSalesStore creates a SalesStore backed by the given connection pool.
func NewSalesStore(pool *pgxpool.Pool) *SalesStore {
	return &SalesStore{pool: pool}
}

const insertSale = `
	INSERT INTO sales (
		order_id, customer_id, product_name,
		quantity, price, order_date, total_sale
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

// round2 rounds to a fixed 2-decimal scale at the storage boundary. The
// transformer carries full float precision; only the stored value is scaled
// to match the DECIMAL(10,2) columns.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// InsertBatch appends records to the fact table one row at a time. Existing
// rows are never modified; a row whose order_id already exists violates the
// primary key, is skipped, and is counted in the result so callers can
// distinguish an already-loaded batch from a real failure. Any other error
// aborts the batch. Inserts are not transactional: a failure mid-batch
// leaves the rows inserted so far in place. Re-running the same batch is
// safe — the rows that made it in simply surface as duplicates.
func (s *SalesStore) InsertBatch(ctx context.Context, records []domain.SalesRecord) (domain.LoadResult, error) {
	res := domain.LoadResult{Attempted: len(records)}
	if len(records) == 0 {
		return res, nil
	}

	for _, r := range records {
		_, err := s.pool.Exec(ctx, insertSale,
			r.OrderID, r.CustomerID, r.ProductName,
			r.Quantity, round2(r.Price), r.OrderDate, round2(r.TotalSale),
		)
		if err != nil {
			err = mapInsertErr(err)
			if errors.Is(err, domain.ErrDuplicateKey) {
				res.Duplicates++
				continue
			}
			return res, fmt.Errorf("postgres: insert order %d: %w", r.OrderID, err)
		}
		res.Inserted++
	}
	return res, nil
}

// mapInsertErr converts a primary-key violation into domain.ErrDuplicateKey
// so the disposition decision reads in domain terms; the driver detail stays
// in the wrap chain. Only SQLSTATE 23505 qualifies — connection errors and
// other statement failures pass through unchanged.
func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, domain.ErrDuplicateKey)
	}
	return err
}

const summaryQuery = `
	SELECT
		product_name,
		SUM(quantity)   AS total_quantity_sold,
		SUM(total_sale) AS total_revenue
	FROM sales
	WHERE order_date = $1
	GROUP BY product_name
	ORDER BY total_revenue DESC`

// SummaryForDate aggregates per-product quantity and revenue for a single
// calendar day. Returns domain.ErrEmptyResult when the day has no rows.
func (s *SalesStore) SummaryForDate(ctx context.Context, day time.Time) (domain.DailySummary, error) {
	summary := domain.DailySummary{Date: day}

	rows, err := s.pool.Query(ctx, summaryQuery, day)
	if err != nil {
		return summary, fmt.Errorf("postgres: query daily summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.ProductSummary
		if err := rows.Scan(&p.ProductName, &p.TotalQuantitySold, &p.TotalRevenue); err != nil {
			return summary, fmt.Errorf("postgres: scan summary row: %w", err)
		}
		summary.Products = append(summary.Products, p)
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("postgres: read summary rows: %w", err)
	}

	if len(summary.Products) == 0 {
		return summary, domain.ErrEmptyResult
	}
	return summary, nil
}

// CountRows returns the total number of rows in the fact table.
func (s *SalesStore) CountRows(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sales").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count sales rows: %w", err)
	}
	return n, nil
}
