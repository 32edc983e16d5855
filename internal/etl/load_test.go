package etl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesetl/internal/domain"
)

// fakeStore is an in-memory domain.SalesStore with the same duplicate-key
// disposition as the PostgreSQL implementation.
type fakeStore struct {
	rows      map[int64]domain.SalesRecord
	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[int64]domain.SalesRecord)}
}

func (s *fakeStore) InsertBatch(_ context.Context, records []domain.SalesRecord) (domain.LoadResult, error) {
	res := domain.LoadResult{Attempted: len(records)}
	if s.insertErr != nil {
		return res, s.insertErr
	}
	for _, r := range records {
		if _, ok := s.rows[r.OrderID]; ok {
			res.Duplicates++
			continue
		}
		s.rows[r.OrderID] = r
		res.Inserted++
	}
	return res, nil
}

func (s *fakeStore) SummaryForDate(_ context.Context, day time.Time) (domain.DailySummary, error) {
	summary := domain.DailySummary{Date: day}
	totals := make(map[string]*domain.ProductSummary)
	for _, r := range s.rows {
		if !r.OrderDate.Equal(day) {
			continue
		}
		p, ok := totals[r.ProductName]
		if !ok {
			p = &domain.ProductSummary{ProductName: r.ProductName}
			totals[r.ProductName] = p
		}
		p.TotalQuantitySold += int64(r.Quantity)
		p.TotalRevenue += r.TotalSale
	}
	for _, p := range totals {
		summary.Products = append(summary.Products, *p)
	}
	if len(summary.Products) == 0 {
		return summary, domain.ErrEmptyResult
	}
	return summary, nil
}

func (s *fakeStore) CountRows(context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

// fakeOpener hands out the same store and tracks whether a connection was
// ever requested and whether it was released.
type fakeOpener struct {
	store    domain.SalesStore
	openErr  error
	opened   int
	released int
}

func (o *fakeOpener) open(context.Context) (domain.SalesStore, func(), error) {
	if o.openErr != nil {
		return nil, nil, o.openErr
	}
	o.opened++
	return o.store, func() { o.released++ }, nil
}

func record(orderID int64, product string, qty int, price float64, date string) domain.SalesRecord {
	day, _ := time.Parse(domain.DateFormat, date)
	return domain.SalesRecord{
		OrderID:     orderID,
		CustomerID:  "CUS_0001",
		ProductName: product,
		Quantity:    qty,
		Price:       price,
		OrderDate:   day,
		TotalSale:   float64(qty) * price,
	}
}

func TestLoadEmptyBatchOpensNoConnection(t *testing.T) {
	opener := &fakeOpener{store: newFakeStore()}
	loader := NewLoader(opener.open, testLogger())

	res, err := loader.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.Attempted)
	assert.Zero(t, opener.opened)
}

func TestLoadAppendsAndReleases(t *testing.T) {
	store := newFakeStore()
	opener := &fakeOpener{store: store}
	loader := NewLoader(opener.open, testLogger())

	res, err := loader.Load(context.Background(), []domain.SalesRecord{
		record(1, "Laptop", 2, 1000, "2024-01-01"),
		record(2, "Mouse", 1, 50, "2024-01-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, opener.opened)
	assert.Equal(t, 1, opener.released)
}

func TestLoadIsAdditive(t *testing.T) {
	store := newFakeStore()
	loader := NewLoader((&fakeOpener{store: store}).open, testLogger())
	ctx := context.Background()

	first := record(1, "Laptop", 2, 1000, "2024-01-01")
	_, err := loader.Load(ctx, []domain.SalesRecord{first})
	require.NoError(t, err)

	// A re-load never decreases the row count or alters existing rows.
	altered := record(1, "Laptop", 9, 1, "2024-01-01")
	res, err := loader.Load(ctx, []domain.SalesRecord{altered, record(2, "Mouse", 1, 50, "2024-01-01")})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Duplicates)

	n, err := store.CountRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, first, store.rows[1])
}

func TestLoadSurfacesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("connection reset")
	opener := &fakeOpener{store: store}
	loader := NewLoader(opener.open, testLogger())

	_, err := loader.Load(context.Background(), []domain.SalesRecord{
		record(1, "Laptop", 2, 1000, "2024-01-01"),
	})
	require.Error(t, err)
	assert.Equal(t, 1, opener.released, "connection released on failure path")
}
