package gen

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() Options {
	return Options{
		Records:  50,
		Products: []string{"Laptop", "Mouse", "Keyboard"},
		MinPrice: 20.0,
		MaxPrice: 1500.0,
		MaxQty:   5,
		Seed:     42,
	}
}

func TestWriteDaily(t *testing.T) {
	dataDir := t.TempDir()
	day, err := time.Parse("2006-01-02", "2024-01-01")
	require.NoError(t, err)

	path, n, err := New(testOptions(), testLogger()).WriteDaily(dataDir, day)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
	assert.Equal(t, filepath.Join(dataDir, "sales_data_2024_01_01.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 51)

	header := []string{"order_id", "customer_id", "product_name", "quantity", "price", "order_date"}
	assert.Equal(t, header, rows[0])

	catalog := map[string]bool{"Laptop": true, "Mouse": true, "Keyboard": true}
	seen := make(map[string]bool)
	for _, row := range rows[1:] {
		require.Len(t, row, 6)

		assert.False(t, seen[row[0]], "order_id %s repeated", row[0])
		seen[row[0]] = true

		id, err := strconv.Atoi(row[0])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, id, 100000)
		assert.LessOrEqual(t, id, 999999)

		assert.Regexp(t, `^CUS_\d{4}$`, row[1])
		assert.True(t, catalog[row[2]], "unknown product %q", row[2])

		qty, err := strconv.Atoi(row[3])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, qty, 1)
		assert.LessOrEqual(t, qty, 5)

		price, err := strconv.ParseFloat(row[4], 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, price, 20.0)
		assert.LessOrEqual(t, price, 1500.0)

		assert.Equal(t, "2024-01-01", row[5])
	}
}

func TestWriteDailyMissingDir(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, _, err := New(testOptions(), testLogger()).WriteDaily(
		filepath.Join(t.TempDir(), "nope", "deeper"), day,
	)
	require.Error(t, err)
}
