// Package domain defines the core types of the sales ETL pipeline: raw and
// typed sales records, daily summaries, run reports, and the store interfaces
// implemented by the storage layer.
package domain

import "time"

// DateFormat is the calendar-date layout used for source data and CLI
// arguments.
const DateFormat = "2006-01-02"

// FileDateFormat is the underscore layout used in input and report file names,
// e.g. sales_data_2024_01_01.csv.
const FileDateFormat = "2006_01_02"

// RawRecord is a single row as extracted from the source file: every field is
// an uninterpreted string. Type coercion happens exclusively in the
// transformer. Line is the 1-based line number in the source file, kept for
// diagnostics.
type RawRecord struct {
	OrderID     string
	CustomerID  string
	ProductName string
	Quantity    string
	Price       string
	OrderDate   string
	Line        int
}

// SalesRecord is a fully validated, typed sales row. TotalSale is always
// derived as Quantity * Price by the transformer and never read from the
// source.
type SalesRecord struct {
	OrderID     int64
	CustomerID  string
	ProductName string
	Quantity    int
	Price       float64
	OrderDate   time.Time
	TotalSale   float64
}

// ProductSummary is one line of a daily report: aggregate quantity and
// revenue for a single product.
type ProductSummary struct {
	ProductName       string
	TotalQuantitySold int64
	TotalRevenue      float64
}

// DailySummary is the aggregation of all sales for a single calendar day,
// ordered by revenue descending. It is recomputed on every report run and
// never persisted.
type DailySummary struct {
	Date     time.Time
	Products []ProductSummary
}
