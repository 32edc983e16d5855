package report

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"

	"salesetl/internal/domain"
)

// summaryColumns is the header of the CSV report.
var summaryColumns = []string{"product_name", "total_quantity_sold", "total_revenue"}

// CSVSink writes the daily summary as a delimited file named
// daily_sales_summary_<YYYY_MM_DD>.csv in the data directory.
type CSVSink struct {
	dataDir string
}

// NewCSVSink creates a CSVSink writing under dataDir.
func NewCSVSink(dataDir string) *CSVSink {
	return &CSVSink{dataDir: dataDir}
}

// Write emits the summary as CSV with revenue at 2-decimal scale.
func (s *CSVSink) Write(summary domain.DailySummary) (string, error) {
	path := reportPath(s.dataDir, summary, "csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(summaryColumns); err != nil {
		return "", fmt.Errorf("report: write header: %w", err)
	}
	for _, p := range summary.Products {
		row := []string{
			p.ProductName,
			strconv.FormatInt(p.TotalQuantitySold, 10),
			strconv.FormatFloat(p.TotalRevenue, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("report: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("report: flush %s: %w", path, err)
	}
	return path, nil
}

// htmlReport renders the summary as a single centered table.
var htmlReport = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head><title>Daily Sales Summary {{.Date.Format "2006-01-02"}}</title></head>
<body>
<table border="1" class="dataframe" style="margin-left:auto;margin-right:auto;text-align:center">
  <thead>
    <tr><th>product_name</th><th>total_quantity_sold</th><th>total_revenue</th></tr>
  </thead>
  <tbody>
{{- range .Products}}
    <tr><td>{{.ProductName}}</td><td>{{.TotalQuantitySold}}</td><td>{{printf "%.2f" .TotalRevenue}}</td></tr>
{{- end}}
  </tbody>
</table>
</body>
</html>
`))

// HTMLSink writes the daily summary as a rendered table named
// daily_sales_summary_<YYYY_MM_DD>.html in the data directory.
type HTMLSink struct {
	dataDir string
}

// NewHTMLSink creates an HTMLSink writing under dataDir.
func NewHTMLSink(dataDir string) *HTMLSink {
	return &HTMLSink{dataDir: dataDir}
}

// Write renders the summary table to its HTML file.
func (s *HTMLSink) Write(summary domain.DailySummary) (string, error) {
	path := reportPath(s.dataDir, summary, "html")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	if err := htmlReport.Execute(f, summary); err != nil {
		return "", fmt.Errorf("report: render %s: %w", path, err)
	}
	return path, nil
}

func reportPath(dataDir string, summary domain.DailySummary, ext string) string {
	name := fmt.Sprintf("daily_sales_summary_%s.%s", summary.Date.Format(domain.FileDateFormat), ext)
	return filepath.Join(dataDir, name)
}
