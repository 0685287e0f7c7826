package recorder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportJSON renders records plus their aggregate summary as indented JSON,
// the shape consumers of the old dump format expect.
func ExportJSON(records []Record, comparisons []Comparison) ([]byte, error) {
	doc := map[string]any{
		"metrics_history":    records,
		"comparison_history": comparisons,
	}
	if s, ok := Summarize(records); ok {
		doc["summary"] = s
	}
	if cs, ok := SummarizeComparisons(comparisons); ok {
		doc["method_comparison_stats"] = cs
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ExportXLSX returns an XLSX workbook with a Metrics sheet of raw records and
// a Summary sheet of aggregates per method.
func ExportXLSX(records []Record, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	const metricsSheet = "Metrics"
	if index, _ := f.GetSheetIndex(metricsSheet); index == -1 {
		if _, err := f.NewSheet(metricsSheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(metricsSheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Timestamp",
		"Method",
		"Provider",
		"Duration (s)",
		"Text Length",
		"Tables",
		"Images",
		"Confidence",
		"File Size",
		"Pages",
		"Success",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(metricsSheet, cell, h)
	}

	row := 2
	for _, r := range records {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(metricsSheet, cell, v)
		}
		write(1, r.Timestamp.UTC().Format(time.RFC3339))
		write(2, r.Method)
		write(3, r.Provider)
		write(4, r.Duration.Seconds())
		write(5, r.TextLength)
		write(6, r.TablesCount)
		write(7, r.ImagesCount)
		write(8, r.Confidence)
		write(9, r.FileSize)
		write(10, r.PageCount)
		write(11, r.Success)
		write(12, truncate(r.ErrorMessage, 140))
		row++
	}

	_ = f.SetColWidth(metricsSheet, "A", "A", 22) // timestamp
	_ = f.SetColWidth(metricsSheet, "B", "C", 14) // method, provider
	_ = f.SetColWidth(metricsSheet, "L", "L", 48) // error

	if err := writeSummarySheet(f, records); err != nil {
		return nil, err
	}

	// drop the default sheet so Metrics opens first
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("recorder.export.xlsx_ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, records []Record) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{
		"Method",
		"Operations",
		"Successful",
		"Success Rate %",
		"Avg Time (s)",
		"Median Time (s)",
		"Avg Confidence",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	methods := []string{}
	seen := map[string]bool{}
	for _, r := range records {
		if !seen[r.Method] {
			seen[r.Method] = true
			methods = append(methods, r.Method)
		}
	}

	row := 2
	for _, method := range methods {
		var subset []Record
		for _, r := range records {
			if r.Method == method {
				subset = append(subset, r)
			}
		}
		s, ok := Summarize(subset)
		if !ok {
			continue
		}
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, method)
		write(2, s.TotalOperations)
		write(3, s.SuccessfulOperations)
		write(4, s.SuccessRate)
		write(5, s.AvgProcessingTime)
		write(6, s.MedianProcessingTime)
		write(7, s.AvgConfidence)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16)
	_ = f.SetColWidth(sheet, "B", "G", 14)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
