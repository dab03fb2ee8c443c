package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vega/internal"
)

// ExportReportToXLSX writes one workbook per analysis: a summary sheet with
// the parsed client record plus one sheet per hop with its projected rows.
func ExportReportToXLSX(report internal.MatchReport, outputPath string) error {
	f := excelize.NewFile()
	summary := f.GetSheetName(0)
	if err := f.SetSheetName(summary, "summary"); err != nil {
		return err
	}

	summaryRows := [][]any{
		{"field", "value"},
		{"source", string(report.Source)},
		{"client_code", derefString(report.Client.ClientCode)},
		{"client_name", derefString(report.Client.ClientName)},
		{"contact_name", derefString(report.Client.ContactName)},
		{"address", derefString(report.Client.Address)},
		{"postal_code", derefString(report.Client.PostalCode)},
		{"city", derefString(report.Client.City)},
		{"country", derefString(report.Client.Country)},
		{"stopped", derefString(report.Stopped)},
	}
	for r, row := range summaryRows {
		for c, value := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue("summary", cell, value)
		}
	}

	for _, hop := range report.Hops {
		if _, err := f.NewSheet(hop.Table); err != nil {
			return err
		}
		columns := projections[hop.Table]
		statusCell, _ := excelize.CoordinatesToCellName(1, 1)
		_ = f.SetCellValue(hop.Table, statusCell, fmt.Sprintf("status: %s", hop.Status))
		for c, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, 2)
			_ = f.SetCellValue(hop.Table, cell, col)
		}
		for r, row := range hop.Rows {
			for c, col := range columns {
				value, ok := row[col]
				if !ok {
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(c+1, r+3)
				_ = f.SetCellValue(hop.Table, cell, value)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
