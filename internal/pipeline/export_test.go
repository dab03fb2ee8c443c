package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"vega/internal"
	"vega/internal/util"
)

func TestExportReportToXLSX(t *testing.T) {
	rec := internal.ClientRecord{
		ClientCode: util.StringPtr("27106"),
		ClientName: util.StringPtr("Los Mensch + Arbeitswelt"),
	}
	chain := ChainResult{
		Clients:  []map[string]any{{"CLI_COD": "27106", "CLI_NOME": "LOS MENSCH + ARBEITSWELT"}},
		Accounts: []map[string]any{{"CTB_COD": "27106", "CTB_DES": "Vertrag Basis"}},
	}
	report, err := AssembleReport(rec, internal.SourceHeuristic, chain)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "nested", "report.xlsx")
	if err := ExportReportToXLSX(report, out); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 6 {
		t.Fatalf("sheets=%v", sheets)
	}
	value, err := f.GetCellValue("clienti", "A3")
	if err != nil {
		t.Fatal(err)
	}
	if value != "27106" {
		t.Fatalf("CLI_COD cell=%q", value)
	}
}
