package pipeline

import (
	"strings"
	"testing"
	"time"

	"vega/internal"
	"vega/internal/util"
)

func TestAssembleReportStatuses(t *testing.T) {
	rec := internal.ClientRecord{ClientName: util.StringPtr("Solo Client")}
	chain := ChainResult{
		Clients: []map[string]any{{"CLI_COD": "99999", "CLI_NOME": "SOLO CLIENT"}},
		Stopped: util.StringPtr(StopNoAccount),
	}

	report, err := AssembleReport(rec, internal.SourceHeuristic, chain)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Hops) != 5 {
		t.Fatalf("hops=%d", len(report.Hops))
	}
	if report.Hops[0].Status != internal.HopMatched {
		t.Fatalf("clienti status=%s", report.Hops[0].Status)
	}
	if report.Hops[1].Status != internal.HopEmpty {
		t.Fatalf("ctbcont status=%s", report.Hops[1].Status)
	}
	for _, hop := range report.Hops[2:] {
		if hop.Status != internal.HopSkipped {
			t.Fatalf("%s status=%s", hop.Table, hop.Status)
		}
	}
	if report.Stopped == nil || *report.Stopped != StopNoAccount {
		t.Fatalf("stopped=%v", report.Stopped)
	}
}

func TestAssembleReportTimestamps(t *testing.T) {
	begin := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	chain := ChainResult{
		Clients:  []map[string]any{{"CLI_COD": "27106", "CLI_NOME": "LOS MENSCH + ARBEITSWELT"}},
		Accounts: []map[string]any{{"CTB_COD": "27106", "CTB_DATAINIZIO": begin}},
	}

	report, err := AssembleReport(internal.ClientRecord{}, internal.SourceHeuristic, chain)
	if err != nil {
		t.Fatal(err)
	}
	got := report.Hops[1].Rows[0]["CTB_DATAINIZIO"]
	if got != "2023-04-01T00:00:00Z" {
		t.Fatalf("got %v", got)
	}
}

func TestAssembleReportRejectsOpaqueValues(t *testing.T) {
	chain := ChainResult{
		Clients: []map[string]any{{"CLI_COD": struct{ X int }{1}}},
	}
	if _, err := AssembleReport(internal.ClientRecord{}, internal.SourceHeuristic, chain); err == nil {
		t.Fatalf("expected serialization error")
	}
}

func TestAssembleReportProjectsColumns(t *testing.T) {
	chain := ChainResult{
		Clients: []map[string]any{{"CLI_COD": "27106", "CLI_NOME": "X", "CLI_INTERNAL": "drop me"}},
	}
	report, err := AssembleReport(internal.ClientRecord{}, internal.SourceHeuristic, chain)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := report.Hops[0].Rows[0]["CLI_INTERNAL"]; ok {
		t.Fatalf("unprojected column kept")
	}
}

func TestMarshalReport(t *testing.T) {
	rec := internal.ClientRecord{ClientName: util.StringPtr("Solo Client")}
	report, err := AssembleReport(rec, internal.SourceRemote, ChainResult{Stopped: util.StringPtr(StopNoClient)})
	if err != nil {
		t.Fatal(err)
	}
	blob, err := MarshalReport(report)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(blob, `"source": "remote"`) || !strings.Contains(blob, `"stopped": "no client"`) {
		t.Fatalf("unexpected json: %s", blob)
	}
}
