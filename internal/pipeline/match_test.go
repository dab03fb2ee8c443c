package pipeline

import (
	"testing"

	"vega/internal/reftables"
)

func mustTable(t *testing.T, name string, rows [][]string) reftables.Table {
	t.Helper()
	table, err := reftables.FromRows(name, rows)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func testSet(t *testing.T) reftables.Set {
	t.Helper()
	return reftables.Set{
		Clienti: mustTable(t, "clienti", [][]string{
			{"CLI_COD", "CLI_NOME", "CLI_NOME2"},
			{"27106.0", "LOS MENSCH + ARBEITSWELT", ""},
			{"31442", "BERGQUELL GETRÄNKE AG", "Bergquell"},
			{"99999", "SOLO CLIENT", ""},
		}),
		Ctbcont: mustTable(t, "ctbcont", [][]string{
			{"CTB_COD", "CTB_DES"},
			{"27106", "Vertrag Basis"},
		}),
		Contratti: mustTable(t, "contratti", [][]string{
			{"CNTR_NUM", "CNTR_SEDELEGALE"},
			{"C-1", "27106"},
		}),
		Unopv: mustTable(t, "unopv", [][]string{
			{"UPV_CLI", "UPV_MOD", "UPV_DES"},
			{"27106", "12.0", "Kasino Aarau"},
		}),
		Modelli: mustTable(t, "modelli", [][]string{
			{"MOD_COD", "MOD_DES"},
			{"12", "Necta Krea"},
		}),
	}
}

func TestMatchFullChain(t *testing.T) {
	m := NewMatcher(testSet(t))

	// Separator and case differences against the table spelling must not
	// break the exact match on normalized keys.
	res := m.Match("Los Mensch+Arbeitswelt")
	if res.Stopped != nil {
		t.Fatalf("stopped=%s", *res.Stopped)
	}
	if len(res.Clients) != 1 || len(res.Accounts) != 1 || len(res.Contracts) != 1 || len(res.PointsOfSale) != 1 {
		t.Fatalf("chain lens=%d/%d/%d/%d", len(res.Clients), len(res.Accounts), len(res.Contracts), len(res.PointsOfSale))
	}
	if len(res.Models) != 1 || res.Models[0]["MOD_DES"] != "Necta Krea" {
		t.Fatalf("models=%+v", res.Models)
	}
}

func TestMatchNoClient(t *testing.T) {
	m := NewMatcher(testSet(t))
	res := m.Match("Unbekannte Firma GmbH")
	if res.Stopped == nil || *res.Stopped != StopNoClient {
		t.Fatalf("stopped=%v", res.Stopped)
	}
	if len(res.Clients) != 0 {
		t.Fatalf("clients=%d", len(res.Clients))
	}
}

func TestMatchEmptyName(t *testing.T) {
	m := NewMatcher(testSet(t))
	res := m.Match("  ")
	if res.Stopped == nil || *res.Stopped != StopNoClient {
		t.Fatalf("stopped=%v", res.Stopped)
	}
}

func TestMatchStopsAtAccount(t *testing.T) {
	m := NewMatcher(testSet(t))
	res := m.Match("Solo Client")
	if res.Stopped == nil || *res.Stopped != StopNoAccount {
		t.Fatalf("stopped=%v", res.Stopped)
	}
	if len(res.Clients) != 1 || len(res.Accounts) != 0 {
		t.Fatalf("clients=%d accounts=%d", len(res.Clients), len(res.Accounts))
	}
}

func TestMatchSecondaryName(t *testing.T) {
	m := NewMatcher(testSet(t))
	res := m.Match("bergquell")
	if len(res.Clients) != 1 {
		t.Fatalf("clients=%d", len(res.Clients))
	}
}

func TestMatchContractsStableAcrossAccounts(t *testing.T) {
	set := testSet(t)
	set.Ctbcont = mustTable(t, "ctbcont", [][]string{
		{"CTB_COD", "CTB_DES"},
		{"27106", "Vertrag Basis"},
		{"27106.0", "Vertrag Zusatz"},
	})
	set.Contratti = mustTable(t, "contratti", [][]string{
		{"CNTR_NUM", "CNTR_SEDELEGALE"},
		{"C-1", "27106"},
		{"C-2", "27106"},
	})
	m := NewMatcher(set)

	res := m.Match("Los Mensch + Arbeitswelt")
	if len(res.Accounts) != 2 {
		t.Fatalf("accounts=%d", len(res.Accounts))
	}
	// The seat shared by both account rows expands once, in table order.
	if len(res.Contracts) != 2 {
		t.Fatalf("contracts=%d", len(res.Contracts))
	}
	if res.Contracts[0]["CNTR_NUM"] != "C-1" || res.Contracts[1]["CNTR_NUM"] != "C-2" {
		t.Fatalf("contracts=%+v", res.Contracts)
	}
}

func TestMatchStopsAtModel(t *testing.T) {
	set := testSet(t)
	set.Unopv = mustTable(t, "unopv", [][]string{
		{"UPV_CLI", "UPV_MOD"},
		{"27106", "77"},
	})
	m := NewMatcher(set)
	res := m.Match("Los Mensch + Arbeitswelt")
	if res.Stopped == nil || *res.Stopped != StopNoModel {
		t.Fatalf("stopped=%v", res.Stopped)
	}
	if len(res.PointsOfSale) != 1 || len(res.Models) != 0 {
		t.Fatalf("pos=%d models=%d", len(res.PointsOfSale), len(res.Models))
	}
}
