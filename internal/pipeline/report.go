package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"vega/internal"
)

// Fixed display projection per table. Key columns always exist (the loader
// enforces them); descriptive columns are skipped when the source file does
// not carry them.
var projections = map[string][]string{
	internal.HopClient:      {"CLI_COD", "CLI_NOME", "CLI_NOME2", "CLI_INDIRIZZO", "CLI_CAP", "CLI_LOCALITA", "CLI_NAZIONE"},
	internal.HopAccount:     {"CTB_COD", "CTB_DES", "CTB_DATAINIZIO", "CTB_DATAFINE"},
	internal.HopContract:    {"CNTR_NUM", "CNTR_SEDELEGALE", "CNTR_TIPO", "CNTR_DATAINIZIO", "CNTR_DATAFINE"},
	internal.HopPointOfSale: {"UPV_CLI", "UPV_MOD", "UPV_DES", "UPV_LOCALITA"},
	internal.HopModel:       {"MOD_COD", "MOD_DES"},
}

var hopOrder = []string{
	internal.HopClient,
	internal.HopAccount,
	internal.HopContract,
	internal.HopPointOfSale,
	internal.HopModel,
}

// AssembleReport flattens the chain result into the serializable report.
// Timestamps become ISO-8601 strings; any other non-primitive cell value is
// a serialization error, fatal to report generation only.
func AssembleReport(rec internal.ClientRecord, source internal.RecordSource, chain ChainResult) (internal.MatchReport, error) {
	report := internal.MatchReport{
		Client:  rec,
		Source:  source,
		Stopped: chain.Stopped,
	}

	perHop := map[string][]map[string]any{
		internal.HopClient:      chain.Clients,
		internal.HopAccount:     chain.Accounts,
		internal.HopContract:    chain.Contracts,
		internal.HopPointOfSale: chain.PointsOfSale,
		internal.HopModel:       chain.Models,
	}

	stopped := false
	for _, hop := range hopOrder {
		rows, err := projectRows(hop, perHop[hop])
		if err != nil {
			return internal.MatchReport{}, err
		}
		status := internal.HopMatched
		if stopped {
			status = internal.HopSkipped
		} else if len(rows) == 0 {
			status = internal.HopEmpty
			stopped = true
		}
		report.Hops = append(report.Hops, internal.HopResult{Table: hop, Status: status, Rows: rows})
	}

	return report, nil
}

func projectRows(table string, rows []map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		projected := map[string]any{}
		for _, col := range projections[table] {
			value, ok := row[col]
			if !ok {
				continue
			}
			clean, err := sanitizeValue(value)
			if err != nil {
				return nil, fmt.Errorf("table %s column %s: %w", table, col, err)
			}
			projected[col] = clean
		}
		out = append(out, projected)
	}
	return out, nil
}

func sanitizeValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64:
		return value, nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	default:
		return nil, fmt.Errorf("value of type %T is not serializable", value)
	}
}

// MarshalReport renders the report as indented JSON for display, storage and
// the anomaly reviewer prompt.
func MarshalReport(report internal.MatchReport) (string, error) {
	blob, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(blob), nil
}
