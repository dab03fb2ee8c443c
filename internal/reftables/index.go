package reftables

import (
	"vega/internal/util"
)

// Index precomputes the lookup maps the matching chain hits: normalized
// client names, account and point-of-sale codes, contract legal seats and
// coerced model codes. Built once per run; read-only afterwards.
type Index struct {
	ClientsByName   map[string][]map[string]any
	AccountsByCode  map[string][]map[string]any
	ContractsBySeat map[string][]map[string]any
	PosByClient     map[string][]map[string]any
	ModelsByCode    map[int][]map[string]any
}

func BuildIndex(set Set) *Index {
	idx := &Index{
		ClientsByName:   map[string][]map[string]any{},
		AccountsByCode:  map[string][]map[string]any{},
		ContractsBySeat: map[string][]map[string]any{},
		PosByClient:     map[string][]map[string]any{},
		ModelsByCode:    map[int][]map[string]any{},
	}

	for _, row := range set.Clienti.Rows {
		seen := map[string]struct{}{}
		for _, col := range []string{"CLI_NOME", "CLI_NOME2"} {
			name := util.NormalizeName(cell(row, col))
			if name == "" {
				continue
			}
			// A row with identical NOME and NOME2 indexes once.
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			idx.ClientsByName[name] = append(idx.ClientsByName[name], row)
		}
	}

	for _, row := range set.Ctbcont.Rows {
		code := util.NormalizeCode(cell(row, "CTB_COD"))
		if code != "" {
			idx.AccountsByCode[code] = append(idx.AccountsByCode[code], row)
		}
	}

	for _, row := range set.Contratti.Rows {
		seat := util.NormalizeCode(cell(row, "CNTR_SEDELEGALE"))
		if seat != "" {
			idx.ContractsBySeat[seat] = append(idx.ContractsBySeat[seat], row)
		}
	}

	for _, row := range set.Unopv.Rows {
		client := util.NormalizeCode(cell(row, "UPV_CLI"))
		if client != "" {
			idx.PosByClient[client] = append(idx.PosByClient[client], row)
		}
	}

	for _, row := range set.Modelli.Rows {
		if code, ok := util.CoerceInt(cell(row, "MOD_COD")); ok {
			idx.ModelsByCode[code] = append(idx.ModelsByCode[code], row)
		}
	}

	return idx
}

func cell(row map[string]any, col string) string {
	if v, ok := row[col].(string); ok {
		return v
	}
	return ""
}
