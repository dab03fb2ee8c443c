package pipeline

import (
	"vega/internal/reftables"
	"vega/internal/util"
)

// Stop reasons for the matching chain, one per hop.
const (
	StopNoClient      = "no client"
	StopNoAccount     = "no account"
	StopNoContract    = "no contract"
	StopNoPointOfSale = "no point-of-sale"
	StopNoModel       = "no model"
)

// ChainResult carries the raw matched rows per hop. A nil Stopped means the
// chain ran through all five tables with matches; otherwise Stopped names
// the first empty hop and every later hop never ran.
type ChainResult struct {
	Clients      []map[string]any
	Accounts     []map[string]any
	Contracts    []map[string]any
	PointsOfSale []map[string]any
	Models       []map[string]any
	Stopped      *string
}

// Matcher resolves a client name across the five-table chain using exact
// equality on normalized keys. Read-only; safe to reuse across runs.
type Matcher struct {
	idx *reftables.Index
}

func NewMatcher(set reftables.Set) *Matcher {
	return &Matcher{idx: reftables.BuildIndex(set)}
}

// Match walks client -> account -> contract -> point-of-sale -> model.
// An empty match set at any hop short-circuits the rest; every stopping
// point is a valid terminal outcome, not an error.
func (m *Matcher) Match(clientName string) ChainResult {
	var res ChainResult

	name := util.NormalizeName(clientName)
	if name == "" {
		res.Stopped = util.StringPtr(StopNoClient)
		return res
	}
	res.Clients = m.idx.ClientsByName[name]
	if len(res.Clients) == 0 {
		res.Stopped = util.StringPtr(StopNoClient)
		return res
	}

	// More than one client row matching the name resolves to the first row.
	clientCode := util.NormalizeCode(stringCell(res.Clients[0], "CLI_COD"))
	res.Accounts = m.idx.AccountsByCode[clientCode]
	if len(res.Accounts) == 0 {
		res.Stopped = util.StringPtr(StopNoAccount)
		return res
	}

	// Contract rows follow account order; a seat shared by several account
	// rows expands only once.
	seenSeats := map[string]struct{}{}
	for _, acc := range res.Accounts {
		seat := util.NormalizeCode(stringCell(acc, "CTB_COD"))
		if seat == "" {
			continue
		}
		if _, dup := seenSeats[seat]; dup {
			continue
		}
		seenSeats[seat] = struct{}{}
		res.Contracts = append(res.Contracts, m.idx.ContractsBySeat[seat]...)
	}
	if len(res.Contracts) == 0 {
		res.Stopped = util.StringPtr(StopNoContract)
		return res
	}

	res.PointsOfSale = m.idx.PosByClient[clientCode]
	if len(res.PointsOfSale) == 0 {
		res.Stopped = util.StringPtr(StopNoPointOfSale)
		return res
	}

	modelCodes := map[int]struct{}{}
	order := make([]int, 0, len(res.PointsOfSale))
	for _, pos := range res.PointsOfSale {
		code, ok := util.CoerceInt(stringCell(pos, "UPV_MOD"))
		if !ok {
			continue
		}
		if _, dup := modelCodes[code]; dup {
			continue
		}
		modelCodes[code] = struct{}{}
		order = append(order, code)
	}
	for _, code := range order {
		res.Models = append(res.Models, m.idx.ModelsByCode[code]...)
	}
	if len(res.Models) == 0 {
		res.Stopped = util.StringPtr(StopNoModel)
	}
	return res
}

func stringCell(row map[string]any, col string) string {
	if v, ok := row[col].(string); ok {
		return v
	}
	return ""
}
