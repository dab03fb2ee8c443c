package internal

// ClientRecord is the client identity block parsed from one contract PDF.
// All fields are optional; nil means the field could not be determined.
// A record is built once per run and never mutated afterwards.
type ClientRecord struct {
	ClientCode  *string `json:"client_code"`
	ClientName  *string `json:"client_name"`
	ContactName *string `json:"contact_name"`
	Address     *string `json:"address"`
	PostalCode  *string `json:"postal_code"`
	City        *string `json:"city"`
	Country     *string `json:"country"`
}

type RecordSource string

const (
	SourceRemote    RecordSource = "remote"
	SourceHeuristic RecordSource = "heuristic"
)

// Hop names follow the reference table files in chain order.
const (
	HopClient      = "clienti"
	HopAccount     = "ctbcont"
	HopContract    = "contratti"
	HopPointOfSale = "unopv"
	HopModel       = "modelli"
)

type HopStatus string

const (
	// HopMatched means the lookup at this hop produced at least one row.
	HopMatched HopStatus = "MATCHED"
	// HopEmpty means the lookup ran and produced no rows; the chain stops here.
	HopEmpty HopStatus = "EMPTY"
	// HopSkipped means an earlier hop stopped the chain before this one ran.
	HopSkipped HopStatus = "SKIPPED"
)

// HopResult carries the matched rows of one hop, projected to the fixed
// per-table column subset. Row values are primitives or time.Time.
type HopResult struct {
	Table  string           `json:"table"`
	Status HopStatus        `json:"status"`
	Rows   []map[string]any `json:"rows"`
}

// MatchReport is the consolidated outcome of one analysis run. Partial chains
// are valid: Stopped names the terminal condition ("no client", "no account",
// ...) when a hop matched nothing, and stays nil on a full chain.
type MatchReport struct {
	Client  ClientRecord `json:"client"`
	Source  RecordSource `json:"source"`
	Hops    []HopResult  `json:"hops"`
	Stopped *string      `json:"stopped,omitempty"`
}

type ContractMail struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type ContractRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type AnalysisRow struct {
	ID         int
	ContractID *int
	PDFName    string
	ClientJSON string
	ReportJSON string
	Review     *string
	CreatedAt  string
}
