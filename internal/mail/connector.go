package mail

import "vega/internal"

type Connector interface {
	FetchInbox(label string, max int) ([]internal.ContractMail, error)
}
