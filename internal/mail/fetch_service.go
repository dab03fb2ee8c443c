package mail

import (
	"vega/internal/storage"
)

type FetchService struct {
	db        *storage.DB
	connector Connector
	store     *StoreService
}

type FetchResult struct {
	Fetched int
	Stored  int
	Skipped int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector Connector) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		store:     NewStoreService(db, rawMailDir),
	}
}

// FetchAndStore pulls a batch from the mailbox and journals the messages that
// can carry a contract. A message without a PDF attachment, or one whose MIME
// structure cannot be parsed, is counted as skipped and never stored: nothing
// downstream could analyse it.
func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		env, err := ParseEnvelope(msg.Raw)
		if err != nil || len(env.Attachments) == 0 {
			result.Skipped++
			continue
		}
		if _, err := s.store.Store(msg); err != nil {
			return result, err
		}
		result.Stored++
	}

	return result, nil
}
