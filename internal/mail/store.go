package mail

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"vega/internal"
	"vega/internal/storage"
)

// StoreService persists a fetched message: the raw RFC 5322 bytes go to the
// raw-mail directory keyed by content hash, the metadata into the journal.
type StoreService struct {
	db         *storage.DB
	rawMailDir string
}

func NewStoreService(db *storage.DB, rawMailDir string) *StoreService {
	return &StoreService{db: db, rawMailDir: rawMailDir}
}

func (s *StoreService) Store(msg internal.ContractMail) (internal.ContractRow, error) {
	hashBytes := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawMailDir, 0o755); err != nil {
		return internal.ContractRow{}, err
	}

	rawPath := filepath.Join(s.rawMailDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.ContractRow{}, err
		}
	}

	return s.db.UpsertContract(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
}
