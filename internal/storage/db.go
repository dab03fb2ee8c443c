package storage

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"vega/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS contracts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS analyses (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  contractId INTEGER,
  pdfName TEXT NOT NULL,
  clientJson TEXT NOT NULL,
  reportJson TEXT NOT NULL,
  review TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(contractId) REFERENCES contracts(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  contractId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(contractId) REFERENCES contracts(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertContract(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.ContractRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO contracts (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.ContractRow{}, err
	}

	row, err := d.GetContractByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.ContractRow{}, err
	}
	if row == nil {
		return internal.ContractRow{}, errors.New("failed to upsert contract")
	}
	return *row, nil
}

func (d *DB) GetContractByProviderMessageID(provider, messageID string) (*internal.ContractRow, error) {
	row, err := scanContract(d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM contracts WHERE provider = ? AND messageId = ?
`, provider, messageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanContract tolerates NULL in the nullable metadata columns.
func scanContract(s rowScanner) (internal.ContractRow, error) {
	var row internal.ContractRow
	var subject, sender, receivedAt sql.NullString
	err := s.Scan(&row.ID, &row.Provider, &row.MessageID, &subject, &sender, &receivedAt, &row.Hash, &row.Status, &row.RawRef)
	if err != nil {
		return internal.ContractRow{}, err
	}
	row.Subject = subject.String
	row.Sender = sender.String
	row.ReceivedAt = receivedAt.String
	return row, nil
}

func (d *DB) MustContractByProviderMessageID(provider, messageID string) (internal.ContractRow, error) {
	row, err := d.GetContractByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.ContractRow{}, err
	}
	if row == nil {
		return internal.ContractRow{}, errors.New("contract not found: " + provider + "/" + messageID)
	}
	return *row, nil
}

func (d *DB) ListContractsByStatus(status string, limit int) ([]internal.ContractRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM contracts WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ContractRow
	for rows.Next() {
		row, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateContractStatus(contractID int, status string) error {
	_, err := d.conn.Exec(`UPDATE contracts SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, contractID)
	return err
}

func (d *DB) ClearContractAnalyses(contractID int) error {
	_, err := d.conn.Exec(`DELETE FROM analyses WHERE contractId = ?`, contractID)
	return err
}

func (d *DB) InsertAnalysis(contractID *int, pdfName, clientJSON, reportJSON string, review *string) (int64, error) {
	res, err := d.conn.Exec(`
INSERT INTO analyses (contractId, pdfName, clientJson, reportJson, review)
VALUES (?, ?, ?, ?, ?)
`, contractID, pdfName, clientJSON, reportJSON, review)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *DB) GetAnalysisByID(id int) (*internal.AnalysisRow, error) {
	var row internal.AnalysisRow
	err := d.conn.QueryRow(`
SELECT id, contractId, pdfName, clientJson, reportJson, review, createdAt
FROM analyses WHERE id = ?
`, id).Scan(&row.ID, &row.ContractID, &row.PDFName, &row.ClientJSON, &row.ReportJSON, &row.Review, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListAnalysesForContract(contractID int) ([]internal.AnalysisRow, error) {
	rows, err := d.conn.Query(`
SELECT id, contractId, pdfName, clientJson, reportJson, review, createdAt
FROM analyses WHERE contractId = ? ORDER BY id ASC
`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.AnalysisRow
	for rows.Next() {
		var row internal.AnalysisRow
		if err := rows.Scan(&row.ID, &row.ContractID, &row.PDFName, &row.ClientJSON, &row.ReportJSON, &row.Review, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, contractID *int, timingsJSON, countsJSON string) error {
	_, err := d.conn.Exec(`
INSERT INTO runs (traceId, contractId, timingsJson, countsJson)
VALUES (?, ?, ?, ?)
`, traceID, contractID, timingsJSON, countsJSON)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updatedAt=CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
