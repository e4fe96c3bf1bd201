// Package sqlite persists query history.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Avzar/AeroBot/pkg/logger"
	_ "modernc.org/sqlite"
)

// maxResultLen caps how much of a rendered result is kept per history row.
const maxResultLen = 1000

// HistoryRecord represents one recorded lookup
type HistoryRecord struct {
	ID        int64     `json:"id"`
	ClientID  string    `json:"client_id"`
	Query     string    `json:"query"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"timestamp"`
}

// HistoryStorage is a SQLite-based storage for query history
type HistoryStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewHistoryStorage opens (creating if needed) the history database at dbPath
func NewHistoryStorage(dbPath string, log *logger.Logger) (*HistoryStorage, error) {
	storageLogger := log.Named("sqlite")

	storageLogger.Info("Initializing SQLite storage",
		logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	storage := &HistoryStorage{
		db:     db,
		logger: storageLogger,
	}

	if err := storage.initDB(); err != nil {
		db.Close()
		return nil, err
	}

	return storage, nil
}

// initDB initializes the database tables
func (s *HistoryStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id TEXT NOT NULL,
			query TEXT NOT NULL,
			result TEXT NOT NULL,
			ts TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_history_client_id ON history(client_id)`)
	if err != nil {
		return fmt.Errorf("failed to create client_id index: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_history_ts ON history(ts)`)
	if err != nil {
		return fmt.Errorf("failed to create ts index: %w", err)
	}

	return nil
}

// StoreQuery records a lookup and its rendered result, truncated to
// maxResultLen runes.
func (s *HistoryStorage) StoreQuery(clientID, query, result string) (int64, error) {
	if runes := []rune(result); len(runes) > maxResultLen {
		result = string(runes[:maxResultLen])
	}

	res, err := s.db.Exec(
		`INSERT INTO history (client_id, query, result, ts) VALUES (?, ?, ?, ?)`,
		clientID, query, result, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to store history record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get history record ID: %w", err)
	}

	s.logger.Debug("Stored history record",
		logger.String("client_id", clientID),
		logger.String("query", query),
		logger.Int64("id", id))
	return id, nil
}

// GetRecent returns the most recent records, newest first. clientID narrows
// the result to one client when non-empty.
func (s *HistoryStorage) GetRecent(clientID string, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var (
		rows *sql.Rows
		err  error
	)
	if clientID != "" {
		rows, err = s.db.Query(
			`SELECT id, client_id, query, result, ts FROM history WHERE client_id = ? ORDER BY ts DESC, id DESC LIMIT ?`,
			clientID, limit,
		)
	} else {
		rows, err = s.db.Query(
			`SELECT id, client_id, query, result, ts FROM history ORDER BY ts DESC, id DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Query, &rec.Result, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history records: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (s *HistoryStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
