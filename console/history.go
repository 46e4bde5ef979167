package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/tursodatabase/libsql-client-go/libsql"

	"patchdeck/coordinator"
)

// SubmissionRecord is one row of the submission audit history
type SubmissionRecord struct {
	ID        int64     `json:"id"`
	EventType string    `json:"eventType"`
	Domain    string    `json:"domain"`
	HostID    string    `json:"hostId,omitempty"`
	Items     []string  `json:"items"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmissionStore persists coordinator audit events so operators can review
// what was submitted after the fact. This is an audit log, not coordinator
// state: selection and ledger contents are never restored from it.
type SubmissionStore struct {
	db *sql.DB
}

// NewSubmissionStore opens the history database. The connection URL is
// either a plain SQLite path or the embedded replica form
// 'dbPath|primaryUrl|authToken'.
func NewSubmissionStore(connURL string) (*SubmissionStore, error) {
	var db *sql.DB
	var err error

	if strings.Contains(connURL, "|") {
		parts := strings.Split(connURL, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid connection URL format; expected 'dbPath|primaryUrl|authToken'")
		}

		dbPath := parts[0]
		remoteURL := parts[1]
		authToken := parts[2]

		var opts []libsql.Option
		if remoteURL != "" && remoteURL != "none" {
			opts = append(opts, libsql.WithProxy(remoteURL))
		}
		if authToken != "" && authToken != "none" {
			opts = append(opts, libsql.WithAuthToken(authToken))
		}

		connector, err := libsql.NewConnector(dbPath, opts...)
		if err != nil {
			return nil, fmt.Errorf("error creating libsql connector: %w", err)
		}
		db = sql.OpenDB(connector)
	} else {
		db, err = sql.Open("sqlite3", connURL)
		if err != nil {
			return nil, fmt.Errorf("error opening history database: %w", err)
		}
	}

	store := &SubmissionStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SubmissionStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_type TEXT NOT NULL,
			domain TEXT NOT NULL,
			host_id TEXT,
			items TEXT NOT NULL,
			accepted INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("error creating submissions table: %w", err)
	}
	return nil
}

// Record appends one coordinator event to the history
func (s *SubmissionStore) Record(event coordinator.Event) error {
	items := make([]string, 0, len(event.Keys))
	for _, key := range event.Keys {
		items = append(items, key.String())
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("error encoding items: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO submissions (event_type, domain, host_id, items, accepted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(event.Type), event.Domain, event.HostID, string(encoded), event.Accepted, event.Time,
	)
	if err != nil {
		return fmt.Errorf("error recording submission: %w", err)
	}
	return nil
}

// Recent returns up to limit history rows, newest first
func (s *SubmissionStore) Recent(limit int) ([]SubmissionRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, event_type, domain, host_id, items, accepted, created_at
		 FROM submissions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying submissions: %w", err)
	}
	defer rows.Close()

	records := make([]SubmissionRecord, 0)
	for rows.Next() {
		var rec SubmissionRecord
		var encoded string
		var accepted int
		if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Domain, &rec.HostID, &encoded, &accepted, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning submission row: %w", err)
		}
		if err := json.Unmarshal([]byte(encoded), &rec.Items); err != nil {
			return nil, fmt.Errorf("error decoding items: %w", err)
		}
		rec.Accepted = accepted != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database
func (s *SubmissionStore) Close() error {
	return s.db.Close()
}
