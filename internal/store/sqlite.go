package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a file-backed ChatStateStore for standalone mode.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chat_states (
	phone_number_id TEXT NOT NULL,
	contact_wa_id   TEXT NOT NULL,
	contact_name    TEXT NOT NULL DEFAULT '',
	last_message_at TIMESTAMP NOT NULL,
	PRIMARY KEY (phone_number_id, contact_wa_id)
);`

// NewSQLiteStore opens (and initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes itself; one connection avoids
	// SQLITE_BUSY under concurrent upserts.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, state ChatState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_states (phone_number_id, contact_wa_id, contact_name, last_message_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (phone_number_id, contact_wa_id)
		DO UPDATE SET contact_name = excluded.contact_name, last_message_at = excluded.last_message_at`,
		state.PhoneNumberID, state.ContactWAID, state.ContactName, state.LastMessageAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert chat state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, phoneNumberID, contactWAID string) (*ChatState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT phone_number_id, contact_wa_id, contact_name, last_message_at
		FROM chat_states WHERE phone_number_id = ? AND contact_wa_id = ?`,
		phoneNumberID, contactWAID)
	return scanState(row)
}

func (s *SQLiteStore) List(ctx context.Context, phoneNumberID string) ([]ChatState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT phone_number_id, contact_wa_id, contact_name, last_message_at
		FROM chat_states WHERE phone_number_id = ?
		ORDER BY last_message_at DESC`, phoneNumberID)
	if err != nil {
		return nil, fmt.Errorf("list chat states: %w", err)
	}
	defer rows.Close()
	return scanStates(rows)
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(row rowScanner) (*ChatState, error) {
	var st ChatState
	var ts time.Time
	err := row.Scan(&st.PhoneNumberID, &st.ContactWAID, &st.ContactName, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat state: %w", err)
	}
	st.LastMessageAt = ts
	return &st, nil
}

func scanStates(rows *sql.Rows) ([]ChatState, error) {
	var out []ChatState
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}
