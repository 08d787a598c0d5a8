package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PGStore is a Postgres-backed ChatStateStore for managed mode. The
// chat_states table is created by the migrate command, not here.
type PGStore struct {
	db *sql.DB
}

// NewPGStore connects to Postgres using the given DSN.
func NewPGStore(dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PGStore{db: db}, nil
}

func (s *PGStore) Put(ctx context.Context, state ChatState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_states (phone_number_id, contact_wa_id, contact_name, last_message_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone_number_id, contact_wa_id)
		DO UPDATE SET contact_name = EXCLUDED.contact_name, last_message_at = EXCLUDED.last_message_at`,
		state.PhoneNumberID, state.ContactWAID, state.ContactName, state.LastMessageAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert chat state: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, phoneNumberID, contactWAID string) (*ChatState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT phone_number_id, contact_wa_id, contact_name, last_message_at
		FROM chat_states WHERE phone_number_id = $1 AND contact_wa_id = $2`,
		phoneNumberID, contactWAID)
	return scanState(row)
}

func (s *PGStore) List(ctx context.Context, phoneNumberID string) ([]ChatState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT phone_number_id, contact_wa_id, contact_name, last_message_at
		FROM chat_states WHERE phone_number_id = $1
		ORDER BY last_message_at DESC`, phoneNumberID)
	if err != nil {
		return nil, fmt.Errorf("list chat states: %w", err)
	}
	defer rows.Close()
	return scanStates(rows)
}

func (s *PGStore) Close() error { return s.db.Close() }
