package database

import (
	"context"
	"database/sql"
	"fmt"

	"bin_collection_notifier/internal/domain/notification"
)

// PostgresStateRepository persists notification state in a single keyed
// table. Keys are the one-way address hashes, so the table holds no address
// in cleartext.
type PostgresStateRepository struct {
	db *sql.DB
}

func NewPostgresStateRepository(db *sql.DB) *PostgresStateRepository {
	return &PostgresStateRepository{db: db}
}

// EnsureSchema creates the state table when it does not exist yet.
func (r *PostgresStateRepository) EnsureSchema(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS notification_states (
		address_key   TEXT PRIMARY KEY,
		last_notified DATE,
		snapshot      TEXT NOT NULL DEFAULT '',
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating notification_states table: %w", err)
	}
	return nil
}

func (r *PostgresStateRepository) Get(ctx context.Context, addressKey string) (*notification.State, error) {
	query := `SELECT address_key, last_notified, snapshot FROM notification_states WHERE address_key = $1`
	st := notification.State{}
	var lastNotified sql.NullTime
	err := r.db.QueryRowContext(ctx, query, addressKey).Scan(&st.AddressKey, &lastNotified, &st.Snapshot)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notification.ErrStateNotFound
		}
		return nil, fmt.Errorf("error getting notification state: %w", err)
	}
	if lastNotified.Valid {
		st.LastNotified = lastNotified.Time
	}
	return &st, nil
}

func (r *PostgresStateRepository) Put(ctx context.Context, state *notification.State) error {
	query := `INSERT INTO notification_states (address_key, last_notified, snapshot, updated_at)
               VALUES ($1, $2, $3, NOW())
               ON CONFLICT (address_key) DO UPDATE
               SET last_notified = EXCLUDED.last_notified,
                   snapshot = EXCLUDED.snapshot,
                   updated_at = NOW()`
	var lastNotified sql.NullTime
	if !state.LastNotified.IsZero() {
		lastNotified = sql.NullTime{Time: state.LastNotified, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, state.AddressKey, lastNotified, state.Snapshot); err != nil {
		return fmt.Errorf("error upserting notification state: %w", err)
	}
	return nil
}
