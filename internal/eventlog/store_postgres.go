package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"herald/internal/events"
	txcontext "herald/pkg/platform/tx"
)

const schema = `
CREATE TABLE IF NOT EXISTS event_log (
	id          UUID PRIMARY KEY,
	category    TEXT NOT NULL,
	kind        TEXT NOT NULL,
	realm_id    TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	received_at TIMESTAMPTZ NOT NULL,
	payload     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS event_log_received_at_idx ON event_log (received_at DESC);
`

// PostgresStore persists records in the event_log table.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgres creates a store on db.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// EnsureSchema creates the event_log table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create event_log schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event events.Event) (Record, error) {
	rec, err := NewRecord(event, s.now())
	if err != nil {
		return Record{}, err
	}

	query := `
		INSERT INTO event_log (id, category, kind, realm_id, occurred_at, received_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		rec.ID,
		rec.Category,
		rec.Kind,
		rec.RealmID,
		rec.OccurredAt,
		rec.ReceivedAt,
		[]byte(rec.Payload),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert event_log entry: %w", err)
	}
	return rec, nil
}

// ListRecent returns up to limit records, newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, category, kind, realm_id, occurred_at, received_at, payload
		FROM event_log
		ORDER BY received_at DESC
		LIMIT $1
	`
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query event_log: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec     Record
			payload []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Category,
			&rec.Kind,
			&rec.RealmID,
			&rec.OccurredAt,
			&rec.ReceivedAt,
			&payload,
		); err != nil {
			return nil, fmt.Errorf("scan event_log entry: %w", err)
		}
		rec.Payload = payload
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event_log: %w", err)
	}
	return records, nil
}
