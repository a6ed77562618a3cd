package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dwikikusuma/nomino/pkg/postgres"
)

type Event struct {
	ID          int64
	AggregateID string
	Type        string
	Payload     []byte
	CreatedAt   time.Time
}

type Repo struct {
	db postgres.DBTX
}

// NewRepo accepts a pool or a transaction. Append must run on the same
// transaction as the change the event describes.
func NewRepo(db postgres.DBTX) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Append(ctx context.Context, aggregateID, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO outbox_events (aggregate_id, event_type, payload)
		VALUES ($1, $2, $3)`, aggregateID, eventType, body)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// FetchUnprocessed returns pending events oldest first.
func (r *Repo) FetchUnprocessed(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox_events
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e   Event
			agg uuid.UUID
		)
		if err := rows.Scan(&e.ID, &agg, &e.Type, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.AggregateID = agg.String()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) MarkProcessed(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE outbox_events SET processed_at = now() WHERE id = $1`, id)
	return err
}
