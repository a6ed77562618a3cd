package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventPlaced        = "order.placed"
	EventCanceled      = "order.canceled"
	EventStatusChanged = "order.status_changed"
)

// Event is appended to the outbox in the same transaction as the change
// it describes.
type Event struct {
	Type       string          `json:"type"`
	OrderID    string          `json:"order_id"`
	UserID     string          `json:"user_id"`
	Status     Status          `json:"status"`
	Previous   Status          `json:"previous_status,omitempty"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ActorID    string          `json:"actor_id"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewEvent(typ string, o Order, prev Status, actorID string, at time.Time) Event {
	return Event{
		Type:       typ,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Previous:   prev,
		TotalPrice: o.TotalPrice,
		ActorID:    actorID,
		OccurredAt: at,
	}
}
