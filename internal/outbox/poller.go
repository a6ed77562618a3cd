package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dwikikusuma/nomino/pkg/broker"
)

type Source interface {
	FetchUnprocessed(ctx context.Context, limit int) ([]Event, error)
	MarkProcessed(ctx context.Context, id int64) error
}

// Poller relays committed events to a broker. An event is marked only
// after a successful publish, so delivery is at-least-once.
type Poller struct {
	src      Source
	pub      broker.Publisher
	log      *slog.Logger
	interval time.Duration
	batch    int
}

func NewPoller(src Source, pub broker.Publisher, log *slog.Logger, interval time.Duration, batch int) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Poller{src: src, pub: pub, log: log, interval: interval, batch: batch}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.Flush(ctx); err != nil && ctx.Err() == nil {
				p.log.Warn("outbox flush stopped early", slog.Any("err", err))
			}
		}
	}
}

// Flush publishes one batch and returns how many events were relayed. It
// stops at the first failure so later events for the same order are not
// published ahead of an earlier one.
func (p *Poller) Flush(ctx context.Context) (int, error) {
	events, err := p.src.FetchUnprocessed(ctx, p.batch)
	if err != nil {
		return 0, fmt.Errorf("fetch events: %w", err)
	}

	sent := 0
	for _, e := range events {
		msg := broker.Message{
			ID:         strconv.FormatInt(e.ID, 10),
			Key:        e.AggregateID,
			Type:       e.Type,
			Body:       e.Payload,
			OccurredAt: e.CreatedAt,
		}
		if err := p.pub.Publish(ctx, msg); err != nil {
			return sent, fmt.Errorf("publish event %d: %w", e.ID, err)
		}

		if err := p.src.MarkProcessed(ctx, e.ID); err != nil {
			return sent, fmt.Errorf("mark event %d: %w", e.ID, err)
		}
		sent++

		p.log.Debug("outbox event relayed",
			slog.Int64("event_id", e.ID),
			slog.String("type", e.Type),
			slog.String("aggregate_id", e.AggregateID),
		)
	}
	return sent, nil
}
