package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dwikikusuma/nomino/internal/outbox"
	"github.com/dwikikusuma/nomino/pkg/broker"
	"github.com/dwikikusuma/nomino/pkg/config"
	"github.com/dwikikusuma/nomino/pkg/logger"
	"github.com/dwikikusuma/nomino/pkg/postgres"
	"github.com/dwikikusuma/nomino/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "relay", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	if err := run(cfg, log); err != nil {
		log.Error("relay stopped", slog.Any("err", err), slog.String("broker", cfg.EventBroker))
		os.Exit(1)
	}
	log.Info("bye")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	pub, err := newPublisher(cfg)
	if err != nil {
		return fmt.Errorf("broker setup: %w", err)
	}
	pub = broker.NewBreaker(pub, broker.BreakerOptions{Name: cfg.EventBroker, OpenTimeout: 30 * time.Second}, log)
	defer pub.Close()

	pool, err := postgres.Open(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer pool.Close()

	poller := outbox.NewPoller(outbox.NewRepo(pool), pub, log, cfg.OutboxInterval, cfg.OutboxBatch)

	log.Info("outbox relay starting",
		slog.String("broker", cfg.EventBroker),
		slog.Duration("interval", cfg.OutboxInterval),
		slog.Int("batch", cfg.OutboxBatch))
	poller.Run(ctx)
	return nil
}

func newPublisher(cfg config.Config) (broker.Publisher, error) {
	switch cfg.EventBroker {
	case "kafka":
		return broker.NewKafka(cfg.KafkaTopic, cfg.KafkaBrokers...), nil
	case "rabbitmq", "rabbit":
		return broker.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
	case "none", "":
		return broker.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.EventBroker)
	}
}
