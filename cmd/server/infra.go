package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"verireg/internal/platform/config"
	"verireg/internal/platform/kafka/producer"
	"verireg/internal/platform/postgres"
	"verireg/internal/platform/redis"
)

// infra holds the optional external connections. Each field is nil when
// the matching setting is absent.
type infra struct {
	db       *sql.DB
	redis    *redis.Client
	producer *producer.Producer
	logger   *slog.Logger
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{logger: log}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, postgres.Config{
			DSN:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		in.db = db
		if err := postgres.Migrate(ctx, db); err != nil {
			in.Close()
			return nil, err
		}
		log.Info("connected to postgres")
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client != nil {
		in.redis = client
		log.Info("connected to redis")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		p, err := producer.New(producer.Config{Brokers: cfg.Kafka.Brokers}, log)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.producer = p
		if err := p.EnsureTopic(ctx, cfg.Kafka.Topic, 1, 1); err != nil {
			log.Warn("could not ensure kafka topic; relying on broker auto-creation",
				"topic", cfg.Kafka.Topic,
				"error", err,
			)
		}
	}

	return in, nil
}

// Healthy pings every configured dependency.
func (in *infra) Healthy(ctx context.Context) error {
	if in.db != nil {
		if err := in.db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

func (in *infra) Close() {
	if in.producer != nil {
		in.producer.Close(context.Background())
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			in.logger.Warn("closing redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			in.logger.Warn("closing postgres", "error", err)
		}
	}
}
