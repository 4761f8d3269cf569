package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/config"
	"github.com/buildhub-th/procure-backend/internal/audit"
	"github.com/buildhub-th/procure-backend/internal/storage/postgres"
)

const pingTimeout = 3 * time.Second

// OpenRedis connects and pings. Rate limiting, outbox locks and the event
// bus all depend on Redis, so a failed ping is fatal to the caller.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// OpenAudit returns the Postgres-backed audit store when a DSN is configured
// and the log-only recorder otherwise. The returned *sql.DB is nil in the
// latter case.
func OpenAudit(ctx context.Context, cfg config.AuditConfig, log *zap.Logger) (audit.Recorder, *sql.DB, error) {
	if cfg.DSN == "" {
		log.Info("AUDIT_DB_DSN not set, audit events go to the log only")
		return audit.LogRecorder{}, nil, nil
	}

	db, err := postgres.NewConnection(ctx, cfg.DSN, pingTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("audit db: %w", err)
	}
	if err := audit.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("audit migrate: %w", err)
	}
	return audit.NewStore(db), db, nil
}
