package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OpenPostgres creates a pgx pool, wraps it as *sql.DB and ensures the
// card_results table exists.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*SQLJournal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 2
	}
	if cfg.MaxConnIdleTime <= 0 {
		cfg.MaxConnIdleTime = 5 * time.Minute
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("journal.pgx.parse_failed", "error", err)
		return nil, fmt.Errorf("parse journal dsn: %w", err)
	}
	pc.MaxConns = cfg.MaxConns
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "cardscan"

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("journal.pgx.connect_failed", "error", err)
		return nil, fmt.Errorf("connect journal db: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	j, err := newSQLJournal(dialCtx, db, dollarPlaceholders, pool.Close, logger)
	if err != nil {
		db.Close()
		pool.Close()
		return nil, err
	}
	logger.Info("journal.opened", "driver", "pgx", "host", pc.ConnConfig.Host, "database", pc.ConnConfig.Database)
	return j, nil
}
