package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Entry is the last known outcome for one image, keyed by content hash.
type Entry struct {
	ContentHash string
	SourcePath  string
	Status      constants.ResultStatus
	Reply       string
	Error       string
	UpdatedAt   time.Time
}

// Journal records per-image outcomes so an interrupted batch can resume.
type Journal interface {
	// Get returns the entry for hash; ok is false when none is recorded.
	Get(ctx context.Context, hash string) (entry Entry, ok bool, err error)
	// Record inserts or replaces the entry for e.ContentHash.
	Record(ctx context.Context, e Entry) error
	Close() error
}

type Config struct {
	Driver string // "sqlite" | "pgx"
	DSN    string // empty disables the journal
}

// Open returns a SQL-backed journal, or a NopJournal when cfg.DSN is empty.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DSN == "" {
		logger.Debug("journal.disabled")
		return NewNopJournal(), nil
	}
	var (
		j   *SQLJournal
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		j, err = OpenSQLite(ctx, cfg.DSN, logger)
	case "pgx":
		j, err = OpenPostgres(ctx, PostgresConfig{DSN: cfg.DSN}, logger)
	default:
		return nil, fmt.Errorf("journal: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}
