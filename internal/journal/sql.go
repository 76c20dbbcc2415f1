package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/cardscan/constants"
)

const createTable = `CREATE TABLE IF NOT EXISTS card_results (
	content_hash TEXT PRIMARY KEY,
	source_path  TEXT NOT NULL,
	status       TEXT NOT NULL,
	reply        TEXT NOT NULL DEFAULT '',
	error        TEXT NOT NULL DEFAULT '',
	updated_at   TEXT NOT NULL
)`

const upsert = `INSERT INTO card_results (content_hash, source_path, status, reply, error, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (content_hash) DO UPDATE SET
	source_path = excluded.source_path,
	status      = excluded.status,
	reply       = excluded.reply,
	error       = excluded.error,
	updated_at  = excluded.updated_at`

const selectByHash = `SELECT source_path, status, reply, error, updated_at
FROM card_results WHERE content_hash = ?`

// SQLJournal stores entries in the card_results table of a database/sql handle.
type SQLJournal struct {
	db          *sql.DB
	placeholder func(query string) string
	closer      func()
	logger      *slog.Logger
	now         func() time.Time
}

// OpenSQLite opens (or creates) a SQLite database at path and ensures the
// card_results table exists.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLJournal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	j, err := newSQLJournal(ctx, db, func(q string) string { return q }, nil, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("journal.opened", "driver", "sqlite", "path", path)
	return j, nil
}

func newSQLJournal(ctx context.Context, db *sql.DB, placeholder func(string) string, closer func(), logger *slog.Logger) (*SQLJournal, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging journal db: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("creating card_results table: %w", err)
	}
	return &SQLJournal{
		db:          db,
		placeholder: placeholder,
		closer:      closer,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (j *SQLJournal) Get(ctx context.Context, hash string) (Entry, bool, error) {
	var (
		e       = Entry{ContentHash: hash}
		status  string
		updated string
	)
	err := j.db.QueryRowContext(ctx, j.placeholder(selectByHash), hash).
		Scan(&e.SourcePath, &status, &e.Reply, &e.Error, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading journal entry %s: %w", hash, err)
	}
	e.Status = constants.ResultStatus(status)
	if t, perr := time.Parse(time.RFC3339Nano, updated); perr == nil {
		e.UpdatedAt = t
	} else {
		j.logger.Warn("journal.get.bad_timestamp", "hash", hash, "value", updated)
	}
	return e, true, nil
}

func (j *SQLJournal) Record(ctx context.Context, e Entry) error {
	if e.ContentHash == "" {
		return errors.New("journal: content hash is required")
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = j.now()
	}
	_, err := j.db.ExecContext(ctx, j.placeholder(upsert),
		e.ContentHash, e.SourcePath, string(e.Status), e.Reply, e.Error,
		e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording journal entry %s: %w", e.ContentHash, err)
	}
	j.logger.Debug("journal.record", "hash", e.ContentHash, "status", e.Status, "path", e.SourcePath)
	return nil
}

// Close closes the underlying database connection.
func (j *SQLJournal) Close() error {
	err := j.db.Close()
	if j.closer != nil {
		j.closer()
	}
	return err
}

// dollarPlaceholders rewrites ? placeholders as $1, $2, ... for Postgres.
func dollarPlaceholders(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
