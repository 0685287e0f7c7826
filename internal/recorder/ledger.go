package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS parse_metrics (
	id             %s,
	method         TEXT NOT NULL,
	provider       TEXT NOT NULL DEFAULT '',
	duration_ms    BIGINT NOT NULL,
	text_length    INTEGER NOT NULL,
	tables_count   INTEGER NOT NULL,
	images_count   INTEGER NOT NULL,
	confidence     REAL NOT NULL,
	file_size      BIGINT NOT NULL,
	page_count     INTEGER NOT NULL,
	recorded_at    TIMESTAMP NOT NULL,
	success        BOOLEAN NOT NULL,
	error_message  TEXT NOT NULL DEFAULT ''
)`

// Ledger persists records in SQL so stats survive restarts. Postgres DSNs go
// through pgx; anything else is treated as an SQLite path.
type Ledger struct {
	db       *sql.DB
	pool     *pgxpool.Pool // nil for sqlite
	postgres bool
	logger   *slog.Logger
}

// OpenLedger connects to the metrics store and ensures the table exists.
func OpenLedger(ctx context.Context, dsn string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{logger: logger}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		logger.Info("recorder.ledger.connecting", "dialect", "postgres")
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			logger.Error("recorder.ledger.connect_failed", "error", err)
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		l.pool = pool
		l.db = stdlib.OpenDBFromPool(pool)
		l.postgres = true
	} else {
		logger.Info("recorder.ledger.connecting", "dialect", "sqlite", "path", dsn)
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			logger.Error("recorder.ledger.connect_failed", "error", err)
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		l.db = db
	}

	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if l.postgres {
		idCol = "BIGSERIAL PRIMARY KEY"
	}
	if _, err := l.db.ExecContext(ctx, fmt.Sprintf(ledgerSchema, idCol)); err != nil {
		_ = l.db.Close()
		return nil, fmt.Errorf("create parse_metrics: %w", err)
	}

	logger.Info("recorder.ledger.ready")
	return l, nil
}

func (l *Ledger) Close() error {
	l.logger.Info("recorder.ledger.closing")
	err := l.db.Close()
	if l.pool != nil {
		l.pool.Close()
	}
	return err
}

// Ping checks connectivity, catching DSN issues early.
func (l *Ledger) Ping(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return l.db.PingContext(ctx)
}

func (l *Ledger) Record(ctx context.Context, r Record) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	q := `INSERT INTO parse_metrics
		(method, provider, duration_ms, text_length, tables_count, images_count,
		 confidence, file_size, page_count, recorded_at, success, error_message)
		VALUES (` + l.placeholders(12) + `)`
	_, err := l.db.ExecContext(ctx, q,
		r.Method, r.Provider, r.Duration.Milliseconds(),
		r.TextLength, r.TablesCount, r.ImagesCount,
		r.Confidence, r.FileSize, r.PageCount,
		r.Timestamp, r.Success, r.ErrorMessage,
	)
	if err != nil {
		l.logger.Error("recorder.ledger.insert_failed", "method", r.Method, "error", err)
		return fmt.Errorf("insert parse_metrics: %w", err)
	}
	return nil
}

// List returns stored records, newest first, optionally filtered by method.
// limit <= 0 returns everything.
func (l *Ledger) List(ctx context.Context, method string, limit int) ([]Record, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT method, provider, duration_ms, text_length, tables_count,
		images_count, confidence, file_size, page_count, recorded_at, success, error_message
		FROM parse_metrics`)
	var args []any
	if method != "" {
		sb.WriteString(" WHERE method = " + l.placeholder(1))
		args = append(args, method)
	}
	sb.WriteString(" ORDER BY recorded_at DESC")
	if limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", limit))
	}

	rows, err := l.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query parse_metrics: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			l.logger.Warn("recorder.ledger.rows_close_error", "error", cerr)
		}
	}()

	var out []Record
	for rows.Next() {
		var r Record
		var durMS int64
		if err := rows.Scan(&r.Method, &r.Provider, &durMS, &r.TextLength, &r.TablesCount,
			&r.ImagesCount, &r.Confidence, &r.FileSize, &r.PageCount,
			&r.Timestamp, &r.Success, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan parse_metrics: %w", err)
		}
		r.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary aggregates the stored records for a method ("" for all).
func (l *Ledger) Summary(ctx context.Context, method string) (Summary, bool, error) {
	records, err := l.List(ctx, method, 0)
	if err != nil {
		return Summary{}, false, err
	}
	s, ok := Summarize(records)
	return s, ok, nil
}

func (l *Ledger) placeholder(n int) string {
	if l.postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (l *Ledger) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = l.placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}
