// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the pure-Go modernc driver. ReplaceAll runs a DELETE and
// prepared INSERTs inside one transaction; SQLite has no bulk-load API like
// Postgres COPY.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"payroll/internal/ddl"
	sqliteddl "payroll/internal/storage/sqlite/ddl"

	_ "modernc.org/sqlite"
)

// Config holds SQLite repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []ddl.Column
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:report.db?_pragma=busy_timeout(5000)"
//	"report.db"
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// ReplaceAll deletes every row of the configured table and inserts rows with
// a prepared INSERT, all in one transaction. A failure leaves the table as it
// was.
func (r *Repository) ReplaceAll(ctx context.Context, rows [][]any) (int64, error) {
	if len(r.cfg.Columns) == 0 {
		return 0, fmt.Errorf("sqlite: ReplaceAll: columns must not be empty")
	}

	table := sqliteddl.Dialect.QuoteFQN(r.cfg.Table)
	cols := make([]string, len(r.cfg.Columns))
	placeholders := make([]string, len(r.cfg.Columns))
	for i, c := range r.cfg.Columns {
		cols[i] = sqliteddl.Dialect.QuoteIdent(c.Name)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: delete: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(cols) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: ReplaceAll: row length %d != columns length %d", len(row), len(cols))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes a single SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}
