// This adapter wires the Postgres backend into the storage-agnostic factory by
// registering a constructor and a DDL bootstrapper at init time. Callers obtain
// a Repository via storage.New(...) without importing this package directly.

package postgres

import (
	"context"
	"fmt"

	"payroll/internal/ddl"
	"payroll/internal/storage"
	pgddl "payroll/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo implements storage.Repository by delegating to the concrete
// *postgres.Repository while providing a Close method that calls the close
// function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres",
		func(ctx context.Context, repo storage.Repository, table string, cols []ddl.Column) error {
			if err := pgddl.EnsureTable(ctx, repo, ddl.FromColumns(table, cols, pgddl.MapType)); err != nil {
				return fmt.Errorf("apply DDL: %w", err)
			}
			return nil
		})
}
