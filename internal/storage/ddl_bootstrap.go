package storage

import (
	"context"
	"fmt"
	"sync"

	"payroll/internal/ddl"
)

// DDLBootstrapper creates table with cols through repo.Exec if it does not
// exist yet. Backends register one per storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, table string, cols []ddl.Column) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable locates the DDLBootstrapper for cfg.Kind and invokes it with
// cfg.Table and cfg.Columns.
func EnsureTable(ctx context.Context, cfg Config, repo Repository) error {
	ddlMu.RLock()
	fn, ok := ddlFns[cfg.Kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", cfg.Kind)
	}
	return fn(ctx, repo, cfg.Table, cfg.Columns)
}
