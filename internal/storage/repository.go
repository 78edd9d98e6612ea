// Package storage defines the database mirror for the finished report and a
// small factory that backends register with at init time.
//
// Backends live in subpackages (sqlite, postgres, mssql); import
// payroll/internal/storage/all to enable every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"payroll/internal/ddl"
)

// Repository is the minimal surface the runner needs from a backend.
type Repository interface {
	// ReplaceAll removes every row from the configured table and inserts
	// rows in a single transaction. Each row must have one value per
	// configured column, in column order. It returns the number of rows
	// inserted.
	ReplaceAll(ctx context.Context, rows [][]any) (int64, error)

	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connection or pool.
	Close()
}

// Config is the backend-agnostic repository configuration.
type Config struct {
	Kind    string
	DSN     string
	Table   string
	Columns []ddl.Column
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
