// Package ddl renders Postgres DDL for the report table.
package ddl

import (
	"context"
	"strings"

	gddl "payroll/internal/ddl"
)

// Execer is the subset of storage.Repository used to apply DDL.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// Dialect quotes with double quotes and guards with IF NOT EXISTS.
var Dialect = gddl.Dialect{
	Name:       "postgres ddl",
	QuoteIdent: func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` },
	Guard:      gddl.IfNotExists,
}

// MapType maps a logical column kind to a Postgres type.
func MapType(kind string) string {
	switch strings.ToLower(kind) {
	case "int":
		return "INTEGER"
	case "bigint":
		return "BIGINT"
	case "numeric", "decimal":
		return "NUMERIC"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders an idempotent CREATE TABLE for def.
func BuildCreateTableSQL(def gddl.TableDef) (string, error) {
	return Dialect.BuildCreateTableSQL(def)
}

// EnsureTable creates def through repo if it does not exist.
func EnsureTable(ctx context.Context, repo Execer, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, sql)
}
