// Package ddl renders SQL Server DDL for the report table.
package ddl

import (
	"context"
	"fmt"
	"strings"

	gddl "payroll/internal/ddl"
)

// Execer is the subset of storage.Repository used to apply DDL.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// Dialect brackets identifiers. SQL Server has no CREATE TABLE IF NOT EXISTS,
// so the statement is guarded with OBJECT_ID.
var Dialect = gddl.Dialect{
	Name:       "mssql ddl",
	QuoteIdent: func(s string) string { return `[` + strings.ReplaceAll(s, `]`, `]]`) + `]` },
	Guard: func(quoted, create string) string {
		lit := strings.ReplaceAll(quoted, `'`, `''`)
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;", lit, create)
	},
}

// MapType maps a logical column kind to a SQL Server type.
func MapType(kind string) string {
	switch strings.ToLower(kind) {
	case "int":
		return "INT"
	case "bigint":
		return "BIGINT"
	case "numeric", "decimal":
		return "DECIMAL(38,10)"
	default:
		return "NVARCHAR(400)"
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
