// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// CREATE TABLE statements from it for a given Dialect.
//
// Backend packages (internal/storage/<kind>/ddl) supply the dialect: identifier
// quoting, the idempotency guard and the kind→type mapping.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures what differs between SQL backends when creating a table.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string

	// QuoteIdent quotes one identifier segment. Nil emits names as-is.
	QuoteIdent func(string) string

	// Guard wraps a CREATE TABLE statement so it is a no-op when the table
	// exists. quotedFQN is the quoted table name. Nil leaves the statement
	// unguarded.
	Guard func(quotedFQN, create string) string
}

// Generic renders plain CREATE TABLE without quoting or guard.
var Generic = Dialect{Name: "ddl"}

// IfNotExists is a Guard for dialects supporting CREATE TABLE IF NOT EXISTS.
func IfNotExists(_ string, create string) string {
	return strings.Replace(create, "CREATE TABLE ", "CREATE TABLE IF NOT EXISTS ", 1)
}

// QuoteFQN quotes each dotted segment of fqn with quote, skipping empty
// segments.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.quote(p))
	}
	return strings.Join(out, ".")
}

func (d Dialect) quote(id string) string {
	if d.QuoteIdent == nil {
		return id
	}
	return d.QuoteIdent(id)
}

// BuildCreateTableSQL renders a CREATE TABLE statement for t, one
// "<name> <type> NOT NULL" line per column in declaration order. The table
// name, every column name and every type must be non-empty.
func (d Dialect) BuildCreateTableSQL(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("%s: column %s missing SQLType", d.Name, name)
		}
		cols = append(cols, d.quote(name)+" "+typ+" NOT NULL")
	}

	quoted := d.QuoteFQN(fqn)
	stmt := fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", quoted, strings.Join(cols, ",\n  "))
	if d.Guard != nil {
		stmt = d.Guard(quoted, stmt)
	}
	return stmt, nil
}
