// Package table holds the uniform in-memory representation every source is
// loaded into: a named list of columns plus rows of textual values. Values stay
// text until the stage that needs a number coerces them.
package table

import (
	"fmt"
	"strings"
)

// Row is one data record. Line is the 1-based source line the record started
// on (the header is line 1), kept for diagnostics.
type Row struct {
	Line int
	V    []string
}

// Table is an immutable snapshot of a header-described source.
type Table struct {
	// Name identifies the source in errors and logs (e.g. "manager").
	Name string

	// Columns are the header-declared column names, after header mapping.
	Columns []string

	Rows []Row
}

// New builds a Table from a header and raw records. Line numbers are assigned
// assuming one header line followed by one line per record.
func New(name string, columns []string, records ...[]string) *Table {
	t := &Table{Name: name, Columns: append([]string(nil), columns...)}
	for i, rec := range records {
		t.Rows = append(t.Rows, Row{Line: i + 2, V: rec})
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of column name. An exact match wins; otherwise
// the first case-insensitive match is returned. ok is false when the column is
// absent.
func (t *Table) Index(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i, true
		}
	}
	return -1, false
}

// Resolve returns the index of the first of names present in the header.
// When none is present it returns a *SchemaMismatchError for names[0].
func (t *Table) Resolve(names ...string) (int, error) {
	for _, n := range names {
		if i, ok := t.Index(n); ok {
			return i, nil
		}
	}
	want := ""
	if len(names) > 0 {
		want = names[0]
	}
	return -1, &SchemaMismatchError{Table: t.Name, Column: want, Aliases: names[min(1, len(names)):], Have: t.Columns}
}

// Value returns the cell at column index i of r, or "" when the row is short.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r.V) {
		return ""
	}
	return r.V[i]
}

// SchemaMismatchError reports a required column missing from a source header.
type SchemaMismatchError struct {
	Table   string
	Column  string
	Aliases []string
	Have    []string
}

func (e *SchemaMismatchError) Error() string {
	msg := fmt.Sprintf("schema mismatch: table %q has no column %q", e.Table, e.Column)
	if len(e.Aliases) > 0 {
		msg += fmt.Sprintf(" (also tried %s)", strings.Join(e.Aliases, ", "))
	}
	return msg + fmt.Sprintf("; header is [%s]", strings.Join(e.Have, ", "))
}
