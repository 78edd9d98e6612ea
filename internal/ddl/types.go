package ddl

// ColumnDef is one rendered column: an unquoted name and its SQL type. Report
// columns are always NOT NULL.
type ColumnDef struct {
	Name    string
	SQLType string
}

// TableDef holds the table name (FQN, dotted form such as "schema.table")
// and an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Column is a logical column: a name plus a dialect-neutral kind such as
// "text", "bigint" or "int". Backends map kinds to SQL types.
type Column struct {
	Name string
	Kind string
}

// Names returns the column names in order.
func Names(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// FromColumns builds a TableDef for fqn, mapping each kind with mapType.
func FromColumns(fqn string, cols []Column, mapType func(kind string) string) TableDef {
	def := TableDef{FQN: fqn, Columns: make([]ColumnDef, len(cols))}
	for i, c := range cols {
		def.Columns[i] = ColumnDef{Name: c.Name, SQLType: mapType(c.Kind)}
	}
	return def
}
