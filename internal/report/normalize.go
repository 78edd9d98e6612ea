package report

import (
	"fmt"

	"payroll/internal/table"
)

// Sources are the three loaded input tables.
type Sources struct {
	Employees *table.Table
	Managers  *table.Table
	Salaries  *table.Table
}

// ColumnNames names the source columns the report reads.
type ColumnNames struct {
	Employee      string
	ManagerName   string
	Month         string
	MonthlySalary string
}

// DefaultColumns returns the column names used by the stock input files.
func DefaultColumns() ColumnNames {
	return ColumnNames{
		Employee:      "Employee",
		ManagerName:   "ManagerName",
		Month:         "Month",
		MonthlySalary: "MonthlySalary",
	}
}

// employeeAliases returns the names tried for the employee column: the
// configured one, then its Employee/EmployeeId counterpart.
func (c ColumnNames) employeeAliases() []string {
	names := []string{c.Employee}
	switch c.Employee {
	case "Employee":
		names = append(names, "EmployeeId")
	case "EmployeeId":
		names = append(names, "Employee")
	}
	return names
}

// Requirement is one column a source table must provide. Names lists the
// accepted header names, preferred first.
type Requirement struct {
	Table string
	Role  string
	Names []string
}

// Requirements lists every column Normalize resolves, per table.
func (c ColumnNames) Requirements() []Requirement {
	emp := c.employeeAliases()
	return []Requirement{
		{TableEmployees, "employee", emp},
		{TableManagers, "employee", emp},
		{TableManagers, "manager_name", []string{c.ManagerName}},
		{TableSalaries, "employee", emp},
		{TableSalaries, "month", []string{c.Month}},
		{TableSalaries, "monthly_salary", []string{c.MonthlySalary}},
	}
}

// Normalized holds the typed rows of the three sources.
type Normalized struct {
	Employees   []EmployeeRecord
	Assignments []ManagerAssignment
	Entries     []MonthlySalaryEntry

	// Warnings lists keys that are not unique where the joins expect them to
	// be: employees and manager assignments by employee, salary entries by
	// employee and month.
	Warnings []JoinCardinalityWarning
}

// Normalize resolves the required columns in each source and extracts typed
// rows. A missing column fails with *table.SchemaMismatchError. Values stay
// text; no coercion happens here.
func Normalize(src Sources, cols ColumnNames) (*Normalized, error) {
	for _, s := range []struct {
		name string
		t    *table.Table
	}{
		{TableEmployees, src.Employees},
		{TableManagers, src.Managers},
		{TableSalaries, src.Salaries},
	} {
		if s.t == nil {
			return nil, fmt.Errorf("normalize: source %s not loaded", s.name)
		}
	}

	empCol, err := src.Employees.Resolve(cols.employeeAliases()...)
	if err != nil {
		return nil, err
	}
	mgrEmpCol, err := src.Managers.Resolve(cols.employeeAliases()...)
	if err != nil {
		return nil, err
	}
	mgrCol, err := src.Managers.Resolve(cols.ManagerName)
	if err != nil {
		return nil, err
	}
	salEmpCol, err := src.Salaries.Resolve(cols.employeeAliases()...)
	if err != nil {
		return nil, err
	}
	monthCol, err := src.Salaries.Resolve(cols.Month)
	if err != nil {
		return nil, err
	}
	amountCol, err := src.Salaries.Resolve(cols.MonthlySalary)
	if err != nil {
		return nil, err
	}

	n := &Normalized{
		Employees:   make([]EmployeeRecord, 0, src.Employees.Len()),
		Assignments: make([]ManagerAssignment, 0, src.Managers.Len()),
		Entries:     make([]MonthlySalaryEntry, 0, src.Salaries.Len()),
	}
	for _, r := range src.Employees.Rows {
		n.Employees = append(n.Employees, EmployeeRecord{EmployeeID: r.Value(empCol), Line: r.Line})
	}
	for _, r := range src.Managers.Rows {
		n.Assignments = append(n.Assignments, ManagerAssignment{
			EmployeeID:  r.Value(mgrEmpCol),
			ManagerName: r.Value(mgrCol),
			Line:        r.Line,
		})
	}
	for _, r := range src.Salaries.Rows {
		n.Entries = append(n.Entries, MonthlySalaryEntry{
			EmployeeID:    r.Value(salEmpCol),
			Month:         r.Value(monthCol),
			MonthlySalary: r.Value(amountCol),
			Line:          r.Line,
		})
	}

	empName := src.Employees.Columns[empCol]
	n.Warnings = append(n.Warnings, duplicateKeys(src.Employees.Name, empName, n.Employees,
		func(e EmployeeRecord) string { return e.EmployeeID })...)
	n.Warnings = append(n.Warnings, duplicateKeys(src.Managers.Name, src.Managers.Columns[mgrEmpCol], n.Assignments,
		func(a ManagerAssignment) string { return a.EmployeeID })...)
	salaryKey := src.Salaries.Columns[salEmpCol] + "+" + src.Salaries.Columns[monthCol]
	n.Warnings = append(n.Warnings, duplicateKeys(src.Salaries.Name, salaryKey, n.Entries,
		func(e MonthlySalaryEntry) string { return e.EmployeeID + "/" + e.Month })...)
	return n, nil
}

// duplicateKeys reports every key that occurs more than once, in first-seen
// order.
func duplicateKeys[T any](tbl, column string, items []T, key func(T) string) []JoinCardinalityWarning {
	var out []JoinCardinalityWarning
	keys, groups := GroupBy(items, key)
	for _, k := range keys {
		if c := len(groups[k]); c > 1 {
			out = append(out, JoinCardinalityWarning{Table: tbl, Column: column, Key: k, Count: c})
		}
	}
	return out
}
