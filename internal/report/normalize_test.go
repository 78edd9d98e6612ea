package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"payroll/internal/table"
)

func TestNormalize(t *testing.T) {
	src := sources(
		[][]string{{"Employee", "Name"}, {"A", "Ann"}},
		[][]string{{"ManagerName", "Employee"}, {"Mgr1", "A"}},
		[][]string{{"Employee", "Month", "MonthlySalary"}, {"A", "Jan", "1000"}, {"A", "Feb", "x"}},
	)

	got, err := Normalize(src, DefaultColumns())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := &Normalized{
		Employees:   []EmployeeRecord{{EmployeeID: "A", Line: 2}},
		Assignments: []ManagerAssignment{{EmployeeID: "A", ManagerName: "Mgr1", Line: 2}},
		Entries: []MonthlySalaryEntry{
			{EmployeeID: "A", Month: "Jan", MonthlySalary: "1000", Line: 2},
			{EmployeeID: "A", Month: "Feb", MonthlySalary: "x", Line: 3},
		},
	}
	// Values stay text; "x" is only rejected by the aggregator.
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize (-want +got):\n%s", diff)
	}
}

func TestNormalize_MissingColumns(t *testing.T) {
	tests := []struct {
		name      string
		src       Sources
		wantTable string
		wantCol   string
	}{
		{
			name: "employee table without employee column",
			src: sources(
				[][]string{{"Name"}},
				[][]string{{"Employee", "ManagerName"}},
				[][]string{{"Employee", "Month", "MonthlySalary"}},
			),
			wantTable: TableEmployees,
			wantCol:   "Employee",
		},
		{
			name: "salary table without month",
			src: sources(
				[][]string{{"Employee"}},
				[][]string{{"Employee", "ManagerName"}},
				[][]string{{"Employee", "MonthlySalary"}},
			),
			wantTable: TableSalaries,
			wantCol:   "Month",
		},
		{
			name: "salary table without amount",
			src: sources(
				[][]string{{"Employee"}},
				[][]string{{"Employee", "ManagerName"}},
				[][]string{{"EmployeeId", "Month", "Salary"}},
			),
			wantTable: TableSalaries,
			wantCol:   "MonthlySalary",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.src, DefaultColumns())
			var sme *table.SchemaMismatchError
			if !errors.As(err, &sme) {
				t.Fatalf("err = %v, want *table.SchemaMismatchError", err)
			}
			if sme.Table != tt.wantTable || sme.Column != tt.wantCol {
				t.Fatalf("mismatch on %s.%s, want %s.%s", sme.Table, sme.Column, tt.wantTable, tt.wantCol)
			}
		})
	}
}

func TestNormalize_EmployeeAliasInError(t *testing.T) {
	src := sources(
		[][]string{{"Id"}},
		[][]string{{"Employee", "ManagerName"}},
		[][]string{{"Employee", "Month", "MonthlySalary"}},
	)

	_, err := Normalize(src, DefaultColumns())
	if err == nil || !strings.Contains(err.Error(), "also tried EmployeeId") {
		t.Fatalf("err = %v, want mention of the EmployeeId alias", err)
	}
}

func TestNormalize_NilSource(t *testing.T) {
	src := sources(
		[][]string{{"Employee"}},
		[][]string{{"Employee", "ManagerName"}},
		[][]string{{"Employee", "Month", "MonthlySalary"}},
	)
	src.Managers = nil

	if _, err := Normalize(src, DefaultColumns()); err == nil || !strings.Contains(err.Error(), TableManagers) {
		t.Fatalf("err = %v, want missing %s source", err, TableManagers)
	}
}

func TestColumnNames_Requirements(t *testing.T) {
	reqs := DefaultColumns().Requirements()
	if len(reqs) != 6 {
		t.Fatalf("len(Requirements) = %d, want 6", len(reqs))
	}
	perTable := map[string]int{}
	for _, r := range reqs {
		perTable[r.Table]++
		if r.Role == "employee" && !cmp.Equal(r.Names, []string{"Employee", "EmployeeId"}) {
			t.Fatalf("employee names for %s = %v", r.Table, r.Names)
		}
	}
	want := map[string]int{TableEmployees: 1, TableManagers: 2, TableSalaries: 3}
	if diff := cmp.Diff(want, perTable); diff != "" {
		t.Fatalf("requirements per table (-want +got):\n%s", diff)
	}

	custom := ColumnNames{Employee: "Worker", ManagerName: "Boss", Month: "M", MonthlySalary: "Pay"}
	if got := custom.Requirements()[0].Names; !cmp.Equal(got, []string{"Worker"}) {
		t.Fatalf("custom employee names = %v, want [Worker]", got)
	}
}
