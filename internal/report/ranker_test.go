package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mgr1 is the two-employee team used across the ranking tests: A earns
// 3 x 1000, B earns 2 x 2000, both report to Mgr1.
func mgr1() ([]ManagerAssignment, []MonthlySalaryEntry) {
	assignments := []ManagerAssignment{
		{EmployeeID: "A", ManagerName: "Mgr1"},
		{EmployeeID: "B", ManagerName: "Mgr1"},
	}
	entries := []MonthlySalaryEntry{
		entry("A", "Jan", "1000"),
		entry("A", "Feb", "1000"),
		entry("A", "Mar", "1000"),
		entry("B", "Jan", "2000"),
		entry("B", "Feb", "2000"),
	}
	return assignments, entries
}

func buildAll(t *testing.T, assignments []ManagerAssignment, entries []MonthlySalaryEntry) []ReportRow {
	t.Helper()
	annual, err := ComputeAnnualSalary(entries)
	if err != nil {
		t.Fatalf("ComputeAnnualSalary: %v", err)
	}
	under := AttachManager(annual, assignments)
	payroll, err := ComputeManagerPayroll(assignments, under)
	if err != nil {
		t.Fatalf("ComputeManagerPayroll: %v", err)
	}
	rows, err := BuildReport(payroll, under, entries)
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	return rows
}

func TestBuildReport_Mgr1Scenario(t *testing.T) {
	assignments, entries := mgr1()

	got := buildAll(t, assignments, entries)

	want := []ReportRow{
		{"Mgr1", 7000, "B", 4000, 1, "Jan", "2000", 1},
		{"Mgr1", 7000, "B", 4000, 1, "Feb", "2000", 1},
		{"Mgr1", 7000, "A", 3000, 2, "Jan", "1000", 1},
		{"Mgr1", 7000, "A", 3000, 2, "Feb", "1000", 1},
		{"Mgr1", 7000, "A", 3000, 2, "Mar", "1000", 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("report (-want +got):\n%s", diff)
	}
}

func TestBuildReport_UnassignedEmployeeHasNoRows(t *testing.T) {
	assignments, entries := mgr1()
	entries = append(entries, entry("Z", "Jan", "99999"), entry("Z", "Feb", "1"))

	for _, r := range buildAll(t, assignments, entries) {
		if r.EmployeeID == "Z" {
			t.Fatalf("unassigned employee Z appears in report: %+v", r)
		}
	}
}

func TestBuildReport_MonthRankIsNumericAndDense(t *testing.T) {
	assignments := []ManagerAssignment{{EmployeeID: "A", ManagerName: "M"}}
	entries := []MonthlySalaryEntry{
		entry("A", "Jan", "900"),
		entry("A", "Feb", "1000"),
		entry("A", "Mar", "1000.0"),
		entry("A", "Apr", "80"),
	}

	got := map[string]int{}
	for _, r := range buildAll(t, assignments, entries) {
		got[r.Month] = r.EmployeeSalaryRank
	}
	// 1000 and 1000.0 tie; 900 follows without a gap.
	want := map[string]int{"Feb": 1, "Mar": 1, "Jan": 2, "Apr": 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("month ranks (-want +got):\n%s", diff)
	}
}

func TestBuildReport_OrderAcrossManagers(t *testing.T) {
	assignments := []ManagerAssignment{
		{EmployeeID: "S1", ManagerName: "Small"},
		{EmployeeID: "T1", ManagerName: "Tie2"},
		{EmployeeID: "T0", ManagerName: "Tie1"},
		{EmployeeID: "B1", ManagerName: "Big"},
		{EmployeeID: "B2", ManagerName: "Big"},
	}
	entries := []MonthlySalaryEntry{
		entry("S1", "Jan", "10"),
		entry("T1", "Jan", "50"),
		entry("T0", "Jan", "50"),
		entry("B1", "Jan", "60"),
		entry("B2", "Jan", "40"),
	}

	var got []string
	for _, r := range buildAll(t, assignments, entries) {
		got = append(got, r.ManagerName+"/"+r.EmployeeID)
	}
	// Big (100) first; Tie1 and Tie2 (50 each) by name; Small last.
	want := []string{"Big/B1", "Big/B2", "Tie1/T0", "Tie2/T1", "Small/S1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestBuildReport_Empty(t *testing.T) {
	rows, err := BuildReport(nil, nil, nil)
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows = %v, want empty", rows)
	}

	// Payroll present but no monthly entries left to fan out.
	rows, err = BuildReport([]ManagerPayroll{{"M", 1}}, []EmployeeUnderManager{{"A", 1, "M"}}, nil)
	if err != nil || len(rows) != 0 {
		t.Fatalf("BuildReport = %v, %v; want empty", rows, err)
	}
}

func TestReportRow_Record(t *testing.T) {
	r := ReportRow{"Mgr1", 7000, "B", 4000, 1, "Jan", "2000.50", 2}

	want := []string{"Mgr1", "7000", "B", "4000", "1", "Jan", "2000.50", "2"}
	if diff := cmp.Diff(want, r.Record()); diff != "" {
		t.Fatalf("Record (-want +got):\n%s", diff)
	}
	if got := len(r.Values()); got != len(ReportHeader) {
		t.Fatalf("len(Values) = %d, want %d", got, len(ReportHeader))
	}
	if got := len(ReportKinds); got != len(ReportHeader) {
		t.Fatalf("len(ReportKinds) = %d, want %d", got, len(ReportHeader))
	}
}
