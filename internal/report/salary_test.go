package report

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func entry(emp, month, amount string) MonthlySalaryEntry {
	return MonthlySalaryEntry{EmployeeID: emp, Month: month, MonthlySalary: amount}
}

func TestComputeAnnualSalary(t *testing.T) {
	tests := []struct {
		name    string
		entries []MonthlySalaryEntry
		want    []AnnualSalary
	}{
		{
			name:    "empty",
			entries: nil,
			want:    []AnnualSalary{},
		},
		{
			name: "integral sums in first-seen order",
			entries: []MonthlySalaryEntry{
				entry("B", "Jan", "2000"),
				entry("A", "Jan", "1000"),
				entry("B", "Feb", "2000"),
				entry("A", "Feb", "1000"),
				entry("A", "Mar", "1000"),
			},
			want: []AnnualSalary{{"B", 4000}, {"A", 3000}},
		},
		{
			name: "fractions summed before truncation",
			entries: []MonthlySalaryEntry{
				entry("A", "Jan", "0.5"),
				entry("A", "Feb", "0.5"),
				entry("A", "Mar", "1000.4"),
			},
			want: []AnnualSalary{{"A", 1001}},
		},
		{
			name: "truncates toward zero",
			entries: []MonthlySalaryEntry{
				entry("N", "Jan", "-1.25"),
				entry("N", "Feb", "-1.25"),
			},
			want: []AnnualSalary{{"N", -2}},
		},
		{
			name: "spaces and exponent notation",
			entries: []MonthlySalaryEntry{
				entry("A", "Jan", " 1e3 "),
				entry("A", "Feb", "250"),
			},
			want: []AnnualSalary{{"A", 1250}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeAnnualSalary(tt.entries)
			if err != nil {
				t.Fatalf("ComputeAnnualSalary: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("annual (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeAnnualSalary_Coercion(t *testing.T) {
	tests := []struct {
		name     string
		entries  []MonthlySalaryEntry
		wantKey  string
		wantLine int
		wantIs   error
	}{
		{
			name: "not a number",
			entries: []MonthlySalaryEntry{
				{EmployeeID: "A", Month: "Jan", MonthlySalary: "1000", Line: 2},
				{EmployeeID: "B", Month: "Jan", MonthlySalary: "12O0", Line: 3},
				{EmployeeID: "C", Month: "Jan", MonthlySalary: "n/a", Line: 4},
			},
			wantKey:  "B",
			wantLine: 3,
		},
		{
			name: "empty cell",
			entries: []MonthlySalaryEntry{
				{EmployeeID: "A", Month: "Feb", MonthlySalary: "  ", Line: 7},
			},
			wantKey:  "A",
			wantLine: 7,
			wantIs:   ErrEmptyAmount,
		},
		{
			name: "tiny exponent",
			entries: []MonthlySalaryEntry{
				{EmployeeID: "A", Month: "Jan", MonthlySalary: "1000", Line: 2},
				{EmployeeID: "A", Month: "Feb", MonthlySalary: "1e-100000000", Line: 3},
			},
			wantKey:  "A",
			wantLine: 3,
			wantIs:   ErrOutOfRange,
		},
		{
			name: "huge exponent",
			entries: []MonthlySalaryEntry{
				{EmployeeID: "B", Month: "Mar", MonthlySalary: "5E+2000000", Line: 9},
			},
			wantKey:  "B",
			wantLine: 9,
			wantIs:   ErrOutOfRange,
		},
		{
			name: "total overflows int64",
			entries: []MonthlySalaryEntry{
				entry("A", "Jan", "9223372036854775807"),
				entry("A", "Feb", "1"),
			},
			wantKey: "A",
			wantIs:  ErrOverflow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeAnnualSalary(tt.entries)
			if got != nil {
				t.Fatalf("expected no partial output, got %v", got)
			}
			var nce *NumericCoercionError
			if !errors.As(err, &nce) {
				t.Fatalf("err = %v, want *NumericCoercionError", err)
			}
			if nce.Key != tt.wantKey || nce.Line != tt.wantLine {
				t.Fatalf("error at %s line %d, want %s line %d", nce.Key, nce.Line, tt.wantKey, tt.wantLine)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Fatalf("err = %v, want errors.Is %v", err, tt.wantIs)
			}
		})
	}
}
