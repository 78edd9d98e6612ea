package csv

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"

	"payroll/internal/config"
	"payroll/internal/table"
)

type rowErr struct {
	line int
	msg  string
}

func read(t *testing.T, input string, opt Options) (*table.Table, []rowErr) {
	t.Helper()
	var errs []rowErr
	tbl, err := ReadTable(context.Background(), "src", strings.NewReader(input), opt, func(line int, err error) {
		errs = append(errs, rowErr{line, err.Error()})
	})
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	return tbl, errs
}

func TestReadTable_Basic(t *testing.T) {
	t.Parallel()

	tbl, errs := read(t, "Employee,Month,MonthlySalary\nA,Jan,1000\n\nB,Feb, 2000 \n", Options{TrimSpace: true})

	want := &table.Table{
		Name:    "src",
		Columns: []string{"Employee", "Month", "MonthlySalary"},
		Rows: []table.Row{
			{Line: 2, V: []string{"A", "Jan", "1000"}},
			{Line: 4, V: []string{"B", "Feb", "2000"}},
		},
	}
	if diff := cmp.Diff(want, tbl); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected row errors: %v", errs)
	}
}

func TestReadTable_NoTrimKeepsSpaces(t *testing.T) {
	t.Parallel()

	tbl, _ := read(t, "a,b\n x ,y\n", Options{})
	if got := tbl.Rows[0].V[0]; got != " x " {
		t.Fatalf("value = %q, want %q", got, " x ")
	}
}

func TestReadTable_SkipsWrongWidth(t *testing.T) {
	t.Parallel()

	tbl, errs := read(t, "a,b,c\n1,2,3\nx,y\n4,5,6\n7,8,9,10\n", Options{})

	if got := tbl.Len(); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	want := []rowErr{
		{3, "incorrect number of fields (expected 3, got 2)"},
		{5, "incorrect number of fields (expected 3, got 4)"},
	}
	if diff := cmp.Diff(want, errs, cmp.AllowUnexported(rowErr{})); diff != "" {
		t.Fatalf("row errors (-want +got):\n%s", diff)
	}
}

func TestReadTable_QuoteErrorIsSoft(t *testing.T) {
	t.Parallel()

	tbl, errs := read(t, "a,b\n1,x\"y\n2,z\n", Options{})
	if got := tbl.Len(); got != 1 || tbl.Rows[0].V[0] != "2" {
		t.Fatalf("rows = %+v, want only the row starting with 2", tbl.Rows)
	}
	if len(errs) != 1 || errs[0].line != 2 {
		t.Fatalf("row errors = %v, want one error on line 2", errs)
	}

	tbl, errs = read(t, "a,b\n1,x\"y\n2,z\n", Options{LazyQuotes: true})
	if tbl.Len() != 2 || len(errs) != 0 {
		t.Fatalf("lazy quotes: rows=%d errs=%v", tbl.Len(), errs)
	}
}

func TestReadTable_StrictFailsOnMalformedRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantLine int
		wantIs   error
	}{
		{"short row", "Employee,Month,MonthlySalary\nA,Jan,1000\nA,Feb\nA,Mar,1000\n", 3, ErrFieldCount},
		{"long row", "Employee,Month,MonthlySalary\nA,Jan,1000,x\n", 2, ErrFieldCount},
		{"bad quote", "Employee,Month,MonthlySalary\nA,Jan,1\"0\n", 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			tbl, err := ReadTable(context.Background(), "employee_salary", strings.NewReader(tt.input),
				Options{Strict: true}, func(int, error) { called = true })
			if tbl != nil {
				t.Fatalf("expected no table, got %d rows", tbl.Len())
			}
			var re *RowError
			if !errors.As(err, &re) {
				t.Fatalf("err = %v, want *RowError", err)
			}
			if re.Table != "employee_salary" || re.Line != tt.wantLine {
				t.Fatalf("error at %s line %d, want employee_salary line %d", re.Table, re.Line, tt.wantLine)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Fatalf("err = %v, want errors.Is %v", err, tt.wantIs)
			}
			if called {
				t.Fatalf("onErr must not be called in strict mode")
			}
		})
	}
}

func TestReadTable_HeaderNormalization(t *testing.T) {
	t.Parallel()

	// BOM, padding and a decomposed "ě" (e + combining caron) in the header.
	input := "\ufeff Zame\u030cstnanec ;Month;MonthlySalary\nA;Jan;1\n"
	tbl, _ := read(t, input, Options{
		Comma:     ';',
		HeaderMap: map[string]string{"Zam\u011bstnanec": "Employee"},
	})

	want := []string{"Employee", "Month", "MonthlySalary"}
	if diff := cmp.Diff(want, tbl.Columns); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
}

func TestReadTable_Encoding(t *testing.T) {
	t.Parallel()

	raw, err := charmap.Windows1250.NewEncoder().String("Jméno,Month\nŠárka,Jan\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	tbl, _ := read(t, raw, Options{Encoding: "windows-1250"})

	if got, want := tbl.Columns[0], "Jméno"; got != want {
		t.Fatalf("header = %q, want %q", got, want)
	}
	if got, want := tbl.Rows[0].V[0], "Šárka"; got != want {
		t.Fatalf("value = %q, want %q", got, want)
	}
}

func TestReadTable_Errors(t *testing.T) {
	t.Parallel()

	if _, err := ReadTable(context.Background(), "manager", strings.NewReader(""), Options{}, nil); err == nil ||
		!strings.Contains(err.Error(), "manager: read header: empty input") {
		t.Fatalf("empty input: got %v", err)
	}
	if _, err := ReadTable(context.Background(), "x", strings.NewReader("a\n"), Options{Encoding: "klingon-8"}, nil); err == nil {
		t.Fatalf("unknown encoding: expected error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ReadTable(ctx, "x", strings.NewReader("a\n1\n"), Options{}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled: got %v, want context.Canceled", err)
	}
}

func TestOptionsFrom(t *testing.T) {
	t.Parallel()

	got := OptionsFrom(config.Options{
		"comma":       "|",
		"lazy_quotes": true,
		"trim_space":  false,
		"encoding":    "latin1",
		"header_map":  map[string]any{"Jméno": "Employee"},
	})
	want := Options{
		Comma:      '|',
		TrimSpace:  false,
		LazyQuotes: true,
		HeaderMap:  map[string]string{"Jméno": "Employee"},
		Encoding:   "latin1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("OptionsFrom (-want +got):\n%s", diff)
	}

	def := OptionsFrom(nil)
	if def.Comma != ',' || !def.TrimSpace {
		t.Fatalf("defaults = %+v", def)
	}
}
