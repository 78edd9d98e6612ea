package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"payroll/internal/config"
	"payroll/internal/report"
	"payroll/internal/table"
)

// errUnresolved is returned by inspect when a required column is missing.
var errUnresolved = errors.New("required columns missing")

// inspect loads the sources and prints, per table, the row count and how
// every required column resolves against the header.
func inspect(ctx context.Context, p config.Pipeline, w io.Writer, log *zap.Logger) error {
	src, skipped, err := loadSources(ctx, p, log)
	if err != nil {
		return err
	}

	tables := map[string]*table.Table{
		report.TableEmployees: src.Employees,
		report.TableManagers:  src.Managers,
		report.TableSalaries:  src.Salaries,
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"table", "rows", "role", "wanted", "resolved"})
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAutoMergeCells(true)

	cols := report.ColumnNames{
		Employee:      p.Columns.Employee,
		ManagerName:   p.Columns.ManagerName,
		Month:         p.Columns.Month,
		MonthlySalary: p.Columns.MonthlySalary,
	}
	missing := 0
	for _, req := range cols.Requirements() {
		t := tables[req.Table]
		resolved := "MISSING"
		if i, err := t.Resolve(req.Names...); err == nil {
			resolved = t.Columns[i]
		} else {
			missing++
		}
		tw.Append([]string{req.Table, strconv.Itoa(t.Len()), req.Role, strings.Join(req.Names, " | "), resolved})
	}
	tw.Render()

	if skipped > 0 {
		if _, err := fmt.Fprintf(w, "%d malformed rows skipped\n", skipped); err != nil {
			return err
		}
	}
	if missing > 0 {
		return fmt.Errorf("%w: %d", errUnresolved, missing)
	}
	return nil
}
