package report

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// wideRow is a ReportRow under construction, carrying the join inputs the
// window functions read. seq is the entry's position in the salary table.
type wideRow struct {
	ReportRow
	totalSalary int64
	amount      decimal.Decimal
	seq         int
}

// BuildReport joins manager payrolls, employees under managers and monthly
// entries into report rows, computes the window columns and sorts the result.
//
//   - HighestTotalSalary is the maximum TotalSalary over the manager's rows.
//   - EmployeeRank is the dense rank of EmployeeTotalSalary (descending)
//     within the manager.
//   - EmployeeSalaryRank is the dense rank of the monthly amount (descending,
//     compared as numbers) within the employee.
//
// Rows are ordered by HighestTotalSalary desc, EmployeeTotalSalary desc,
// then ManagerName, EmployeeID and salary table order ascending.
func BuildReport(payroll []ManagerPayroll, under []EmployeeUnderManager, entries []MonthlySalaryEntry) ([]ReportRow, error) {
	return buildReport(context.Background(), payroll, under, entries, 1)
}

func buildReport(ctx context.Context, payroll []ManagerPayroll, under []EmployeeUnderManager, entries []MonthlySalaryEntry, parts int) ([]ReportRow, error) {
	rows, err := joinWide(payroll, under, entries)
	if err != nil {
		return nil, err
	}

	all := indexes(len(rows))
	if parts <= 1 {
		rankManagers(rows, all)
		rankMonths(rows, all)
	} else {
		byManager := partitionBy(all, parts, func(i int) string { return rows[i].ManagerName })
		if err := runPartitions(ctx, byManager, func(_ context.Context, _ int, idx []int) error {
			rankManagers(rows, idx)
			return nil
		}); err != nil {
			return nil, err
		}
		byEmployee := partitionBy(all, parts, func(i int) string { return rows[i].EmployeeID })
		if err := runPartitions(ctx, byEmployee, func(_ context.Context, _ int, idx []int) error {
			rankMonths(rows, idx)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(rows, compareRows)
	out := make([]ReportRow, len(rows))
	for i, r := range rows {
		out[i] = r.ReportRow
	}
	return out, nil
}

// joinWide computes payroll ⋈ under (ManagerName) ⋈ entries (EmployeeID). An
// employee with k entries yields k rows per manager assignment.
func joinWide(payroll []ManagerPayroll, under []EmployeeUnderManager, entries []MonthlySalaryEntry) ([]wideRow, error) {
	type teamRow struct {
		ManagerPayroll
		EmployeeUnderManager
	}
	team := HashJoin(payroll, under,
		func(p ManagerPayroll) string { return p.ManagerName },
		func(u EmployeeUnderManager) string { return u.ManagerName },
		func(p ManagerPayroll, u EmployeeUnderManager) teamRow { return teamRow{p, u} })

	amounts, err := parseAmounts(entries)
	if err != nil {
		return nil, err
	}

	return HashJoin(team, indexes(len(entries)),
		func(t teamRow) string { return t.EmployeeUnderManager.EmployeeID },
		func(i int) string { return entries[i].EmployeeID },
		func(t teamRow, i int) wideRow {
			e := entries[i]
			return wideRow{
				ReportRow: ReportRow{
					ManagerName:         t.ManagerPayroll.ManagerName,
					EmployeeID:          t.EmployeeUnderManager.EmployeeID,
					EmployeeTotalSalary: t.EmployeeTotalSalary,
					Month:               e.Month,
					MonthlySalaryAmount: strings.TrimSpace(e.MonthlySalary),
				},
				totalSalary: t.TotalSalary,
				amount:      amounts[i],
				seq:         i,
			}
		}), nil
}

// rankManagers fills HighestTotalSalary and EmployeeRank for rows[idx]. idx
// must hold every row of each manager it touches.
func rankManagers(rows []wideRow, idx []int) {
	manager := func(i int) string { return rows[i].ManagerName }
	highest := WindowMax(idx, manager, func(i int) int64 { return rows[i].totalSalary })
	ranks := DenseRank(idx, manager, func(a, b int) int {
		return cmp.Compare(rows[b].EmployeeTotalSalary, rows[a].EmployeeTotalSalary)
	})
	for j, i := range idx {
		rows[i].HighestTotalSalary = highest[j]
		rows[i].EmployeeRank = ranks[j]
	}
}

// rankMonths fills EmployeeSalaryRank for rows[idx]. idx must hold every row
// of each employee it touches.
func rankMonths(rows []wideRow, idx []int) {
	ranks := DenseRank(idx,
		func(i int) string { return rows[i].EmployeeID },
		func(a, b int) int { return rows[b].amount.Cmp(rows[a].amount) })
	for j, i := range idx {
		rows[i].EmployeeSalaryRank = ranks[j]
	}
}

func compareRows(a, b wideRow) int {
	return cmp.Or(
		cmp.Compare(b.HighestTotalSalary, a.HighestTotalSalary),
		cmp.Compare(b.EmployeeTotalSalary, a.EmployeeTotalSalary),
		strings.Compare(a.ManagerName, b.ManagerName),
		strings.Compare(a.EmployeeID, b.EmployeeID),
		cmp.Compare(a.seq, b.seq),
	)
}
