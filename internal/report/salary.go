package report

import (
	"math"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// annualAcc is an employee's running sum plus the position of the employee's
// first entry, used to restore first-seen order after a partitioned sum.
type annualAcc struct {
	employee string
	sum      decimal.Decimal
	first    int
}

// ComputeAnnualSalary sums each employee's monthly amounts into an annual
// total, one row per distinct EmployeeID in first-seen order.
//
// Amounts are summed exactly and the sum is truncated toward zero, so
// fractional months are added before truncation. The first amount (in input
// order) that is not a number returns a *NumericCoercionError and no totals.
func ComputeAnnualSalary(entries []MonthlySalaryEntry) ([]AnnualSalary, error) {
	amounts, err := parseAmounts(entries)
	if err != nil {
		return nil, err
	}
	return finishAnnual(sumAnnual(entries, amounts, indexes(len(entries))))
}

// parseAmounts coerces every MonthlySalary, failing on the first bad one.
func parseAmounts(entries []MonthlySalaryEntry) ([]decimal.Decimal, error) {
	amounts := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		a, err := e.Amount()
		if err != nil {
			return nil, &NumericCoercionError{
				Table: TableSalaries,
				Key:   e.EmployeeID,
				Month: e.Month,
				Value: e.MonthlySalary,
				Line:  e.Line,
				Err:   err,
			}
		}
		amounts[i] = a
	}
	return amounts, nil
}

// sumAnnual groups entries[idx] by employee and sums their amounts.
func sumAnnual(entries []MonthlySalaryEntry, amounts []decimal.Decimal, idx []int) []annualAcc {
	keys, groups := GroupBy(idx, func(i int) string { return entries[i].EmployeeID })
	out := make([]annualAcc, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		sum := decimal.Zero
		for _, i := range g {
			sum = sum.Add(amounts[i])
		}
		out = append(out, annualAcc{employee: k, sum: sum, first: g[0]})
	}
	return out
}

// mergeAnnual concatenates per-partition sums and restores first-seen order.
func mergeAnnual(parts [][]annualAcc) []annualAcc {
	var out []annualAcc
	for _, p := range parts {
		out = append(out, p...)
	}
	slices.SortFunc(out, func(a, b annualAcc) int { return a.first - b.first })
	return out
}

// finishAnnual truncates each sum to an integer total.
func finishAnnual(acc []annualAcc) ([]AnnualSalary, error) {
	out := make([]AnnualSalary, 0, len(acc))
	for _, a := range acc {
		total := a.sum.Truncate(0)
		if total.LessThan(minInt64) || total.GreaterThan(maxInt64) {
			return nil, &NumericCoercionError{
				Table: TableSalaries,
				Key:   a.employee,
				Value: a.sum.String(),
				Err:   ErrOverflow,
			}
		}
		out = append(out, AnnualSalary{EmployeeID: a.employee, EmployeeTotalSalary: total.IntPart()})
	}
	return out, nil
}
