package report

import (
	"fmt"
	"math"
)

// AttachManager inner-joins annual totals with manager assignments on
// EmployeeID. Employees without an assignment are dropped; an employee with
// several assignments yields one row per assignment.
func AttachManager(annual []AnnualSalary, assignments []ManagerAssignment) []EmployeeUnderManager {
	return HashJoin(annual, assignments,
		func(a AnnualSalary) string { return a.EmployeeID },
		func(m ManagerAssignment) string { return m.EmployeeID },
		func(a AnnualSalary, m ManagerAssignment) EmployeeUnderManager {
			return EmployeeUnderManager{
				EmployeeID:          a.EmployeeID,
				EmployeeTotalSalary: a.EmployeeTotalSalary,
				ManagerName:         m.ManagerName,
			}
		})
}

// ComputeManagerPayroll joins the assignments back onto the employees under
// each manager, groups by the assignment's ManagerName and sums the annual
// totals. Managers appear in first-seen assignment order; only managers with
// at least one matched employee appear. A total outside int64 returns a
// *NumericCoercionError.
func ComputeManagerPayroll(assignments []ManagerAssignment, under []EmployeeUnderManager) ([]ManagerPayroll, error) {
	type edge struct {
		manager string
		total   int64
	}
	edges := HashJoin(assignments, under,
		func(m ManagerAssignment) string { return m.EmployeeID },
		func(u EmployeeUnderManager) string { return u.EmployeeID },
		func(m ManagerAssignment, u EmployeeUnderManager) edge {
			return edge{manager: m.ManagerName, total: u.EmployeeTotalSalary}
		})

	keys, groups := GroupBy(edges, func(e edge) string { return e.manager })
	out := make([]ManagerPayroll, 0, len(keys))
	for _, k := range keys {
		var sum int64
		for _, e := range groups[k] {
			next, ok := addInt64(sum, e.total)
			if !ok {
				return nil, &NumericCoercionError{Table: "manager_payroll", Key: k, Value: fmt.Sprintf("%d+%d", sum, e.total), Err: ErrOverflow}
			}
			sum = next
		}
		out = append(out, ManagerPayroll{ManagerName: k, TotalSalary: sum})
	}
	return out, nil
}

func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}
