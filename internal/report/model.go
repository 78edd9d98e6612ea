// Package report turns the three normalized source tables into the ranked
// compensation report.
//
// The pipeline is a fixed sequence of pure stages over immutable slices:
//
//	Normalize → ComputeAnnualSalary → AttachManager → ComputeManagerPayroll → BuildReport
//
// Each stage returns a new slice and never mutates its inputs. Pipeline runs
// the whole sequence with one explicit Config.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Source table names, matching the config keys that point at them.
const (
	TableEmployees = "employeeDetails"
	TableManagers  = "manager"
	TableSalaries  = "employee_salary"
)

// ReportHeader is the header row of the persisted report, in column order.
var ReportHeader = []string{
	"ManagerName",
	"HighestTotalSalary",
	"EmployeeId",
	"EmployeeTotalSalary",
	"EmployeeRank",
	"Month",
	"MonthlySalaryAmount",
	"EmployeeSalaryRank",
}

// ReportKinds gives the logical type of each ReportHeader column, for
// database mirrors.
var ReportKinds = []string{
	"text",
	"bigint",
	"text",
	"bigint",
	"int",
	"text",
	"text",
	"int",
}

// EmployeeRecord is one row of the employee table.
type EmployeeRecord struct {
	EmployeeID string
	Line       int
}

// ManagerAssignment links an employee to a manager.
type ManagerAssignment struct {
	EmployeeID  string
	ManagerName string
	Line        int
}

// MonthlySalaryEntry is one month of pay for one employee. MonthlySalary keeps
// the source text; Amount coerces it.
type MonthlySalaryEntry struct {
	EmployeeID    string
	Month         string
	MonthlySalary string
	Line          int
}

// maxAmountExponent bounds the decimal exponent of a parsed amount. Sums and
// comparisons rescale to the smallest exponent in play, so an unbounded one
// turns a single cell into an arbitrarily large big.Int.
const maxAmountExponent = 18

// Amount parses MonthlySalary as a decimal number.
func (e MonthlySalaryEntry) Amount() (decimal.Decimal, error) {
	s := strings.TrimSpace(e.MonthlySalary)
	if s == "" {
		return decimal.Decimal{}, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if exp := d.Exponent(); exp < -maxAmountExponent || exp > maxAmountExponent {
		return decimal.Decimal{}, fmt.Errorf("%w: exponent %d", ErrOutOfRange, exp)
	}
	return d, nil
}

// AnnualSalary is the sum of an employee's monthly entries.
type AnnualSalary struct {
	EmployeeID          string
	EmployeeTotalSalary int64
}

// EmployeeUnderManager is an annual total with the employee's manager attached.
type EmployeeUnderManager struct {
	EmployeeID          string
	EmployeeTotalSalary int64
	ManagerName         string
}

// ManagerPayroll is the total annual pay of a manager's team.
type ManagerPayroll struct {
	ManagerName string
	TotalSalary int64
}

// ReportRow is one (employee, month) line of the final report.
type ReportRow struct {
	ManagerName         string
	HighestTotalSalary  int64
	EmployeeID          string
	EmployeeTotalSalary int64
	EmployeeRank        int
	Month               string
	MonthlySalaryAmount string
	EmployeeSalaryRank  int
}

// Record renders r as text fields in ReportHeader order.
func (r ReportRow) Record() []string {
	return []string{
		r.ManagerName,
		strconv.FormatInt(r.HighestTotalSalary, 10),
		r.EmployeeID,
		strconv.FormatInt(r.EmployeeTotalSalary, 10),
		strconv.Itoa(r.EmployeeRank),
		r.Month,
		r.MonthlySalaryAmount,
		strconv.Itoa(r.EmployeeSalaryRank),
	}
}

// Values renders r as typed values in ReportHeader order, for database
// drivers.
func (r ReportRow) Values() []any {
	return []any{
		r.ManagerName,
		r.HighestTotalSalary,
		r.EmployeeID,
		r.EmployeeTotalSalary,
		int64(r.EmployeeRank),
		r.Month,
		r.MonthlySalaryAmount,
		int64(r.EmployeeSalaryRank),
	}
}
