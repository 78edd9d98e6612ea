package report

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyAmount is the cause of a NumericCoercionError for a blank
	// salary cell.
	ErrEmptyAmount = errors.New("empty amount")

	// ErrOverflow is the cause of a NumericCoercionError for a total that
	// does not fit in int64.
	ErrOverflow = errors.New("total out of int64 range")

	// ErrOutOfRange is the cause of a NumericCoercionError for an amount
	// written with an exponent too large or too small to sum.
	ErrOutOfRange = errors.New("amount exponent out of range")
)

// NumericCoercionError reports a salary or derived total that cannot be used
// as a number. It aborts the run.
type NumericCoercionError struct {
	Table string
	// Key is the employee (or manager, for payroll totals) the value belongs to.
	Key   string
	Month string
	Value string
	// Line is the source line, or 0 for derived totals.
	Line int
	Err  error
}

func (e *NumericCoercionError) Error() string {
	var where string
	if e.Line > 0 {
		where = fmt.Sprintf("%s line %d", e.Table, e.Line)
	} else {
		where = e.Table
	}
	if e.Month != "" {
		return fmt.Sprintf("numeric coercion: %s: %q for %s/%s: %v", where, e.Value, e.Key, e.Month, e.Err)
	}
	return fmt.Sprintf("numeric coercion: %s: %q for %s: %v", where, e.Value, e.Key, e.Err)
}

func (e *NumericCoercionError) Unwrap() error { return e.Err }

// JoinCardinalityWarning reports a key that appears more than once where the
// joins assume it is unique. Duplicate manager assignments multiply report rows
// and inflate payroll totals.
type JoinCardinalityWarning struct {
	Table  string
	Column string
	Key    string
	Count  int
}

func (w JoinCardinalityWarning) Error() string {
	return fmt.Sprintf("join cardinality: %s.%s key %q appears %d times", w.Table, w.Column, w.Key, w.Count)
}
