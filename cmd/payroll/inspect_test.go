package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestInspect_ResolvesEveryColumn(t *testing.T) {
	p := testPipeline(t)
	var out bytes.Buffer

	require.NoError(t, inspect(context.Background(), p, &out, zaptest.NewLogger(t)))

	s := out.String()
	assert.Contains(t, s, "employee_salary")
	assert.Contains(t, s, "monthly_salary")
	assert.Contains(t, s, "Employee | EmployeeId")
	assert.NotContains(t, s, "MISSING")
}

func TestInspect_ReportsMissing(t *testing.T) {
	p := testPipeline(t)
	p.Columns.Month = "Period"
	var out bytes.Buffer

	err := inspect(context.Background(), p, &out, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUnresolved))
	assert.Contains(t, out.String(), "MISSING")
}
