package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into the
// config (e.g. "storage.db.dsn").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a Pipeline. It does not touch
// the sources themselves; only the output directory is checked for existence.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics",
		})
	}
	issues = append(issues, validatePaths(p)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateColumns(p.Columns)...)
	issues = append(issues, validateOutput(p)...)
	issues = append(issues, validateStorage(p.Storage)...)

	if p.Runtime.Partitions < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.partitions",
			Message:  "partitions must not be negative",
		})
	}
	if p.Preview.Rows < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "preview.rows",
			Message:  "preview rows must not be negative",
		})
	}
	if p.HTTP.MaxRetries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "http.max_retries",
			Message:  "max_retries must not be negative",
		})
	}
	return issues
}

func validatePaths(p Pipeline) []Issue {
	var issues []Issue
	for _, f := range []struct{ path, val string }{
		{"employeeDetails", p.EmployeeDetails},
		{"manager", p.Manager},
		{"employee_salary", p.EmployeeSalary},
		{"Output_path", p.OutputPath},
	} {
		if strings.TrimSpace(f.val) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     f.path,
				Message:  f.path + " must not be empty",
			})
		}
	}
	if p.OutputPath != "" && isURL(p.OutputPath) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "Output_path",
			Message:  "Output_path must be a local filesystem path",
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if s := p.Options.String("comma", ","); utf8.RuneCountInString(s) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", s),
		})
	}
	if enc := p.Options.String("encoding", ""); enc != "" {
		if _, err := htmlindex.Get(enc); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.encoding",
				Message:  fmt.Sprintf("unknown encoding %q", enc),
			})
		}
	}
	return issues
}

func validateColumns(c Columns) []Issue {
	var issues []Issue
	seen := map[string]string{}
	for _, f := range []struct{ path, val string }{
		{"columns.employee", c.Employee},
		{"columns.manager_name", c.ManagerName},
		{"columns.month", c.Month},
		{"columns.monthly_salary", c.MonthlySalary},
	} {
		if strings.TrimSpace(f.val) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     f.path,
				Message:  "column name must not be empty",
			})
			continue
		}
		if prev, ok := seen[strings.ToLower(f.val)]; ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     f.path,
				Message:  fmt.Sprintf("column %q is also used by %s", f.val, prev),
			})
		}
		seen[strings.ToLower(f.val)] = f.path
	}
	return issues
}

func validateOutput(p Pipeline) []Issue {
	var issues []Issue
	if utf8.RuneCountInString(p.Output.Comma) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "output.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", p.Output.Comma),
		})
	}
	if p.OutputPath == "" || isURL(p.OutputPath) {
		return issues
	}
	dir := filepath.Dir(p.OutputPath)
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "Output_path",
			Message:  fmt.Sprintf("output directory %s does not exist; it will be created", dir),
		})
	}
	return issues
}

// validateStorage validates the optional database mirror.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return nil
	}

	known := map[string]struct{}{
		"postgres": {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; use sqlite, postgres or mssql", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}
	return issues
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
