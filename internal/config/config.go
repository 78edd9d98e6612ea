// Package config defines the configuration model for a report run. A run is
// described by a single file (JSON or YAML, picked by extension) whose top-level
// keys name the three sources and the destination:
//
//	{
//	  "employeeDetails": "data/employee.csv",
//	  "manager":         "data/manager.csv",
//	  "employee_salary": "data/salary.csv",
//	  "Output_path":     "out/report.csv"
//	}
//
// Every other section is optional. Environment variables (REPORT_*) override
// file values; see the env tags below.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Pipeline is the top-level object decoded from a config file.
type Pipeline struct {
	// Job labels logs and metrics for this run.
	Job string `json:"job" yaml:"job" env:"REPORT_JOB" env-default:"employee_report"`

	EmployeeDetails string `json:"employeeDetails" yaml:"employeeDetails" env:"REPORT_EMPLOYEE_DETAILS"`
	Manager         string `json:"manager" yaml:"manager" env:"REPORT_MANAGER"`
	EmployeeSalary  string `json:"employee_salary" yaml:"employee_salary" env:"REPORT_EMPLOYEE_SALARY"`
	OutputPath      string `json:"Output_path" yaml:"Output_path" env:"REPORT_OUTPUT_PATH"`

	Parser  Parser        `json:"parser" yaml:"parser"`
	Columns Columns       `json:"columns" yaml:"columns"`
	Preview Preview       `json:"preview" yaml:"preview"`
	Output  Output        `json:"output" yaml:"output"`
	Storage Storage       `json:"storage" yaml:"storage"`
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
	Checks  Checks        `json:"checks" yaml:"checks"`
	HTTP    HTTP          `json:"http" yaml:"http"`
}

// Parser carries options shared by the three CSV sources. Recognized keys:
//
//	comma (string), encoding (string), trim_space (bool),
//	lazy_quotes (bool), header_map (object)
type Parser struct {
	Options Options `json:"options" yaml:"options"`
}

// Columns names the source columns the report reads.
type Columns struct {
	Employee      string `json:"employee" yaml:"employee" env-default:"Employee"`
	ManagerName   string `json:"manager_name" yaml:"manager_name" env-default:"ManagerName"`
	Month         string `json:"month" yaml:"month" env-default:"Month"`
	MonthlySalary string `json:"monthly_salary" yaml:"monthly_salary" env-default:"MonthlySalary"`
}

// Preview controls the console rendering of the first rows.
type Preview struct {
	Rows     int  `json:"rows" yaml:"rows" env:"REPORT_PREVIEW_ROWS" env-default:"100"`
	Disabled bool `json:"disabled" yaml:"disabled" env:"REPORT_PREVIEW_DISABLED"`
}

// Output configures the delimited-text report file.
type Output struct {
	Comma string `json:"comma" yaml:"comma" env-default:","`
}

// Storage optionally mirrors the report into a database table.
type Storage struct {
	// Kind selects the backend: "sqlite", "postgres", "mssql". Empty disables.
	Kind string   `json:"kind" yaml:"kind" env:"REPORT_STORAGE_KIND"`
	DB   DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the database mirror.
type DBConfig struct {
	DSN             string `json:"dsn" yaml:"dsn" env:"REPORT_DB_DSN"`
	Table           string `json:"table" yaml:"table" env:"REPORT_DB_TABLE" env-default:"employee_report"`
	AutoCreateTable bool   `json:"auto_create_table" yaml:"auto_create_table"`
}

// RuntimeConfig controls in-stage parallelism. Partitions <= 0 means one
// partition per CPU.
type RuntimeConfig struct {
	Partitions int `json:"partitions" yaml:"partitions" env:"REPORT_PARTITIONS"`
}

// Checks toggles advisory data checks.
type Checks struct {
	// FailOnDuplicateKeys turns join-cardinality warnings into fatal errors.
	FailOnDuplicateKeys bool `json:"fail_on_duplicate_keys" yaml:"fail_on_duplicate_keys"`
	// ListUnassigned logs every employee dropped for lacking a manager.
	ListUnassigned bool `json:"list_unassigned" yaml:"list_unassigned"`
}

// HTTP configures sources given as http(s) URLs.
type HTTP struct {
	TimeoutSeconds     int  `json:"timeout_seconds" yaml:"timeout_seconds" env-default:"30"`
	MaxRetries         int  `json:"max_retries" yaml:"max_retries" env-default:"3"`
	InsecureSkipVerify bool `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// Load reads the config file at path and applies environment overrides. An
// empty path reads the environment only.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	if strings.TrimSpace(path) == "" {
		if err := cleanenv.ReadEnv(&p); err != nil {
			return Pipeline{}, fmt.Errorf("read env config: %w", err)
		}
		return p, nil
	}
	if err := cleanenv.ReadConfig(path, &p); err != nil {
		return Pipeline{}, fmt.Errorf("read config %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// Redacted returns a copy safe to print: the DSN is masked.
func (p Pipeline) Redacted() Pipeline {
	if p.Storage.DB.DSN != "" {
		p.Storage.DB.DSN = "***"
	}
	return p
}

// YAML renders the redacted config.
func (p Pipeline) YAML() ([]byte, error) {
	return yaml.Marshal(p.Redacted())
}

// Options is a small helper to fetch typed values from free-form option maps
// decoded from JSON or YAML. It returns the provided default when a key is
// absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. Used for single-character settings such as a delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	v, ok := o[key]
	if !ok {
		return res
	}
	switch m := v.(type) {
	case map[string]any:
		for k, vv := range m {
			if s, ok := vv.(string); ok {
				res[k] = s
			}
		}
	case map[string]string:
		for k, s := range m {
			res[k] = s
		}
	}
	return res
}

// UnmarshalJSON makes a missing or null "options" object decode to a non-nil,
// empty map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
