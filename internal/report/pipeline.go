package report

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Stage names passed to Config.Observe and used in logs.
const (
	StageNormalize = "normalize"
	StageAggregate = "aggregate"
	StageAttach    = "attach_manager"
	StagePayroll   = "manager_payroll"
	StageRank      = "rank"
)

// Config is the single configuration value threaded through every stage.
type Config struct {
	// Columns names the source columns; zero fields take DefaultColumns.
	Columns ColumnNames

	// Partitions > 1 runs aggregation and ranking on that many hash
	// partitions concurrently. The result is identical to the sequential run.
	Partitions int

	// FailOnDuplicateKeys turns join cardinality warnings into a fatal error.
	FailOnDuplicateKeys bool

	// Logger receives stage timings and advisory findings. Nil disables logging.
	Logger *zap.Logger

	// Observe, when set, is called after every stage with its duration and
	// error.
	Observe func(stage string, d time.Duration, err error)
}

// Counts summarizes the size of every intermediate table.
type Counts struct {
	Employees     int
	Assignments   int
	SalaryEntries int
	Annual        int
	UnderManager  int
	Managers      int
	Rows          int
}

// Result is the outcome of a successful run.
type Result struct {
	Rows []ReportRow

	// Warnings lists duplicate join keys found in the sources.
	Warnings []JoinCardinalityWarning

	// Unassigned lists, sorted, the employees with salary entries but no
	// manager assignment. They are absent from Rows.
	Unassigned []string

	Counts Counts
}

// Pipeline runs the report stages.
type Pipeline struct {
	cfg Config
	log *zap.Logger
}

// New returns a Pipeline for cfg.
func New(cfg Config) *Pipeline {
	def := DefaultColumns()
	if cfg.Columns.Employee == "" {
		cfg.Columns.Employee = def.Employee
	}
	if cfg.Columns.ManagerName == "" {
		cfg.Columns.ManagerName = def.ManagerName
	}
	if cfg.Columns.Month == "" {
		cfg.Columns.Month = def.Month
	}
	if cfg.Columns.MonthlySalary == "" {
		cfg.Columns.MonthlySalary = def.MonthlySalary
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Run executes every stage over src. Any error aborts the run and no partial
// result is returned.
func (p *Pipeline) Run(ctx context.Context, src Sources) (*Result, error) {
	var (
		res     = &Result{}
		norm    *Normalized
		annual  []AnnualSalary
		under   []EmployeeUnderManager
		payroll []ManagerPayroll
	)

	err := p.stage(ctx, StageNormalize, func() (err error) {
		norm, err = Normalize(src, p.cfg.Columns)
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Warnings = norm.Warnings
	for _, w := range norm.Warnings {
		p.log.Warn("duplicate join key",
			zap.String("table", w.Table),
			zap.String("column", w.Column),
			zap.String("key", w.Key),
			zap.Int("count", w.Count),
		)
	}
	if p.cfg.FailOnDuplicateKeys && len(norm.Warnings) > 0 {
		errs := make([]error, len(norm.Warnings))
		for i, w := range norm.Warnings {
			errs[i] = w
		}
		return nil, fmt.Errorf("%s: %w", StageNormalize, errors.Join(errs...))
	}

	if err := p.stage(ctx, StageAggregate, func() (err error) {
		annual, err = p.aggregate(ctx, norm.Entries)
		return err
	}); err != nil {
		return nil, err
	}

	if err := p.stage(ctx, StageAttach, func() error {
		under = AttachManager(annual, norm.Assignments)
		return nil
	}); err != nil {
		return nil, err
	}
	res.Unassigned = unassigned(annual, under)
	if len(res.Unassigned) > 0 {
		p.log.Warn("employees without a manager are excluded from the report",
			zap.Int("count", len(res.Unassigned)))
	}

	if err := p.stage(ctx, StagePayroll, func() (err error) {
		payroll, err = ComputeManagerPayroll(norm.Assignments, under)
		return err
	}); err != nil {
		return nil, err
	}

	if err := p.stage(ctx, StageRank, func() (err error) {
		res.Rows, err = buildReport(ctx, payroll, under, norm.Entries, p.cfg.Partitions)
		return err
	}); err != nil {
		return nil, err
	}

	res.Counts = Counts{
		Employees:     len(norm.Employees),
		Assignments:   len(norm.Assignments),
		SalaryEntries: len(norm.Entries),
		Annual:        len(annual),
		UnderManager:  len(under),
		Managers:      len(payroll),
		Rows:          len(res.Rows),
	}
	if len(res.Rows) == 0 {
		p.log.Info("report is empty")
	}
	return res, nil
}

// aggregate computes annual totals, partitioned by employee when configured.
func (p *Pipeline) aggregate(ctx context.Context, entries []MonthlySalaryEntry) ([]AnnualSalary, error) {
	amounts, err := parseAmounts(entries)
	if err != nil {
		return nil, err
	}
	all := indexes(len(entries))
	if p.cfg.Partitions <= 1 {
		return finishAnnual(sumAnnual(entries, amounts, all))
	}

	buckets := partitionBy(all, p.cfg.Partitions, func(i int) string { return entries[i].EmployeeID })
	sums := make([][]annualAcc, len(buckets))
	if err := runPartitions(ctx, buckets, func(_ context.Context, b int, idx []int) error {
		sums[b] = sumAnnual(entries, amounts, idx)
		return nil
	}); err != nil {
		return nil, err
	}
	return finishAnnual(mergeAnnual(sums))
}

// stage runs fn as the named stage, timing it and reporting the outcome.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	d := time.Since(start)
	if p.cfg.Observe != nil {
		p.cfg.Observe(name, d, err)
	}
	if err != nil {
		p.log.Error("stage failed", zap.String("stage", name), zap.Duration("took", d), zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	p.log.Debug("stage done", zap.String("stage", name), zap.Duration("took", d))
	return nil
}

// unassigned returns the sorted employees of annual absent from under.
func unassigned(annual []AnnualSalary, under []EmployeeUnderManager) []string {
	matched := make(map[string]struct{}, len(under))
	for _, u := range under {
		matched[u.EmployeeID] = struct{}{}
	}
	var out []string
	for _, a := range annual {
		if a.EmployeeID == "" {
			continue
		}
		if _, ok := matched[a.EmployeeID]; !ok {
			out = append(out, a.EmployeeID)
		}
	}
	slices.Sort(out)
	return out
}

