package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"payroll/internal/config"
	"payroll/internal/datasource"
	"payroll/internal/datasource/httpds"
	"payroll/internal/ddl"
	"payroll/internal/metrics"
	"payroll/internal/output"
	csvparser "payroll/internal/parser/csv"
	"payroll/internal/preview"
	"payroll/internal/report"
	"payroll/internal/storage"
	"payroll/internal/table"
)

// runSummary is what one run produced.
type runSummary struct {
	RunID      string
	OutputPath string
	Rows       int
	Skipped    int64
	Warnings   int
	Unassigned []string
	Persisted  int64
}

// sealOutput finishes the temp report before the database mirror commits, so
// only the rename can fail after it.
var sealOutput = (*output.Pending).Seal

// runReport executes one report run for p: load the sources, run the report
// stages, print the preview, write the output file and mirror to storage when
// configured. The output file only appears once every step succeeded.
func runReport(ctx context.Context, p config.Pipeline, stdout io.Writer, log *zap.Logger) (*runSummary, error) {
	sum := &runSummary{RunID: uuid.NewString()}
	log = log.With(zap.String("job", p.Job), zap.String("run_id", sum.RunID))
	start := time.Now()

	src, skipped, err := loadSources(ctx, p, log)
	if err != nil {
		return nil, err
	}
	sum.Skipped = skipped
	metrics.RecordRow(p.Job, "skipped", skipped)

	parts := p.Runtime.Partitions
	if parts <= 0 {
		parts = runtime.NumCPU()
	}
	pl := report.New(report.Config{
		Columns: report.ColumnNames{
			Employee:      p.Columns.Employee,
			ManagerName:   p.Columns.ManagerName,
			Month:         p.Columns.Month,
			MonthlySalary: p.Columns.MonthlySalary,
		},
		Partitions:          parts,
		FailOnDuplicateKeys: p.Checks.FailOnDuplicateKeys,
		Logger:              log,
		Observe: func(stage string, d time.Duration, err error) {
			metrics.RecordStep(p.Job, stage, err, d)
		},
	})
	res, err := pl.Run(ctx, src)
	if err != nil {
		return nil, err
	}
	recordCounts(p.Job, res)
	sum.Rows = len(res.Rows)
	sum.Warnings = len(res.Warnings)
	sum.Unassigned = res.Unassigned
	if p.Checks.ListUnassigned {
		for _, id := range res.Unassigned {
			log.Info("employee has no manager; excluded from report", zap.String("employee", id))
		}
	}

	records := make([][]string, len(res.Rows))
	for i, r := range res.Rows {
		records[i] = r.Record()
	}
	if !p.Preview.Disabled {
		if err := preview.Render(stdout, report.ReportHeader, records, p.Preview.Rows); err != nil {
			return nil, fmt.Errorf("preview: %w", err)
		}
	}

	comma := ','
	if r := []rune(p.Output.Comma); len(r) > 0 {
		comma = r[0]
	}
	out, err := output.Create(p.OutputPath, comma)
	if err != nil {
		return nil, err
	}
	if err := writeRecords(out, records); err != nil {
		_ = out.Abort()
		return nil, err
	}
	sum.OutputPath = out.Path()
	if err := sealOutput(out); err != nil {
		_ = out.Abort()
		return nil, err
	}

	if p.Storage.Kind != "" {
		n, err := persist(ctx, p, res.Rows, log)
		if err != nil {
			_ = out.Abort()
			return nil, err
		}
		sum.Persisted = n
		metrics.RecordRow(p.Job, "persisted", n)
	}

	if err := out.Commit(); err != nil {
		return nil, err
	}
	log.Info("report written",
		zap.String("path", sum.OutputPath),
		zap.Int("rows", sum.Rows),
		zap.Int64("skipped", sum.Skipped),
		zap.Int("unassigned", len(sum.Unassigned)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return sum, nil
}

// loadSources reads the three tables concurrently. Malformed employee and
// manager rows are skipped, logged and counted; a malformed salary row fails
// the load, since dropping it would change every total it feeds.
func loadSources(ctx context.Context, p config.Pipeline, log *zap.Logger) (report.Sources, int64, error) {
	client := httpds.NewClient(httpds.Config{
		Timeout:            time.Duration(p.HTTP.TimeoutSeconds) * time.Second,
		MaxRetries:         p.HTTP.MaxRetries,
		InsecureSkipVerify: p.HTTP.InsecureSkipVerify,
	})
	opt := csvparser.OptionsFrom(p.Parser.Options)

	var (
		src     report.Sources
		skipped atomic.Int64
	)
	loads := []struct {
		name     string
		location string
		strict   bool
		dst      **table.Table
	}{
		{report.TableEmployees, p.EmployeeDetails, false, &src.Employees},
		{report.TableManagers, p.Manager, false, &src.Managers},
		{report.TableSalaries, p.EmployeeSalary, true, &src.Salaries},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range loads {
		g.Go(func() error {
			rc, err := datasource.For(l.location, client).Open(gctx)
			if err != nil {
				return fmt.Errorf("load %s: %w", l.name, err)
			}
			defer rc.Close()

			opt := opt
			opt.Strict = l.strict
			t, err := csvparser.ReadTable(gctx, l.name, rc, opt, func(line int, err error) {
				skipped.Add(1)
				log.Warn("skipping malformed row",
					zap.String("table", l.name),
					zap.Int("line", line),
					zap.Error(err),
				)
			})
			if err != nil {
				return fmt.Errorf("load %s: %w", l.name, err)
			}
			log.Debug("source loaded",
				zap.String("table", l.name),
				zap.String("location", l.location),
				zap.Int("rows", t.Len()),
			)
			*l.dst = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.Sources{}, 0, err
	}
	return src, skipped.Load(), nil
}

func writeRecords(out *output.Pending, records [][]string) error {
	if err := out.Write(report.ReportHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := out.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// reportColumns pairs the report header with its column kinds.
func reportColumns() []ddl.Column {
	cols := make([]ddl.Column, len(report.ReportHeader))
	for i, name := range report.ReportHeader {
		cols[i] = ddl.Column{Name: name, Kind: report.ReportKinds[i]}
	}
	return cols
}

// persist replaces the configured table's contents with rows.
func persist(ctx context.Context, p config.Pipeline, rows []report.ReportRow, log *zap.Logger) (int64, error) {
	cfg := storage.Config{
		Kind:    p.Storage.Kind,
		DSN:     p.Storage.DB.DSN,
		Table:   p.Storage.DB.Table,
		Columns: reportColumns(),
	}
	repo, err := storage.New(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("storage: %w", err)
	}
	defer repo.Close()

	if p.Storage.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, cfg, repo); err != nil {
			return 0, fmt.Errorf("storage: ensure table: %w", err)
		}
	}

	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = r.Values()
	}
	n, err := repo.ReplaceAll(ctx, values)
	if err != nil {
		return 0, fmt.Errorf("storage: replace %s: %w", cfg.Table, err)
	}
	log.Info("report mirrored", zap.String("kind", cfg.Kind), zap.String("table", cfg.Table), zap.Int64("rows", n))
	return n, nil
}

func recordCounts(job string, res *report.Result) {
	c := res.Counts
	metrics.RecordRow(job, "employees", int64(c.Employees))
	metrics.RecordRow(job, "assignments", int64(c.Assignments))
	metrics.RecordRow(job, "salary_entries", int64(c.SalaryEntries))
	metrics.RecordRow(job, "report_rows", int64(c.Rows))
	metrics.RecordRow(job, "unassigned", int64(len(res.Unassigned)))

	perTable := map[string]int64{}
	for _, w := range res.Warnings {
		perTable[w.Table]++
	}
	for tbl, n := range perTable {
		metrics.RecordWarning(job, tbl, n)
	}
}
