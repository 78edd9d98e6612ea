// Command payroll builds the consolidated compensation report from the
// employee, manager and monthly salary tables named in a config file.
//
//	payroll run -c config.json
//	payroll validate -c config.json --print
//	payroll inspect -c config.json
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"payroll/internal/config"

	// register all backends with the storage factory.
	_ "payroll/internal/storage/all"
)

var (
	cfgPath        string
	verbose        bool
	metricsBackend string
	pushGatewayURL string
	datadogAddr    string

	previewRows int
	partitions  int
	printConfig bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "payroll",
	Short:         "Consolidated compensation report per manager",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		zc.OutputPaths = []string{"stderr"}
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the report, print a preview and write the output file",
	Long: `Loads the three source tables, aggregates annual salaries, attaches
managers, computes manager payroll, ranks and orders the rows, prints the
first rows to stdout and writes the report to Output_path.

When storage.kind is set the report is also mirrored into a database table,
replacing the previous run's rows.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadValid(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("preview-rows") {
			p.Preview.Rows = previewRows
		}
		if cmd.Flags().Changed("partitions") {
			p.Runtime.Partitions = partitions
		}

		flush := setupMetrics(metricsBackend, p.Job, pushGatewayURL, datadogAddr, logger)
		defer flush()

		_, err = runReport(cmd.Context(), p, cmd.OutOrStdout(), logger)
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadValid(cmd)
		if err != nil {
			return err
		}
		if printConfig {
			out, err := p.YAML()
			if err != nil {
				return fmt.Errorf("render config: %w", err)
			}
			_, _ = cmd.OutOrStdout().Write(out)
		}
		logger.Info("configuration is valid", zap.String("config", cfgPath))
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load the sources and show how the required columns resolve",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadValid(cmd)
		if err != nil {
			return err
		}
		return inspect(cmd.Context(), p, cmd.OutOrStdout(), logger)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgPath, "config", "c", "config.json", "config file (JSON or YAML)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
	pf.StringVar(&metricsBackend, "metrics-backend", os.Getenv("METRICS_BACKEND"), "metrics backend: pushgateway, datadog or none")
	pf.StringVar(&pushGatewayURL, "pushgateway-url", os.Getenv("PUSHGATEWAY_URL"), "Pushgateway base URL")
	pf.StringVar(&datadogAddr, "datadog-addr", os.Getenv("DD_DOGSTATSD_ADDR"), "DogStatsD address")

	runCmd.Flags().IntVar(&previewRows, "preview-rows", 100, "rows to print before writing; 0 disables")
	runCmd.Flags().IntVar(&partitions, "partitions", 0, "hash partitions for aggregation and ranking; 0 uses one per CPU")
	validateCmd.Flags().BoolVar(&printConfig, "print", false, "print the effective config (DSN redacted)")

	rootCmd.AddCommand(runCmd, validateCmd, inspectCmd)
}

// loadValid loads cfgPath and reports validation issues. Errors abort;
// warnings are logged.
func loadValid(cmd *cobra.Command) (config.Pipeline, error) {
	p, err := config.Load(cfgPath)
	if err != nil {
		return config.Pipeline{}, err
	}
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fields := []zap.Field{zap.String("path", iss.Path), zap.String("message", iss.Message)}
		if iss.Severity == config.SeverityError {
			logger.Error("config issue", fields...)
		} else {
			logger.Warn("config issue", fields...)
		}
	}
	if config.HasErrors(issues) {
		return config.Pipeline{}, fmt.Errorf("configuration is invalid: %s", cfgPath)
	}
	return p, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "payroll: %v\n", err)
		os.Exit(1)
	}
}
