package main

import (
	"go.uber.org/zap"

	"payroll/internal/metrics"
	"payroll/internal/metrics/datadog"
	"payroll/internal/metrics/prompush"
)

// setupMetrics installs the named metrics backend and returns a function that
// flushes it. Unknown names and init failures fall back to the no-op backend.
func setupMetrics(name, job, pushURL, ddAddr string, log *zap.Logger) (flush func()) {
	flush = func() {}
	var (
		b   metrics.Backend
		err error
	)
	switch name {
	case "pushgateway":
		if pushURL == "" {
			pushURL = "http://localhost:9091"
		}
		b, err = prompush.NewBackend(job, pushURL)
	case "datadog":
		if ddAddr == "" {
			ddAddr = "127.0.0.1:8125"
		}
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       ddAddr,
			Namespace:  "payroll.",
			GlobalTags: []string{"job:" + job},
		})
	case "", "none":
		log.Debug("metrics disabled")
		return flush
	default:
		log.Warn("unknown metrics backend; metrics disabled", zap.String("backend", name))
		return flush
	}
	if err != nil {
		log.Warn("metrics backend init failed; using nop", zap.String("backend", name), zap.Error(err))
		return flush
	}

	metrics.SetBackend(b)
	log.Info("metrics enabled", zap.String("backend", name), zap.String("job", job))
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
	}
}
