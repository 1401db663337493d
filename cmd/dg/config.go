package main

import (
	"context"
	"fmt"

	"github.com/franz/dive-gallery/internal/collection"
	"github.com/franz/dive-gallery/internal/metrics"
	"github.com/franz/dive-gallery/internal/report"
	"github.com/franz/dive-gallery/internal/scan"
	"github.com/franz/dive-gallery/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

// GetConfigInt retrieves an int config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (DG_*)
// 3. Config file
// 4. Default value
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val <= 0 {
		return defaultValue
	}
	return val
}

// eventLevel maps --quiet and --verbose to the lowest event level written
func eventLevel() report.EventLevel {
	switch {
	case viper.GetBool("quiet"):
		return report.LevelWarning
	case viper.GetBool("verbose"):
		return report.LevelDebug
	default:
		return report.LevelInfo
	}
}

// openEventLogger creates the JSONL event log, or a null logger when the
// artifacts directory cannot be written
func openEventLogger() *report.EventLogger {
	logger, err := report.NewEventLogger("artifacts", eventLevel())
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}
	util.DebugLog("Event log: %s", logger.Path())
	return logger
}

// newMetrics returns a collector when --metrics names an output file
func newMetrics() (*metrics.Collector, error) {
	if viper.GetString("metrics") == "" {
		return nil, nil
	}
	return metrics.New(prometheus.NewRegistry())
}

// writeMetrics exports the collector to the --metrics file
func writeMetrics(m *metrics.Collector) {
	path := viper.GetString("metrics")
	if m == nil || path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		util.WarnLog("Failed to write metrics: %v", err)
		return
	}
	util.InfoLog("Metrics: %s", path)
}

// loadRules reads the static configuration and taxonomy named by --static
// and --taxonomy, falling back to the built-in copies
func loadRules() (*collection.Rules, error) {
	rules, err := collection.LoadRules(viper.GetString("static"), viper.GetString("taxonomy"))
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return rules, nil
}

// scanImages reads the dive root named by --images
func scanImages(ctx context.Context, logger *report.EventLogger, m *metrics.Collector) (*scan.Result, error) {
	root := viper.GetString("images")
	if root == "" {
		return nil, fmt.Errorf("image root is required (use --images/-i or set in config): %w", util.ErrInvalidConfig)
	}

	scanner := scan.New(&scan.Config{
		Concurrency: GetConfigInt("concurrency", 4),
		Logger:      logger,
		Metrics:     m,
	})
	return scanner.Scan(ctx, root)
}

// buildCollection scans the dive root and builds every tree from it
func buildCollection(ctx context.Context, logger *report.EventLogger, m *metrics.Collector) (*collection.Collection, *scan.Result, error) {
	rules, err := loadRules()
	if err != nil {
		return nil, nil, err
	}

	result, err := scanImages(ctx, logger, m)
	if err != nil {
		return nil, nil, err
	}

	c, err := collection.Build(rules, result.Images)
	if err != nil {
		return nil, nil, err
	}
	util.DebugLog("Built collection in %v", c.Duration)

	return c, result, nil
}
