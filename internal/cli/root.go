// Package cli implements the reviewstats command line tool.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"review-dashboard/internal/config"
	"review-dashboard/internal/observability"
)

var version = "dev"

type rootOptions struct {
	logLevel string
	quiet    bool
	trace    bool
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "reviewstats",
		Short: "Clean app review exports and report sentiment statistics",
		Long: `reviewstats reads an app review export (CSV or XLSX), drops rows with
missing values, coerces the remaining fields and prints sentiment reports
per app and per language together with summary statistics.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress log output")
	cmd.PersistentFlags().BoolVar(&opts.trace, "trace", false, "write otel spans as JSON to stderr")

	cmd.AddCommand(newAnalyzeCmd(opts))
	return cmd
}

func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

// logger writes text logs to the command's stderr.
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	w := cmd.ErrOrStderr()
	if o.quiet {
		w = io.Discard
	}
	return observability.NewLoggerTo(w, config.LoggerConfig{Level: o.logLevel, Format: "text"})
}

// tracing installs a stdout span exporter on stderr when --trace is set.
func (o *rootOptions) tracing(cmd *cobra.Command, logger *slog.Logger) (observability.ShutdownFunc, error) {
	exporter := observability.ExporterNone
	if o.trace {
		exporter = observability.ExporterStdout
	}
	return observability.InitTracing(config.TracingConfig{Exporter: exporter, SampleRatio: 1}, cmd.ErrOrStderr(), logger)
}
