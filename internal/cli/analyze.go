package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"review-dashboard/internal/cleaning"
	"review-dashboard/internal/models"
	"review-dashboard/internal/services"
)

const (
	reportApps      = "apps"
	reportLanguages = "languages"
	reportSummary   = "summary"
	reportAll       = "all"
)

type analyzeOptions struct {
	policy   string
	workers  int
	report   string
	cacheDir string
}

// analyzeOutput is printed for --report all.
type analyzeOutput struct {
	Apps      []models.AppSentiment      `json:"apps"`
	Languages []models.LanguageSentiment `json:"languages"`
	Summary   *models.SummaryStatistics  `json:"summary"`
	Records   recordCounts               `json:"records"`
}

type recordCounts struct {
	Kept     int64 `json:"kept"`
	Excluded int64 `json:"excluded"`
	Invalid  int64 `json:"invalid"`
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Clean a review export and print sentiment reports",
		Long: `Clean a review export and print sentiment reports as JSON.

Rows with any missing value are dropped. With --policy fail (the default) the
first value that cannot be converted aborts the run and reports its row and
column; with --policy skip such rows are counted as invalid and dropped.

Examples:
  reviewstats analyze reviews.csv
  reviewstats analyze --report summary reviews.xlsx
  reviewstats analyze --policy skip --workers 8 reviews.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.policy, "policy", string(cleaning.PolicyFail), "coercion failure policy (fail, skip)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "number of cleaning workers")
	cmd.Flags().StringVarP(&opts.report, "report", "r", reportAll, "report to print (apps, languages, summary, all)")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "reuse cleaned snapshots from this directory")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions, file string) error {
	policy, err := cleaning.ParsePolicy(opts.policy)
	if err != nil {
		return err
	}
	switch opts.report {
	case reportApps, reportLanguages, reportSummary, reportAll:
	default:
		return fmt.Errorf("unknown report %q", opts.report)
	}

	logger := root.logger(cmd)
	shutdown, err := root.tracing(cmd, logger)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	analytics := services.NewAnalytics(services.Options{
		Policy:   policy,
		Workers:  opts.workers,
		CacheDir: opts.cacheDir,
		Logger:   logger,
	})
	if err := analytics.LoadFromFile(cmd.Context(), file); err != nil {
		return err
	}

	var out any
	switch opts.report {
	case reportApps:
		out = models.AppReports(analytics.AppSentiment())
	case reportLanguages:
		out = models.LanguageReports(analytics.LanguageSentiment())
	case reportSummary:
		summary, err := analytics.Summary()
		if err != nil {
			return err
		}
		out = summary
	default:
		snap := analytics.Snapshot()
		out = analyzeOutput{
			Apps:      models.AppReports(analytics.AppSentiment()),
			Languages: models.LanguageReports(analytics.LanguageSentiment()),
			Summary:   snap.Summary,
			Records: recordCounts{
				Kept:     snap.RecordCount,
				Excluded: snap.Excluded,
				Invalid:  snap.Invalid,
			},
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
