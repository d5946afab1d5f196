package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-weekly-report/internal/gateway"
	"github.com/naka-gawa/pr-weekly-report/internal/report"
	"github.com/naka-gawa/pr-weekly-report/internal/usecase"
)

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Generates a date-range report for a single repository",
	Long: `Computes pull request metrics for one repository over an explicit
[from, to] date range and writes a markdown report. Only PRs created
within the range contribute to the counters.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		org, _ := cmd.Flags().GetString("org")
		repo, _ := cmd.Flags().GetString("repo")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		outPath, _ := cmd.Flags().GetString("out")

		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		const inputDateLayout = "2006/01/02"
		start, err := time.Parse(inputDateLayout, fromStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --from date format. Please use YYYY/MM/DD. Error: %v\n", err)
			os.Exit(1)
		}
		end, err := time.Parse(inputDateLayout, toStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --to date format. Please use YYYY/MM/DD. Error: %v\n", err)
			os.Exit(1)
		}
		// The range is inclusive, so extend the end date to the last
		// instant of that day.
		end = end.Add(24*time.Hour - time.Second)
		if end.Before(start) {
			fmt.Fprintln(os.Stderr, "Error: --to must not be before --from.")
			os.Exit(1)
		}

		fetcher, err := gateway.NewGitHubFetcher(token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub fetcher: %v\n", err)
			os.Exit(1)
		}
		aggregator := usecase.NewAggregator(fetcher, logger)

		metrics, err := aggregator.ComputeRangeMetrics(ctx, org, repo, start, end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to compute range metrics: %v\n", err)
			os.Exit(1)
		}

		doc := report.RenderRangeReport(repo, metrics, start, end)
		if err := writeReport(doc, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(rangeCmd)
	rangeCmd.Flags().StringP("org", "o", "", "Target GitHub organization name (required)")
	rangeCmd.Flags().StringP("repo", "r", "", "Target repository name (required)")
	rangeCmd.Flags().String("from", "", "Range start date (YYYY/MM/DD, required)")
	rangeCmd.Flags().String("to", "", "Range end date (YYYY/MM/DD, required)")
	rangeCmd.Flags().String("out", "", "Report output path (default: stdout)")
	rangeCmd.MarkFlagRequired("org")
	rangeCmd.MarkFlagRequired("repo")
	rangeCmd.MarkFlagRequired("from")
	rangeCmd.MarkFlagRequired("to")
}
