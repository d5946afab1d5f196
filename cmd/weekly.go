package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/pr-weekly-report/internal/config"
	"github.com/naka-gawa/pr-weekly-report/internal/domain"
	"github.com/naka-gawa/pr-weekly-report/internal/gateway"
	"github.com/naka-gawa/pr-weekly-report/internal/report"
	"github.com/naka-gawa/pr-weekly-report/internal/usecase"
)

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Generates the rolling weekly report for all configured repositories",
	Long: `Computes pull request metrics for the trailing seven days across every
repository listed in the configuration file and writes a markdown report.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		configPath, _ := cmd.Flags().GetString("config")
		outPath, _ := cmd.Flags().GetString("out")

		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if outPath == "" {
			outPath = cfg.Output
		}

		fetcher, err := gateway.NewGitHubFetcher(token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub fetcher: %v\n", err)
			os.Exit(1)
		}
		aggregator := usecase.NewAggregator(fetcher, logger)

		window := domain.LastWeek(time.Now())
		metrics, err := aggregator.ComputeWeeklyMetrics(ctx, cfg.Owner, cfg.Repositories, window)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to compute weekly metrics: %v\n", err)
			os.Exit(1)
		}

		doc := report.RenderWeeklyReport(cfg.Owner, cfg.Repositories, metrics, window)
		if err := writeReport(doc, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(weeklyCmd)
	weeklyCmd.Flags().StringP("config", "c", "config.yaml", "Path to the YAML configuration file")
	weeklyCmd.Flags().String("out", "", "Report output path (default: config output, else stdout)")
}
