package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/recorder"
)

var (
	flagStatsMethod string
	flagStatsDSN    string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate performance stats from the metrics ledger",
	Long: `Stats summarizes the recorded parse metrics: operation counts, success
rates, timing, and confidence, optionally filtered to one method.

Examples:
  smartparse stats
  smartparse stats --method library
  smartparse stats --dsn metrics.db`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&flagStatsMethod, "method", "",
		"Filter to one method (library, vision, hybrid, page_by_page)")
	statsCmd.Flags().StringVar(&flagStatsDSN, "dsn", "", "Metrics DSN (overrides METRICS_DSN)")
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg := common.LoadConfig()
	dsn := cfg.Metrics.DSN
	if flagStatsDSN != "" {
		dsn = flagStatsDSN
	}
	if dsn == "" {
		return fmt.Errorf("no metrics ledger configured; set METRICS_DSN or pass --dsn")
	}

	ctx := cmd.Context()
	ledger, err := recorder.OpenLedger(ctx, dsn, nil)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	summary, ok, err := ledger.Summary(ctx, flagStatsMethod)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no successful operations recorded")
		return nil
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
