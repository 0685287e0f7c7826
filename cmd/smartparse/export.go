package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/recorder"
)

var (
	flagExportFormat string
	flagExportOut    string
	flagExportDSN    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded parse metrics to XLSX or JSON",
	Long: `Export dumps the metrics ledger to a file for analysis outside the tool.

Examples:
  smartparse export --format xlsx --out metrics.xlsx
  smartparse export --format json --out metrics.json --dsn metrics.db`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&flagExportFormat, "format", "xlsx", "Output format: xlsx or json")
	exportCmd.Flags().StringVar(&flagExportOut, "out", "", "Output file path (required)")
	exportCmd.Flags().StringVar(&flagExportDSN, "dsn", "", "Metrics DSN (overrides METRICS_DSN)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	if flagExportOut == "" {
		return fmt.Errorf("--out is required")
	}

	cfg := common.LoadConfig()
	dsn := cfg.Metrics.DSN
	if flagExportDSN != "" {
		dsn = flagExportDSN
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

	records, err := ledger.List(ctx, "", 0)
	if err != nil {
		return err
	}

	var out []byte
	switch flagExportFormat {
	case "xlsx":
		out, err = recorder.ExportXLSX(records, nil)
	case "json":
		out, err = recorder.ExportJSON(records, nil)
	default:
		return fmt.Errorf("unknown format %q (want xlsx or json)", flagExportFormat)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(flagExportOut, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flagExportOut, err)
	}
	fmt.Printf("exported %d records to %s\n", len(records), flagExportOut)
	return nil
}
