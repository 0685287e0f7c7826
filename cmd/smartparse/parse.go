package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/parser"
)

var (
	flagStrategy string
	flagProvider string
	flagOut      string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.pdf>",
	Short: "Extract text, tables, and images from a PDF",
	Long: `Parse runs the extraction pipeline on one document and prints the result
as JSON.

Examples:
  smartparse parse invoice.pdf
  smartparse parse scan.pdf --strategy vision_first --provider anthropic
  smartparse parse big.pdf --strategy page_by_page --out result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&flagStrategy, "strategy", "",
		"Parse strategy (auto, library_only, vision_only, library_first, vision_first, hybrid, page_by_page)")
	parseCmd.Flags().StringVar(&flagProvider, "provider", "", "Vision provider (openai, anthropic, gemini)")
	parseCmd.Flags().StringVar(&flagOut, "out", "", "Write the JSON result to a file instead of stdout")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !constants.IsAllowedExt(filepath.Ext(path)) {
		return fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}

	mode, ok := constants.ParseStrategyFromString(flagStrategy)
	if !ok {
		return fmt.Errorf("unknown strategy %q", flagStrategy)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	p, _, cleanup, err := buildParser(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := p.Parse(ctx, path, parser.Options{Strategy: mode, Provider: flagProvider})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if flagOut != "" {
		if err := os.WriteFile(flagOut, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", flagOut, err)
		}
		fmt.Printf("result written to %s\n", flagOut)
		return nil
	}
	fmt.Println(string(out))
	return nil
}
