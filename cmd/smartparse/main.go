// smartparse is the CLI entry point: parse documents, inspect recorded
// metrics, and export them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/library"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/ocr"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/parser"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/recorder"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/render"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/vision"
)

var rootCmd = &cobra.Command{
	Use:   "smartparse",
	Short: "smartparse — PDF extraction with library and vision-model backends",
	Long: `smartparse extracts text, tables, and images from PDFs. A fast deterministic
path handles well-formed documents; a vision model takes over when the output
looks degraded.

Usage:
  smartparse parse <file.pdf> [flags]
  smartparse stats [flags]
  smartparse export [flags]`,
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildParser wires the full pipeline from configuration. The returned
// cleanup closes the metrics ledger when one was opened.
func buildParser(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*parser.Parser, *recorder.Memory, func(), error) {
	runner := library.NewRunner()
	renderer := render.NewRenderer(cfg.Library, runner, logger)

	libOpts := []library.Option{library.WithRunner(runner)}
	if cfg.Library.EnableOCR {
		libOpts = append(libOpts, library.WithEnhancer(ocr.NewEnhancer(cfg.Library, runner, renderer, logger)))
	}
	lib := library.NewExtractor(cfg.Library, logger, libOpts...)

	registry := vision.NewRegistry(ctx, cfg.Vision, logger)

	mem := recorder.NewMemory()
	rec := recorder.Recorder(mem)
	cleanup := func() {}
	if cfg.Metrics.DSN != "" {
		ledger, err := recorder.OpenLedger(ctx, cfg.Metrics.DSN, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open metrics ledger: %w", err)
		}
		rec = recorder.Multi{mem, ledger}
		cleanup = func() { _ = ledger.Close() }
	}

	p := parser.New(cfg.Parser, lib, registry, renderer, logger, parser.WithRecorder(rec))
	return p, mem, cleanup, nil
}
