// parse-batch walks a directory and parses every PDF in it through the
// worker queue, then prints a summary of the recorded metrics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/async"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/library"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/ocr"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/parser"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/recorder"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/render"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/vision"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir      = flag.String("dir", "", "directory of PDFs to parse (required)")
		strat    = flag.String("strategy", "", "parse strategy for every document (default: auto)")
		provider = flag.String("provider", "", "vision provider override")
		workers  = flag.Int("workers", 4, "concurrent parse workers")
		timeout  = flag.Duration("timeout", 3*time.Minute, "per-document timeout")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	mode, ok := constants.ParseStrategyFromString(*strat)
	if !ok {
		printError("Error: unknown strategy %q\n", *strat)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

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
	if cfg.Metrics.DSN != "" {
		ledger, err := recorder.OpenLedger(ctx, cfg.Metrics.DSN, logger)
		if err != nil {
			printError("Error: open metrics ledger: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = ledger.Close() }()
		rec = recorder.Multi{mem, ledger}
	}

	p := parser.New(cfg.Parser, lib, registry, renderer, logger, parser.WithRecorder(rec))
	queue := async.NewParseQueue(p, logger,
		async.WithWorkers(*workers),
		async.WithProcessTimeout(*timeout),
	)

	queued := 0
	err := filepath.WalkDir(*dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !constants.IsAllowedExt(filepath.Ext(path)) {
			return nil
		}
		queued++
		return queue.Enqueue(ctx, async.Job{
			Path:        path,
			Options:     parser.Options{Strategy: mode, Provider: *provider},
			SubmittedAt: time.Now().UTC(),
			TraceID:     uuid.New().String(),
		})
	})
	if err != nil {
		printError("Error: walking %s: %v\n", *dir, err)
		os.Exit(1)
	}
	if queued == 0 {
		printError("No PDF files found under %s\n", *dir)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(queued)*(*timeout))
	defer cancel()
	queue.Shutdown(shutdownCtx)

	if summary, ok := mem.Summary(""); ok {
		out, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(out))
	}
	logger.Info("batch complete", "queued", queued)
}
