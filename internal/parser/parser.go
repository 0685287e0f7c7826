// Package parser orchestrates the extraction backends: it picks a strategy,
// runs the library and vision paths, scores their output, and merges or
// falls back between them.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/quality"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/recorder"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/strategy"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/vision"
)

// Options are per-request overrides. Zero values defer to configuration.
type Options struct {
	Strategy constants.ParseStrategy
	Provider string
}

// Result is the aggregate outcome of one Parse call.
type Result struct {
	Text              string               `json:"text"`
	Tables            []extract.Table      `json:"tables"`
	Images            []extract.Image      `json:"images"`
	Method            string               `json:"method_used"`
	Provider          string               `json:"provider,omitempty"`
	Scoring           extract.Scoring      `json:"confidence"`
	Duration          time.Duration        `json:"processing_time"`
	FallbackTriggered bool                 `json:"fallback_triggered"`
	Comparison        *recorder.Comparison `json:"comparison,omitempty"`
	PageCount         int                  `json:"page_count"`
	FileSize          int64                `json:"file_size"`
}

// Parser wires the backends together.
type Parser struct {
	cfg      common.ParserConfig
	library  extract.LibraryExtractor
	registry *vision.Registry
	renderer extract.PageRenderer
	rec      recorder.Recorder
	logger   *slog.Logger
}

// Option mutates a Parser during construction.
type Option func(*Parser)

func WithRecorder(r recorder.Recorder) Option {
	return func(p *Parser) { p.rec = r }
}

func New(cfg common.ParserConfig, lib extract.LibraryExtractor, registry *vision.Registry, renderer extract.PageRenderer, logger *slog.Logger, opts ...Option) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{
		cfg:      cfg,
		library:  lib,
		registry: registry,
		renderer: renderer,
		rec:      recorder.Nop{},
		logger:   logger,
	}
	if p.cfg.ConfidenceThreshold <= 0 {
		p.cfg.ConfidenceThreshold = 0.7
	}
	if p.cfg.MaxVisionPages <= 0 {
		p.cfg.MaxVisionPages = 10
	}
	if p.cfg.PageWorkers <= 0 {
		p.cfg.PageWorkers = 4
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse runs the full pipeline on one document. It returns an error only for
// input problems (missing file, bad strategy name); backend failures surface
// as zero-confidence results, never as errors.
func (p *Parser) Parse(ctx context.Context, path string, opts Options) (*Result, error) {
	rid := uuid.New().String()
	ctx = common.WithRequestID(ctx, rid)
	start := time.Now()

	st, err := os.Stat(path)
	if err != nil {
		return nil, common.NewAppError("INVALID_INPUT", "cannot stat input file", err)
	}
	if st.IsDir() {
		return nil, common.NewAppError("INVALID_INPUT", "input is a directory: "+path, common.ErrInvalidInput)
	}

	unit := extract.DocumentUnit(path, st.Size(), 0)
	if n, err := p.library.PageCount(ctx, path); err == nil {
		unit.PageCount = n
	} else {
		p.logger.Warn("parse.page_count_failed", "req_id", rid, "path", path, "error", err)
	}

	mode := opts.Strategy
	if mode == "" {
		mode = constants.StrategyAuto
	}
	if mode == constants.StrategyAuto {
		mode = strategy.Select(unit.PageCount, unit.FileSize)
	}

	p.logger.Info("parse.start",
		"req_id", rid,
		"path", path,
		"strategy", string(mode),
		"pages", unit.PageCount,
		"file_size", unit.FileSize,
	)

	var res *Result
	switch mode {
	case constants.StrategyLibraryOnly:
		res = p.libraryOnly(ctx, unit)
	case constants.StrategyVisionOnly:
		res = p.visionOnly(ctx, unit, opts.Provider)
	case constants.StrategyLibraryFirst:
		res = p.libraryFirst(ctx, unit, opts.Provider)
	case constants.StrategyVisionFirst:
		res = p.visionFirst(ctx, unit, opts.Provider)
	case constants.StrategyHybrid:
		res = p.hybrid(ctx, unit, opts.Provider)
	case constants.StrategyPageByPage:
		res = p.pageByPage(ctx, unit, opts.Provider)
	default:
		return nil, common.NewAppError("INVALID_INPUT",
			fmt.Sprintf("unknown strategy %q", mode), common.ErrInvalidInput)
	}

	res.Duration = time.Since(start)
	res.PageCount = unit.PageCount
	res.FileSize = unit.FileSize

	p.logger.Info("parse.done",
		"req_id", rid,
		"method", res.Method,
		"fallback", res.FallbackTriggered,
		"overall", res.Scoring.Overall,
		"text_len", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// runLibrary executes the deterministic backend with its own timeout. Panics
// and errors become zero-confidence outcomes.
func (p *Parser) runLibrary(ctx context.Context, unit extract.Unit) (out extract.Outcome) {
	if p.cfg.LibraryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.LibraryTimeout)
		defer cancel()
	}
	start := time.Now()
	out = extract.Outcome{Method: constants.MethodLibrary}

	defer func() {
		if r := recover(); r != nil {
			out = failedOutcome(constants.MethodLibrary, "", fmt.Sprintf("library extraction panic: %v", r), time.Since(start))
		}
		out.Duration = time.Since(start)
		p.record(ctx, out, unit)
	}()

	content, err := p.library.Extract(ctx, unit.Path)
	if err != nil {
		out = failedOutcome(constants.MethodLibrary, "", "library extraction failed: "+err.Error(), time.Since(start))
		return out
	}
	out.Content = content
	out.Scoring = quality.Assess(content.Text, len(content.Tables), len(content.Images))
	out.Success = true
	return out
}

// runVision renders pages and executes a vision backend with its own timeout.
// pages is 0-based; nil means the leading pages up to the configured cap.
func (p *Parser) runVision(ctx context.Context, unit extract.Unit, provider string, pages []int) (out extract.Outcome) {
	if p.cfg.VisionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.VisionTimeout)
		defer cancel()
	}
	start := time.Now()
	out = extract.Outcome{Method: constants.MethodVision, Provider: provider}

	defer func() {
		if r := recover(); r != nil {
			out = failedOutcome(constants.MethodVision, provider, fmt.Sprintf("vision extraction panic: %v", r), time.Since(start))
		}
		out.Duration = time.Since(start)
		p.record(ctx, out, unit)
	}()

	backend, err := p.registry.Resolve(provider)
	if err != nil {
		out = failedOutcome(constants.MethodVision, provider, err.Error(), time.Since(start))
		return out
	}
	out.Provider = backend.Provider()

	// When the page count is unknown, leave pages nil and let the renderer
	// walk the whole document rather than guessing at indexes that may not
	// exist.
	if pages == nil && unit.PageCount > 0 {
		n := unit.PageCount
		if n > p.cfg.MaxVisionPages {
			n = p.cfg.MaxVisionPages
		}
		pages = make([]int, n)
		for i := range pages {
			pages[i] = i
		}
	}

	images, err := p.renderer.RenderPages(ctx, unit.Path, pages)
	if err != nil {
		out = failedOutcome(constants.MethodVision, out.Provider, "page rendering failed: "+err.Error(), time.Since(start))
		return out
	}

	content, confidence, err := backend.Extract(ctx, images)
	if err != nil {
		out = failedOutcome(constants.MethodVision, out.Provider, "vision extraction failed: "+err.Error(), time.Since(start))
		return out
	}
	out.Content = content
	out.Scoring = extract.Scoring{
		Text:    confidence,
		Table:   confidence,
		Image:   confidence,
		Overall: confidence,
		Reasons: []string{fmt.Sprintf("model-reported confidence: %.2f", confidence)},
	}
	out.Success = true
	return out
}

func failedOutcome(method, provider, errMsg string, dur time.Duration) extract.Outcome {
	return extract.Outcome{
		Method:   method,
		Provider: provider,
		Scoring:  extract.Scoring{Reasons: []string{errMsg}},
		Duration: dur,
		Success:  false,
		Err:      errMsg,
	}
}

// record forwards an outcome to the recorder. Recording failures are logged
// and swallowed; metrics must never fail a parse.
func (p *Parser) record(ctx context.Context, out extract.Outcome, unit extract.Unit) {
	r := toRecord(out, unit)
	if err := p.rec.Record(ctx, r); err != nil {
		p.logger.Warn("parse.record_failed", "method", out.Method, "error", err)
	}
}

func toRecord(out extract.Outcome, unit extract.Unit) recorder.Record {
	return recorder.Record{
		Method:       out.Method,
		Provider:     out.Provider,
		Duration:     out.Duration,
		TextLength:   len(out.Content.Text),
		TablesCount:  len(out.Content.Tables),
		ImagesCount:  len(out.Content.Images),
		Confidence:   out.Scoring.Overall,
		FileSize:     unit.FileSize,
		PageCount:    unit.PageCount,
		Timestamp:    time.Now().UTC(),
		Success:      out.Success,
		ErrorMessage: out.Err,
	}
}

func resultFromOutcome(out extract.Outcome) *Result {
	return &Result{
		Text:     out.Content.Text,
		Tables:   out.Content.Tables,
		Images:   out.Content.Images,
		Method:   out.Method,
		Provider: out.Provider,
		Scoring:  out.Scoring,
	}
}
