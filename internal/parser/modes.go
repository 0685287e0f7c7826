package parser

import (
	"context"
	"strings"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/quality"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/recorder"
)

// Library sub-score thresholds that force a fallback regardless of overall
// confidence: near-empty text with no tables is not a usable extraction.
const (
	fallbackMinTextChars    = 100
	visionFirstMinTextChars = 50
)

func (p *Parser) libraryOnly(ctx context.Context, unit extract.Unit) *Result {
	out := p.runLibrary(ctx, unit)
	return resultFromOutcome(out)
}

func (p *Parser) visionOnly(ctx context.Context, unit extract.Unit, provider string) *Result {
	out := p.runVision(ctx, unit, provider, nil)
	return resultFromOutcome(out)
}

// libraryFirst runs the deterministic path and escalates to a vision model
// when the output is unusable or below threshold. A strictly better vision
// outcome replaces the library one; ties keep the primary.
func (p *Parser) libraryFirst(ctx context.Context, unit extract.Unit, provider string) *Result {
	lib := p.runLibrary(ctx, unit)
	if !p.needsFallback(lib) {
		return resultFromOutcome(lib)
	}
	if !p.registry.Available() {
		// Nothing to fall back to; the library outcome stands as-is.
		p.logger.Warn("parse.fallback_unavailable",
			"overall", lib.Scoring.Overall,
			"reasons", lib.Scoring.Reasons,
		)
		return resultFromOutcome(lib)
	}

	p.logger.Info("parse.fallback",
		"from", constants.MethodLibrary,
		"to", constants.MethodVision,
		"overall", lib.Scoring.Overall,
		"reasons", lib.Scoring.Reasons,
	)
	vis := p.runVision(ctx, unit, provider, nil)

	chosen := lib
	if vis.Scoring.Overall > lib.Scoring.Overall {
		chosen = vis
	}
	res := resultFromOutcome(chosen)
	res.FallbackTriggered = true
	res.Comparison = p.compare(lib, vis, unit)
	return res
}

// visionFirst is the mirror image: model output first, library as the safety
// net when the model's confidence is low or its text is tiny.
func (p *Parser) visionFirst(ctx context.Context, unit extract.Unit, provider string) *Result {
	vis := p.runVision(ctx, unit, provider, nil)

	trimmed := len(strings.TrimSpace(vis.Content.Text))
	if vis.Success && vis.Scoring.Overall >= p.cfg.ConfidenceThreshold && trimmed >= visionFirstMinTextChars {
		return resultFromOutcome(vis)
	}

	p.logger.Info("parse.fallback",
		"from", constants.MethodVision,
		"to", constants.MethodLibrary,
		"overall", vis.Scoring.Overall,
		"text_len", trimmed,
	)
	lib := p.runLibrary(ctx, unit)

	chosen := vis
	if lib.Scoring.Overall > vis.Scoring.Overall {
		chosen = lib
	}
	res := resultFromOutcome(chosen)
	res.FallbackTriggered = true
	res.Comparison = p.compare(lib, vis, unit)
	return res
}

// hybrid runs both paths and merges per dimension: longer text wins, the
// library's tables and images are preferred when present, and each confidence
// dimension takes the max of the two.
func (p *Parser) hybrid(ctx context.Context, unit extract.Unit, provider string) *Result {
	lib := p.runLibrary(ctx, unit)
	vis := p.runVision(ctx, unit, provider, nil)

	merged := extract.Content{Text: lib.Content.Text}
	if len(vis.Content.Text) > len(lib.Content.Text) {
		merged.Text = vis.Content.Text
	}
	merged.Tables = lib.Content.Tables
	if len(merged.Tables) == 0 {
		merged.Tables = vis.Content.Tables
	}
	merged.Images = lib.Content.Images
	if len(merged.Images) == 0 {
		merged.Images = vis.Content.Images
	}

	scoring := extract.Scoring{
		Text:  maxf(lib.Scoring.Text, vis.Scoring.Text),
		Table: maxf(lib.Scoring.Table, vis.Scoring.Table),
		Image: maxf(lib.Scoring.Image, vis.Scoring.Image),
	}
	scoring.Overall = (scoring.Text + scoring.Table + scoring.Image) / 3
	scoring.Reasons = append(scoring.Reasons, lib.Scoring.Reasons...)
	scoring.Reasons = append(scoring.Reasons, vis.Scoring.Reasons...)

	return &Result{
		Text:       merged.Text,
		Tables:     merged.Tables,
		Images:     merged.Images,
		Method:     constants.MethodHybrid,
		Provider:   vis.Provider,
		Scoring:    scoring,
		Comparison: p.compare(lib, vis, unit),
	}
}

// needsFallback decides whether a library outcome warrants the vision path.
func (p *Parser) needsFallback(lib extract.Outcome) bool {
	if !lib.Success {
		return true
	}
	if lib.Scoring.Overall < p.cfg.ConfidenceThreshold {
		return true
	}
	trimmed := len(strings.TrimSpace(lib.Content.Text))
	if trimmed < fallbackMinTextChars && len(lib.Content.Tables) == 0 {
		return true
	}
	return quality.IsDegraded(lib.Content.Text)
}

func (p *Parser) compare(lib, vis extract.Outcome, unit extract.Unit) *recorder.Comparison {
	libRec := toRecord(lib, unit)
	visRec := toRecord(vis, unit)
	c := recorder.Compare(&libRec, &visRec)
	if sink, ok := p.rec.(recorder.ComparisonSink); ok {
		sink.AddComparison(c)
	}
	return &c
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
