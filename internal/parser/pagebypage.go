package parser

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/quality"
)

type pageOutcome struct {
	page    int // 0-based
	out     extract.Outcome
	flagged bool
}

// pageByPage extracts every page through the library path, flags the pages
// that score poorly or look degraded, and re-extracts only those through the
// vision model. Vision re-extraction fans out with a bounded worker count;
// page order in the assembled document is preserved regardless.
func (p *Parser) pageByPage(ctx context.Context, unit extract.Unit, provider string) *Result {
	pageCount := unit.PageCount
	if pageCount <= 0 {
		// Cannot enumerate pages; degrade to whole-document handling.
		p.logger.Warn("parse.page_by_page.no_page_count", "path", unit.Path)
		return p.libraryFirst(ctx, unit, provider)
	}

	pages := make([]pageOutcome, pageCount)
	for i := 0; i < pageCount; i++ {
		out := p.runLibraryPage(ctx, unit, i)
		flagged := !out.Success ||
			out.Scoring.Overall < p.cfg.ConfidenceThreshold ||
			quality.IsDegraded(out.Content.Text)
		pages[i] = pageOutcome{page: i, out: out, flagged: flagged}
	}

	flaggedCount := 0
	for i := range pages {
		if pages[i].flagged {
			flaggedCount++
		}
	}

	var visionAttempts atomic.Int64
	if p.registry.Available() {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.PageWorkers)
		for i := range pages {
			if !pages[i].flagged {
				continue
			}
			po := &pages[i]
			g.Go(func() error {
				visionAttempts.Add(1)
				vis := p.runVision(gctx, unit.PageUnit(po.page), provider, []int{po.page})
				if vis.Success {
					po.out = vis
				} else {
					p.logger.Warn("parse.page_by_page.vision_failed",
						"page", po.page+1, "error", vis.Err)
				}
				return nil
			})
		}
		_ = g.Wait()
	} else if flaggedCount > 0 {
		// No backend to re-extract with; the library pages stand.
		p.logger.Warn("parse.page_by_page.no_backend",
			"path", unit.Path, "flagged_pages", flaggedCount)
	}

	var sb strings.Builder
	var tables []extract.Table
	var images []extract.Image
	var overallSum float32
	var scored int
	visionProvider := ""
	for _, po := range pages {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("--- Page %d ---\n", po.page+1))
		sb.WriteString(po.out.Content.Text)

		for _, t := range po.out.Content.Tables {
			t.Page = po.page + 1
			tables = append(tables, t)
		}
		for _, im := range po.out.Content.Images {
			im.Page = po.page + 1
			images = append(images, im)
		}
		if po.out.Scoring.Overall > 0 {
			overallSum += po.out.Scoring.Overall
			scored++
		}
		if po.out.Method == constants.MethodVision && visionProvider == "" {
			visionProvider = po.out.Provider
		}
	}

	var overall float32
	if scored > 0 {
		overall = overallSum / float32(scored)
	}

	res := &Result{
		Text:   sb.String(),
		Tables: tables,
		Images: images,
		Method: constants.MethodPageByPage,
		Scoring: extract.Scoring{
			Text:    overall,
			Table:   overall,
			Image:   overall,
			Overall: overall,
			Reasons: []string{fmt.Sprintf("page-by-page: %d pages, %d re-extracted", pageCount, visionAttempts.Load())},
		},
		FallbackTriggered: visionAttempts.Load() > 0,
	}
	res.Provider = visionProvider
	return res
}

// runLibraryPage extracts and scores a single page with page-sized thresholds.
func (p *Parser) runLibraryPage(ctx context.Context, unit extract.Unit, page int) (out extract.Outcome) {
	if p.cfg.LibraryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.LibraryTimeout)
		defer cancel()
	}
	out = extract.Outcome{Method: constants.MethodLibrary}
	pu := unit.PageUnit(page)

	defer func() {
		if r := recover(); r != nil {
			out = failedOutcome(constants.MethodLibrary, "", fmt.Sprintf("page extraction panic: %v", r), out.Duration)
		}
		p.record(ctx, out, pu)
	}()

	content, err := p.library.ExtractPage(ctx, unit.Path, page)
	if err != nil {
		out = failedOutcome(constants.MethodLibrary, "", fmt.Sprintf("page %d extraction failed: %v", page+1, err), 0)
		return out
	}
	out.Content = content
	out.Scoring = quality.AssessPage(content.Text, len(content.Tables), len(content.Images))
	out.Success = true
	return out
}
