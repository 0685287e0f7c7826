// Package library is the deterministic extraction backend: pdftotext for
// layout-preserving text, with an in-process fallback reader when the binary
// is unavailable, plus table and image detection on top of the raw output.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
)

// OCREnhanceMinChars: below this much library text on a non-empty document,
// the OCR enhancement pass is worth its cost.
const OCREnhanceMinChars = 200

// ocrAdoptRatio: enhanced text must beat the library text by this factor
// before it replaces it.
const ocrAdoptRatio = 1.2

// TextEnhancer is an optional OCR pass over the rasterized document, consulted
// when direct text extraction comes back implausibly short.
type TextEnhancer interface {
	Enhance(ctx context.Context, path, libraryText string) (text string, confidence float32, err error)
}

type Extractor struct {
	cfg      common.LibraryConfig
	runner   Runner
	enhancer TextEnhancer
	logger   *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the exec runner, used to stub external tools in tests.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithEnhancer attaches the OCR enhancement pass.
func WithEnhancer(t TextEnhancer) Option {
	return func(e *Extractor) { e.enhancer = t }
}

func NewExtractor(cfg common.LibraryConfig, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	e := &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract pulls text, tables and images from the whole document.
func (e *Extractor) Extract(ctx context.Context, path string) (extract.Content, error) {
	start := time.Now()
	text, pages, err := e.docText(ctx, path)
	if err != nil {
		return extract.Content{}, err
	}

	if e.enhancer != nil && pages > 0 && len(strings.TrimSpace(text)) < OCREnhanceMinChars {
		enhanced, conf, enhErr := e.enhancer.Enhance(ctx, path, text)
		if enhErr != nil {
			e.logger.Warn("library.ocr_enhance.failed", "path", path, "error", enhErr)
		} else if float64(len(strings.TrimSpace(enhanced))) > float64(len(strings.TrimSpace(text)))*ocrAdoptRatio {
			e.logger.Info("library.ocr_enhance.adopted",
				"path", path,
				"ocr_confidence", conf,
				"library_chars", len(text),
				"ocr_chars", len(enhanced),
			)
			text = enhanced
		}
	}

	tables := tablesFromLayout(text)
	images, imgErr := e.imageCensus(path, -1)
	if imgErr != nil {
		e.logger.Debug("library.image_census.failed", "path", path, "error", imgErr)
	}

	e.logger.Debug("library.extract.ok",
		"path", path,
		"pages", pages,
		"chars", len(text),
		"tables", len(tables),
		"images", len(images),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return extract.Content{Text: text, Tables: tables, Images: images}, nil
}

// ExtractPage pulls content for a single 0-based page.
func (e *Extractor) ExtractPage(ctx context.Context, path string, page int) (extract.Content, error) {
	if page < 0 {
		return extract.Content{}, fmt.Errorf("page index must be >= 0, got %d", page)
	}
	text, err := e.pageText(ctx, path, page)
	if err != nil {
		return extract.Content{}, err
	}

	tables := tablesFromLayout(text)
	for i := range tables {
		tables[i].Page = page + 1
	}
	images, imgErr := e.imageCensus(path, page)
	if imgErr != nil {
		e.logger.Debug("library.image_census.failed", "path", path, "page", page, "error", imgErr)
	}
	return extract.Content{Text: text, Tables: tables, Images: images}, nil
}

// PageCount reports the number of pages, preferring the in-process reader and
// falling back to counting form feeds in pdftotext output.
func (e *Extractor) PageCount(ctx context.Context, path string) (int, error) {
	if n, err := readerPageCount(path); err == nil && n > 0 {
		return n, nil
	}
	_, pages, err := e.pdfToText(ctx, path, 0, 0)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return pages, nil
}

// docText extracts whole-document text: pdftotext first, reader fallback.
func (e *Extractor) docText(ctx context.Context, path string) (string, int, error) {
	text, pages, err := e.pdfToText(ctx, path, 0, 0)
	if err == nil {
		return text, pages, nil
	}
	e.logger.Warn("library.pdftotext.failed", "path", path, "error", err)

	text, pages, rErr := readerDocText(path)
	if rErr != nil {
		return "", 0, fmt.Errorf("pdftotext: %v; reader fallback: %w", err, rErr)
	}
	return text, pages, nil
}

// pageText extracts one page's text: pdftotext -f/-l first, reader fallback.
func (e *Extractor) pageText(ctx context.Context, path string, page int) (string, error) {
	text, _, err := e.pdfToText(ctx, path, page+1, page+1)
	if err == nil {
		return text, nil
	}
	e.logger.Warn("library.pdftotext.failed", "path", path, "page", page, "error", err)

	text, rErr := readerPageText(path, page)
	if rErr != nil {
		return "", fmt.Errorf("pdftotext: %v; reader fallback: %w", err, rErr)
	}
	return text, nil
}

// pdfToText shells out to pdftotext. first/last are 1-based and 0 means
// unbounded. A form-feed \f is the default page separator.
func (e *Extractor) pdfToText(ctx context.Context, path string, first, last int) (string, int, error) {
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if first > 0 {
		args = append(args, "-f", strconv.Itoa(first))
	}
	if last > 0 {
		args = append(args, "-l", strconv.Itoa(last))
	}
	if e.cfg.MaxPages > 0 && last == 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, "-")

	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return "", 0, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	text := string(out)
	pages := 1 + strings.Count(text, "\f")
	return text, pages, nil
}
