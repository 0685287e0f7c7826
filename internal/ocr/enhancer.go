// Package ocr provides a tesseract-based enhancement pass for documents whose
// direct text extraction came back implausibly short (typically scans).
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/library"
)

type Enhancer struct {
	cfg      common.LibraryConfig
	runner   library.Runner
	renderer extract.PageRenderer
	logger   *slog.Logger
}

func NewEnhancer(cfg common.LibraryConfig, runner library.Runner, renderer extract.PageRenderer, logger *slog.Logger) *Enhancer {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = library.NewRunner()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &Enhancer{cfg: cfg, runner: runner, renderer: renderer, logger: logger}
}

// Enhance rasterizes the document and OCRs each page. The returned confidence
// is a lexical heuristic over the recognized text, not an engine-reported one.
func (e *Enhancer) Enhance(ctx context.Context, path, libraryText string) (string, float32, error) {
	start := time.Now()

	imgs, err := e.renderer.RenderPages(ctx, path, nil)
	if err != nil {
		return "", 0, fmt.Errorf("render for ocr: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "pp-ocr-*")
	if err != nil {
		return "", 0, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("ocr.tmpdir.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	var b strings.Builder
	failed := 0
	for i, img := range imgs {
		imgPath := filepath.Join(tmpDir, fmt.Sprintf("page-%d.png", i+1))
		if writeErr := os.WriteFile(imgPath, img, 0o600); writeErr != nil {
			return "", 0, writeErr
		}
		txt, ocrErr := e.tesseractOCR(ctx, imgPath)
		if ocrErr != nil {
			failed++
			e.logger.Warn("ocr.page.failed", "path", path, "page", i+1, "error", ocrErr)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}
	if failed == len(imgs) {
		return "", 0, fmt.Errorf("ocr failed on all %d pages", len(imgs))
	}

	text := b.String()
	conf := heuristicConfidence(text)
	e.logger.Info("ocr.enhance.done",
		"path", path,
		"pages", len(imgs),
		"failed_pages", failed,
		"library_chars", len(libraryText),
		"ocr_chars", len(text),
		"confidence", conf,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, conf, nil
}

func (e *Enhancer) tesseractOCR(ctx context.Context, imgPath string) (string, error) {
	args := []string{imgPath, "stdout", "-l", e.cfg.TesseractLang}
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, string(errb))
	}
	return string(out), nil
}
