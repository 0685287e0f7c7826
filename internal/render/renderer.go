// Package render rasterizes PDF pages to PNG for the vision backend.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/library"
)

type Renderer struct {
	cfg    common.LibraryConfig
	runner library.Runner
	logger *slog.Logger
}

func NewRenderer(cfg common.LibraryConfig, runner library.Runner, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = library.NewRunner()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.RenderDPI <= 0 {
		cfg.RenderDPI = 300
	}
	return &Renderer{cfg: cfg, runner: runner, logger: logger}
}

// RenderPages rasterizes the given 0-based pages to PNG bytes, in the order
// requested. A nil or empty slice renders the whole document, capped at
// MaxPages when configured.
func (r *Renderer) RenderPages(ctx context.Context, path string, pages []int) ([][]byte, error) {
	tmpDir, err := os.MkdirTemp("", "pp-render-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			r.logger.Warn("render.tmpdir.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}()

	if len(pages) == 0 {
		return r.renderRange(ctx, path, tmpDir, 0, 0)
	}

	var out [][]byte
	for _, p := range pages {
		if p < 0 {
			return nil, fmt.Errorf("page index must be >= 0, got %d", p)
		}
		imgs, err := r.renderRange(ctx, path, tmpDir, p+1, p+1)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", p, err)
		}
		out = append(out, imgs...)
	}
	return out, nil
}

// renderRange shells out to pdftoppm for a 1-based inclusive range; 0 means
// unbounded. Output files are page-numbered (prefix-1.png, prefix-2.png, ...).
func (r *Renderer) renderRange(ctx context.Context, path, tmpDir string, first, last int) ([][]byte, error) {
	prefix := filepath.Join(tmpDir, fmt.Sprintf("page-%d-%d", first, last))
	args := []string{"-r", strconv.Itoa(r.cfg.RenderDPI), "-png"}
	if first > 0 {
		args = append(args, "-f", strconv.Itoa(first))
	}
	if last > 0 {
		args = append(args, "-l", strconv.Itoa(last))
	} else if r.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(r.cfg.MaxPages))
	}
	args = append(args, path, prefix)

	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, args...)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, string(errb))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}

	imgs := make([][]byte, 0, len(matches))
	for _, m := range matches {
		b, readErr := os.ReadFile(m)
		if readErr != nil {
			return nil, readErr
		}
		imgs = append(imgs, b)
	}
	return imgs, nil
}
