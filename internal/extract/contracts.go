package extract

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Unit is the atomic thing a backend processes: a whole document, or one
// page of it when Page >= 0.
type Unit struct {
	ID        uuid.UUID
	Path      string
	FileSize  int64
	PageCount int
	Page      int // 0-based page index; -1 means the whole document
}

// DocumentUnit describes a whole document.
func DocumentUnit(path string, fileSize int64, pageCount int) Unit {
	return Unit{ID: uuid.New(), Path: path, FileSize: fileSize, PageCount: pageCount, Page: -1}
}

// PageUnit derives a single-page unit from a document unit.
func (u Unit) PageUnit(page int) Unit {
	p := u
	p.ID = uuid.New()
	p.Page = page
	return p
}

// Table is one detected table, with rows in reading order.
type Table struct {
	Page    int        `json:"page"`
	Number  int        `json:"table_number"`
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

// Image describes an embedded image or, for vision outcomes, the model's
// description of one.
type Image struct {
	Page        int    `json:"page"`
	Number      int    `json:"image_number"`
	Format      string `json:"format,omitempty"`
	Description string `json:"description,omitempty"`
}

// Content is what a backend extracted from a unit.
type Content struct {
	Text   string
	Tables []Table
	Images []Image
}

// Scoring is the per-dimension confidence estimate attached to an outcome.
// All values are in [0,1]; Overall is the mean of the three sub-scores for
// library outcomes and the backend-reported score for vision outcomes.
type Scoring struct {
	Text    float32
	Table   float32
	Image   float32
	Overall float32
	Reasons []string
}

// Outcome is the immutable result of running one backend on one unit.
type Outcome struct {
	Method   string // constants.MethodLibrary | constants.MethodVision
	Provider string // vision provider name, empty for library outcomes
	Content  Content
	Scoring  Scoring
	Duration time.Duration
	Success  bool
	Err      string // error detail when Success is false
}

// LibraryExtractor is the deterministic backend: fast, free, works on
// digitally-authored PDFs.
type LibraryExtractor interface {
	Extract(ctx context.Context, path string) (Content, error)
	ExtractPage(ctx context.Context, path string, page int) (Content, error)
	PageCount(ctx context.Context, path string) (int, error)
}

// VisionExtractor is the model-based backend. It takes rendered page images
// and returns best-effort content plus the model's own confidence estimate.
type VisionExtractor interface {
	Provider() string
	Extract(ctx context.Context, pages [][]byte) (Content, float32, error)
}

// PageRenderer rasterizes pages for the vision backend. A nil or empty pages
// slice means all pages, subject to the renderer's own page cap.
type PageRenderer interface {
	RenderPages(ctx context.Context, path string, pages []int) ([][]byte, error)
}
