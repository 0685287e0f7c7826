// Package strategy picks an execution plan from document characteristics.
// Selection is a pure function: no I/O, no hidden state.
package strategy

import (
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
)

// Size thresholds. Tunable policy, not derived constants.
const (
	// Above this page count, blurriness is usually localized to a handful
	// of pages, so per-page assessment bounds the vision spend to just the
	// pages that need it.
	PageByPageThresholdPages = 20

	// Beyond these, even the per-page loop is too heavy; stay at document
	// granularity with a single fallback attempt.
	LargeDocumentPages = 50
	LargeFileBytes     = 50 * 1024 * 1024
)

// Select resolves the AUTO strategy for a document. Ordered policy, first
// match wins.
func Select(pageCount int, fileSize int64) constants.ParseStrategy {
	if pageCount > PageByPageThresholdPages {
		return constants.StrategyPageByPage
	}
	if pageCount > LargeDocumentPages || fileSize > LargeFileBytes {
		return constants.StrategyLibraryFirst
	}
	return constants.StrategyLibraryFirst
}
