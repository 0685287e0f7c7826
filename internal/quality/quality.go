// Package quality scores extraction output and decides when a document or
// page looks degraded enough to warrant a higher-fidelity re-extraction.
package quality

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
)

// Policy constants. These are tuned heuristics, not derived values.
const (
	// Document-granularity text thresholds.
	DocTextGoodChars = 100
	DocTextRichChars = 1000

	// Page-granularity text thresholds; pages carry far less text than
	// whole documents.
	PageTextGoodChars = 50
	PageTextRichChars = 200

	textLowScore  = 0.4
	textGoodScore = 0.8
	textRichScore = 0.9

	tablePresentScore = 0.9
	tableAbsentScore  = 0.6
	imagePresentScore = 0.8
	imageAbsentScore  = 0.7

	// Degradation predicate thresholds.
	brokenTokenRatio  = 0.1
	minAvgTokenLength = 3.0
	maxSpecialRatio   = 0.3
)

// Assess scores whole-document extraction output.
func Assess(text string, tableCount, imageCount int) extract.Scoring {
	return assess(text, tableCount, imageCount, DocTextGoodChars, DocTextRichChars)
}

// AssessPage scores single-page extraction output with page-sized thresholds.
func AssessPage(text string, tableCount, imageCount int) extract.Scoring {
	return assess(text, tableCount, imageCount, PageTextGoodChars, PageTextRichChars)
}

func assess(text string, tableCount, imageCount, goodChars, richChars int) extract.Scoring {
	var reasons []string

	trimmed := len(strings.TrimSpace(text))
	textScore := float32(textLowScore)
	if trimmed >= goodChars {
		textScore = textGoodScore
	}
	if trimmed >= richChars {
		textScore = textRichScore
	}
	reasons = append(reasons, fmt.Sprintf("text extracted: %d characters", len(text)))

	tableScore := float32(tableAbsentScore)
	if tableCount > 0 {
		tableScore = tablePresentScore
	}
	reasons = append(reasons, fmt.Sprintf("tables found: %d", tableCount))

	imageScore := float32(imageAbsentScore)
	if imageCount > 0 {
		imageScore = imagePresentScore
	}
	reasons = append(reasons, fmt.Sprintf("images found: %d", imageCount))

	return extract.Scoring{
		Text:    textScore,
		Table:   tableScore,
		Image:   imageScore,
		Overall: (textScore + tableScore + imageScore) / 3,
		Reasons: reasons,
	}
}

// IsDegraded reports whether extracted text looks like it came from a poor
// scan or carries OCR artifacts. Any zero divisor fails safe toward degraded:
// better an unnecessary re-extraction than a crash or a silently bad result.
func IsDegraded(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return true
	}

	broken := 0
	totalLen := 0
	for _, tok := range tokens {
		runes := []rune(tok)
		totalLen += len(runes)
		if (len(runes) == 1 && !isStandaloneWord(runes[0])) || strings.Contains(tok, "  ") {
			broken++
		}
	}
	if float64(broken) > float64(len(tokens))*brokenTokenRatio {
		return true
	}

	if float64(totalLen)/float64(len(tokens)) < minAvgTokenLength {
		return true
	}

	special := 0
	total := 0
	for _, r := range text {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			special++
		}
	}
	if total == 0 {
		return true
	}
	return float64(special)/float64(total) > maxSpecialRatio
}

// isStandaloneWord filters the single-character tokens that are ordinary
// English words rather than OCR debris.
func isStandaloneWord(r rune) bool {
	switch r {
	case 'a', 'A', 'i', 'I':
		return true
	}
	return false
}
