package ocr

import (
	"strings"
	"unicode"
)

// naive heuristic confidence based on recognized text characteristics
func heuristicConfidence(txt string) float32 {
	trimmed := strings.TrimSpace(txt)
	if trimmed == "" {
		return 0
	}

	score := float32(0.2) // base
	words := strings.Fields(trimmed)

	// mostly-alphanumeric text reads like language, not noise
	alnum, total := 0, 0
	for _, r := range trimmed {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if total > 0 && float64(alnum)/float64(total) > 0.85 {
		score += 0.25
	}

	// plausible average word length
	if len(words) > 0 {
		sum := 0
		for _, w := range words {
			sum += len([]rune(w))
		}
		if avg := float64(sum) / float64(len(words)); avg >= 3.5 && avg <= 12 {
			score += 0.25
		}
	}

	if len(trimmed) > 120 {
		score += 0.2
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
