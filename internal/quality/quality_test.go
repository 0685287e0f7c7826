package quality

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssessOverallIsMeanOfSubScores(t *testing.T) {
	cases := []struct {
		name       string
		text       string
		tables     int
		images     int
		wantText   float32
		wantTable  float32
		wantImage  float32
	}{
		{"short text no structures", "tiny", 0, 0, 0.4, 0.6, 0.7},
		{"good text with tables", strings.Repeat("word ", 30), 2, 0, 0.8, 0.9, 0.7},
		{"rich text with images", strings.Repeat("word ", 250), 0, 3, 0.9, 0.6, 0.8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Assess(tc.text, tc.tables, tc.images)
			assert.Equal(t, tc.wantText, s.Text)
			assert.Equal(t, tc.wantTable, s.Table)
			assert.Equal(t, tc.wantImage, s.Image)
			mean := (s.Text + s.Table + s.Image) / 3
			assert.InDelta(t, float64(mean), float64(s.Overall), 1e-6)
			assert.GreaterOrEqual(t, s.Overall, float32(0))
			assert.LessOrEqual(t, s.Overall, float32(1))
			assert.NotEmpty(t, s.Reasons)
		})
	}
}

func TestAssessPageUsesPageThresholds(t *testing.T) {
	// 60 chars is good at page granularity but low at document granularity.
	text := strings.Repeat("word ", 12)
	page := AssessPage(text, 0, 0)
	doc := Assess(text, 0, 0)
	assert.Equal(t, float32(0.8), page.Text)
	assert.Equal(t, float32(0.4), doc.Text)
}

func TestAssessBoundsHold(t *testing.T) {
	for _, text := range []string{"", "x", strings.Repeat("lorem ipsum ", 200)} {
		for _, tables := range []int{0, 1} {
			for _, images := range []int{0, 1} {
				s := Assess(text, tables, images)
				if s.Overall < 0 || s.Overall > 1 || math.IsNaN(float64(s.Overall)) {
					t.Fatalf("overall out of range: %v", s.Overall)
				}
			}
		}
	}
}

func TestIsDegraded(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", true},
		{"whitespace only", "   \n\t  ", true},
		{"well-formed sentence", "A well-formed sentence of normal length with regular words.", false},
		{"single-char debris", "t h i s i s b r o k e n t e x t", true},
		{"short average token length", "ab cd ef gh ij kl mn op", true},
		{"mostly symbols", "@#$% ^&*() @#$% !!?? %%$# @@!! ##$$", true},
		{"clean paragraph", "The quarterly report covers revenue, operating costs, and projected growth for the next fiscal year.", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDegraded(tc.text), "text: %q", tc.text)
		})
	}
}
