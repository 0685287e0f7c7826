package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(method string, dur time.Duration, textLen, tables int, conf float32, success bool) Record {
	return Record{
		Method:      method,
		Duration:    dur,
		TextLength:  textLen,
		TablesCount: tables,
		Confidence:  conf,
		Success:     success,
		Timestamp:   time.Now().UTC(),
	}
}

func TestMemoryHistoryFilter(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Record(ctx, rec("library", time.Second, 500, 1, 0.9, true)))
	require.NoError(t, m.Record(ctx, rec("vision", 10*time.Second, 800, 2, 0.85, true)))
	require.NoError(t, m.Record(ctx, rec("library", 2*time.Second, 300, 0, 0.8, true)))

	assert.Len(t, m.History(""), 3)
	assert.Len(t, m.History("library"), 2)
	assert.Len(t, m.History("vision"), 1)
}

func TestSummarize(t *testing.T) {
	records := []Record{
		rec("library", 1*time.Second, 500, 1, 0.9, true),
		rec("library", 3*time.Second, 400, 0, 0.7, true),
		rec("library", 2*time.Second, 0, 0, 0, false),
	}

	s, ok := Summarize(records)
	require.True(t, ok)
	assert.Equal(t, 3, s.TotalOperations)
	assert.Equal(t, 2, s.SuccessfulOperations)
	assert.InDelta(t, 66.666, s.SuccessRate, 0.01)
	assert.InDelta(t, 2.0, s.AvgProcessingTime, 1e-9)
	assert.InDelta(t, 2.0, s.MedianProcessingTime, 1e-9)
	assert.InDelta(t, 1.0, s.MinProcessingTime, 1e-9)
	assert.InDelta(t, 3.0, s.MaxProcessingTime, 1e-9)
	assert.InDelta(t, 0.8, s.AvgConfidence, 1e-6)
}

func TestSummarizeNoSuccesses(t *testing.T) {
	_, ok := Summarize([]Record{rec("library", time.Second, 0, 0, 0, false)})
	assert.False(t, ok)

	_, ok = Summarize(nil)
	assert.False(t, ok)
}

func TestCompareOnlyOneSucceeded(t *testing.T) {
	lib := rec("library", time.Second, 0, 0, 0, false)
	vis := rec("vision", 20*time.Second, 900, 1, 0.9, true)

	c := Compare(&lib, &vis)
	assert.Equal(t, WinnerVision, c.Winner)
	assert.Equal(t, "Use vision method - library extraction failed", c.Recommendation)
}

func TestCompareBothFailed(t *testing.T) {
	lib := rec("library", time.Second, 0, 0, 0, false)
	vis := rec("vision", time.Second, 0, 0, 0, false)

	c := Compare(&lib, &vis)
	assert.Equal(t, WinnerNeither, c.Winner)
	assert.Contains(t, c.Recommendation, "Both methods failed")
}

func TestCompareCompositeScore(t *testing.T) {
	// Library: fast, decent content, good confidence -> should win.
	lib := rec("library", 1*time.Second, 900, 2, 0.9, true)
	vis := rec("vision", 30*time.Second, 900, 2, 0.9, true)

	c := Compare(&lib, &vis)
	assert.Equal(t, WinnerLibrary, c.Winner)

	// vision took 30x as long: +2900% delta
	assert.InDelta(t, 2900, c.SpeedDeltaPercent, 0.01)
	assert.Equal(t, "Use library method - significantly faster with good accuracy", c.Recommendation)
}

func TestCompareAccuracyBreakdown(t *testing.T) {
	lib := rec("library", time.Second, 500, 1, 0.8, true)
	lib.ImagesCount = 2
	vis := rec("vision", 10*time.Second, 1000, 3, 0.9, true)
	vis.ImagesCount = 1

	c := Compare(&lib, &vis)
	assert.Equal(t, 500, c.Accuracy.TextExtraction.LibraryLength)
	assert.Equal(t, 1000, c.Accuracy.TextExtraction.VisionLength)
	assert.InDelta(t, 50, c.Accuracy.TextExtraction.DifferencePercent, 1e-6)
	assert.Equal(t, 2, c.Accuracy.TableDetection.Difference)
	assert.Equal(t, 1, c.Accuracy.ImageDetection.Difference)
	assert.InDelta(t, 0.1, float64(c.Accuracy.OverallConfidence.Difference), 1e-6)
}

func TestSummarizeComparisons(t *testing.T) {
	m := NewMemory()
	lib := rec("library", time.Second, 900, 1, 0.9, true)
	visSlow := rec("vision", 59*time.Second, 900, 1, 0.9, true)
	visFailed := rec("vision", time.Second, 0, 0, 0, false)

	m.AddComparison(Compare(&lib, &visSlow))
	m.AddComparison(Compare(&lib, &visFailed))

	cs, ok := m.ComparisonStats()
	require.True(t, ok)
	assert.Equal(t, 2, cs.TotalComparisons)
	assert.Equal(t, 2, cs.WinnerDistribution[WinnerLibrary])
	assert.InDelta(t, 100, cs.LibraryWinRate, 1e-9)
	assert.InDelta(t, 0, cs.VisionWinRate, 1e-9)
}

func TestMultiTee(t *testing.T) {
	a := NewMemory()
	b := NewMemory()
	multi := Multi{a, b}

	require.NoError(t, multi.Record(context.Background(), rec("library", time.Second, 10, 0, 0.5, true)))
	assert.Len(t, a.History(""), 1)
	assert.Len(t, b.History(""), 1)
}

func TestMultiFansOutComparisons(t *testing.T) {
	a := NewMemory()
	b := NewMemory()
	multi := Multi{a, Nop{}, b}

	libRec := rec("library", time.Second, 500, 1, 0.9, true)
	visRec := rec("vision", 2*time.Second, 400, 0, 0.8, true)
	multi.AddComparison(Compare(&libRec, &visRec))

	// Members without comparison support are skipped, the rest all get it.
	assert.Len(t, a.Comparisons(), 1)
	assert.Len(t, b.Comparisons(), 1)
}

func TestExportJSONShape(t *testing.T) {
	records := []Record{rec("library", time.Second, 500, 1, 0.9, true)}
	out, err := ExportJSON(records, nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"metrics_history"`)
	assert.Contains(t, string(out), `"summary"`)
}

func TestExportXLSX(t *testing.T) {
	records := []Record{
		rec("library", time.Second, 500, 1, 0.9, true),
		rec("vision", 12*time.Second, 900, 2, 0.95, true),
	}
	out, err := ExportXLSX(records, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	// XLSX files are zip archives
	assert.Equal(t, []byte{'P', 'K'}, out[:2])
}
