package recorder

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Record captures one extraction attempt for later analysis.
type Record struct {
	Method       string        `json:"method"`
	Provider     string        `json:"provider,omitempty"`
	Duration     time.Duration `json:"processing_time"`
	TextLength   int           `json:"text_length"`
	TablesCount  int           `json:"tables_count"`
	ImagesCount  int           `json:"images_count"`
	Confidence   float32       `json:"confidence_score"`
	FileSize     int64         `json:"file_size"`
	PageCount    int           `json:"page_count"`
	Timestamp    time.Time     `json:"timestamp"`
	Success      bool          `json:"success"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Recorder receives a Record per backend attempt. Implementations must be
// safe for concurrent use; recording must never fail a parse, so the error
// is for the caller to log, not to propagate.
type Recorder interface {
	Record(ctx context.Context, r Record) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, Record) error { return nil }

// Memory keeps records and comparisons in process memory. This backs the
// stats surface when no ledger DSN is configured.
type Memory struct {
	mu          sync.Mutex
	records     []Record
	comparisons []Comparison
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Record(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	m.records = append(m.records, r)
	return nil
}

// ComparisonSink receives method comparisons alongside the raw records.
// Memory implements it; Multi fans comparisons out to any member that does.
type ComparisonSink interface {
	AddComparison(c Comparison)
}

// AddComparison stores a method comparison alongside the raw records.
func (m *Memory) AddComparison(c Comparison) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comparisons = append(m.comparisons, c)
}

// History returns a copy of all records, optionally filtered by method.
func (m *Memory) History(method string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		if method == "" || r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

// Comparisons returns a copy of the comparison history.
func (m *Memory) Comparisons() []Comparison {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Comparison, len(m.comparisons))
	copy(out, m.comparisons)
	return out
}

// Summary aggregates success rate and timing/confidence stats, optionally
// filtered by method. ok is false when no successful records match.
func (m *Memory) Summary(method string) (Summary, bool) {
	return Summarize(m.History(method))
}

// ComparisonStats aggregates the comparison history.
func (m *Memory) ComparisonStats() (ComparisonStats, bool) {
	return SummarizeComparisons(m.Comparisons())
}

// Summary holds aggregate stats over a set of records.
type Summary struct {
	TotalOperations      int     `json:"total_operations"`
	SuccessfulOperations int     `json:"successful_operations"`
	SuccessRate          float64 `json:"success_rate"`
	AvgProcessingTime    float64 `json:"average_processing_time"`
	MedianProcessingTime float64 `json:"median_processing_time"`
	MinProcessingTime    float64 `json:"min_processing_time"`
	MaxProcessingTime    float64 `json:"max_processing_time"`
	AvgConfidence        float64 `json:"average_confidence"`
	MinConfidence        float64 `json:"min_confidence"`
	MaxConfidence        float64 `json:"max_confidence"`
}

// Summarize computes a Summary over records. ok is false when there are no
// successful records to aggregate.
func Summarize(records []Record) (Summary, bool) {
	var s Summary
	s.TotalOperations = len(records)

	var times, confs []float64
	for _, r := range records {
		if !r.Success {
			continue
		}
		s.SuccessfulOperations++
		times = append(times, r.Duration.Seconds())
		confs = append(confs, float64(r.Confidence))
	}
	if s.SuccessfulOperations == 0 {
		return s, false
	}
	s.SuccessRate = float64(s.SuccessfulOperations) / float64(s.TotalOperations) * 100

	sort.Float64s(times)
	sort.Float64s(confs)
	s.MinProcessingTime = times[0]
	s.MaxProcessingTime = times[len(times)-1]
	s.AvgProcessingTime = mean(times)
	s.MedianProcessingTime = median(times)
	s.MinConfidence = confs[0]
	s.MaxConfidence = confs[len(confs)-1]
	s.AvgConfidence = mean(confs)
	return s, true
}

// ComparisonStats aggregates winner distribution and speed deltas.
type ComparisonStats struct {
	TotalComparisons   int            `json:"total_comparisons"`
	WinnerDistribution map[string]int `json:"winner_distribution"`
	LibraryWinRate     float64        `json:"library_win_rate"`
	VisionWinRate      float64        `json:"vision_win_rate"`
	AvgSpeedDelta      float64        `json:"average_speed_difference"`
	MedianSpeedDelta   float64        `json:"median_speed_difference"`
}

func SummarizeComparisons(comparisons []Comparison) (ComparisonStats, bool) {
	var cs ComparisonStats
	cs.TotalComparisons = len(comparisons)
	if cs.TotalComparisons == 0 {
		return cs, false
	}
	cs.WinnerDistribution = map[string]int{
		WinnerLibrary: 0, WinnerVision: 0, WinnerTie: 0, WinnerNeither: 0,
	}
	var deltas []float64
	for _, c := range comparisons {
		cs.WinnerDistribution[c.Winner]++
		if c.SpeedDeltaPercent != 0 {
			deltas = append(deltas, c.SpeedDeltaPercent)
		}
	}
	cs.LibraryWinRate = float64(cs.WinnerDistribution[WinnerLibrary]) / float64(cs.TotalComparisons) * 100
	cs.VisionWinRate = float64(cs.WinnerDistribution[WinnerVision]) / float64(cs.TotalComparisons) * 100
	if len(deltas) > 0 {
		sort.Float64s(deltas)
		cs.AvgSpeedDelta = mean(deltas)
		cs.MedianSpeedDelta = median(deltas)
	}
	return cs, true
}

// Multi tees records to several recorders. The first error wins but all
// recorders still see the record.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, r Record) error {
	var first error
	for _, rec := range m {
		if err := rec.Record(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// AddComparison forwards to every member that keeps comparison history.
func (m Multi) AddComparison(c Comparison) {
	for _, rec := range m {
		if sink, ok := rec.(ComparisonSink); ok {
			sink.AddComparison(c)
		}
	}
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// median assumes xs is sorted and non-empty.
func median(xs []float64) float64 {
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}
