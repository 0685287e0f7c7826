package recorder

import "math"

// Winner values for a library/vision comparison.
const (
	WinnerLibrary = "library"
	WinnerVision  = "vision"
	WinnerTie     = "tie"
	WinnerNeither = "neither"
	WinnerUnknown = "unknown"
)

// Composite score weights and the speed normalization baseline.
const (
	speedWeight   = 0.3
	contentWeight = 0.4
	confWeight    = 0.3

	speedBaselineSeconds = 60.0
)

// Comparison is the outcome of running both extraction paths on one document.
type Comparison struct {
	Library           *Record            `json:"library_result,omitempty"`
	Vision            *Record            `json:"vision_result,omitempty"`
	Winner            string             `json:"winner"`
	SpeedDeltaPercent float64            `json:"speed_improvement"`
	Accuracy          AccuracyComparison `json:"accuracy_comparison"`
	Recommendation    string             `json:"recommendation"`
}

// AccuracyComparison breaks the delta down per content dimension.
type AccuracyComparison struct {
	TextExtraction struct {
		LibraryLength     int     `json:"library_length"`
		VisionLength      int     `json:"vision_length"`
		DifferencePercent float64 `json:"difference_percent"`
	} `json:"text_extraction"`
	TableDetection struct {
		LibraryCount int `json:"library_count"`
		VisionCount  int `json:"vision_count"`
		Difference   int `json:"difference"`
	} `json:"table_detection"`
	ImageDetection struct {
		LibraryCount int `json:"library_count"`
		VisionCount  int `json:"vision_count"`
		Difference   int `json:"difference"`
	} `json:"image_detection"`
	OverallConfidence struct {
		LibraryConfidence float32 `json:"library_confidence"`
		VisionConfidence  float32 `json:"vision_confidence"`
		Difference        float32 `json:"difference"`
	} `json:"overall_confidence"`
}

// Compare scores the two attempts against each other. Either side may be nil
// when that path never ran.
func Compare(library, vision *Record) Comparison {
	c := Comparison{
		Library: library,
		Vision:  vision,
		Winner:  determineWinner(library, vision),
	}

	if library != nil && vision != nil {
		if library.Duration > 0 && vision.Duration > 0 {
			c.SpeedDeltaPercent = (vision.Duration.Seconds() - library.Duration.Seconds()) /
				library.Duration.Seconds() * 100
		}
		c.Accuracy = compareAccuracy(library, vision)
	}

	c.Recommendation = recommend(library, c.Winner, c.SpeedDeltaPercent)
	return c
}

func determineWinner(library, vision *Record) string {
	libOK := library != nil && library.Success
	visOK := vision != nil && vision.Success

	switch {
	case libOK && !visOK:
		return WinnerLibrary
	case visOK && !libOK:
		return WinnerVision
	case !libOK && !visOK:
		return WinnerNeither
	}

	libScore := compositeScore(library)
	visScore := compositeScore(vision)
	switch {
	case libScore > visScore:
		return WinnerLibrary
	case visScore > libScore:
		return WinnerVision
	default:
		return WinnerTie
	}
}

// compositeScore blends speed, content volume, and confidence into one number.
func compositeScore(r *Record) float64 {
	speedScore := math.Max(0, 1-r.Duration.Seconds()/speedBaselineSeconds)
	contentScore := math.Min(1.0, float64(r.TextLength+r.TablesCount*100)/1000)
	return speedWeight*speedScore + contentWeight*contentScore + confWeight*float64(r.Confidence)
}

func compareAccuracy(library, vision *Record) AccuracyComparison {
	var a AccuracyComparison

	a.TextExtraction.LibraryLength = library.TextLength
	a.TextExtraction.VisionLength = vision.TextLength
	if longest := max(library.TextLength, vision.TextLength); longest > 0 {
		a.TextExtraction.DifferencePercent =
			math.Abs(float64(library.TextLength-vision.TextLength)) / float64(longest) * 100
	}

	a.TableDetection.LibraryCount = library.TablesCount
	a.TableDetection.VisionCount = vision.TablesCount
	a.TableDetection.Difference = abs(library.TablesCount - vision.TablesCount)

	a.ImageDetection.LibraryCount = library.ImagesCount
	a.ImageDetection.VisionCount = vision.ImagesCount
	a.ImageDetection.Difference = abs(library.ImagesCount - vision.ImagesCount)

	a.OverallConfidence.LibraryConfidence = library.Confidence
	a.OverallConfidence.VisionConfidence = vision.Confidence
	a.OverallConfidence.Difference = float32(math.Abs(float64(library.Confidence - vision.Confidence)))

	return a
}

func recommend(library *Record, winner string, speedDelta float64) string {
	switch winner {
	case WinnerLibrary:
		if speedDelta > 50 {
			return "Use library method - significantly faster with good accuracy"
		}
		return "Use library method - better overall performance"
	case WinnerVision:
		if library != nil && !library.Success {
			return "Use vision method - library extraction failed"
		}
		return "Use vision method - better content extraction despite slower speed"
	case WinnerTie:
		return "Both methods performed similarly - consider using library for speed"
	case WinnerNeither:
		return "Both methods failed - document may be corrupted or unsupported"
	default:
		return "Unable to determine best method"
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
