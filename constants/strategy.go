package constants

import "strings"

// ParseStrategy selects how the parser combines the library and vision
// backends for a document.
type ParseStrategy string

// Stable values (callers may pass these as strategy hints).
const (
	StrategyAuto         ParseStrategy = "auto"
	StrategyLibraryOnly  ParseStrategy = "library_only"
	StrategyVisionOnly   ParseStrategy = "vision_only"
	StrategyLibraryFirst ParseStrategy = "library_first"
	StrategyVisionFirst  ParseStrategy = "vision_first"
	StrategyHybrid       ParseStrategy = "hybrid"
	StrategyPageByPage   ParseStrategy = "page_by_page"
)

// Method tags recorded on extraction outcomes.
const (
	MethodLibrary    = "library"
	MethodVision     = "vision"
	MethodHybrid     = "hybrid"
	MethodPageByPage = "page_by_page"
)

// Vision provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// ParseStrategyFromString maps a caller-supplied hint to a known strategy.
func ParseStrategyFromString(s string) (ParseStrategy, bool) {
	switch ParseStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyAuto, "":
		return StrategyAuto, true
	case StrategyLibraryOnly:
		return StrategyLibraryOnly, true
	case StrategyVisionOnly:
		return StrategyVisionOnly, true
	case StrategyLibraryFirst:
		return StrategyLibraryFirst, true
	case StrategyVisionFirst:
		return StrategyVisionFirst, true
	case StrategyHybrid:
		return StrategyHybrid, true
	case StrategyPageByPage:
		return StrategyPageByPage, true
	default:
		return "", false
	}
}
