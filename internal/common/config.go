package common

import (
	"os"
	"strconv"
	"time"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
)

// Config holds all application configuration
type Config struct {
	Parser  ParserConfig
	Library LibraryConfig
	Vision  VisionConfig
	Metrics MetricsConfig
}

// ParserConfig holds orchestrator policy knobs.
type ParserConfig struct {
	Strategy            string
	ConfidenceThreshold float32
	MaxVisionPages      int
	PageWorkers         int
	LibraryTimeout      time.Duration
	VisionTimeout       time.Duration
}

// LibraryConfig holds the deterministic extractor's external tooling.
type LibraryConfig struct {
	Pdftotext     string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string
	RenderDPI     int
	MaxPages      int // 0 = no limit
	EnableOCR     bool
}

// VisionConfig holds vision-model provider settings. A provider with an
// empty API key is simply absent from the registry.
type VisionConfig struct {
	PreferredProvider string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	AnthropicKey     string
	AnthropicBaseURL string
	AnthropicModel   string

	GeminiKey   string
	GeminiModel string

	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// MetricsConfig holds the performance ledger settings. An empty DSN keeps
// metrics in memory only.
type MetricsConfig struct {
	DSN string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Parser: ParserConfig{
			Strategy:            getEnv("PARSE_STRATEGY", string(constants.StrategyAuto)),
			ConfidenceThreshold: getEnvAsFloat32("CONFIDENCE_THRESHOLD", 0.7),
			MaxVisionPages:      getEnvAsInt("MAX_VISION_PAGES", 10),
			PageWorkers:         getEnvAsInt("PAGE_WORKERS", 4),
			LibraryTimeout:      getEnvAsDuration("LIBRARY_TIMEOUT", 30*time.Second),
			VisionTimeout:       getEnvAsDuration("VISION_TIMEOUT", 90*time.Second),
		},
		Library: LibraryConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			RenderDPI:     getEnvAsInt("RENDER_DPI", 300),
			MaxPages:      getEnvAsInt("LIBRARY_MAX_PAGES", 0),
			EnableOCR:     getEnvAsBool("ENABLE_OCR_ENHANCEMENT", true),
		},
		Vision: VisionConfig{
			PreferredProvider: getEnv("VISION_PROVIDER", constants.ProviderOpenAI),
			OpenAIKey:         getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o"),
			AnthropicKey:      getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicBaseURL:  getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			GeminiKey:         getEnv("GEMINI_API_KEY", ""),
			GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
			Temperature:       getEnvAsFloat32("VISION_TEMPERATURE", 0.1),
			MaxTokens:         getEnvAsInt("VISION_MAX_TOKENS", 4000),
			Timeout:           getEnvAsDuration("VISION_HTTP_TIMEOUT", 90*time.Second),
		},
		Metrics: MetricsConfig{
			DSN: getEnv("METRICS_DSN", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if _, ok := constants.ParseStrategyFromString(c.Parser.Strategy); !ok {
		return NewAppError("CONFIG_ERROR", "PARSE_STRATEGY is not a known strategy", ErrInvalidInput)
	}
	if c.Parser.ConfidenceThreshold <= 0 || c.Parser.ConfidenceThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "CONFIDENCE_THRESHOLD must be in (0,1]", ErrInvalidInput)
	}
	if c.Parser.MaxVisionPages <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_VISION_PAGES must be positive", ErrInvalidInput)
	}
	if c.Parser.PageWorkers <= 0 {
		return NewAppError("CONFIG_ERROR", "PAGE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}
