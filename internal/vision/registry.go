package vision

import (
	"context"
	"log/slog"
	"sort"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/constants"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
)

// Registry holds the vision providers that were configured with API keys.
// Providers without a key are simply absent; Resolve falls back to whatever
// is available when the requested provider is missing.
type Registry struct {
	preferred string
	backends  map[string]extract.VisionExtractor
	logger    *slog.Logger
}

func NewRegistry(ctx context.Context, cfg common.VisionConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		preferred: cfg.PreferredProvider,
		backends:  make(map[string]extract.VisionExtractor),
		logger:    logger,
	}
	if cfg.OpenAIKey != "" {
		r.backends[constants.ProviderOpenAI] = NewOpenAIClient(cfg, logger)
	}
	if cfg.AnthropicKey != "" {
		r.backends[constants.ProviderAnthropic] = NewAnthropicClient(cfg, logger)
	}
	if cfg.GeminiKey != "" {
		g, err := NewGeminiClient(ctx, cfg, logger)
		if err != nil {
			logger.Warn("vision.registry.gemini_init_failed", "error", err)
		} else {
			r.backends[constants.ProviderGemini] = g
		}
	}
	logger.Info("vision.registry.ready",
		"providers", r.Providers(),
		"preferred", r.preferred,
	)
	return r
}

// Register adds or replaces a backend. Used by tests and custom wiring.
func (r *Registry) Register(b extract.VisionExtractor) {
	r.backends[b.Provider()] = b
}

// Available reports whether any backend is registered. Orchestrators check
// this before escalating: no backend means no fallback to offer.
func (r *Registry) Available() bool {
	return len(r.backends) > 0
}

// Providers lists the registered provider names in stable order.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the backend for an exact provider name.
func (r *Registry) Get(provider string) (extract.VisionExtractor, bool) {
	b, ok := r.backends[provider]
	return b, ok
}

// Resolve returns the backend to use for a request. Preference order:
// the requested provider, the configured preferred provider, then any
// registered provider. An empty registry yields ErrNoBackend naming the
// provider that was asked for.
func (r *Registry) Resolve(provider string) (extract.VisionExtractor, error) {
	if provider == "" {
		provider = r.preferred
	}
	if b, ok := r.backends[provider]; ok {
		return b, nil
	}
	if b, ok := r.backends[r.preferred]; ok {
		r.logger.Warn("vision.registry.provider_missing",
			"requested", provider, "using", r.preferred)
		return b, nil
	}
	for _, name := range r.Providers() {
		r.logger.Warn("vision.registry.provider_missing",
			"requested", provider, "using", name)
		return r.backends[name], nil
	}
	return nil, common.NewAppError("NO_BACKEND",
		"no vision provider available for "+provider, common.ErrNoBackend)
}
