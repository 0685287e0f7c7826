package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/extract"
)

type fakeBackend struct {
	name string
}

func (f *fakeBackend) Provider() string { return f.name }

func (f *fakeBackend) Extract(_ context.Context, _ [][]byte) (extract.Content, float32, error) {
	return extract.Content{Text: f.name}, 0.9, nil
}

func newTestRegistry(preferred string, names ...string) *Registry {
	r := NewRegistry(context.Background(), common.VisionConfig{PreferredProvider: preferred}, nil)
	for _, n := range names {
		r.Register(&fakeBackend{name: n})
	}
	return r
}

func TestRegistryResolveExact(t *testing.T) {
	r := newTestRegistry("openai", "openai", "anthropic")

	b, err := r.Resolve("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", b.Provider())
}

func TestRegistryResolveEmptyUsesPreferred(t *testing.T) {
	r := newTestRegistry("anthropic", "openai", "anthropic")

	b, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", b.Provider())
}

func TestRegistryResolveFallsBackToAvailable(t *testing.T) {
	r := newTestRegistry("openai", "gemini")

	b, err := r.Resolve("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "gemini", b.Provider())
}

func TestRegistryResolveEmptyRegistry(t *testing.T) {
	r := newTestRegistry("openai")

	_, err := r.Resolve("anthropic")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoBackend))
	assert.Contains(t, err.Error(), "anthropic")
}

func TestRegistryAvailable(t *testing.T) {
	r := newTestRegistry("openai")
	assert.False(t, r.Available())

	r.Register(&fakeBackend{name: "openai"})
	assert.True(t, r.Available())
}

func TestRegistryProvidersStableOrder(t *testing.T) {
	r := newTestRegistry("openai", "openai", "gemini", "anthropic")
	assert.Equal(t, []string{"anthropic", "gemini", "openai"}, r.Providers())
}
