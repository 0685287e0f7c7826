package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/parser"
)

type fakeProcessor struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakeProcessor) Parse(_ context.Context, path string, _ parser.Options) (*parser.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if f.err != nil {
		return nil, f.err
	}
	return &parser.Result{Method: "library"}, nil
}

func (f *fakeProcessor) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.paths))
	copy(out, f.paths)
	return out
}

func TestParseQueueProcessesAllJobs(t *testing.T) {
	proc := &fakeProcessor{}
	q := NewParseQueue(proc, nil, WithWorkers(2), WithQueueSize(8))

	ctx := context.Background()
	for _, p := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		require.NoError(t, q.Enqueue(ctx, Job{Path: p}))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	assert.ElementsMatch(t, []string{"a.pdf", "b.pdf", "c.pdf"}, proc.seen())
}

func TestParseQueueSurvivesProcessorErrors(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("boom")}
	q := NewParseQueue(proc, nil, WithWorkers(1))

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{Path: "bad.pdf"}))
	require.NoError(t, q.Enqueue(ctx, Job{Path: "also-bad.pdf"}))

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	assert.Len(t, proc.seen(), 2)
}

func TestParseQueueEnqueueAfterShutdown(t *testing.T) {
	proc := &fakeProcessor{}
	q := NewParseQueue(proc, nil, WithWorkers(1))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)

	// must not panic on a closed channel
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "late.pdf"}))
	assert.Empty(t, proc.seen())

	// double shutdown is a no-op
	q.Shutdown(shutdownCtx)
}
