package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	l, err := OpenLedger(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	require.NoError(t, l.Ping(ctx, time.Second))

	require.NoError(t, l.Record(ctx, rec("library", 1500*time.Millisecond, 500, 1, 0.9, true)))
	require.NoError(t, l.Record(ctx, rec("vision", 12*time.Second, 900, 2, 0.95, true)))
	failed := rec("library", time.Second, 0, 0, 0, false)
	failed.ErrorMessage = "pdftotext exited 1"
	require.NoError(t, l.Record(ctx, failed))

	all, err := l.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	libs, err := l.List(ctx, "library", 0)
	require.NoError(t, err)
	require.Len(t, libs, 2)
	for _, r := range libs {
		assert.Equal(t, "library", r.Method)
	}

	s, ok, err := l.Summary(ctx, "library")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, s.TotalOperations)
	assert.Equal(t, 1, s.SuccessfulOperations)
	assert.InDelta(t, 1.5, s.AvgProcessingTime, 1e-6)
}

func TestLedgerListLimit(t *testing.T) {
	ctx := context.Background()
	l, err := OpenLedger(ctx, ":memory:", nil)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Record(ctx, rec("library", time.Second, i, 0, 0.5, true)))
	}

	out, err := l.List(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
