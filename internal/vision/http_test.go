package vision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dronebassan/pdf-parser-pro-v5-sub000/internal/common"
)

func TestRequestIDPrefersCaller(t *testing.T) {
	ctx := common.WithRequestID(context.Background(), "req-abc-123")
	assert.Equal(t, "req-abc-123", requestID(ctx))
}

func TestRequestIDMintsWhenAbsent(t *testing.T) {
	rid := requestID(context.Background())
	assert.NotEmpty(t, rid)
	assert.NotEqual(t, rid, requestID(context.Background()))
}
