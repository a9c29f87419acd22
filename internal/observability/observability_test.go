package observability

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("debug")
	assert.True(t, GlobalLogger.Enabled(context.Background(), slog.LevelDebug))

	SetLevel("error")
	assert.False(t, GlobalLogger.Enabled(context.Background(), slog.LevelWarn))

	SetLevel("bogus")
	assert.True(t, GlobalLogger.Enabled(context.Background(), slog.LevelInfo))
}

func TestContextExtractors(t *testing.T) {
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "admin-001")

	assert.Equal(t, "req-1", ExtractRequestID(ctx))
	assert.Equal(t, "admin-001", ExtractUserID(ctx))
	assert.Empty(t, ExtractRequestID(context.Background()))
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "postboard-test"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "PostService", "Submit")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}

func TestDecisionCounter(t *testing.T) {
	before := testutil.ToFloat64(PostDecisions.WithLabelValues("approve", "ok"))
	PostDecisions.WithLabelValues("approve", "ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PostDecisions.WithLabelValues("approve", "ok")))
}
