package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/howl/internal/observability"
)

func TestContextValues(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := context.Background()
		ctx = observability.WithRequestID(ctx, "req-1")
		ctx = observability.WithUserID(ctx, "user-1")
		ctx = observability.WithTier(ctx, "pro")
		ctx = observability.WithAttemptID(ctx, "turn-7")

		require.Equal(t, "req-1", observability.GetRequestID(ctx))
		require.Equal(t, "user-1", observability.GetUserID(ctx))
		require.Equal(t, "pro", observability.GetTier(ctx))
		require.Equal(t, "turn-7", observability.GetAttemptID(ctx))
	})

	t.Run("empty context", func(t *testing.T) {
		ctx := context.Background()

		require.Empty(t, observability.GetRequestID(ctx))
		require.Empty(t, observability.GetUserID(ctx))
		require.Empty(t, observability.GetTier(ctx))
		require.Empty(t, observability.GetAttemptID(ctx))
	})

	t.Run("request ids are unique", func(t *testing.T) {
		require.NotEqual(t, observability.GenerateRequestID(), observability.GenerateRequestID())
	})
}
