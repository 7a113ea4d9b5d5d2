package subscription_test

import (
	"context"
	"testing"

	memorycache "github.com/fuel-streams/streams/pkg/cache/adapters/memory"

	"github.com/fuel-streams/streams/internal/subscription"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowsThenExhausts(t *testing.T) {
	rl := subscription.NewRateLimiter(memorycache.New())
	ctx := context.Background()

	allowed := 0
	for i := 0; i < 5; i++ {
		ok, err := rl.Allow(ctx, "key-a", 3)
		require.NoError(t, err)
		if ok {
			allowed++
		}
	}
	require.LessOrEqual(t, allowed, 3)
}

func TestRateLimiterUnlimitedWhenZero(t *testing.T) {
	rl := subscription.NewRateLimiter(memorycache.New())
	ok, err := rl.Allow(context.Background(), "key-b", 0)
	require.NoError(t, err)
	require.True(t, ok)
}
