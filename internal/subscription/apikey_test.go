package subscription_test

import (
	"context"
	"testing"
	"time"

	memorycache "github.com/fuel-streams/streams/pkg/cache/adapters/memory"

	"github.com/fuel-streams/streams/internal/subscription"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestExtractTokenFromBearerHeader(t *testing.T) {
	token, err := subscription.ExtractToken("Bearer abc123", "")
	require.NoError(t, err)
	require.Equal(t, "abc123", token)
}

func TestExtractTokenFromQueryParam(t *testing.T) {
	token, err := subscription.ExtractToken("", "abc123")
	require.NoError(t, err)
	require.Equal(t, "abc123", token)
}

func TestExtractTokenMissingFails(t *testing.T) {
	_, err := subscription.ExtractToken("", "")
	require.Error(t, err)
}

type fakeLoader struct {
	key *subscription.Key
}

func (f *fakeLoader) Load(ctx context.Context, keyID string) (*subscription.Key, error) {
	return f.key, nil
}

func TestManagerResolvesOpaqueKeyThroughLoaderThenCache(t *testing.T) {
	loader := &fakeLoader{key: &subscription.Key{ID: "k1", Role: "reader", Scopes: []string{subscription.ScopeLiveData}}}
	mgr := subscription.NewManager(memorycache.New(), loader, nil, time.Minute)

	key, err := mgr.Resolve(context.Background(), "opaque-token")
	require.NoError(t, err)
	require.Equal(t, "k1", key.ID)
	require.True(t, key.HasScope(subscription.ScopeLiveData))
	require.False(t, key.HasScope(subscription.ScopeHistoricalData))
}

func TestManagerResolvesSelfDescribingJWT(t *testing.T) {
	secret := []byte("test-secret")
	mgr := subscription.NewManager(memorycache.New(), nil, secret, time.Minute)

	claims := jwt.MapClaims{
		"sub":                   "k2",
		"role":                  "admin",
		"scopes":                []string{subscription.ScopeFull},
		"subscription_limit":    10,
		"rate_limit_per_minute": 100,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	require.NoError(t, err)

	key, err := mgr.Resolve(context.Background(), signed)
	require.NoError(t, err)
	require.Equal(t, "k2", key.ID)
	require.True(t, key.HasScope(subscription.ScopeHistoricalData), "ScopeFull should satisfy any scope check")
}
