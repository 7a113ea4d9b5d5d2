package subscription

import (
	"context"
	"strings"
	"time"

	"github.com/fuel-streams/streams/pkg/api/middleware"
	"github.com/fuel-streams/streams/pkg/cache"
	apperrors "github.com/fuel-streams/streams/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Scope names spec.md §4.6 step 1 enumerates.
const (
	ScopeLiveData       = "live_data"
	ScopeHistoricalData = "historical_data"
	ScopeRestApi        = "rest_api"
	ScopeFull           = "full"
)

// Key is a validated API key's authorization profile (spec.md §4.6 step 1,
// §5 "API-key manager").
type Key struct {
	ID                  string
	Role                string
	Scopes              []string
	SubscriptionLimit   int
	RateLimitPerMinute  int64
	HistoricalDaysLimit int
}

// HasScope reports whether k carries scope, treating ScopeFull as a
// superset of every other scope.
func (k Key) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope || s == ScopeFull {
			return true
		}
	}
	return false
}

// ValidatesHistoricalDaysLimit reports whether a record's block timestamp falls
// within k's historical-lookback window; a zero HistoricalDaysLimit means
// unlimited.
func (k Key) ValidatesHistoricalDaysLimit(blockTime time.Time) bool {
	if k.HistoricalDaysLimit <= 0 {
		return true
	}
	return time.Since(blockTime) <= time.Duration(k.HistoricalDaysLimit)*24*time.Hour
}

// Loader fetches a Key's authorization profile from the authoritative
// store (spec.md §5 "authoritative store is the DB"). The one
// implementation shipped here is StaticLoader, which cmd/api installs via
// NewAdminLoader when ADMIN_API_KEY is set; no store-backed Loader exists.
type Loader interface {
	Load(ctx context.Context, keyID string) (*Key, error)
}

// StaticLoader resolves exactly one opaque key id (spec.md §6.6
// ADMIN_API_KEY "used to seed the first API key at startup") with full
// access. It exists so a fresh deployment has one working credential
// before any real key-management surface is operated against the store;
// it is not a substitute for one.
type StaticLoader struct {
	KeyID string
	Key   Key
}

// NewAdminLoader builds a StaticLoader granting keyID full access.
func NewAdminLoader(keyID string) *StaticLoader {
	return &StaticLoader{KeyID: keyID, Key: Key{ID: keyID, Role: "admin", Scopes: []string{ScopeFull}}}
}

func (l *StaticLoader) Load(ctx context.Context, keyID string) (*Key, error) {
	if l.KeyID == "" || keyID != l.KeyID {
		return nil, apperrors.New(apperrors.CodeUnauthenticated, "unknown API key", nil)
	}
	k := l.Key
	return &k, nil
}

// claims is the embedded-JWT form of a Key: an API key issued as a signed
// JWT carries its own authorization profile, so common validation never
// needs a store round trip; Manager falls back to Loader only for opaque
// (non-JWT) keys, per spec.md "cache miss triggers DB fetch".
type claims struct {
	jwt.RegisteredClaims
	Role                string   `json:"role"`
	Scopes              []string `json:"scopes"`
	SubscriptionLimit   int      `json:"subscription_limit"`
	RateLimitPerMinute  int64    `json:"rate_limit_per_minute"`
	HistoricalDaysLimit int      `json:"historical_days_limit"`
}

// Manager resolves a bearer token into a Key, grounded on spec.md §5's
// "shared, in-memory LRU/cache of validated keys; authoritative store is
// the DB" shared-resource policy.
type Manager struct {
	cache    cache.Cache
	loader   Loader
	ttl      time.Duration
	jwtKey   []byte
}

// NewManager builds a Manager. jwtKey verifies self-describing JWT keys;
// loader resolves opaque key ids that aren't valid JWTs.
func NewManager(c cache.Cache, loader Loader, jwtKey []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Manager{cache: c, loader: loader, ttl: ttl, jwtKey: jwtKey}
}

// ExtractToken pulls the bearer token from the Authorization header or the
// api_key query parameter, per spec.md §4.6 step 1.
func ExtractToken(authHeader, queryAPIKey string) (string, error) {
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1], nil
		}
		return "", apperrors.New(apperrors.CodeUnauthenticated, "malformed Authorization header", nil)
	}
	if queryAPIKey != "" {
		return queryAPIKey, nil
	}
	return "", apperrors.New(apperrors.CodeUnauthenticated, "missing API key", nil)
}

// Resolve validates token and returns its authorization profile. JWT keys
// are verified and decoded directly; opaque keys are resolved through the
// cache, falling back to Loader on a miss.
func (m *Manager) Resolve(ctx context.Context, token string) (*Key, error) {
	if key, ok := m.tryJWT(token); ok {
		return key, nil
	}

	cacheKey := "apikey:" + token
	var cached Key
	if err := m.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	if m.loader == nil {
		return nil, apperrors.New(apperrors.CodeUnauthenticated, "unknown API key", nil)
	}
	key, err := m.loader.Load(ctx, token)
	if err != nil {
		return nil, apperrors.Wrap(err, "api key lookup failed")
	}
	_ = m.cache.Set(ctx, cacheKey, key, m.ttl)
	return key, nil
}

// keyPrincipal adapts *Key to middleware.Principal; Key itself can't
// implement the interface directly since its Role field and the
// interface's Role() method would collide.
type keyPrincipal struct{ *Key }

func (p keyPrincipal) Subject() string { return p.Key.ID }
func (p keyPrincipal) Role() string    { return p.Key.Role }

// Verify implements middleware.Verifier, resolving token the same way
// Resolve does so the REST/WebSocket routes authenticate uniformly
// through the shared middleware chain.
func (m *Manager) Verify(ctx context.Context, token string) (middleware.Principal, error) {
	key, err := m.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return keyPrincipal{key}, nil
}

func (m *Manager) tryJWT(token string) (*Key, bool) {
	if m.jwtKey == nil {
		return nil, false
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.jwtKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}
	c, ok := parsed.Claims.(*claims)
	if !ok {
		return nil, false
	}
	return &Key{
		ID:                  c.Subject,
		Role:                c.Role,
		Scopes:              c.Scopes,
		SubscriptionLimit:   c.SubscriptionLimit,
		RateLimitPerMinute:  c.RateLimitPerMinute,
		HistoricalDaysLimit: c.HistoricalDaysLimit,
	}, true
}
