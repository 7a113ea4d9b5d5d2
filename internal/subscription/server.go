package subscription

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fuel-streams/streams/internal/broker"
	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/store"
	"github.com/fuel-streams/streams/internal/subject"
	"github.com/fuel-streams/streams/pkg/api/middleware"
	"github.com/fuel-streams/streams/pkg/api/ratelimit"
	"github.com/fuel-streams/streams/pkg/cache"
	apperrors "github.com/fuel-streams/streams/pkg/errors"
	applog "github.com/fuel-streams/streams/pkg/logger"
	"github.com/fuel-streams/streams/pkg/validator"
	"github.com/gorilla/websocket"
)

// Server wires the WebSocket upgrade endpoint and the REST surface
// sketch of spec.md §6.4/§6.5 onto one net/http.ServeMux, fronted by the
// shared pkg/api/middleware chain (request id, security headers, per-IP
// rate limiting, input sanitization, and authentication). No CORS
// middleware is applied.
type Server struct {
	store       store.Store
	broker      broker.Broker
	codec       codec.Codec
	manager     *Manager
	rateLimiter *RateLimiter
	cfg         Config
	upgrader    websocket.Upgrader

	ipLimiter ratelimit.Limiter
	ipLimit   int64
	sanitizer *validator.Sanitizer
}

// NewServer builds a Server. httpCache backs the coarse per-IP request
// limiter applied ahead of authentication; it may be the same cache
// instance the API-key Manager uses, since the two are keyed under
// disjoint namespaces.
func NewServer(st store.Store, b broker.Broker, c codec.Codec, manager *Manager, rl *RateLimiter, httpCache cache.Cache, httpRateLimitPerMinute int64, cfg Config) *Server {
	if httpRateLimitPerMinute <= 0 {
		httpRateLimitPerMinute = 300
	}
	return &Server{
		store: st, broker: b, codec: c, manager: manager, rateLimiter: rl, cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		ipLimiter: ratelimit.New(httpCache, ratelimit.StrategyFixedWindow),
		ipLimit:   httpRateLimitPerMinute,
		sanitizer: validator.NewSanitizer(),
	}
}

// extractAPIKey pulls the bearer token from the Authorization header or
// the api_key query parameter (spec.md §4.6 step 1), for use as a
// middleware.Extractor.
func extractAPIKey(r *http.Request) (string, error) {
	return ExtractToken(r.Header.Get("Authorization"), r.URL.Query().Get("api_key"))
}

// keyFromContext recovers the *Key middleware.AuthMiddleware resolved via
// s.manager and attached to the request context. Only called from
// handlers mounted behind withAuth, so the assertion always succeeds.
func keyFromContext(r *http.Request) (*Key, error) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		return nil, apperrors.New(apperrors.CodeUnauthenticated, "missing API key", nil)
	}
	kp, ok := principal.(keyPrincipal)
	if !ok {
		return nil, apperrors.New(apperrors.CodeInternal, "unexpected principal type", nil)
	}
	return kp.Key, nil
}

// withAuth applies the authenticated-route middleware chain: request id,
// security headers, per-IP rate limit, input sanitization, then
// authentication. handleHealth is the only route that skips it.
func (s *Server) withAuth(h http.Handler) http.Handler {
	chain := middleware.AuthMiddleware(s.manager, extractAPIKey)(h)
	chain = middleware.SanitizeMiddleware(s.sanitizer)(chain)
	chain = middleware.RateLimitMiddleware(s.ipLimiter, s.ipLimit, time.Minute)(chain)
	chain = middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig())(chain)
	chain = middleware.RequestIDMiddleware()(chain)
	return chain
}

// Handler builds the full mux: one route per registered subject id (the
// per-variant sub-paths spec.md §6.4 sketches), plus health and the
// WebSocket upgrade endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/v1/health", middleware.RequestIDMiddleware()(http.HandlerFunc(s.handleHealth)))
	mux.Handle("/api/v1/ws", s.withAuth(http.HandlerFunc(s.handleWebSocket)))

	for _, id := range subject.IDs() {
		id := id
		mux.Handle("/api/v1/"+id, s.withAuth(middleware.SecureJSONMiddleware()(s.handleEntityList(id))))
	}
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	healthy := s.broker.Healthy(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleEntityList serves GET /api/v1/{subject_id}, building a Subject
// from query params matching the variant's registered fields (spec.md
// §6.4 "entity-specific filters mirroring subject fields").
func (s *Server) handleEntityList(entityID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := keyFromContext(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if !key.HasScope(ScopeRestApi) {
			writeError(w, apperrors.New(apperrors.CodePermissionDenied, "missing scope: "+ScopeRestApi, nil))
			return
		}

		spec, ok := subject.Lookup(entityID)
		if !ok {
			http.NotFound(w, r)
			return
		}

		params := map[string]string{}
		q := r.URL.Query()
		for _, f := range spec.Fields {
			if v := q.Get(f.Name); v != "" {
				params[f.Name] = v
			}
		}

		subj, err := subject.New(entityID, params)
		if err != nil {
			writeError(w, err)
			return
		}

		opts := store.QueryOptions{}
		if v := q.Get("from_block"); v != "" {
			if h, err := strconv.ParseUint(v, 10, 64); err == nil {
				opts.FromBlock = &h
			}
		}
		if v := q.Get("to_block"); v != "" {
			if h, err := strconv.ParseUint(v, 10, 64); err == nil {
				opts.ToBlock = &h
			}
		}
		if v := q.Get("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				opts.Offset = n
			}
		}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				opts.Limit = n
			}
		}
		opts = opts.Normalize()

		items, err := s.store.FindManyBySubject(r.Context(), subj, opts)
		if err != nil {
			writeError(w, err)
			return
		}

		records := make([]map[string]any, 0, len(items))
		for _, item := range items {
			var decoded any
			if err := s.codec.Decode(item.Value, &decoded); err != nil {
				applog.L().Warn("failed to decode stored record for REST response", "subject", item.Subject, "error", err)
				continue
			}
			records = append(records, map[string]any{
				"subject": item.Subject,
				"cursor":  item.Cursor,
				"payload": decoded,
			})
		}

		writeJSON(w, http.StatusOK, records)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	key, err := keyFromContext(r)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.L().Warn("websocket upgrade failed", "error", err)
		return
	}

	session := NewSession(conn, *key, s.store, s.broker, s.codec, s.rateLimiter, s.cfg)
	session.Run(r.Context())
	_ = conn.Close()
}
