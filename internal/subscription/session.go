// Package subscription implements the Subscription Engine (C6): the
// WebSocket session lifecycle that fuses historical replay (phase H) and
// live tail (phase L) over a client-chosen set of subjects (spec.md §4.6).
package subscription

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/fuel-streams/streams/internal/broker"
	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/domain"
	"github.com/fuel-streams/streams/internal/store"
	"github.com/fuel-streams/streams/internal/subject"
	applog "github.com/fuel-streams/streams/pkg/logger"
	"github.com/gorilla/websocket"
)

// Config tunes one session's pacing and liveness detection.
type Config struct {
	// HeartbeatInterval is how often a ping is sent (spec.md §4.6
	// "recommended 30s").
	HeartbeatInterval time.Duration
	// ClientTimeout closes the session if no pong/traffic arrives within
	// this window (spec.md §4.6 "recommended 60s").
	ClientTimeout time.Duration
	// PageSize is phase H's page size L (spec.md §4.6, default 100).
	PageSize int
	// ThrottleHistorical paces phase H yields.
	ThrottleHistorical time.Duration
	// ThrottleLive paces phase L yields.
	ThrottleLive time.Duration
}

func (c Config) normalize() Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.ClientTimeout <= 0 {
		c.ClientTimeout = 60 * time.Second
	}
	if c.PageSize <= 0 {
		c.PageSize = store.DefaultLimit
	}
	return c
}

// clientFrame is the client->server envelope (spec.md §4.6): either a
// Subscribe or an Unsubscribe request.
type clientFrame struct {
	Type          string            `json:"type"`
	Subscribe     []subject.Payload `json:"subscribe"`
	DeliverPolicy json.RawMessage   `json:"deliver_policy,omitempty"`
}

// serverFrame is the server->client envelope: exactly one of Payload or
// Error is set, tagged by Type.
type serverFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newServerFrame(typ string, payload any) serverFrame {
	return serverFrame{Type: typ, Payload: payload}
}

func newErrorFrame(msg string) serverFrame {
	return serverFrame{Type: "error", Error: msg}
}

// activeSubscription tracks one running Subscribe task so duplicate
// requests and Unsubscribe can find it.
type activeSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Session is one WebSocket client's full lifecycle: auth already resolved
// by the caller, message loop, heartbeat, and every spawned Subscribe
// task.
type Session struct {
	conn        *websocket.Conn
	key         Key
	store       store.Store
	broker      broker.Broker
	codec       codec.Codec
	rateLimiter *RateLimiter
	cfg         Config

	mu   sync.Mutex
	subs map[string]*activeSubscription

	lastActivity atomic64
}

// atomic64 avoids importing sync/atomic's verbose Value boilerplate for a
// single monotonically-advancing timestamp.
type atomic64 struct {
	mu sync.Mutex
	t  time.Time
}

func (a *atomic64) set(t time.Time) {
	a.mu.Lock()
	a.t = t
	a.mu.Unlock()
}

func (a *atomic64) get() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.t
}

// NewSession wires one accepted WebSocket connection. Auth (API key
// resolution and scope loading) is the caller's responsibility; key is
// already validated.
func NewSession(conn *websocket.Conn, key Key, st store.Store, b broker.Broker, c codec.Codec, rl *RateLimiter, cfg Config) *Session {
	return &Session{
		conn: conn, key: key, store: st, broker: b, codec: c, rateLimiter: rl,
		cfg:  cfg.normalize(),
		subs: make(map[string]*activeSubscription),
	}
}

// Run drives the session until the connection closes or ctx is
// cancelled: heartbeat, liveness monitor, and the client message loop
// (spec.md §4.6 "Enter the message loop").
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.closeAllSubscriptions()

	s.lastActivity.set(time.Now())
	s.conn.SetPongHandler(func(string) error {
		s.lastActivity.set(time.Now())
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.heartbeatLoop(ctx, cancel)
	}()

	s.messageLoop(ctx)
	cancel()
	wg.Wait()
}

func (s *Session) heartbeatLoop(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Since(s.lastActivity.get()) > s.cfg.ClientTimeout {
				applog.L().WarnContext(ctx, "session heartbeat timeout", "key_id", s.key.ID)
				_ = s.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "Timeout"), time.Now().Add(5*time.Second))
				// ReadJSON in messageLoop blocks on the socket, not on ctx;
				// closing the connection is what actually unblocks it.
				_ = s.conn.Close()
				cancel()
				return
			}
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				cancel()
				return
			}
		}
	}
}

func (s *Session) messageLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		var frame clientFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			return
		}
		s.lastActivity.set(time.Now())

		switch frame.Type {
		case "subscribe":
			s.handleSubscribe(ctx, frame)
		case "unsubscribe":
			s.handleUnsubscribe(frame)
		default:
			s.send(newErrorFrame("unknown frame type: " + frame.Type))
		}
	}
}

func (s *Session) send(frame serverFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(frame); err != nil {
		applog.L().Warn("session write failed", "key_id", s.key.ID, "error", err)
	}
}

// handleSubscribe spawns one task per requested subject (spec.md §4.6
// "one spawned task per SubjectPayload").
func (s *Session) handleSubscribe(ctx context.Context, frame clientFrame) {
	policy, err := ParseDeliverPolicy(frame.DeliverPolicy)
	if err != nil {
		s.send(newErrorFrame(err.Error()))
		return
	}

	if policy.RequiresHistorical() && !s.key.HasScope(ScopeHistoricalData) {
		s.send(newErrorFrame("missing scope: " + ScopeHistoricalData))
		return
	}
	if !s.key.HasScope(ScopeLiveData) {
		s.send(newErrorFrame("missing scope: " + ScopeLiveData))
		return
	}

	for _, sp := range frame.Subscribe {
		s.subscribeOne(ctx, sp, policy)
	}
}

func (s *Session) subscribeOne(ctx context.Context, sp subject.Payload, policy DeliverPolicy) {
	subj, err := subject.FromPayload(sp)
	if err != nil {
		s.send(newErrorFrame(err.Error()))
		return
	}

	key := subj.Parse() + "|" + policy.String()

	s.mu.Lock()
	if _, exists := s.subs[key]; exists {
		s.mu.Unlock()
		s.send(newErrorFrame("already subscribed: " + subj.Parse()))
		return
	}
	if len(s.subs) >= s.key.SubscriptionLimit && s.key.SubscriptionLimit > 0 {
		s.mu.Unlock()
		s.send(newErrorFrame("subscription limit exceeded"))
		return
	}
	subCtx, cancel := context.WithCancel(ctx)
	active := &activeSubscription{cancel: cancel, done: make(chan struct{})}
	s.subs[key] = active
	s.mu.Unlock()

	s.send(newServerFrame("subscribed", sp))

	go func() {
		defer close(active.done)
		s.runSubscription(subCtx, subj, policy)
		s.mu.Lock()
		delete(s.subs, key)
		s.mu.Unlock()
	}()
}

func (s *Session) handleUnsubscribe(frame clientFrame) {
	for _, sp := range frame.Subscribe {
		subj, err := subject.FromPayload(sp)
		if err != nil {
			s.send(newErrorFrame(err.Error()))
			continue
		}
		s.mu.Lock()
		prefix := subj.Parse() + "|"
		var found *activeSubscription
		var foundKey string
		for k, a := range s.subs {
			if strings.HasPrefix(k, prefix) {
				found, foundKey = a, k
				break
			}
		}
		s.mu.Unlock()
		if found == nil {
			s.send(newErrorFrame("not subscribed: " + subj.Parse()))
			continue
		}
		found.cancel()
		<-found.done
		s.mu.Lock()
		delete(s.subs, foundKey)
		s.mu.Unlock()
		s.send(newServerFrame("unsubscribed", sp))
	}
}

func (s *Session) closeAllSubscriptions() {
	s.mu.Lock()
	subs := make([]*activeSubscription, 0, len(s.subs))
	for _, a := range s.subs {
		subs = append(subs, a)
	}
	s.mu.Unlock()
	for _, a := range subs {
		a.cancel()
		<-a.done
	}
}

// runSubscription drives phase H (if the policy requires it) then phase
// L for one subject, forwarding each item as a Response frame and
// enforcing the per-message role and rate-limit checks (spec.md §4.6
// step 5).
func (s *Session) runSubscription(ctx context.Context, subj *subject.Subject, policy DeliverPolicy) {
	if policy.RequiresHistorical() {
		if err := s.runHistorical(ctx, subj, policy.BlockHeight); err != nil {
			if ctx.Err() == nil {
				s.send(newErrorFrame(err.Error()))
			}
			return
		}
	}
	if err := s.runLive(ctx, subj); err != nil && ctx.Err() == nil {
		s.send(newErrorFrame(err.Error()))
	}
}

// runHistorical implements phase H: page through store.FindManyBySubject
// from the requested height, refreshing the known tip until no new rows
// have appeared (spec.md §4.6 step 4 "Phase H").
func (s *Session) runHistorical(ctx context.Context, subj *subject.Subject, fromHeight uint64) error {
	currentHeight := fromHeight
	offset := 0

	lastKnown, err := s.store.FindLastBlockHeight(ctx, store.QueryOptions{})
	if err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		items, err := s.store.FindManyBySubject(ctx, subj, store.QueryOptions{
			FromBlock: &currentHeight,
			Offset:    offset,
			Limit:     s.cfg.PageSize,
		})
		if err != nil {
			return err
		}

		for _, item := range items {
			if !s.key.ValidatesHistoricalDaysLimit(item.CreatedAt) {
				continue
			}
			if !s.deliver(ctx, subj, item.Value) {
				return nil
			}
			currentHeight = item.Pointer.BlockHeight
			if s.cfg.ThrottleHistorical > 0 {
				time.Sleep(s.cfg.ThrottleHistorical)
			}
		}

		if len(items) < s.cfg.PageSize {
			refreshed, err := s.store.FindLastBlockHeight(ctx, store.QueryOptions{})
			if err != nil {
				return err
			}
			if refreshed <= lastKnown {
				return nil
			}
			lastKnown = refreshed
			offset = 0
			continue
		}
		offset += len(items)
	}
}

// runLive implements phase L: a broker pub/sub subscription on the
// subject's own wildcard pattern (spec.md §4.6 step 4 "Phase L").
func (s *Session) runLive(ctx context.Context, subj *subject.Subject) error {
	sub, err := s.broker.StreamSubscriber().Subscribe(ctx, subj.Parse())
	if err != nil {
		return err
	}
	defer sub.Close()

	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !s.deliver(ctx, subj, msg.Payload) {
			return nil
		}
		if s.cfg.ThrottleLive > 0 {
			time.Sleep(s.cfg.ThrottleLive)
		}
	}
}

// deliver decodes an encoded record packet body and forwards it as a
// Response frame, enforcing the per-message rate limit (spec.md §4.6
// step 5). Returns false if the caller must stop (rate limit exceeded).
func (s *Session) deliver(ctx context.Context, subj *subject.Subject, value []byte) bool {
	allowed, err := s.rateLimiter.Allow(ctx, s.key.ID, s.key.RateLimitPerMinute)
	if err != nil {
		applog.L().WarnContext(ctx, "rate limiter error, allowing", "error", err)
	} else if !allowed {
		s.send(newErrorFrame("rate limit exceeded"))
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "RateLimitExceeded"), time.Now().Add(5*time.Second))
		return false
	}

	var decoded any
	if err := s.codec.Decode(value, &decoded); err != nil {
		s.send(newErrorFrame("failed to decode record: " + err.Error()))
		return true
	}

	resp := domain.StreamResponse{
		Subject:   subj.Parse(),
		SubjectID: subj.ID(),
		Version:   domain.ResponseVersion,
		Payload:   decoded,
	}
	s.send(newServerFrame("response", resp))
	return true
}
