package subscription_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fuel-streams/streams/internal/broker"
	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/store"
	"github.com/fuel-streams/streams/internal/subscription"
	memorycache "github.com/fuel-streams/streams/pkg/cache/adapters/memory"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func fullScopeLoader() *fakeLoader {
	return &fakeLoader{key: &subscription.Key{
		ID: "test-key", Role: "admin",
		Scopes:             []string{subscription.ScopeFull},
		SubscriptionLimit:  10,
		RateLimitPerMinute: 0,
	}}
}

func newTestServer(t *testing.T) (*httptest.Server, *broker.MemoryBroker) {
	t.Helper()
	st, err := store.Connect(store.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	b := broker.NewMemoryBroker()
	c, err := codec.New("zstd+json")
	require.NoError(t, err)

	mgr := subscription.NewManager(memorycache.New(), fullScopeLoader(), nil, time.Minute)
	rl := subscription.NewRateLimiter(memorycache.New())
	cfg := subscription.Config{
		HeartbeatInterval: time.Minute,
		ClientTimeout:     time.Minute,
	}

	srv := subscription.NewServer(st, b, c, mgr, rl, memorycache.New(), 0, cfg)
	return httptest.NewServer(srv.Handler()), b
}

func encodeForTest(t *testing.T, v any) []byte {
	t.Helper()
	c, err := codec.New("zstd+json")
	require.NoError(t, err)
	data, err := c.Encode(v)
	require.NoError(t, err)
	return data
}

func TestWebSocketSubscribeLiveDeliversPublishedRecord(t *testing.T) {
	ts, b := newTestServer(t)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws?api_key=test-key"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":           "subscribe",
		"subscribe":      []map[string]any{{"subject": "blocks", "params": map[string]string{}}},
		"deliver_policy": "new",
	}))

	var subscribed map[string]any
	require.NoError(t, conn.ReadJSON(&subscribed))
	require.Equal(t, "subscribed", subscribed["type"])

	// The live pub/sub registration happens in a goroutine spawned right
	// after the "subscribed" frame is sent; give it a moment to register
	// before publishing, since MemoryBroker only fans out to subscriptions
	// already registered at publish time.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, b.StreamPublisher().Publish(context.Background(), &broker.Message{
		Subject: "blocks.5.0xproducer",
		Payload: encodeForTest(t, map[string]any{"height": 5}),
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var resp map[string]any
	require.NoError(t, conn.ReadJSON(&resp))
	require.Equal(t, "response", resp["type"])
}

func TestWebSocketRejectsMissingAPIKey(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 401, resp.StatusCode)
}
