package publisher_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fuel-streams/streams/internal/blocksource"
	"github.com/fuel-streams/streams/internal/broker"
	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/domain"
	"github.com/fuel-streams/streams/internal/publisher"
	"github.com/fuel-streams/streams/internal/store"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu     sync.Mutex
	tip    uint64
	fetched []uint64
	live   chan blocksource.SealedBlock
}

func newFakeSource(tip uint64) *fakeSource {
	return &fakeSource{tip: tip, live: make(chan blocksource.SealedBlock)}
}

func (f *fakeSource) WaitSynced(ctx context.Context) error { return nil }
func (f *fakeSource) LatestHeight(ctx context.Context) (uint64, error) { return f.tip, nil }
func (f *fakeSource) ChainMetadata(ctx context.Context) (string, string, error) {
	return "0", "0xbase", nil
}

func (f *fakeSource) FetchBlock(ctx context.Context, height uint64) (domain.MsgPayload, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, height)
	f.mu.Unlock()
	return domain.MsgPayload{
		Block:    domain.Block{Height: height, ID: "0xb", Producer: "0xp"},
		Metadata: domain.Metadata{Height: height, Producer: "0xp"},
	}, nil
}

func (f *fakeSource) Subscribe(ctx context.Context) (<-chan blocksource.SealedBlock, error) {
	return f.live, nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.Connect(store.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPublisherBackfillsEveryHeightInGaps(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	source := newFakeSource(3)
	st := newTestStore(t)
	b := broker.NewMemoryBroker()
	c, err := codec.New("zstd+json")
	require.NoError(t, err)

	pub := publisher.New(source, st, b.WorkQueueProducer(), c, publisher.Config{DrainTimeout: 500 * time.Millisecond})

	runCtx, runCancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer runCancel()
	_ = pub.Run(runCtx)

	source.mu.Lock()
	defer source.mu.Unlock()
	require.ElementsMatch(t, []uint64{0, 1, 2, 3}, source.fetched)
}
