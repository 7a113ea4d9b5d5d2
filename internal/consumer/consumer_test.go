package consumer_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fuel-streams/streams/internal/broker"
	"github.com/fuel-streams/streams/internal/codec"
	"github.com/fuel-streams/streams/internal/consumer"
	"github.com/fuel-streams/streams/internal/domain"
	"github.com/fuel-streams/streams/internal/store"
	"github.com/stretchr/testify/require"
)

func testPayload() domain.MsgPayload {
	return domain.MsgPayload{
		Block: domain.Block{Height: 5, ID: "0xblock", Producer: "0xproducer"},
		Metadata: domain.Metadata{
			ChainID: "0", BaseAssetID: "0xbase", Producer: "0xproducer",
			Height: 5, Consensus: "poa", Timestamp: time.Unix(500, 0),
		},
		Transactions: []domain.Transaction{
			{
				ID: "0xtx", Index: 0, Status: "success", Kind: "script",
				Inputs: []domain.Input{
					{Kind: "coin", Owner: "0xowner", AssetID: "0xasset"},
				},
				Outputs: []domain.Output{
					{Kind: "coin", To: "0xto", AssetID: "0xasset"},
				},
				Receipts: []domain.Receipt{
					{Kind: "return", ContractID: "0xcontract"},
				},
			},
		},
	}
}

func TestConsumerCommitsAndPublishesThenAcks(t *testing.T) {
	c, err := codec.New("zstd+json")
	require.NoError(t, err)

	st, err := store.Connect(store.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	b := broker.NewMemoryBroker()
	wqProd := b.WorkQueueProducer()
	wqCons, err := b.WorkQueueConsumer("test-durable", time.Second)
	require.NoError(t, err)

	sub, err := b.StreamSubscriber().Subscribe(context.Background(), "blocks.>")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	value, err := c.Encode(testPayload())
	require.NoError(t, err)
	require.NoError(t, wqProd.Publish(context.Background(), &broker.Message{
		Subject: "block_submitted.0xproducer.5",
		Payload: value,
	}, "block_5"))

	con := consumer.New(wqCons, b.StreamPublisher(), st, c, consumer.Config{
		BatchSize: 10, MaxInflight: 4, FetchWait: 20 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var ran int32
	go func() {
		_ = con.Run(ctx)
		atomic.StoreInt32(&ran, 1)
	}()

	msgCtx, msgCancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer msgCancel()
	msg, err := sub.Next(msgCtx)
	require.NoError(t, err)
	require.Equal(t, "blocks.5.0xproducer", msg.Subject)

	height, err := st.FindLastBlockHeight(context.Background(), store.QueryOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 5, height)

	<-ctx.Done()
}
