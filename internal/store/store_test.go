package store_test

import (
	"context"
	"testing"

	"github.com/fuel-streams/streams/internal/store"
	"github.com/fuel-streams/streams/internal/subject"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.GormStore {
	t.Helper()
	s, err := store.Connect(store.Config{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertBatchUpsertsOnSubjectConflict(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	blockSubj := subject.NewBlocksSubject("10", "0xproducer")
	rec := store.Record{
		Entity: "block", Subject: blockSubj, Value: []byte("v1"),
		Columns: map[string]any{"block_height": uint64(10), "producer": "0xproducer"},
	}
	require.NoError(t, s.InsertBatch(ctx, []store.Record{rec}))

	rec.Value = []byte("v2")
	require.NoError(t, s.InsertBatch(ctx, []store.Record{rec}))

	items, err := s.FindMany(ctx, "block", subject.NewBlocksSubject("", ""), store.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, []byte("v2"), items[0].Value)
}

func TestFindManyFiltersBySubjectFields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for h := uint64(1); h <= 3; h++ {
		subj := subject.NewBlocksSubject(itoa(h), "0xproducer")
		require.NoError(t, s.InsertBatch(ctx, []store.Record{{
			Entity: "block", Subject: subj, Value: []byte("v"),
			Columns: map[string]any{"block_height": h, "producer": "0xproducer"},
		}}))
	}

	items, err := s.FindMany(ctx, "block", subject.NewBlocksSubject(itoa(2), ""), store.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.EqualValues(t, 2, items[0].Pointer.BlockHeight)
}

func TestFindLastBlockHeight(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	height, err := s.FindLastBlockHeight(ctx, store.QueryOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 0, height)

	for _, h := range []uint64{1, 2, 5} {
		subj := subject.NewBlocksSubject(itoa(h), "0xp")
		require.NoError(t, s.InsertBatch(ctx, []store.Record{{
			Entity: "block", Subject: subj, Value: []byte("v"),
			Columns: map[string]any{"block_height": h, "producer": "0xp"},
		}}))
	}

	height, err = s.FindLastBlockHeight(ctx, store.QueryOptions{})
	require.NoError(t, err)
	require.EqualValues(t, 5, height)
}

func TestFindNextBlockToSave(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, h := range []uint64{0, 1, 3, 7} {
		subj := subject.NewBlocksSubject(itoa(h), "0xp")
		require.NoError(t, s.InsertBatch(ctx, []store.Record{{
			Entity: "block", Subject: subj, Value: []byte("v"),
			Columns: map[string]any{"block_height": h, "producer": "0xp"},
		}}))
	}

	gaps, err := s.FindNextBlockToSave(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []store.BlockHeightGap{
		{Start: 2, End: 2},
		{Start: 4, End: 6},
		{Start: 8, End: 10},
	}, gaps)
}

func TestFindNextBlockToSaveEmptyTable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	gaps, err := s.FindNextBlockToSave(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []store.BlockHeightGap{{Start: 0, End: 10}}, gaps)
}

func TestFindOneReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.FindOne(ctx, "block", subject.NewBlocksSubject("99", ""), "")
	require.Error(t, err)
}

func itoa(h uint64) string {
	const digits = "0123456789"
	if h == 0 {
		return "0"
	}
	var buf []byte
	for h > 0 {
		buf = append([]byte{digits[h%10]}, buf...)
		h /= 10
	}
	return string(buf)
}
