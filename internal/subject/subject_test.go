package subject_test

import (
	"testing"

	"github.com/fuel-streams/streams/internal/subject"
	"github.com/stretchr/testify/require"
)

func TestBlocksSubjectParseFullySpecified(t *testing.T) {
	s := subject.NewBlocksSubject("100", "0xabc")
	require.Equal(t, "blocks.100.0xabc", s.Parse())
}

func TestBlocksSubjectParseWildcard(t *testing.T) {
	s := subject.NewBlocksSubject("", "")
	require.Equal(t, "blocks.>", s.Parse())
}

func TestBlocksSubjectParsePartial(t *testing.T) {
	s := subject.NewBlocksSubject("100", "")
	require.Equal(t, "blocks.100.*", s.Parse())
}

func TestSubjectPayloadRoundTrip(t *testing.T) {
	original := subject.NewTransactionsSubject("10", "2", "0xdead", "success", "script")
	payload := original.ToPayload()

	decoded, err := subject.FromPayload(payload)
	require.NoError(t, err)
	require.Equal(t, original.Parse(), decoded.Parse())
}

func TestFromPayloadRejectsUnknownSubject(t *testing.T) {
	_, err := subject.FromPayload(subject.Payload{Subject: "not_a_real_subject"})
	require.Error(t, err)
}

func TestFromPayloadRejectsUnknownField(t *testing.T) {
	_, err := subject.FromPayload(subject.Payload{
		Subject: subject.Blocks.ID,
		Params:  map[string]string{"not_a_field": "x"},
	})
	require.Error(t, err)
}

func TestToSQLWhereCombinesFieldsAndExtraWhere(t *testing.T) {
	s := subject.NewInputsCoinSubject("100", "0xdead", "1", "0", "0xowner", "")
	where, ok := s.ToSQLWhere()
	require.True(t, ok)
	require.Contains(t, where, "input_type = 'coin'")
	require.Contains(t, where, "height = '100'")
	require.Contains(t, where, "owner_id = '0xowner'")
	require.NotContains(t, where, "asset_id")
}

func TestToSQLWhereEmptyWhenNoFieldsAndNoExtraWhere(t *testing.T) {
	s := subject.NewBlocksSubject("", "")
	_, ok := s.ToSQLWhere()
	require.False(t, ok)
}

func TestWithNamespacePrefixesParseAndSQLWhere(t *testing.T) {
	s := subject.NewBlocksSubject("100", "").WithNamespace("test_ns")
	require.Equal(t, "test_ns.blocks.100.*", s.Parse())

	where, ok := s.ToSQLWhere()
	require.True(t, ok)
	require.Contains(t, where, "subject LIKE 'test_ns.%'")
}

func TestEveryRegisteredSubjectHasAUniqueIDAndKnownTable(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range subject.IDs() {
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true

		spec, ok := subject.Lookup(id)
		require.True(t, ok)
		require.NotEmpty(t, subject.Table(spec.Entity), "entity %s has no table mapping", spec.Entity)
	}
}

func TestUtxoSubjectsDisambiguateByInputIndex(t *testing.T) {
	a := subject.NewUtxosCoinSubject("0xdead", "0")
	b := subject.NewUtxosCoinSubject("0xdead", "1")
	require.NotEqual(t, a.Parse(), b.Parse())
}
