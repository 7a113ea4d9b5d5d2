package subscription_test

import (
	"encoding/json"
	"testing"

	"github.com/fuel-streams/streams/internal/subscription"
	"github.com/stretchr/testify/require"
)

func TestParseDeliverPolicyAllFormsAgree(t *testing.T) {
	forms := []string{
		`"from_block:42"`,
		`"from_block=42"`,
		`{"from_block":{"block_height":42}}`,
		`{"from_block":{"block_height":"42"}}`,
	}
	for _, f := range forms {
		policy, err := subscription.ParseDeliverPolicy(json.RawMessage(f))
		require.NoError(t, err, f)
		require.Equal(t, subscription.DeliverFromBlock, policy.Kind, f)
		require.EqualValues(t, 42, policy.BlockHeight, f)
	}
}

func TestParseDeliverPolicyNew(t *testing.T) {
	policy, err := subscription.ParseDeliverPolicy(json.RawMessage(`"new"`))
	require.NoError(t, err)
	require.Equal(t, subscription.DeliverNew, policy.Kind)
	require.False(t, policy.RequiresHistorical())
}

func TestDeliverPolicyStringRoundTrip(t *testing.T) {
	policy := subscription.DeliverPolicy{Kind: subscription.DeliverFromBlock, BlockHeight: 7}
	reparsed, err := subscription.ParseDeliverPolicy(json.RawMessage(policy.String()))
	require.NoError(t, err)
	require.Equal(t, policy, reparsed)
}

func TestParseDeliverPolicyRejectsGarbage(t *testing.T) {
	_, err := subscription.ParseDeliverPolicy(json.RawMessage(`"bogus"`))
	require.Error(t, err)
}
