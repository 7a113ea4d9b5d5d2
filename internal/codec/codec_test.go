package codec_test

import (
	"testing"

	"github.com/fuel-streams/streams/internal/codec"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Height uint64 `json:"height"`
	Name   string `json:"name"`
}

func TestZstdJSONRoundTrip(t *testing.T) {
	c, err := codec.New("zstd+json")
	require.NoError(t, err)
	require.Equal(t, "zstd+json", c.Name())

	in := sample{Height: 42, Name: "block"}
	encoded, err := c.Encode(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, c.Decode(encoded, &out))
	require.Equal(t, in, out)
}

func TestNewRejectsUnknownCodec(t *testing.T) {
	_, err := codec.New("postcard")
	require.Error(t, err)
}
