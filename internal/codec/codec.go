// Package codec implements the pluggable payload encoding boundary
// (spec.md §4.4 step 3): every MsgPayload/RecordPacket crossing the broker
// or the store is serialized-then-compressed through one Codec.
//
// original_source defaults to Zstd+Postcard; Postcard has no mature Go
// implementation in the example pack, so the Go-native substitute is
// Zstd+JSON, using the same compression library family
// (github.com/klauspost/compress) the teacher's stack already depends on
// transitively through its HTTP middleware.
package codec

import (
	"bytes"
	"encoding/json"

	"github.com/klauspost/compress/zstd"

	apperrors "github.com/fuel-streams/streams/pkg/errors"
)

// Codec encodes/decodes domain values to/from their wire representation.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// ZstdJSON is the default codec (spec.md §4.4 "configurable codec").
type ZstdJSON struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New constructs the default codec for name ("zstd+json" is currently the
// only supported value; unknown names are a config error, not a panic).
func New(name string) (Codec, error) {
	switch name {
	case "", "zstd+json":
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to initialize zstd encoder")
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to initialize zstd decoder")
		}
		return &ZstdJSON{encoder: enc, decoder: dec}, nil
	default:
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "unknown codec: "+name, nil)
	}
}

func (c *ZstdJSON) Name() string { return "zstd+json" }

func (c *ZstdJSON) Encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal payload to json")
	}
	return c.encoder.EncodeAll(raw, nil), nil
}

func (c *ZstdJSON) Decode(data []byte, v any) error {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return apperrors.Wrap(err, "failed to decompress zstd payload")
	}
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal payload from json")
	}
	return nil
}
