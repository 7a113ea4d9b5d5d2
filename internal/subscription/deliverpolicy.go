package subscription

import (
	"encoding/json"
	"strconv"
	"strings"

	apperrors "github.com/fuel-streams/streams/pkg/errors"
)

// DeliverPolicyKind distinguishes the two variants spec.md §4.6/§6.3
// allows: "new" (live tail only, phase L) and "from_block" (historical
// replay from a height, phase H then phase L).
type DeliverPolicyKind string

const (
	DeliverNew       DeliverPolicyKind = "new"
	DeliverFromBlock DeliverPolicyKind = "from_block"
)

// DeliverPolicy is the parsed form of a subscribe request's delivery
// policy. BlockHeight is only meaningful when Kind is DeliverFromBlock.
type DeliverPolicy struct {
	Kind        DeliverPolicyKind
	BlockHeight uint64
}

// fromBlockObject is the object wire form: {"from_block":{"block_height": ...}}.
// block_height may arrive as a JSON number or a JSON string (spec.md §8
// invariant 7).
type fromBlockObject struct {
	FromBlock struct {
		BlockHeight json.RawMessage `json:"block_height"`
	} `json:"from_block"`
}

// ParseDeliverPolicy accepts any of the five wire forms spec.md §8's
// "delivery-policy parse" invariant lists: the bare string "new", the
// string forms "from_block:<n>" / "from_block=<n>", or the JSON object
// form with a numeric or string block_height.
func ParseDeliverPolicy(raw json.RawMessage) (DeliverPolicy, error) {
	trimmed := strings.TrimSpace(string(raw))

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return parseDeliverPolicyString(asString)
	}

	if strings.HasPrefix(trimmed, "{") {
		var obj fromBlockObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return DeliverPolicy{}, apperrors.New(apperrors.CodeInvalidArgument, "invalid deliver_policy object", err)
		}
		height, err := parseBlockHeightRaw(obj.FromBlock.BlockHeight)
		if err != nil {
			return DeliverPolicy{}, err
		}
		return DeliverPolicy{Kind: DeliverFromBlock, BlockHeight: height}, nil
	}

	return DeliverPolicy{}, apperrors.New(apperrors.CodeInvalidArgument, "unrecognized deliver_policy: "+trimmed, nil)
}

func parseDeliverPolicyString(s string) (DeliverPolicy, error) {
	if s == string(DeliverNew) {
		return DeliverPolicy{Kind: DeliverNew}, nil
	}
	for _, sep := range []string{":", "="} {
		prefix := "from_block" + sep
		if strings.HasPrefix(s, prefix) {
			height, err := strconv.ParseUint(strings.TrimPrefix(s, prefix), 10, 64)
			if err != nil {
				return DeliverPolicy{}, apperrors.New(apperrors.CodeInvalidArgument, "invalid from_block height: "+s, err)
			}
			return DeliverPolicy{Kind: DeliverFromBlock, BlockHeight: height}, nil
		}
	}
	return DeliverPolicy{}, apperrors.New(apperrors.CodeInvalidArgument, "unrecognized deliver_policy: "+s, nil)
}

func parseBlockHeightRaw(raw json.RawMessage) (uint64, error) {
	var asUint uint64
	if err := json.Unmarshal(raw, &asUint); err == nil {
		return asUint, nil
	}
	var asStr string
	if err := json.Unmarshal(raw, &asStr); err == nil {
		height, err := strconv.ParseUint(asStr, 10, 64)
		if err != nil {
			return 0, apperrors.New(apperrors.CodeInvalidArgument, "invalid block_height string: "+asStr, err)
		}
		return height, nil
	}
	return 0, apperrors.New(apperrors.CodeInvalidArgument, "block_height must be a number or numeric string", nil)
}

// String renders the canonical wire form (spec.md §4.6: `"new"` or
// `{"from_block":{"block_height":"<n>"}}`).
func (p DeliverPolicy) String() string {
	if p.Kind == DeliverNew {
		return `"new"`
	}
	return `{"from_block":{"block_height":"` + strconv.FormatUint(p.BlockHeight, 10) + `"}}`
}

// RequiresHistorical reports whether this policy needs phase H (and so
// the HistoricalData scope) before phase L.
func (p DeliverPolicy) RequiresHistorical() bool {
	return p.Kind == DeliverFromBlock
}
