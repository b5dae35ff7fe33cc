package main

import (
	"encoding/hex"
	"fmt"

	"github.com/calimero-network/core-runtime/codec"
)

// jsonValue is the wire shape the inspector's JSON bodies use for a
// codec.Value: at most one of the typed fields is set. Kept intentionally
// narrow (no lists/maps/refs) since the harness only needs to drive
// scalar scenarios end to end, not exercise every codec.Value shape — the
// codec's own tests cover that.
type jsonValue struct {
	Str *string `json:"str,omitempty"`
	U64 *uint64 `json:"u64,omitempty"`
	Hex *string `json:"hex,omitempty"` // bytes, hex-encoded
}

func (j jsonValue) toValue() (codec.Value, error) {
	switch {
	case j.Str != nil:
		return codec.String(*j.Str), nil
	case j.U64 != nil:
		return codec.U64(*j.U64), nil
	case j.Hex != nil:
		b, err := hex.DecodeString(*j.Hex)
		if err != nil {
			return codec.Value{}, fmt.Errorf("invalid hex value: %w", err)
		}
		return codec.Bytes(b), nil
	default:
		return codec.Null(), nil
	}
}

func fromValue(v codec.Value) jsonValue {
	switch v.Kind {
	case codec.KindString:
		s := v.Str
		return jsonValue{Str: &s}
	case codec.KindU64:
		n := v.U64
		return jsonValue{U64: &n}
	case codec.KindBytes:
		h := hex.EncodeToString(v.Bytes)
		return jsonValue{Hex: &h}
	default:
		return jsonValue{}
	}
}
