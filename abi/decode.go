package abi

import (
	"fmt"

	"github.com/calimero-network/core-runtime/codec"
)

// Value is a structured value produced by decoding canonical-codec bytes
// under the guidance of a TypeRef and a Manifest. Contract (spec §4.4 (c)):
// the same bytes decoded with the same TypeRef must produce an equal Value
// across implementations.
type Value struct {
	Kind string

	Bool    bool
	Int     int64
	Uint    uint64
	Float64 float64
	Str     string
	Bytes   []byte

	List []Value

	MapKeys   []Value
	MapValues []Value

	Fields map[string]Value // record, keyed by field name

	VariantName    string
	VariantPayload *Value
}

// Decode reads canonical-codec bytes from r according to ref, resolving
// named types through m.
func Decode(r *codec.Reader, ref TypeRef, m *Manifest) (Value, error) {
	if ref.Ref != "" {
		def, ok := m.Types[ref.Ref]
		if !ok {
			return Value{}, fmt.Errorf("abi: unknown type %q", ref.Ref)
		}
		return decodeNamed(r, ref.Ref, def, m)
	}

	switch ref.Kind {
	case ScalarBool:
		b, err := r.ReadBool()
		return Value{Kind: ref.Kind, Bool: b}, err
	case ScalarU8:
		v, err := r.ReadU8()
		return Value{Kind: ref.Kind, Uint: uint64(v)}, err
	case ScalarU16:
		v, err := r.ReadU16()
		return Value{Kind: ref.Kind, Uint: uint64(v)}, err
	case ScalarU32:
		v, err := r.ReadU32()
		return Value{Kind: ref.Kind, Uint: uint64(v)}, err
	case ScalarU64:
		v, err := r.ReadU64()
		return Value{Kind: ref.Kind, Uint: v}, err
	case ScalarI8:
		v, err := r.ReadU8()
		return Value{Kind: ref.Kind, Int: int64(int8(v))}, err
	case ScalarI16:
		v, err := r.ReadU16()
		return Value{Kind: ref.Kind, Int: int64(int16(v))}, err
	case ScalarI32:
		v, err := r.ReadU32()
		return Value{Kind: ref.Kind, Int: int64(int32(v))}, err
	case ScalarI64:
		v, err := r.ReadU64()
		return Value{Kind: ref.Kind, Int: int64(v)}, err
	case ScalarF32:
		v, err := r.ReadF32()
		return Value{Kind: ref.Kind, Float64: float64(v)}, err
	case ScalarF64:
		v, err := r.ReadF64()
		return Value{Kind: ref.Kind, Float64: v}, err
	case ScalarString:
		v, err := r.ReadString()
		return Value{Kind: ref.Kind, Str: v}, err
	case ScalarBytes:
		v, err := r.ReadBytes()
		return Value{Kind: ref.Kind, Bytes: v}, err
	case CompositeUnit:
		return Value{Kind: CompositeUnit}, nil
	case CompositeOption:
		present, err := r.ReadOption()
		if err != nil || ref.Inner == nil {
			return Value{}, err
		}
		if !present {
			return Value{Kind: CompositeOption}, nil
		}
		inner, err := Decode(r, *ref.Inner, m)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: CompositeOption, VariantPayload: &inner}, nil
	case CompositeList:
		n, err := r.ReadSeqHeader()
		if err != nil || ref.Items == nil {
			return Value{}, err
		}
		list := make([]Value, 0, n)
		for i := 0; i < n; i++ {
			e, err := Decode(r, *ref.Items, m)
			if err != nil {
				return Value{}, err
			}
			list = append(list, e)
		}
		return Value{Kind: CompositeList, List: list}, nil
	case CompositeMap:
		n, err := r.ReadSeqHeader()
		if err != nil || ref.Key == nil || ref.Value == nil {
			return Value{}, err
		}
		keys := make([]Value, 0, n)
		vals := make([]Value, 0, n)
		for i := 0; i < n; i++ {
			k, err := Decode(r, *ref.Key, m)
			if err != nil {
				return Value{}, err
			}
			v, err := Decode(r, *ref.Value, m)
			if err != nil {
				return Value{}, err
			}
			keys = append(keys, k)
			vals = append(vals, v)
		}
		return Value{Kind: CompositeMap, MapKeys: keys, MapValues: vals}, nil
	default:
		return Value{}, fmt.Errorf("abi: unsupported TypeRef kind %q", ref.Kind)
	}
}

// DecodeRecord reads fields in order and assembles them into a record Value
// keyed by field name. Used both for named record TypeDefs and for the
// dispatcher's synthetic "method parameter list as a record" case (spec
// §4.5 "Argument normalization").
func DecodeRecord(r *codec.Reader, fields []FieldDef, m *Manifest) (Value, error) {
	out := make(map[string]Value, len(fields))
	for _, f := range fields {
		v, err := Decode(r, f.Type, m)
		if err != nil {
			return Value{}, fmt.Errorf("abi: field %s: %w", f.Name, err)
		}
		out[f.Name] = v
	}
	return Value{Kind: "record", Fields: out}, nil
}

func decodeNamed(r *codec.Reader, name string, def TypeDef, m *Manifest) (Value, error) {
	switch def.Kind {
	case "alias":
		if def.Alias == nil {
			return Value{}, fmt.Errorf("abi: alias %q missing target", name)
		}
		return Decode(r, *def.Alias, m)
	case "record":
		v, err := DecodeRecord(r, def.Fields, m)
		if err != nil {
			return Value{}, fmt.Errorf("abi: record %s: %w", name, err)
		}
		v.Str = name
		return v, nil
	case "variant":
		disc, err := r.ReadVariant()
		if err != nil {
			return Value{}, err
		}
		if int(disc) >= len(def.Variants) {
			return Value{}, fmt.Errorf("abi: variant %q discriminant %d out of range", name, disc)
		}
		vd := def.Variants[disc]
		val := Value{Kind: "variant", Str: name, VariantName: vd.Name}
		if vd.Payload != nil {
			p, err := Decode(r, *vd.Payload, m)
			if err != nil {
				return Value{}, err
			}
			val.VariantPayload = &p
		}
		return val, nil
	default:
		return Value{}, fmt.Errorf("abi: unknown type def kind %q for %q", def.Kind, name)
	}
}

// Field looks up a named field of a record Value, reporting whether it
// was present.
func (v Value) Field(name string) (Value, bool) {
	if v.Fields == nil {
		return Value{}, false
	}
	f, ok := v.Fields[name]
	return f, ok
}
