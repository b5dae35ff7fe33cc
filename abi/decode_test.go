package abi

import (
	"testing"

	"github.com/calimero-network/core-runtime/codec"
)

func TestDecodeScalars(t *testing.T) {
	w := &codec.Writer{}
	w.WriteBool(true)
	w.WriteU64(42)
	w.WriteF64(3.5)
	w.WriteString("hi")
	w.WriteBytes([]byte{1, 2, 3})

	r := codec.NewReader(w.Bytes())
	m := &Manifest{}

	b, err := Decode(r, TypeRef{Kind: ScalarBool}, m)
	if err != nil || !b.Bool {
		t.Fatalf("bool: %+v err=%v", b, err)
	}
	u, err := Decode(r, TypeRef{Kind: ScalarU64}, m)
	if err != nil || u.Uint != 42 {
		t.Fatalf("u64: %+v err=%v", u, err)
	}
	f, err := Decode(r, TypeRef{Kind: ScalarF64}, m)
	if err != nil || f.Float64 != 3.5 {
		t.Fatalf("f64: %+v err=%v", f, err)
	}
	s, err := Decode(r, TypeRef{Kind: ScalarString}, m)
	if err != nil || s.Str != "hi" {
		t.Fatalf("string: %+v err=%v", s, err)
	}
	by, err := Decode(r, TypeRef{Kind: ScalarBytes}, m)
	if err != nil || string(by.Bytes) != "\x01\x02\x03" {
		t.Fatalf("bytes: %+v err=%v", by, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected all bytes consumed, %d remaining", r.Remaining())
	}
}

func TestDecodeSignedScalarsSignExtend(t *testing.T) {
	w := &codec.Writer{}
	w.WriteI8(-1)
	w.WriteI32(-100)
	r := codec.NewReader(w.Bytes())
	m := &Manifest{}

	i8, err := Decode(r, TypeRef{Kind: ScalarI8}, m)
	if err != nil || i8.Int != -1 {
		t.Fatalf("i8: %+v err=%v", i8, err)
	}
	i32, err := Decode(r, TypeRef{Kind: ScalarI32}, m)
	if err != nil || i32.Int != -100 {
		t.Fatalf("i32: %+v err=%v", i32, err)
	}
}

func TestDecodeUnit(t *testing.T) {
	v, err := Decode(codec.NewReader(nil), TypeRef{Kind: CompositeUnit}, &Manifest{})
	if err != nil || v.Kind != CompositeUnit {
		t.Fatalf("unit: %+v err=%v", v, err)
	}
}

func TestDecodeOptionPresentAndAbsent(t *testing.T) {
	m := &Manifest{}
	ref := TypeRef{Kind: CompositeOption, Inner: &TypeRef{Kind: ScalarU32}}

	w := &codec.Writer{}
	w.WriteOption(false)
	v, err := Decode(codec.NewReader(w.Bytes()), ref, m)
	if err != nil || v.VariantPayload != nil {
		t.Fatalf("expected absent option, got %+v err=%v", v, err)
	}

	w = &codec.Writer{}
	w.WriteOption(true)
	w.WriteU32(9)
	v, err = Decode(codec.NewReader(w.Bytes()), ref, m)
	if err != nil || v.VariantPayload == nil || v.VariantPayload.Uint != 9 {
		t.Fatalf("expected present option with 9, got %+v err=%v", v, err)
	}
}

func TestDecodeList(t *testing.T) {
	w := &codec.Writer{}
	w.WriteSeqHeader(3)
	w.WriteU8(1)
	w.WriteU8(2)
	w.WriteU8(3)
	ref := TypeRef{Kind: CompositeList, Items: &TypeRef{Kind: ScalarU8}}
	v, err := Decode(codec.NewReader(w.Bytes()), ref, &Manifest{})
	if err != nil || len(v.List) != 3 || v.List[2].Uint != 3 {
		t.Fatalf("list: %+v err=%v", v, err)
	}
}

func TestDecodeMap(t *testing.T) {
	w := &codec.Writer{}
	w.WriteSeqHeader(2)
	w.WriteString("a")
	w.WriteU32(1)
	w.WriteString("b")
	w.WriteU32(2)
	ref := TypeRef{Kind: CompositeMap, Key: &TypeRef{Kind: ScalarString}, Value: &TypeRef{Kind: ScalarU32}}
	v, err := Decode(codec.NewReader(w.Bytes()), ref, &Manifest{})
	if err != nil || len(v.MapKeys) != 2 || v.MapKeys[1].Str != "b" || v.MapValues[1].Uint != 2 {
		t.Fatalf("map: %+v err=%v", v, err)
	}
}

func TestDecodeNamedAlias(t *testing.T) {
	m := &Manifest{Types: map[string]TypeDef{
		"Amount": {Kind: "alias", Alias: &TypeRef{Kind: ScalarU64}},
	}}
	w := &codec.Writer{}
	w.WriteU64(7)
	v, err := Decode(codec.NewReader(w.Bytes()), TypeRef{Ref: "Amount"}, m)
	if err != nil || v.Uint != 7 {
		t.Fatalf("alias: %+v err=%v", v, err)
	}
}

func TestDecodeNamedRecord(t *testing.T) {
	m := &Manifest{Types: map[string]TypeDef{
		"Point": {Kind: "record", Fields: []FieldDef{
			{Name: "x", Type: TypeRef{Kind: ScalarU32}},
			{Name: "y", Type: TypeRef{Kind: ScalarU32}},
		}},
	}}
	w := &codec.Writer{}
	w.WriteU32(3)
	w.WriteU32(4)
	v, err := Decode(codec.NewReader(w.Bytes()), TypeRef{Ref: "Point"}, m)
	if err != nil {
		t.Fatalf("record decode: %v", err)
	}
	if v.Str != "Point" {
		t.Fatalf("expected record Value.Str to carry the type name, got %q", v.Str)
	}
	x, ok := v.Field("x")
	if !ok || x.Uint != 3 {
		t.Fatalf("expected field x=3, got %+v ok=%v", x, ok)
	}
	y, ok := v.Field("y")
	if !ok || y.Uint != 4 {
		t.Fatalf("expected field y=4, got %+v ok=%v", y, ok)
	}
}

func TestDecodeNamedVariant(t *testing.T) {
	m := &Manifest{Types: map[string]TypeDef{
		"Shape": {Kind: "variant", Variants: []VariantDef{
			{Name: "Circle", Payload: &TypeRef{Kind: ScalarU32}},
			{Name: "Square"},
		}},
	}}

	w := &codec.Writer{}
	w.WriteVariant(0)
	w.WriteU32(5)
	v, err := Decode(codec.NewReader(w.Bytes()), TypeRef{Ref: "Shape"}, m)
	if err != nil || v.VariantName != "Circle" || v.VariantPayload == nil || v.VariantPayload.Uint != 5 {
		t.Fatalf("circle variant: %+v err=%v", v, err)
	}

	w = &codec.Writer{}
	w.WriteVariant(1)
	v, err = Decode(codec.NewReader(w.Bytes()), TypeRef{Ref: "Shape"}, m)
	if err != nil || v.VariantName != "Square" || v.VariantPayload != nil {
		t.Fatalf("square variant: %+v err=%v", v, err)
	}
}

func TestDecodeNamedVariantOutOfRangeDiscriminant(t *testing.T) {
	m := &Manifest{Types: map[string]TypeDef{
		"Shape": {Kind: "variant", Variants: []VariantDef{{Name: "Circle"}}},
	}}
	w := &codec.Writer{}
	w.WriteVariant(9)
	_, err := Decode(codec.NewReader(w.Bytes()), TypeRef{Ref: "Shape"}, m)
	if err == nil {
		t.Fatalf("expected an out-of-range discriminant to error")
	}
}

func TestDecodeUnknownRefErrors(t *testing.T) {
	_, err := Decode(codec.NewReader(nil), TypeRef{Ref: "Nope"}, &Manifest{Types: map[string]TypeDef{}})
	if err == nil {
		t.Fatalf("expected an unknown $ref to error")
	}
}

func TestDecodeRecordForDispatcherParamList(t *testing.T) {
	fields := []FieldDef{
		{Name: "amount", Type: TypeRef{Kind: ScalarU64}},
		{Name: "memo", Type: TypeRef{Kind: ScalarString}},
	}
	w := &codec.Writer{}
	w.WriteU64(100)
	w.WriteString("rent")
	v, err := DecodeRecord(codec.NewReader(w.Bytes()), fields, &Manifest{})
	if err != nil {
		t.Fatalf("DecodeRecord: %v", err)
	}
	amount, _ := v.Field("amount")
	memo, _ := v.Field("memo")
	if amount.Uint != 100 || memo.Str != "rent" {
		t.Fatalf("expected amount=100 memo=rent, got %+v", v)
	}
}

func TestFieldOnNonRecordReportsAbsent(t *testing.T) {
	v := Value{Kind: ScalarU64, Uint: 1}
	if _, ok := v.Field("x"); ok {
		t.Fatalf("expected Field to report absent on a non-record Value")
	}
}
