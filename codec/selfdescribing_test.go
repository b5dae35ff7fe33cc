package codec

import "testing"

func TestValueRoundTrip(t *testing.T) {
	cases := []Value{
		Null(),
		Bool(true),
		Bool(false),
		U64(1 << 40),
		String("hello, world"),
		Bytes([]byte{0xDE, 0xAD, 0xBE, 0xEF}),
		List([]Value{U64(1), String("x"), Bool(true)}),
		Map([]MapPair{
			{Key: String("a"), Value: U64(1)},
			{Key: String("b"), Value: U64(2)},
		}),
		CollectionRef(3, [32]byte{1, 2, 3}),
	}
	for _, v := range cases {
		enc := Encode(v)
		got, n, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%+v): %v", v, err)
		}
		if n != len(enc) {
			t.Fatalf("Decode consumed %d bytes, want %d", n, len(enc))
		}
		if !Equal(got, v) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, v)
		}
	}
}

func TestValueEqualDistinguishesKind(t *testing.T) {
	if Equal(Null(), Bool(false)) {
		t.Fatalf("Null and Bool(false) must not compare equal")
	}
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	v := Map([]MapPair{
		{Key: String("z"), Value: U64(1)},
		{Key: String("a"), Value: U64(2)},
	})
	got, _, err := Decode(Encode(v))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Map[0].Key.Str != "z" || got.Map[1].Key.Str != "a" {
		t.Fatalf("expected insertion order preserved, got %+v", got.Map)
	}
}
