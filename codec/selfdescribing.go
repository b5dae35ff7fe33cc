package codec

import "fmt"

// Kind is the one-byte tag preceding every self-describing value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindU64
	KindString
	KindBytes
	KindList
	KindMap
	KindCollectionRef
)

// Value is a self-describing, in-storage value (spec §4.4 (b)). Exactly one
// of the typed fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind

	Bool    bool
	U64     uint64
	Str     string
	Bytes   []byte
	List    []Value
	Map     []MapPair
	RefType uint32 // CollectionRef type_tag: distinguishes Map/Set/Vector/Counter/LwwRegister handles
	RefID   [32]byte
}

// MapPair is one entry of a self-describing Map value. Pairs preserve
// insertion order so re-encoding is deterministic.
type MapPair struct {
	Key   Value
	Value Value
}

func Null() Value                 { return Value{Kind: KindNull} }
func Bool(v bool) Value           { return Value{Kind: KindBool, Bool: v} }
func U64(v uint64) Value          { return Value{Kind: KindU64, U64: v} }
func String(v string) Value       { return Value{Kind: KindString, Str: v} }
func Bytes(v []byte) Value        { return Value{Kind: KindBytes, Bytes: v} }
func List(v []Value) Value        { return Value{Kind: KindList, List: v} }
func Map(v []MapPair) Value       { return Value{Kind: KindMap, Map: v} }
func CollectionRef(refType uint32, id [32]byte) Value {
	return Value{Kind: KindCollectionRef, RefType: refType, RefID: id}
}

// Encode writes v using the self-describing codec: a one-byte kind tag
// followed by a canonical-codec encoding of the payload.
func Encode(v Value) []byte {
	w := &Writer{}
	encodeInto(w, v)
	return w.Bytes()
}

func encodeInto(w *Writer, v Value) {
	w.WriteU8(uint8(v.Kind))
	switch v.Kind {
	case KindNull:
	case KindBool:
		w.WriteBool(v.Bool)
	case KindU64:
		w.WriteU64(v.U64)
	case KindString:
		w.WriteString(v.Str)
	case KindBytes:
		w.WriteBytes(v.Bytes)
	case KindList:
		w.WriteSeqHeader(len(v.List))
		for _, e := range v.List {
			encodeInto(w, e)
		}
	case KindMap:
		w.WriteSeqHeader(len(v.Map))
		for _, p := range v.Map {
			encodeInto(w, p.Key)
			encodeInto(w, p.Value)
		}
	case KindCollectionRef:
		w.WriteU32(v.RefType)
		w.buf = append(w.buf, v.RefID[:]...)
	}
}

// Decode parses a self-describing value, returning the number of bytes
// consumed so callers can decode a sequence of values back to back.
func Decode(b []byte) (Value, int, error) {
	r := NewReader(b)
	v, err := decodeFrom(r)
	if err != nil {
		return Value{}, 0, err
	}
	return v, len(b) - r.Remaining(), nil
}

func decodeFrom(r *Reader) (Value, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return Value{}, err
	}
	switch Kind(tag) {
	case KindNull:
		return Null(), nil
	case KindBool:
		b, err := r.ReadBool()
		return Bool(b), err
	case KindU64:
		n, err := r.ReadU64()
		return U64(n), err
	case KindString:
		s, err := r.ReadString()
		return String(s), err
	case KindBytes:
		b, err := r.ReadBytes()
		return Bytes(b), err
	case KindList:
		n, err := r.ReadSeqHeader()
		if err != nil {
			return Value{}, err
		}
		list := make([]Value, 0, n)
		for i := 0; i < n; i++ {
			e, err := decodeFrom(r)
			if err != nil {
				return Value{}, err
			}
			list = append(list, e)
		}
		return List(list), nil
	case KindMap:
		n, err := r.ReadSeqHeader()
		if err != nil {
			return Value{}, err
		}
		pairs := make([]MapPair, 0, n)
		for i := 0; i < n; i++ {
			k, err := decodeFrom(r)
			if err != nil {
				return Value{}, err
			}
			val, err := decodeFrom(r)
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, MapPair{Key: k, Value: val})
		}
		return Map(pairs), nil
	case KindCollectionRef:
		refType, err := r.ReadU32()
		if err != nil {
			return Value{}, err
		}
		if r.Remaining() < 32 {
			return Value{}, ErrShortBuffer
		}
		var id [32]byte
		copy(id[:], r.buf[r.pos:r.pos+32])
		r.pos += 32
		return CollectionRef(refType, id), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown kind %d", ErrMalformed, tag)
	}
}

// Equal reports structural equality, used by round-trip tests.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindU64:
		return a.U64 == b.U64
	case KindString:
		return a.Str == b.Str
	case KindBytes:
		return string(a.Bytes) == string(b.Bytes)
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for i := range a.Map {
			if !Equal(a.Map[i].Key, b.Map[i].Key) || !Equal(a.Map[i].Value, b.Map[i].Value) {
				return false
			}
		}
		return true
	case KindCollectionRef:
		return a.RefType == b.RefType && a.RefID == b.RefID
	}
	return false
}
