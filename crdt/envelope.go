package crdt

import (
	"fmt"

	"github.com/calimero-network/core-runtime/codec"
)

// EnvelopeKind tags the HLC-stamped wrapper stored for each collection entry
// so delta.ApplyArtifact (merging an incoming artifact into local storage)
// knows which merge algorithm to dispatch to, without needing external
// schema. This is the core's own internal extension of the self-describing
// codec (spec §4.4 (b)): application code never observes an EnvelopeKind,
// only the plain Value nested inside it.
type EnvelopeKind uint8

const (
	EnvMapEntry EnvelopeKind = iota
	EnvSetEntry
	EnvCounterBucket
	EnvLwwEntry
	EnvVectorSnapshot
)

// MapEntry is the stored representation of one Map key: a value, the HLC at
// which it was last written, and a tombstone flag for removals (spec §3
// "Tombstones for removals in Map carry the HLC at which the removal
// occurred").
type MapEntry struct {
	Value     codec.Value
	HLC       HLC
	Tombstone bool
}

// SetEntry tracks the latest add and remove HLCs for one element so
// add-wins-unless-strictly-later-remove (spec §4.2 Merge algorithm, Set)
// can be evaluated deterministically regardless of merge order.
type SetEntry struct {
	Added     bool
	Removed   bool
	AddHLC    HLC
	RemoveHLC HLC
}

// Present reports whether the element is in the set after resolving the
// add/remove race.
func (e SetEntry) Present() bool {
	if !e.Added {
		return false
	}
	if !e.Removed {
		return true
	}
	return !e.RemoveHLC.After(e.AddHLC)
}

// CounterBucket is one executor's G-Counter bucket.
type CounterBucket struct {
	Count uint64
}

// LwwEntry is the stored representation of an LwwRegister.
type LwwEntry struct {
	Value   codec.Value
	HLC     HLC
	Present bool
}

// VectorSnapshot is the stored representation of a Vector: its full
// contents plus the HLC of the last mutation, merged as LWW-on-whole-value
// with the longer tail preserved (spec §4.2 Merge algorithm, Vector; Open
// Question 2 resolved in spec §9 / SPEC_FULL.md §9).
type VectorSnapshot struct {
	Values []codec.Value
	HLC    HLC
}

func maxHLC(a, b HLC) HLC {
	if b.After(a) {
		return b
	}
	return a
}

// MergeMapEntry implements the Map merge rule: recursively-mergeable
// nested collections keep their identity (their children merge
// independently via their own entries); otherwise the later HLC wins;
// tombstones suppress the key only when their HLC is the latest.
func MergeMapEntry(a, b MapEntry) MapEntry {
	switch {
	case a.Tombstone && b.Tombstone:
		if b.HLC.After(a.HLC) {
			return b
		}
		return a
	case a.Tombstone:
		if a.HLC.After(b.HLC) {
			return a
		}
		return b
	case b.Tombstone:
		if b.HLC.After(a.HLC) {
			return b
		}
		return a
	}
	if a.Value.Kind == codec.KindCollectionRef && b.Value.Kind == codec.KindCollectionRef && a.Value.RefID == b.Value.RefID {
		if b.HLC.After(a.HLC) {
			return b
		}
		return a
	}
	if b.HLC.After(a.HLC) {
		return b
	}
	return a
}

// MergeSetEntry implements the Set merge rule: add-tags and remove-tags
// both accumulate (their HLCs take the pairwise maximum), which is
// commutative, associative, and idempotent; Present() resolves the race.
func MergeSetEntry(a, b SetEntry) SetEntry {
	return SetEntry{
		Added:     a.Added || b.Added,
		Removed:   a.Removed || b.Removed,
		AddHLC:    maxHLC(a.AddHLC, b.AddHLC),
		RemoveHLC: maxHLC(a.RemoveHLC, b.RemoveHLC),
	}
}

// MergeCounterBucket implements the G-Counter merge rule: per-executor
// maximum.
func MergeCounterBucket(a, b CounterBucket) CounterBucket {
	if b.Count > a.Count {
		return b
	}
	return a
}

// MergeLwwEntry implements the LwwRegister merge rule: the greater HLC
// wins outright.
func MergeLwwEntry(a, b LwwEntry) LwwEntry {
	if b.HLC.After(a.HLC) {
		return b
	}
	return a
}

// MergeVectorSnapshot implements the Vector merge rule chosen in spec §9:
// the writer with the later HLC wins for the overlapping prefix, and the
// longer vector's tail beyond that point is preserved.
func MergeVectorSnapshot(a, b VectorSnapshot) VectorSnapshot {
	winner, loser := a, b
	if b.HLC.After(a.HLC) {
		winner, loser = b, a
	}
	out := VectorSnapshot{HLC: winner.HLC, Values: append([]codec.Value{}, winner.Values...)}
	if len(loser.Values) > len(winner.Values) {
		out.Values = append(out.Values, loser.Values[len(winner.Values):]...)
	}
	return out
}

// --- wire encoding of envelopes -------------------------------------------------

// readValue reads a length-prefixed self-describing value nested inside a
// canonical-codec envelope.
func readValue(r *codec.Reader) (codec.Value, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return codec.Value{}, err
	}
	val, _, err := codec.Decode(b)
	return val, err
}

func encodeHLC(w *codec.Writer, h HLC) {
	w.WriteU64(h.Time)
	w.WriteBytes(h.Node[:])
}

func decodeHLC(r *codec.Reader) (HLC, error) {
	t, err := r.ReadU64()
	if err != nil {
		return HLC{}, err
	}
	nodeBytes, err := r.ReadBytes()
	if err != nil {
		return HLC{}, err
	}
	var h HLC
	h.Time = t
	copy(h.Node[:], nodeBytes)
	return h, nil
}

// EncodeEnvelope serializes kind-tagged entry state to canonical bytes.
func EncodeEnvelope(kind EnvelopeKind, v any) ([]byte, error) {
	w := &codec.Writer{}
	w.WriteU8(uint8(kind))
	switch kind {
	case EnvMapEntry:
		e := v.(MapEntry)
		w.WriteBytes(codec.Encode(e.Value))
		encodeHLC(w, e.HLC)
		w.WriteBool(e.Tombstone)
	case EnvSetEntry:
		e := v.(SetEntry)
		w.WriteBool(e.Added)
		w.WriteBool(e.Removed)
		encodeHLC(w, e.AddHLC)
		encodeHLC(w, e.RemoveHLC)
	case EnvCounterBucket:
		e := v.(CounterBucket)
		w.WriteU64(e.Count)
	case EnvLwwEntry:
		e := v.(LwwEntry)
		w.WriteBytes(codec.Encode(e.Value))
		encodeHLC(w, e.HLC)
		w.WriteBool(e.Present)
	case EnvVectorSnapshot:
		e := v.(VectorSnapshot)
		w.WriteSeqHeader(len(e.Values))
		for _, elem := range e.Values {
			w.WriteBytes(codec.Encode(elem))
		}
		encodeHLC(w, e.HLC)
	default:
		return nil, fmt.Errorf("crdt: unknown envelope kind %d", kind)
	}
	return w.Bytes(), nil
}

// DecodeEnvelope parses kind-tagged entry state produced by EncodeEnvelope.
func DecodeEnvelope(b []byte) (EnvelopeKind, any, error) {
	r := codec.NewReader(b)
	tagByte, err := r.ReadU8()
	if err != nil {
		return 0, nil, err
	}
	kind := EnvelopeKind(tagByte)
	switch kind {
	case EnvMapEntry:
		val, err := readValue(r)
		if err != nil {
			return 0, nil, err
		}
		hlc, err := decodeHLC(r)
		if err != nil {
			return 0, nil, err
		}
		tomb, err := r.ReadBool()
		if err != nil {
			return 0, nil, err
		}
		return kind, MapEntry{Value: val, HLC: hlc, Tombstone: tomb}, nil
	case EnvSetEntry:
		added, err := r.ReadBool()
		if err != nil {
			return 0, nil, err
		}
		removed, err := r.ReadBool()
		if err != nil {
			return 0, nil, err
		}
		addHLC, err := decodeHLC(r)
		if err != nil {
			return 0, nil, err
		}
		removeHLC, err := decodeHLC(r)
		if err != nil {
			return 0, nil, err
		}
		return kind, SetEntry{Added: added, Removed: removed, AddHLC: addHLC, RemoveHLC: removeHLC}, nil
	case EnvCounterBucket:
		n, err := r.ReadU64()
		if err != nil {
			return 0, nil, err
		}
		return kind, CounterBucket{Count: n}, nil
	case EnvLwwEntry:
		val, err := readValue(r)
		if err != nil {
			return 0, nil, err
		}
		hlc, err := decodeHLC(r)
		if err != nil {
			return 0, nil, err
		}
		present, err := r.ReadBool()
		if err != nil {
			return 0, nil, err
		}
		return kind, LwwEntry{Value: val, HLC: hlc, Present: present}, nil
	case EnvVectorSnapshot:
		n, err := r.ReadSeqHeader()
		if err != nil {
			return 0, nil, err
		}
		values := make([]codec.Value, 0, n)
		for i := 0; i < n; i++ {
			val, err := readValue(r)
			if err != nil {
				return 0, nil, err
			}
			values = append(values, val)
		}
		hlc, err := decodeHLC(r)
		if err != nil {
			return 0, nil, err
		}
		return kind, VectorSnapshot{Values: values, HLC: hlc}, nil
	default:
		return 0, nil, fmt.Errorf("crdt: unknown envelope kind %d", kind)
	}
}

// MergeEnvelope merges two envelopes of the same kind, as used by
// delta.ApplyArtifact when reconciling an incoming remote action against
// the local value at the same target id.
func MergeEnvelope(kind EnvelopeKind, existing, incoming any) (any, error) {
	switch kind {
	case EnvMapEntry:
		return MergeMapEntry(existing.(MapEntry), incoming.(MapEntry)), nil
	case EnvSetEntry:
		return MergeSetEntry(existing.(SetEntry), incoming.(SetEntry)), nil
	case EnvCounterBucket:
		return MergeCounterBucket(existing.(CounterBucket), incoming.(CounterBucket)), nil
	case EnvLwwEntry:
		return MergeLwwEntry(existing.(LwwEntry), incoming.(LwwEntry)), nil
	case EnvVectorSnapshot:
		return MergeVectorSnapshot(existing.(VectorSnapshot), incoming.(VectorSnapshot)), nil
	default:
		return nil, fmt.Errorf("crdt: unknown envelope kind %d", kind)
	}
}
