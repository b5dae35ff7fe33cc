package crdt

import (
	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
	"github.com/calimero-network/core-runtime/delta"
	"github.com/calimero-network/core-runtime/errs"
)

// Set is a handle over a host-side set of serialized values with add-wins
// semantics (spec §4.2 "Set").
type Set struct {
	host bridge.Host
	id   bridge.CollectionID
}

// NewSet creates an empty set with a fresh id.
func NewSet(host bridge.Host) (Set, error) {
	id, err := host.NewCollection(bridge.OpSetNew)
	if err != nil {
		return Set{}, err
	}
	return Set{host: host, id: id}, nil
}

// OpenSet wraps an existing set id without allocating.
func OpenSet(host bridge.Host, id bridge.CollectionID) Set { return Set{host: host, id: id} }

// ID returns the handle's underlying collection id.
func (s Set) ID() bridge.CollectionID { return s.id }

func (s Set) elemBytes(x codec.Value) []byte { return codec.Encode(x) }

// rawEntry fetches the stored envelope for elem, if any. bridge.OpSetContains
// doubles as the set handle's read path: its payload is the raw envelope
// bytes, and its presence flag reports the resolved add/remove race
// (SetEntry.Present), not merely whether a record exists.
func (s Set) rawEntry(elem []byte) (SetEntry, bool, error) {
	raw, present, err := s.host.Collection(bridge.OpSetContains, s.id, elem)
	if err != nil {
		return SetEntry{}, false, err
	}
	if raw == nil {
		return SetEntry{}, present, nil
	}
	kind, v, err := DecodeEnvelope(raw)
	if err != nil {
		return SetEntry{}, false, errs.Wrap(errs.Deserialization, err, "set: corrupt entry")
	}
	if kind != EnvSetEntry {
		return SetEntry{}, false, errs.New(errs.Deserialization, "set: envelope kind %d is not a set entry", kind)
	}
	return v.(SetEntry), present, nil
}

// Add inserts x, returning true iff it was not already a live member.
func (s Set) Add(x codec.Value) (bool, error) {
	elem := s.elemBytes(x)
	existing, wasPresent, err := s.rawEntry(elem)
	if err != nil {
		return false, err
	}
	merged := MergeSetEntry(existing, SetEntry{Added: true, AddHLC: Now(s.host)})
	enc, err := EncodeEnvelope(EnvSetEntry, merged)
	if err != nil {
		return false, err
	}
	if _, _, err := s.host.Collection(bridge.OpSetInsert, s.id, elem, enc); err != nil {
		return false, err
	}
	MarkDirty(s.id)
	target := delta.TargetID([32]byte(s.id), elem)
	if err := delta.Record(s.host, delta.ActionUpdate, target, enc); err != nil {
		return false, err
	}
	return !wasPresent, nil
}

// Remove deletes x, returning true iff it was previously a live member.
func (s Set) Remove(x codec.Value) (bool, error) {
	elem := s.elemBytes(x)
	existing, wasPresent, err := s.rawEntry(elem)
	if err != nil {
		return false, err
	}
	merged := MergeSetEntry(existing, SetEntry{Removed: true, RemoveHLC: Now(s.host)})
	enc, err := EncodeEnvelope(EnvSetEntry, merged)
	if err != nil {
		return false, err
	}
	if _, _, err := s.host.Collection(bridge.OpSetRemove, s.id, elem, enc); err != nil {
		return false, err
	}
	MarkDirty(s.id)
	target := delta.TargetID([32]byte(s.id), elem)
	if err := delta.Record(s.host, delta.ActionUpdate, target, enc); err != nil {
		return false, err
	}
	return wasPresent, nil
}

// Contains reports whether x is currently a live member.
func (s Set) Contains(x codec.Value) (bool, error) {
	_, present, err := s.rawEntry(s.elemBytes(x))
	return present, err
}

// Len returns the number of live members.
func (s Set) Len() (int, error) {
	raw, _, err := s.host.Collection(bridge.OpSetLen, s.id)
	if err != nil {
		return 0, err
	}
	r := codec.NewReader(raw)
	n, err := r.ReadU64()
	return int(n), err
}

// Clear removes every member.
func (s Set) Clear() error {
	_, _, err := s.host.Collection(bridge.OpSetClear, s.id)
	if err == nil {
		MarkDirty(s.id)
	}
	return err
}

// Entries returns every live member.
func (s Set) Entries() ([]codec.Value, error) {
	raw, _, err := s.host.Collection(bridge.OpSetIter, s.id)
	if err != nil {
		return nil, err
	}
	r := codec.NewReader(raw)
	n, err := r.ReadSeqHeader()
	if err != nil {
		return nil, err
	}
	out := make([]codec.Value, 0, n)
	for i := 0; i < n; i++ {
		keyBytes, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadBytes(); err != nil { // envelope bytes, unused here
			return nil, err
		}
		v, _, err := codec.Decode(keyBytes)
		if err != nil {
			return nil, errs.Wrap(errs.Deserialization, err, "set: corrupt element")
		}
		out = append(out, v)
	}
	return out, nil
}
