package crdt

import (
	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
	"github.com/calimero-network/core-runtime/delta"
	"github.com/calimero-network/core-runtime/errs"
)

// Map is a handle over a host-side partial function from a serialized key to
// a serialized value (spec §4.2 "Map"). Map owns no data directly: every
// operation is a round trip through bridge.Host. Two Map handles with the
// same ID view the same underlying data (spec "Lifecycle & ownership").
type Map struct {
	host bridge.Host
	id   bridge.CollectionID
}

// NewMap creates an empty map with a fresh id.
func NewMap(host bridge.Host) (Map, error) {
	id, err := host.NewCollection(bridge.OpMapNew)
	if err != nil {
		return Map{}, err
	}
	return Map{host: host, id: id}, nil
}

// OpenMap wraps an existing map id without allocating, for loading a
// collection reference read back out of storage.
func OpenMap(host bridge.Host, id bridge.CollectionID) Map { return Map{host: host, id: id} }

// ID returns the handle's underlying collection id.
func (m Map) ID() bridge.CollectionID { return m.id }

func (m Map) keyBytes(k codec.Value) []byte { return codec.Encode(k) }

// Insert serializes k and v; when a previous entry exists at k, its value is
// merged with v (via MergeMapEntry, which preserves nested-collection
// identity and otherwise lets the later HLC win) rather than overwritten
// outright. Returns the previous value, if any, prior to the merge.
func (m Map) Insert(k, v codec.Value) (codec.Value, bool, error) {
	if m.id.IsZero() {
		return codec.Value{}, false, errs.New(errs.InvalidID, "map: zero-value handle")
	}
	key := m.keyBytes(k)
	entry := MapEntry{Value: v, HLC: Now(m.host)}

	prevRaw, existed, err := m.host.Collection(bridge.OpMapGet, m.id, key)
	if err != nil {
		return codec.Value{}, false, err
	}

	var prevVal codec.Value
	final := entry
	if existed {
		prevEntry, decErr := decodeMapEntry(prevRaw)
		if decErr != nil {
			return codec.Value{}, false, errs.Wrap(errs.Deserialization, decErr, "map: corrupt entry")
		}
		if !prevEntry.Tombstone {
			prevVal = prevEntry.Value
		} else {
			existed = false
		}
		final = MergeMapEntry(prevEntry, entry)
	}

	enc, err := EncodeEnvelope(EnvMapEntry, final)
	if err != nil {
		return codec.Value{}, false, err
	}
	if _, _, err := m.host.Collection(bridge.OpMapInsert, m.id, key, enc); err != nil {
		return codec.Value{}, false, err
	}
	if v.Kind == codec.KindCollectionRef {
		Track(m.id, string(key), bridge.CollectionID(v.RefID))
	}
	MarkDirty(m.id)
	target := delta.TargetID([32]byte(m.id), key)
	if err := delta.Record(m.host, delta.ActionUpdate, target, enc); err != nil {
		return codec.Value{}, false, err
	}
	return prevVal, existed, nil
}

// Get returns the value stored at k, if any and not tombstoned.
func (m Map) Get(k codec.Value) (codec.Value, bool, error) {
	raw, present, err := m.host.Collection(bridge.OpMapGet, m.id, m.keyBytes(k))
	if err != nil || !present {
		return codec.Value{}, false, err
	}
	entry, err := decodeMapEntry(raw)
	if err != nil {
		return codec.Value{}, false, errs.Wrap(errs.Deserialization, err, "map: corrupt entry")
	}
	if entry.Tombstone {
		return codec.Value{}, false, nil
	}
	return entry.Value, true, nil
}

// Remove deletes k, writing a tombstone stamped with the current HLC so the
// removal can outrace a concurrent insert deterministically on merge.
func (m Map) Remove(k codec.Value) (codec.Value, bool, error) {
	key := m.keyBytes(k)
	prevRaw, existed, err := m.host.Collection(bridge.OpMapGet, m.id, key)
	if err != nil {
		return codec.Value{}, false, err
	}
	tomb := MapEntry{HLC: Now(m.host), Tombstone: true}
	var prevVal codec.Value
	found := false
	if existed {
		prevEntry, decErr := decodeMapEntry(prevRaw)
		if decErr != nil {
			return codec.Value{}, false, errs.Wrap(errs.Deserialization, decErr, "map: corrupt entry")
		}
		if !prevEntry.Tombstone {
			prevVal = prevEntry.Value
			found = true
		}
		tomb = MergeMapEntry(prevEntry, tomb)
	}
	enc, err := EncodeEnvelope(EnvMapEntry, tomb)
	if err != nil {
		return codec.Value{}, false, err
	}
	if _, _, err := m.host.Collection(bridge.OpMapInsert, m.id, key, enc); err != nil {
		return codec.Value{}, false, err
	}
	MarkDirty(m.id)
	target := delta.TargetID([32]byte(m.id), key)
	if err := delta.Record(m.host, delta.ActionUpdate, target, enc); err != nil {
		return codec.Value{}, false, err
	}
	return prevVal, found, nil
}

// Contains reports whether k has a live (non-tombstoned) entry.
func (m Map) Contains(k codec.Value) (bool, error) {
	_, present, err := m.host.Collection(bridge.OpMapContains, m.id, m.keyBytes(k))
	return present, err
}

// MapPair is one entry returned by Map.Entries.
type MapPair struct {
	Key   codec.Value
	Value codec.Value
}

// Entries returns every live entry. The wire form is a sequence of
// (key bytes, envelope bytes) pairs, decoded here into key/value values.
func (m Map) Entries() ([]MapPair, error) {
	raw, _, err := m.host.Collection(bridge.OpMapIter, m.id)
	if err != nil {
		return nil, err
	}
	r := codec.NewReader(raw)
	n, err := r.ReadSeqHeader()
	if err != nil {
		return nil, err
	}
	pairs := make([]MapPair, 0, n)
	for i := 0; i < n; i++ {
		keyBytes, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		envBytes, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		key, _, err := codec.Decode(keyBytes)
		if err != nil {
			return nil, err
		}
		entry, err := decodeMapEntry(envBytes)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, MapPair{Key: key, Value: entry.Value})
	}
	return pairs, nil
}

func decodeMapEntry(raw []byte) (MapEntry, error) {
	kind, v, err := DecodeEnvelope(raw)
	if err != nil {
		return MapEntry{}, err
	}
	if kind != EnvMapEntry {
		return MapEntry{}, errs.New(errs.Deserialization, "map: envelope kind %d is not a map entry", kind)
	}
	return v.(MapEntry), nil
}
