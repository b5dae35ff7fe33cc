package crdt

import (
	"crypto/sha256"

	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
	"github.com/calimero-network/core-runtime/errs"
)

// FrozenStorage is a Map keyed by the SHA-256 of the canonical-codec
// serialization of its values (spec §3 "Specialized derivatives",
// Invariant 6 "content-addressing"). Values are immutable once added:
// every replica that adds the same value computes the same hash and lands
// on the same key, so the "Frozen<T> merge is a no-op" rule of spec.md §3
// falls directly out of content addressing in MergeMapEntry — both sides
// of any merge at a given key are bit-identical.
type FrozenStorage struct {
	m Map
}

// NewFrozenStorage creates an empty frozen storage map with a fresh id.
func NewFrozenStorage(host bridge.Host) (FrozenStorage, error) {
	m, err := NewMap(host)
	if err != nil {
		return FrozenStorage{}, err
	}
	return FrozenStorage{m: m}, nil
}

// OpenFrozenStorage wraps an existing FrozenStorage id without allocating.
func OpenFrozenStorage(host bridge.Host, id bridge.CollectionID) FrozenStorage {
	return FrozenStorage{m: OpenMap(host, id)}
}

// ID returns the handle's underlying collection id.
func (f FrozenStorage) ID() bridge.CollectionID { return f.m.ID() }

// ComputeHash returns the content address of v without storing it.
func ComputeHash(v codec.Value) [32]byte {
	return sha256.Sum256(codec.Encode(v))
}

// Add stores v under its content hash and returns that hash. Adding the
// same value again is a no-op: it recomputes the identical hash, lands on
// the identical key, and overwrites the entry with a bit-identical value
// (Invariant 6, "storage.add(v) returns a hash h such that storage.get(h) =
// v ... entries().len() does not grow").
func (f FrozenStorage) Add(v codec.Value) ([32]byte, error) {
	hash := ComputeHash(v)
	if _, _, err := f.m.Insert(codec.Bytes(hash[:]), v); err != nil {
		return [32]byte{}, err
	}
	return hash, nil
}

// Get retrieves the value stored at hash, if any.
func (f FrozenStorage) Get(hash [32]byte) (codec.Value, bool, error) {
	return f.m.Get(codec.Bytes(hash[:]))
}

// Contains reports whether hash has a stored value.
func (f FrozenStorage) Contains(hash [32]byte) (bool, error) {
	return f.m.Contains(codec.Bytes(hash[:]))
}

// Remove always fails: FrozenStorage entries are immutable once added
// (spec §7 "FrozenViolation: attempt to remove from or replace in
// FrozenStorage").
func (f FrozenStorage) Remove([32]byte) error {
	return errs.New(errs.FrozenViolation, "frozen_storage: remove is not permitted")
}

// Entries returns every stored (hash, value) pair.
func (f FrozenStorage) Entries() ([]FrozenEntry, error) {
	pairs, err := f.m.Entries()
	if err != nil {
		return nil, err
	}
	out := make([]FrozenEntry, 0, len(pairs))
	for _, p := range pairs {
		if p.Key.Kind != codec.KindBytes || len(p.Key.Bytes) != 32 {
			return nil, errs.New(errs.Deserialization, "frozen_storage: stored key is not a 32-byte hash")
		}
		var h [32]byte
		copy(h[:], p.Key.Bytes)
		out = append(out, FrozenEntry{Hash: h, Value: p.Value})
	}
	return out, nil
}

// FrozenEntry is one entry returned by FrozenStorage.Entries.
type FrozenEntry struct {
	Hash  [32]byte
	Value codec.Value
}
