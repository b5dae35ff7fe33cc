package crdt

import (
	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
	"github.com/calimero-network/core-runtime/errs"
)

// PubKeyLen is the fixed size of a UserStorage key (spec §4.2 derivative
// "UserStorage<V>").
const PubKeyLen = 32

// UserStorage is a Map whose keys are constrained to 32-byte public keys;
// otherwise identical to Map (spec §3 "Specialized derivatives").
type UserStorage struct {
	m Map
}

// NewUserStorage creates an empty user storage map with a fresh id.
func NewUserStorage(host bridge.Host) (UserStorage, error) {
	m, err := NewMap(host)
	if err != nil {
		return UserStorage{}, err
	}
	return UserStorage{m: m}, nil
}

// OpenUserStorage wraps an existing UserStorage id without allocating.
func OpenUserStorage(host bridge.Host, id bridge.CollectionID) UserStorage {
	return UserStorage{m: OpenMap(host, id)}
}

// ID returns the handle's underlying collection id.
func (u UserStorage) ID() bridge.CollectionID { return u.m.ID() }

func keyValue(pubkey [PubKeyLen]byte) codec.Value { return codec.Bytes(pubkey[:]) }

// Insert stores v under pubkey, merging with any previous Mergeable value
// as Map.Insert does.
func (u UserStorage) Insert(pubkey [PubKeyLen]byte, v codec.Value) (codec.Value, bool, error) {
	return u.m.Insert(keyValue(pubkey), v)
}

func (u UserStorage) Get(pubkey [PubKeyLen]byte) (codec.Value, bool, error) {
	return u.m.Get(keyValue(pubkey))
}

func (u UserStorage) Remove(pubkey [PubKeyLen]byte) (codec.Value, bool, error) {
	return u.m.Remove(keyValue(pubkey))
}

func (u UserStorage) Contains(pubkey [PubKeyLen]byte) (bool, error) {
	return u.m.Contains(keyValue(pubkey))
}

// Entries returns every live entry, with keys decoded back to 32-byte
// public keys. A key whose stored bytes are not exactly 32 bytes long is
// impossible absent storage corruption; Entries fails with InvalidArguments
// if it is encountered.
func (u UserStorage) Entries() ([]UserEntry, error) {
	pairs, err := u.m.Entries()
	if err != nil {
		return nil, err
	}
	out := make([]UserEntry, 0, len(pairs))
	for _, p := range pairs {
		if p.Key.Kind != codec.KindBytes || len(p.Key.Bytes) != PubKeyLen {
			return nil, errs.New(errs.InvalidArguments, "user_storage: stored key is not a %d-byte public key", PubKeyLen)
		}
		var pk [PubKeyLen]byte
		copy(pk[:], p.Key.Bytes)
		out = append(out, UserEntry{PubKey: pk, Value: p.Value})
	}
	return out, nil
}

// UserEntry is one entry returned by UserStorage.Entries.
type UserEntry struct {
	PubKey [PubKeyLen]byte
	Value  codec.Value
}
