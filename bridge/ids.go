// Package bridge is the typed wrapper over the raw host ABI: storage
// read/write/remove, time, executor and context identity, registers,
// commit, and the per-collection opcodes. Everything above this package
// reaches the host only through the Host interface defined here.
package bridge

import (
	"encoding/hex"

	"github.com/calimero-network/core-runtime/errs"
)

const idLen = 32

// CollectionID is an opaque 32-byte collection identifier, generated by the
// host when a collection is first created.
type CollectionID [idLen]byte

// ContextID identifies the replicated state group an invocation belongs to.
type ContextID [idLen]byte

// ExecutorID is the identity of the caller of the current invocation.
type ExecutorID [idLen]byte

// BlobID is a content identifier for out-of-band binary data.
type BlobID [idLen]byte

// ZeroCollectionID is the sentinel value for an unset collection handle.
// Declared at package level so callers can compare against a single value
// rather than constructing a zero literal everywhere.
var ZeroCollectionID = CollectionID{}

func (id CollectionID) String() string { return hex.EncodeToString(id[:]) }
func (id ContextID) String() string    { return hex.EncodeToString(id[:]) }
func (id ExecutorID) String() string   { return hex.EncodeToString(id[:]) }
func (id BlobID) String() string       { return hex.EncodeToString(id[:]) }

// IsZero reports whether id is the all-zero sentinel.
func (id CollectionID) IsZero() bool { return id == ZeroCollectionID }

// ParseCollectionID parses a 64-character lowercase-hex string into a
// CollectionID. It fails with an errs.InvalidID error when the string is
// not exactly 32 bytes of hex.
func ParseCollectionID(s string) (CollectionID, error) {
	var id CollectionID
	if len(s) != idLen*2 {
		return id, errs.New(errs.InvalidID, "want %d hex chars, got %d", idLen*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, errs.Wrap(errs.InvalidID, err, "not valid hex")
	}
	copy(id[:], b)
	return id, nil
}

// ParseExecutorID mirrors ParseCollectionID for executor identities.
func ParseExecutorID(s string) (ExecutorID, error) {
	id, err := ParseCollectionID(s)
	return ExecutorID(id), err
}

// NodePrefix returns the 16-byte prefix of the executor id used as the HLC
// tie-break node component (spec §3 Hybrid Logical Clock).
func (id ExecutorID) NodePrefix() [16]byte {
	var p [16]byte
	copy(p[:], id[:16])
	return p
}

