// Package delta implements the Delta Recorder (C3): it accumulates
// mutation records for the current invocation, computes a root hash,
// serializes the artifact in the fixed binary format of spec.md §6.2, and
// submits it to the host on commit. It also tracks enough information for
// an incoming artifact to be merged back into local storage
// (ApplyArtifact), the cross-replica half of the same contract.
package delta

import "crypto/sha256"

// ActionKind distinguishes the two action shapes spec.md §4.3 defines.
type ActionKind uint8

const (
	// ActionUpdate records a new serialized value at a target id.
	ActionUpdate ActionKind = 1
	// ActionDeleteRef records the removal of whatever lives at a target id.
	ActionDeleteRef ActionKind = 2
)

// Action is one recorded mutation (spec.md §4.3 "Action record").
type Action struct {
	Kind      ActionKind
	TargetID  [32]byte
	Payload   []byte // only meaningful for ActionUpdate
	Timestamp uint64
}

// TargetID derives the context-addressed 32-byte id for one entry of a
// collection: the digest of the owning collection's id and the entry's
// position (a map key, a fixed sentinel for whole-value collections, or an
// executor id for a counter bucket). Two replicas deriving a target id for
// the same (collection, position) pair always agree, which is what lets
// ApplyArtifact reconcile artifacts from independently-executing replicas.
func TargetID(collection [32]byte, position []byte) [32]byte {
	h := sha256.New()
	h.Write(collection[:])
	h.Write(position)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
