package delta

import "github.com/calimero-network/core-runtime/bridge"

// Merge resolves a conflict between the value already stored at a target id
// and the value an incoming action carries for that same id. Callers supply
// their own Merge (runtime wires crdt.DecodeEnvelope/MergeEnvelope/
// EncodeEnvelope together) so this package never needs to import crdt:
// ApplyArtifact only knows about raw bytes and the host's generic storage
// ops, exactly like the rest of C3's relationship to C2.
type Merge func(existing, incoming []byte) ([]byte, error)

// ApplyArtifact reconciles an incoming artifact (received from another
// replica, out of band) against local storage: for every Update action, it
// reads whatever is stored at the target id, merges it against the
// incoming payload via merge, and writes the result back; for every
// DeleteRef action it removes the local entry outright. It returns the
// number of actions applied.
//
// Determinism requires this to reach the same final state regardless of
// application order (spec.md §5 "Ordering across invocations"), which holds
// as long as merge is commutative, associative, and idempotent per entry —
// the contract every crdt Merge* function satisfies.
func ApplyArtifact(host bridge.Host, artifact []byte, merge Merge) (int, error) {
	actions, err := DecodeArtifact(artifact)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, a := range actions {
		switch a.Kind {
		case ActionUpdate:
			existing, found, err := host.StorageRead(a.TargetID[:])
			if err != nil {
				return applied, err
			}
			next := a.Payload
			if found {
				next, err = merge(existing, a.Payload)
				if err != nil {
					return applied, err
				}
			}
			if err := host.StorageWrite(a.TargetID[:], next); err != nil {
				return applied, err
			}
		case ActionDeleteRef:
			if _, err := host.StorageRemove(a.TargetID[:]); err != nil {
				return applied, err
			}
		}
		applied++
	}
	return applied, nil
}
