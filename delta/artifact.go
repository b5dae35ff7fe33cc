package delta

import (
	"crypto/sha256"
	"fmt"

	"github.com/calimero-network/core-runtime/codec"
)

// EncodeArtifact serializes actions into the wire format of spec.md §6.2:
//
//	Artifact := u32 action_count, action*
//	Action   := u8 kind_tag, id[32], payload
//	  kind_tag = 1 (Update):    u64 timestamp_le, u32 len, data[len]
//	  kind_tag = 2 (DeleteRef): u64 timestamp_le
func EncodeArtifact(actions []Action) []byte {
	w := &codec.Writer{}
	w.WriteSeqHeader(len(actions))
	for _, a := range actions {
		encodeAction(w, a)
	}
	return w.Bytes()
}

func encodeAction(w *codec.Writer, a Action) {
	w.WriteU8(uint8(a.Kind))
	w.WriteFixed(a.TargetID[:])
	switch a.Kind {
	case ActionUpdate:
		w.WriteU64(a.Timestamp)
		w.WriteBytes(a.Payload)
	case ActionDeleteRef:
		w.WriteU64(a.Timestamp)
	}
}

// DecodeArtifact parses the bytes produced by EncodeArtifact.
func DecodeArtifact(b []byte) ([]Action, error) {
	r := codec.NewReader(b)
	n, err := r.ReadSeqHeader()
	if err != nil {
		return nil, err
	}
	actions := make([]Action, 0, n)
	for i := 0; i < n; i++ {
		tag, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		idBytes, err := r.ReadFixed(32)
		if err != nil {
			return nil, err
		}
		var a Action
		a.Kind = ActionKind(tag)
		copy(a.TargetID[:], idBytes)
		switch a.Kind {
		case ActionUpdate:
			ts, err := r.ReadU64()
			if err != nil {
				return nil, err
			}
			payload, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			a.Timestamp = ts
			a.Payload = payload
		case ActionDeleteRef:
			ts, err := r.ReadU64()
			if err != nil {
				return nil, err
			}
			a.Timestamp = ts
		default:
			return nil, fmt.Errorf("delta: action %d has unknown kind tag %d", i, tag)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// RootHash computes the artifact's content digest (spec.md §9 Open
// Question 1, resolved to SHA-256 in SPEC_FULL.md §9).
func RootHash(artifact []byte) [32]byte {
	return sha256.Sum256(artifact)
}
