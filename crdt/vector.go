package crdt

import (
	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
	"github.com/calimero-network/core-runtime/delta"
	"github.com/calimero-network/core-runtime/errs"
)

// Vector is a handle over a host-side ordered, append-mostly sequence (spec
// §4.2 "Vector"). There is no insert-at-index or remove-at-index: the only
// edit idiom is read-all, build a fresh vector, atomic replace via an
// LwwRegister (spec §8 scenario S4).
type Vector struct {
	host bridge.Host
	id   bridge.CollectionID
}

// NewVector creates an empty vector with a fresh id.
func NewVector(host bridge.Host) (Vector, error) {
	id, err := host.NewCollection(bridge.OpVectorNew)
	if err != nil {
		return Vector{}, err
	}
	return Vector{host: host, id: id}, nil
}

// OpenVector wraps an existing vector id without allocating.
func OpenVector(host bridge.Host, id bridge.CollectionID) Vector { return Vector{host: host, id: id} }

// ID returns the handle's underlying collection id.
func (v Vector) ID() bridge.CollectionID { return v.id }

// Push appends x. The vector merges whole-value on conflict (spec §8
// scenario S4), so every mutation records the complete re-encoded snapshot
// rather than just the appended element.
func (v Vector) Push(x codec.Value) error {
	enc, _, err := v.host.Collection(bridge.OpVectorPush, v.id, codec.Encode(x))
	if err != nil {
		return err
	}
	MarkDirty(v.id)
	target := delta.TargetID([32]byte(v.id), nil)
	return delta.Record(v.host, delta.ActionUpdate, target, enc)
}

// Get returns the element at index i, failing with OutOfBounds when
// i >= len(v).
func (v Vector) Get(i int) (codec.Value, error) {
	if i < 0 {
		return codec.Value{}, errs.New(errs.OutOfBounds, "vector: negative index %d", i)
	}
	idx := codec.U64(uint64(i))
	raw, present, err := v.host.Collection(bridge.OpVectorGet, v.id, codec.Encode(idx))
	if err != nil {
		return codec.Value{}, err
	}
	if !present {
		return codec.Value{}, errs.New(errs.OutOfBounds, "vector: index %d out of bounds", i)
	}
	val, _, err := codec.Decode(raw)
	if err != nil {
		return codec.Value{}, errs.Wrap(errs.Deserialization, err, "vector: corrupt element")
	}
	return val, nil
}

// Pop removes and returns the last element, if any. The wire payload bundles
// the popped value with the updated snapshot envelope (see hostsim's
// vectorPop) so the handle can both return the value and record the
// mutation in one round trip.
func (v Vector) Pop() (codec.Value, bool, error) {
	raw, present, err := v.host.Collection(bridge.OpVectorPop, v.id)
	if err != nil || !present {
		return codec.Value{}, false, err
	}
	r := codec.NewReader(raw)
	valBytes, err := r.ReadBytes()
	if err != nil {
		return codec.Value{}, false, errs.Wrap(errs.Deserialization, err, "vector: corrupt pop frame")
	}
	snapBytes, err := r.ReadBytes()
	if err != nil {
		return codec.Value{}, false, errs.Wrap(errs.Deserialization, err, "vector: corrupt pop frame")
	}
	val, _, err := codec.Decode(valBytes)
	if err != nil {
		return codec.Value{}, false, errs.Wrap(errs.Deserialization, err, "vector: corrupt element")
	}
	MarkDirty(v.id)
	target := delta.TargetID([32]byte(v.id), nil)
	if err := delta.Record(v.host, delta.ActionUpdate, target, snapBytes); err != nil {
		return codec.Value{}, false, err
	}
	return val, true, nil
}

// Len returns the current length.
func (v Vector) Len() (int, error) {
	raw, _, err := v.host.Collection(bridge.OpVectorLen, v.id)
	if err != nil {
		return 0, err
	}
	r := codec.NewReader(raw)
	n, err := r.ReadU64()
	return int(n), err
}

// ToSequence reads every element in order.
func (v Vector) ToSequence() ([]codec.Value, error) {
	n, err := v.Len()
	if err != nil {
		return nil, err
	}
	out := make([]codec.Value, 0, n)
	for i := 0; i < n; i++ {
		val, err := v.Get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}
