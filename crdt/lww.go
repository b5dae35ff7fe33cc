package crdt

import (
	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
	"github.com/calimero-network/core-runtime/delta"
	"github.com/calimero-network/core-runtime/errs"
)

// LwwRegister is a handle over a host-side optional value stamped with an
// HLC (spec §4.2 "LwwRegister<T>"). Writes on the local replica overwrite
// unconditionally; across replicas, merge takes the value with the greater
// HLC (MergeLwwEntry).
type LwwRegister struct {
	host bridge.Host
	id   bridge.CollectionID
}

// NewLwwRegister creates a register with a fresh id. When initial is the
// zero Value (Kind == codec.KindNull) the register starts cleared,
// mirroring the constructor's None-as-distinct-from-absent rule; any other
// initial value is set immediately.
func NewLwwRegister(host bridge.Host, initial codec.Value) (LwwRegister, error) {
	id, err := host.NewCollection(bridge.OpLwwNew)
	if err != nil {
		return LwwRegister{}, err
	}
	reg := LwwRegister{host: host, id: id}
	if initial.Kind == codec.KindNull {
		return reg, nil
	}
	return reg, reg.Set(initial)
}

// OpenLwwRegister wraps an existing register id without allocating.
func OpenLwwRegister(host bridge.Host, id bridge.CollectionID) LwwRegister {
	return LwwRegister{host: host, id: id}
}

// ID returns the handle's underlying collection id.
func (l LwwRegister) ID() bridge.CollectionID { return l.id }

// current reassembles the stored entry from the register's two read ops,
// since hostsim's OpLwwGet returns only the value. Absent registers decode
// to the zero LwwEntry (Present: false).
func (l LwwRegister) current() (LwwEntry, error) {
	val, present, err := l.Get()
	if err != nil {
		return LwwEntry{}, err
	}
	if !present {
		return LwwEntry{}, nil
	}
	hlc, _, err := l.Timestamp()
	if err != nil {
		return LwwEntry{}, err
	}
	return LwwEntry{Value: val, HLC: hlc, Present: true}, nil
}

// Set writes (v, HLC_now), merged against whatever is already stored so a
// write competing with a remote one that already landed resolves by HLC
// rather than overwriting it outright.
func (l LwwRegister) Set(v codec.Value) error {
	existing, err := l.current()
	if err != nil {
		return err
	}
	merged := MergeLwwEntry(existing, LwwEntry{Value: v, HLC: Now(l.host), Present: true})
	enc, err := EncodeEnvelope(EnvLwwEntry, merged)
	if err != nil {
		return err
	}
	if _, _, err := l.host.Collection(bridge.OpLwwSet, l.id, enc); err != nil {
		return err
	}
	MarkDirty(l.id)
	if v.Kind == codec.KindCollectionRef {
		Track(l.id, "", bridge.CollectionID(v.RefID))
	}
	target := delta.TargetID([32]byte(l.id), nil)
	return delta.Record(l.host, delta.ActionUpdate, target, enc)
}

// Clear empties the register, stamping the clear with the current HLC so it
// can still outrace or lose to a concurrent remote set on merge.
func (l LwwRegister) Clear() error {
	existing, err := l.current()
	if err != nil {
		return err
	}
	merged := MergeLwwEntry(existing, LwwEntry{HLC: Now(l.host), Present: false})
	enc, err := EncodeEnvelope(EnvLwwEntry, merged)
	if err != nil {
		return err
	}
	if _, _, err := l.host.Collection(bridge.OpLwwSet, l.id, enc); err != nil {
		return err
	}
	MarkDirty(l.id)
	target := delta.TargetID([32]byte(l.id), nil)
	return delta.Record(l.host, delta.ActionUpdate, target, enc)
}

// Get returns the stored value, if present.
func (l LwwRegister) Get() (codec.Value, bool, error) {
	raw, present, err := l.host.Collection(bridge.OpLwwGet, l.id)
	if err != nil || !present {
		return codec.Value{}, false, err
	}
	v, _, err := codec.Decode(raw)
	if err != nil {
		return codec.Value{}, false, errs.Wrap(errs.Deserialization, err, "lww: corrupt value")
	}
	return v, true, nil
}

// Timestamp returns the HLC of the last write, if any.
func (l LwwRegister) Timestamp() (HLC, bool, error) {
	raw, present, err := l.host.Collection(bridge.OpLwwTimestamp, l.id)
	if err != nil || !present {
		return HLC{}, false, err
	}
	r := codec.NewReader(raw)
	h, err := decodeHLC(r)
	if err != nil {
		return HLC{}, false, errs.Wrap(errs.Deserialization, err, "lww: corrupt timestamp")
	}
	return h, true, nil
}
