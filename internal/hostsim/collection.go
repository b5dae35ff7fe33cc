package hostsim

import (
	"fmt"

	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
	"github.com/calimero-network/core-runtime/crdt"
	"github.com/calimero-network/core-runtime/delta"
)

// Collection dispatches every per-collection opcode. Map, Set, Vector, and
// Lww entries are stored and returned as opaque envelope bytes produced by
// crdt.EncodeEnvelope. Map and Set handles pass already-merged envelopes
// down here; vector_push takes a plain element and builds the snapshot
// envelope itself, and lww_set merges the incoming envelope against the
// stored one. Counters keep their buckets in h.counters (see counterOp).
//
// Every other point-addressed read or write (a map key, a set element, or
// the single whole-value slot a Vector/Lww collection occupies) goes
// through h.kv keyed by delta.TargetID(id, position) rather than a
// private per-collection map. That is the same keyspace delta.ApplyArtifact
// merges incoming artifacts into, so a value written by one replica and
// exchanged to another is visible the moment the receiving side asks for
// that same position again, without either side needing to know anything
// about its peer's storage layout. Only full enumeration (Iter/Len) falls
// back to a locally-known key set, since the content-addressed target id is
// one-way and can't be inverted to discover a key neither replica already
// had reason to ask about.
func (h *Host) Collection(op bridge.Op, id bridge.CollectionID, args ...[]byte) ([]byte, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.collections[id]
	if !ok {
		if _, isCounter := h.counters[id]; isCounter {
			return h.counterOp(id, op, args)
		}
		return nil, false, fmt.Errorf("hostsim: unknown collection %s", id)
	}

	switch op {
	case bridge.OpMapGet:
		return h.mapRead(id, args[0])
	case bridge.OpMapInsert:
		return h.mapWrite(c, id, args[0], args[1])
	case bridge.OpMapRemove:
		prev, present := h.kvGet(id, args[0])
		h.kvDelete(id, args[0])
		delete(c.entries, string(args[0]))
		return prev, present, nil
	case bridge.OpMapContains:
		return nil, h.mapPresent(id, args[0]), nil
	case bridge.OpMapIter:
		return h.encodeMapIter(c, id), true, nil

	case bridge.OpSetInsert:
		prev, _ := h.kvGet(id, args[0])
		c.entries[string(args[0])] = struct{}{}
		h.kvPut(id, args[0], args[1])
		return prev, prev != nil, nil
	case bridge.OpSetRemove:
		prev, _ := h.kvGet(id, args[0])
		c.entries[string(args[0])] = struct{}{}
		h.kvPut(id, args[0], args[1])
		return prev, prev != nil, nil
	case bridge.OpSetContains:
		raw, _ := h.kvGet(id, args[0])
		return raw, setPresent(raw), nil
	case bridge.OpSetLen:
		n := 0
		for k := range c.entries {
			if raw, ok := h.kvGet(id, []byte(k)); ok && setPresent(raw) {
				n++
			}
		}
		return encodeU64(uint64(n)), true, nil
	case bridge.OpSetIter:
		return h.encodeSetIter(c, id), true, nil
	case bridge.OpSetClear:
		for k := range c.entries {
			h.kvDelete(id, []byte(k))
		}
		c.entries = make(map[string]struct{})
		return nil, true, nil

	case bridge.OpVectorPush:
		return h.vectorPush(id, args[0])
	case bridge.OpVectorPop:
		return h.vectorPop(id)
	case bridge.OpVectorGet:
		return h.vectorGet(id, args[0])
	case bridge.OpVectorLen:
		snap := h.vectorSnapshot(id)
		return encodeU64(uint64(len(snap.Values))), true, nil

	case bridge.OpLwwSet:
		return h.lwwSet(id, args[0])
	case bridge.OpLwwGet:
		return h.lwwGet(id)
	case bridge.OpLwwTimestamp:
		return h.lwwTimestamp(id)

	default:
		return nil, false, fmt.Errorf("hostsim: %s not valid for collection kind %d", op.Name(), c.kind)
	}
}

func encodeU64(v uint64) []byte {
	w := &codec.Writer{}
	w.WriteU64(v)
	return w.Bytes()
}

// kvTarget is the content-addressed key one entry of a collection lives
// under, shared with delta.ApplyArtifact's merge target.
func (h *Host) kvTarget(id bridge.CollectionID, position []byte) string {
	t := delta.TargetID([32]byte(id), position)
	return string(t[:])
}

func (h *Host) kvGet(id bridge.CollectionID, position []byte) ([]byte, bool) {
	v, ok := h.kv[h.kvTarget(id, position)]
	return v, ok
}

func (h *Host) kvPut(id bridge.CollectionID, position []byte, value []byte) {
	h.kv[h.kvTarget(id, position)] = append([]byte{}, value...)
}

func (h *Host) kvDelete(id bridge.CollectionID, position []byte) {
	delete(h.kv, h.kvTarget(id, position))
}

// --- Map -------------------------------------------------------------------

func decodeMapEntry(raw []byte) (crdt.MapEntry, bool) {
	kind, v, err := crdt.DecodeEnvelope(raw)
	if err != nil || kind != crdt.EnvMapEntry {
		return crdt.MapEntry{}, false
	}
	return v.(crdt.MapEntry), true
}

func (h *Host) mapRead(id bridge.CollectionID, key []byte) ([]byte, bool, error) {
	raw, ok := h.kvGet(id, key)
	if !ok {
		return nil, false, nil
	}
	entry, ok := decodeMapEntry(raw)
	if !ok || entry.Tombstone {
		return nil, false, nil
	}
	return raw, true, nil
}

func (h *Host) mapPresent(id bridge.CollectionID, key []byte) bool {
	_, present, _ := h.mapRead(id, key)
	return present
}

func (h *Host) mapWrite(c *collection, id bridge.CollectionID, key, envelope []byte) ([]byte, bool, error) {
	prev, existed, _ := h.mapRead(id, key)
	c.entries[string(key)] = struct{}{}
	h.kvPut(id, key, envelope)
	return prev, existed, nil
}

func (h *Host) encodeMapIter(c *collection, id bridge.CollectionID) []byte {
	w := &codec.Writer{}
	type pair struct {
		key []byte
		val []byte
	}
	var live []pair
	for k := range c.entries {
		raw, ok := h.kvGet(id, []byte(k))
		if !ok {
			continue
		}
		entry, ok := decodeMapEntry(raw)
		if !ok || entry.Tombstone {
			continue
		}
		live = append(live, pair{key: []byte(k), val: raw})
	}
	w.WriteSeqHeader(len(live))
	for _, p := range live {
		w.WriteBytes(p.key)
		w.WriteBytes(p.val)
	}
	return w.Bytes()
}

// --- Set ---------------------------------------------------------------------

func setPresent(raw []byte) bool {
	if raw == nil {
		return false
	}
	kind, v, err := crdt.DecodeEnvelope(raw)
	if err != nil || kind != crdt.EnvSetEntry {
		return false
	}
	return v.(crdt.SetEntry).Present()
}

func (h *Host) encodeSetIter(c *collection, id bridge.CollectionID) []byte {
	w := &codec.Writer{}
	type elem struct {
		key []byte
		val []byte
	}
	var live []elem
	for k := range c.entries {
		raw, ok := h.kvGet(id, []byte(k))
		if ok && setPresent(raw) {
			live = append(live, elem{key: []byte(k), val: raw})
		}
	}
	w.WriteSeqHeader(len(live))
	for _, e := range live {
		w.WriteBytes(e.key)
		w.WriteBytes(e.val)
	}
	return w.Bytes()
}

// --- Vector --------------------------------------------------------------------

// vectorPosition is the position a Vector's single whole-value slot is
// addressed under. It must be nil: crdt.Vector records its delta target as
// delta.TargetID(id, nil) (see crdt/vector.go Push/Pop), and a local write
// has to land under that same target id or a merged artifact from a peer
// replica would write to a key no read here ever looks up.
var vectorPosition []byte

func (h *Host) vectorSnapshot(id bridge.CollectionID) crdt.VectorSnapshot {
	raw, ok := h.kvGet(id, vectorPosition)
	if !ok {
		return crdt.VectorSnapshot{}
	}
	kind, v, err := crdt.DecodeEnvelope(raw)
	if err != nil || kind != crdt.EnvVectorSnapshot {
		return crdt.VectorSnapshot{}
	}
	return v.(crdt.VectorSnapshot)
}

// vectorPush decodes args[0] as a self-describing codec.Value, appends it to
// the stored snapshot, stamps a fresh HLC from this host's own clock, and
// re-encodes. The handle layer never sees the snapshot directly; it only
// ever sends one element at a time, matching the dedicated vector_push
// opcode's argument shape.
func (h *Host) vectorPush(id bridge.CollectionID, elemBytes []byte) ([]byte, bool, error) {
	val, _, err := codec.Decode(elemBytes)
	if err != nil {
		return nil, false, err
	}
	snap := h.vectorSnapshot(id)
	snap.Values = append(snap.Values, val)
	h.clock++
	snap.HLC = crdt.HLC{Time: h.clock, Node: h.executor.NodePrefix()}
	enc, err := crdt.EncodeEnvelope(crdt.EnvVectorSnapshot, snap)
	if err != nil {
		return nil, false, err
	}
	h.kvPut(id, vectorPosition, enc)
	// Payload is the re-encoded snapshot envelope, not just the new length:
	// the vector handle needs it verbatim to record the mutation with the
	// delta recorder without a second round trip.
	return enc, true, nil
}

func (h *Host) vectorPop(id bridge.CollectionID) ([]byte, bool, error) {
	snap := h.vectorSnapshot(id)
	if len(snap.Values) == 0 {
		return nil, false, nil
	}
	last := snap.Values[len(snap.Values)-1]
	snap.Values = snap.Values[:len(snap.Values)-1]
	h.clock++
	snap.HLC = crdt.HLC{Time: h.clock, Node: h.executor.NodePrefix()}
	enc, err := crdt.EncodeEnvelope(crdt.EnvVectorSnapshot, snap)
	if err != nil {
		return nil, false, err
	}
	h.kvPut(id, vectorPosition, enc)
	// Payload bundles the popped value and the re-encoded snapshot so the
	// vector handle can both return the value and record the mutation.
	w := &codec.Writer{}
	w.WriteBytes(codec.Encode(last))
	w.WriteBytes(enc)
	return w.Bytes(), true, nil
}

func (h *Host) vectorGet(id bridge.CollectionID, idxBytes []byte) ([]byte, bool, error) {
	idxVal, _, err := codec.Decode(idxBytes)
	if err != nil {
		return nil, false, err
	}
	idx := int(idxVal.U64)
	snap := h.vectorSnapshot(id)
	if idx < 0 || idx >= len(snap.Values) {
		return nil, false, nil
	}
	return codec.Encode(snap.Values[idx]), true, nil
}

// --- Lww -----------------------------------------------------------------------

// lwwPosition must be nil for the same reason as vectorPosition: it has to
// match delta.TargetID(id, nil), the target crdt.LwwRegister records its
// writes under (see crdt/lww.go Set/Clear).
var lwwPosition []byte

func (h *Host) lwwEntry(id bridge.CollectionID) (crdt.LwwEntry, bool) {
	raw, ok := h.kvGet(id, lwwPosition)
	if !ok {
		return crdt.LwwEntry{}, false
	}
	kind, v, err := crdt.DecodeEnvelope(raw)
	if err != nil || kind != crdt.EnvLwwEntry {
		return crdt.LwwEntry{}, false
	}
	return v.(crdt.LwwEntry), true
}

// lwwSet merges the incoming HLC-stamped envelope (built by the handle via
// crdt.Now) against whatever is stored, so two sets issued with the same
// local clock value still resolve deterministically.
func (h *Host) lwwSet(id bridge.CollectionID, envelope []byte) ([]byte, bool, error) {
	kind, incomingAny, err := crdt.DecodeEnvelope(envelope)
	if err != nil || kind != crdt.EnvLwwEntry {
		return nil, false, fmt.Errorf("hostsim: lww_set expects an EnvLwwEntry envelope")
	}
	incoming := incomingAny.(crdt.LwwEntry)
	existing, hadExisting := h.lwwEntry(id)
	merged := incoming
	if hadExisting {
		merged = crdt.MergeLwwEntry(existing, incoming)
	}
	enc, err := crdt.EncodeEnvelope(crdt.EnvLwwEntry, merged)
	if err != nil {
		return nil, false, err
	}
	h.kvPut(id, lwwPosition, enc)
	if hadExisting && existing.Present {
		return codec.Encode(existing.Value), true, nil
	}
	return nil, false, nil
}

func (h *Host) lwwGet(id bridge.CollectionID) ([]byte, bool, error) {
	entry, ok := h.lwwEntry(id)
	if !ok || !entry.Present {
		return nil, false, nil
	}
	return codec.Encode(entry.Value), true, nil
}

func (h *Host) lwwTimestamp(id bridge.CollectionID) ([]byte, bool, error) {
	entry, ok := h.lwwEntry(id)
	if !ok {
		return nil, false, nil
	}
	w := &codec.Writer{}
	w.WriteU64(entry.HLC.Time)
	w.WriteBytes(entry.HLC.Node[:])
	return w.Bytes(), true, nil
}

// --- Counter -------------------------------------------------------------------

func (h *Host) counterOp(id bridge.CollectionID, op bridge.Op, args [][]byte) ([]byte, bool, error) {
	buckets := h.counters[id]
	switch op {
	case bridge.OpCounterIncrement:
		amount := uint64(1)
		if len(args) > 0 {
			v, _, err := codec.Decode(args[0])
			if err == nil {
				amount = v.U64
			}
		}
		buckets[h.executor] += amount
		return encodeU64(buckets[h.executor]), true, nil
	case bridge.OpCounterValue:
		var total uint64
		for _, v := range buckets {
			total += v
		}
		return encodeU64(total), true, nil
	case bridge.OpCounterExecutorCount:
		var executor bridge.ExecutorID
		if len(args) > 0 && len(args[0]) == len(executor) {
			copy(executor[:], args[0])
		} else {
			executor = h.executor
		}
		return encodeU64(buckets[executor]), true, nil
	default:
		return nil, false, fmt.Errorf("hostsim: %s not valid for a counter", op.Name())
	}
}
