package hostsim

import (
	"testing"

	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
	"github.com/calimero-network/core-runtime/crdt"
)

func mapEnvelope(t *testing.T, val codec.Value, hlc crdt.HLC, tombstone bool) []byte {
	t.Helper()
	enc, err := crdt.EncodeEnvelope(crdt.EnvMapEntry, crdt.MapEntry{Value: val, HLC: hlc, Tombstone: tombstone})
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	return enc
}

func TestCollectionMapInsertGetRemove(t *testing.T) {
	h := newTestHost()
	id, err := h.NewCollection(bridge.OpMapNew)
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}
	hlc := crdt.HLC{Time: 1, Node: h.executor.NodePrefix()}
	env := mapEnvelope(t, codec.U64(5), hlc, false)

	if _, _, err := h.Collection(bridge.OpMapInsert, id, []byte("k"), env); err != nil {
		t.Fatalf("map_insert: %v", err)
	}
	raw, present, err := h.Collection(bridge.OpMapGet, id, []byte("k"))
	if err != nil || !present {
		t.Fatalf("expected k to be present, err=%v", err)
	}
	entry, ok := decodeMapEntry(raw)
	if !ok || entry.Value.U64 != 5 {
		t.Fatalf("unexpected entry: %+v ok=%v", entry, ok)
	}

	if _, present, _ := h.Collection(bridge.OpMapContains, id, []byte("k")); !present {
		t.Fatalf("expected map_contains to report present")
	}

	prev, present, err := h.Collection(bridge.OpMapRemove, id, []byte("k"))
	if err != nil || !present || prev == nil {
		t.Fatalf("map_remove: prev=%v present=%v err=%v", prev, present, err)
	}
	if _, present, _ := h.Collection(bridge.OpMapGet, id, []byte("k")); present {
		t.Fatalf("expected k absent after map_remove")
	}
}

func TestCollectionMapIterSkipsTombstones(t *testing.T) {
	h := newTestHost()
	id, _ := h.NewCollection(bridge.OpMapNew)
	hlc := crdt.HLC{Time: 1, Node: h.executor.NodePrefix()}
	h.Collection(bridge.OpMapInsert, id, []byte("a"), mapEnvelope(t, codec.U64(1), hlc, false))
	h.Collection(bridge.OpMapInsert, id, []byte("b"), mapEnvelope(t, codec.U64(2), hlc, true))

	raw, ok, err := h.Collection(bridge.OpMapIter, id)
	if err != nil || !ok {
		t.Fatalf("map_iter: ok=%v err=%v", ok, err)
	}
	r := codec.NewReader(raw)
	n, err := r.ReadSeqHeader()
	if err != nil {
		t.Fatalf("ReadSeqHeader: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one live entry (tombstone skipped), got %d", n)
	}
}

func setEnvelope(t *testing.T, added, removed bool, addHLC, removeHLC crdt.HLC) []byte {
	t.Helper()
	enc, err := crdt.EncodeEnvelope(crdt.EnvSetEntry, crdt.SetEntry{Added: added, Removed: removed, AddHLC: addHLC, RemoveHLC: removeHLC})
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	return enc
}

func TestCollectionSetInsertContainsLenClear(t *testing.T) {
	h := newTestHost()
	id, _ := h.NewCollection(bridge.OpSetNew)
	hlc := crdt.HLC{Time: 1, Node: h.executor.NodePrefix()}
	env := setEnvelope(t, true, false, hlc, crdt.HLC{})

	h.Collection(bridge.OpSetInsert, id, []byte("x"), env)
	if _, present, _ := h.Collection(bridge.OpSetContains, id, []byte("x")); !present {
		t.Fatalf("expected x present after set_insert")
	}
	raw, ok, err := h.Collection(bridge.OpSetLen, id)
	if err != nil || !ok {
		t.Fatalf("set_len: %v", err)
	}
	n, err := codec.NewReader(raw).ReadU64()
	if err != nil || n != 1 {
		t.Fatalf("expected set_len=1, got %d err=%v", n, err)
	}

	if _, ok, err := h.Collection(bridge.OpSetClear, id); err != nil || !ok {
		t.Fatalf("set_clear: %v", err)
	}
	if _, present, _ := h.Collection(bridge.OpSetContains, id, []byte("x")); present {
		t.Fatalf("expected x absent after set_clear")
	}
}

func TestCollectionVectorPushPopGet(t *testing.T) {
	h := newTestHost()
	id, _ := h.NewCollection(bridge.OpVectorNew)

	_, ok, err := h.Collection(bridge.OpVectorPush, id, codec.Encode(codec.U64(7)))
	if err != nil || !ok {
		t.Fatalf("vector_push: %v", err)
	}
	raw, ok, err := h.Collection(bridge.OpVectorLen, id)
	if err != nil || !ok {
		t.Fatalf("vector_len: %v", err)
	}
	n, err := codec.NewReader(raw).ReadU64()
	if err != nil || n != 1 {
		t.Fatalf("expected len=1, got %d err=%v", n, err)
	}

	idxBytes := codec.Encode(codec.U64(0))
	got, present, err := h.Collection(bridge.OpVectorGet, id, idxBytes)
	if err != nil || !present {
		t.Fatalf("vector_get: %v", err)
	}
	val, _, _ := codec.Decode(got)
	if val.U64 != 7 {
		t.Fatalf("expected element 7, got %d", val.U64)
	}

	popped, ok, err := h.Collection(bridge.OpVectorPop, id)
	if err != nil || !ok {
		t.Fatalf("vector_pop: %v", err)
	}
	pr := codec.NewReader(popped)
	poppedVal, err := pr.ReadBytes()
	if err != nil {
		t.Fatalf("reading popped value prefix: %v", err)
	}
	decoded, _, err := codec.Decode(poppedVal)
	if err != nil || decoded.U64 != 7 {
		t.Fatalf("expected popped value 7, got %+v err=%v", decoded, err)
	}
}

func TestCollectionLwwSetGetTimestamp(t *testing.T) {
	h := newTestHost()
	id, _ := h.NewCollection(bridge.OpLwwNew)

	hlc1 := crdt.HLC{Time: 1, Node: h.executor.NodePrefix()}
	env1, err := crdt.EncodeEnvelope(crdt.EnvLwwEntry, crdt.LwwEntry{Value: codec.String("a"), HLC: hlc1, Present: true})
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	if _, _, err := h.Collection(bridge.OpLwwSet, id, env1); err != nil {
		t.Fatalf("lww_set: %v", err)
	}

	raw, present, err := h.Collection(bridge.OpLwwGet, id)
	if err != nil || !present {
		t.Fatalf("lww_get: present=%v err=%v", present, err)
	}
	v, _, _ := codec.Decode(raw)
	if v.Str != "a" {
		t.Fatalf("expected 'a', got %q", v.Str)
	}

	ts, present, err := h.Collection(bridge.OpLwwTimestamp, id)
	if err != nil || !present {
		t.Fatalf("lww_timestamp: present=%v err=%v", present, err)
	}
	r := codec.NewReader(ts)
	tm, err := r.ReadU64()
	if err != nil || tm != 1 {
		t.Fatalf("expected timestamp 1, got %d err=%v", tm, err)
	}
}

func TestCollectionCounterIncrementValueExecutorCount(t *testing.T) {
	h := newTestHost()
	id, err := h.NewCollection(bridge.OpCounterNew)
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}

	raw, ok, err := h.Collection(bridge.OpCounterIncrement, id)
	if err != nil || !ok {
		t.Fatalf("counter_increment: %v", err)
	}
	v, err := codec.NewReader(raw).ReadU64()
	if err != nil || v != 1 {
		t.Fatalf("expected 1 after first increment, got %d err=%v", v, err)
	}

	raw, _, _ = h.Collection(bridge.OpCounterIncrement, id, codec.Encode(codec.U64(4)))
	v, err = codec.NewReader(raw).ReadU64()
	if err != nil || v != 5 {
		t.Fatalf("expected 5 after incrementing by 4 more, got %d err=%v", v, err)
	}

	total, _, _ := h.Collection(bridge.OpCounterValue, id)
	tv, err := codec.NewReader(total).ReadU64()
	if err != nil || tv != 5 {
		t.Fatalf("expected total value 5, got %d err=%v", tv, err)
	}

	execBytes := h.executor
	got, _, _ := h.Collection(bridge.OpCounterExecutorCount, id, execBytes[:])
	gv, err := codec.NewReader(got).ReadU64()
	if err != nil || gv != 5 {
		t.Fatalf("expected this executor's bucket to be 5, got %d err=%v", gv, err)
	}
}
