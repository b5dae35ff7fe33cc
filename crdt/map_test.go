package crdt

import (
	"testing"

	"github.com/calimero-network/core-runtime/codec"
)

func TestMapInsertGetRemove(t *testing.T) {
	host := newTestHost(1)
	m, err := NewMap(host)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}

	record(t, host, func() error {
		_, existed, err := m.Insert(codec.String("k"), codec.U64(1))
		if existed {
			t.Fatalf("expected no previous entry on first insert")
		}
		return err
	})

	val, present, err := m.Get(codec.String("k"))
	if err != nil || !present || val.U64 != 1 {
		t.Fatalf("Get after insert: val=%+v present=%v err=%v", val, present, err)
	}

	record(t, host, func() error {
		prev, existed, err := m.Insert(codec.String("k"), codec.U64(2))
		if !existed || prev.U64 != 1 {
			t.Fatalf("expected previous value 1 on overwrite, got %+v existed=%v", prev, existed)
		}
		return err
	})

	val, _, _ = m.Get(codec.String("k"))
	if val.U64 != 2 {
		t.Fatalf("expected updated value 2, got %d", val.U64)
	}

	record(t, host, func() error {
		prev, found, err := m.Remove(codec.String("k"))
		if !found || prev.U64 != 2 {
			t.Fatalf("expected remove to report previous value 2, got %+v found=%v", prev, found)
		}
		return err
	})

	if _, present, _ := m.Get(codec.String("k")); present {
		t.Fatalf("expected key absent after remove")
	}
	if present, _ := m.Contains(codec.String("k")); present {
		t.Fatalf("Contains should be false after remove")
	}
}

func TestMapEntriesSkipsTombstones(t *testing.T) {
	host := newTestHost(1)
	m, err := NewMap(host)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	record(t, host, func() error { _, _, err := m.Insert(codec.String("a"), codec.U64(1)); return err })
	record(t, host, func() error { _, _, err := m.Insert(codec.String("b"), codec.U64(2)); return err })
	record(t, host, func() error { _, _, err := m.Remove(codec.String("a")); return err })

	entries, err := m.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Key.Str != "b" {
		t.Fatalf("expected only entry 'b' to remain live, got %+v", entries)
	}
}

func TestMapZeroHandleRejected(t *testing.T) {
	host := newTestHost(1)
	var zero Map
	record(t, host, func() error {
		_, _, err := zero.Insert(codec.String("x"), codec.U64(1))
		if err == nil {
			t.Fatalf("expected error inserting through a zero-value handle")
		}
		return nil
	})
}
