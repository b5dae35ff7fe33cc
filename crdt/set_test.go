package crdt

import (
	"testing"

	"github.com/calimero-network/core-runtime/codec"
)

func TestSetAddRemoveContains(t *testing.T) {
	host := newTestHost(1)
	s, err := NewSet(host)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}

	record(t, host, func() error {
		inserted, err := s.Add(codec.String("x"))
		if !inserted {
			t.Fatalf("expected first Add to report inserted=true")
		}
		return err
	})
	if present, _ := s.Contains(codec.String("x")); !present {
		t.Fatalf("expected x present after Add")
	}

	record(t, host, func() error {
		inserted, err := s.Add(codec.String("x"))
		if inserted {
			t.Fatalf("expected re-Add of existing member to report inserted=false")
		}
		return err
	})

	record(t, host, func() error {
		removed, err := s.Remove(codec.String("x"))
		if !removed {
			t.Fatalf("expected Remove of a member to report removed=true")
		}
		return err
	})
	if present, _ := s.Contains(codec.String("x")); present {
		t.Fatalf("expected x absent after Remove")
	}
}

func TestSetLenAndEntries(t *testing.T) {
	host := newTestHost(1)
	s, err := NewSet(host)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	record(t, host, func() error { _, err := s.Add(codec.String("a")); return err })
	record(t, host, func() error { _, err := s.Add(codec.String("b")); return err })
	record(t, host, func() error { _, err := s.Remove(codec.String("a")); return err })

	n, err := s.Len()
	if err != nil || n != 1 {
		t.Fatalf("expected Len=1, got %d err=%v", n, err)
	}
	entries, err := s.Entries()
	if err != nil || len(entries) != 1 || entries[0].Str != "b" {
		t.Fatalf("expected only 'b' live, got %+v err=%v", entries, err)
	}
}

func TestSetReAddAfterRemove(t *testing.T) {
	host := newTestHost(1)
	s, err := NewSet(host)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	record(t, host, func() error { _, err := s.Add(codec.String("x")); return err })
	record(t, host, func() error { _, err := s.Remove(codec.String("x")); return err })
	record(t, host, func() error {
		inserted, err := s.Add(codec.String("x"))
		if !inserted {
			t.Fatalf("expected re-Add after Remove to report inserted=true")
		}
		return err
	})
	if present, _ := s.Contains(codec.String("x")); !present {
		t.Fatalf("expected x present after re-Add")
	}
}
