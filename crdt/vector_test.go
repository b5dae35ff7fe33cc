package crdt

import (
	"testing"

	"github.com/calimero-network/core-runtime/codec"
)

func TestVectorPushPopGetLen(t *testing.T) {
	host := newTestHost(1)
	v, err := NewVector(host)
	if err != nil {
		t.Fatalf("NewVector: %v", err)
	}

	record(t, host, func() error { return v.Push(codec.U64(1)) })
	record(t, host, func() error { return v.Push(codec.U64(2)) })
	record(t, host, func() error { return v.Push(codec.U64(3)) })

	n, err := v.Len()
	if err != nil || n != 3 {
		t.Fatalf("expected Len=3, got %d err=%v", n, err)
	}
	got, err := v.Get(1)
	if err != nil || got.U64 != 2 {
		t.Fatalf("expected Get(1)=2, got %+v err=%v", got, err)
	}

	var popped codec.Value
	var present bool
	record(t, host, func() error {
		var err error
		popped, present, err = v.Pop()
		return err
	})
	if !present || popped.U64 != 3 {
		t.Fatalf("expected Pop to return 3, got %+v present=%v", popped, present)
	}
	n, _ = v.Len()
	if n != 2 {
		t.Fatalf("expected Len=2 after Pop, got %d", n)
	}
}

func TestVectorPopEmpty(t *testing.T) {
	host := newTestHost(1)
	v, err := NewVector(host)
	if err != nil {
		t.Fatalf("NewVector: %v", err)
	}
	var present bool
	record(t, host, func() error {
		var err error
		_, present, err = v.Pop()
		return err
	})
	if present {
		t.Fatalf("expected Pop on empty vector to report present=false")
	}
}

func TestVectorToSequence(t *testing.T) {
	host := newTestHost(1)
	v, err := NewVector(host)
	if err != nil {
		t.Fatalf("NewVector: %v", err)
	}
	record(t, host, func() error { return v.Push(codec.String("a")) })
	record(t, host, func() error { return v.Push(codec.String("b")) })

	seq, err := v.ToSequence()
	if err != nil {
		t.Fatalf("ToSequence: %v", err)
	}
	if len(seq) != 2 || seq[0].Str != "a" || seq[1].Str != "b" {
		t.Fatalf("expected [a b], got %+v", seq)
	}
}
