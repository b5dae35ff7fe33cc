package crdt

import "testing"

func TestHLCCompareOrdersByTimeThenNode(t *testing.T) {
	low := HLC{Time: 1, Node: [16]byte{1}}
	high := HLC{Time: 2, Node: [16]byte{0}}
	if !high.After(low) {
		t.Fatalf("expected later time to win regardless of node")
	}

	a := HLC{Time: 5, Node: [16]byte{1}}
	b := HLC{Time: 5, Node: [16]byte{2}}
	if !b.After(a) {
		t.Fatalf("expected higher node id to break a time tie")
	}
	if a.After(a) {
		t.Fatalf("HLC must not be After itself")
	}
}

func TestHLCZeroIsSmallest(t *testing.T) {
	nonZero := HLC{Time: 1, Node: [16]byte{0}}
	if !nonZero.After(Zero) {
		t.Fatalf("expected any non-zero HLC to be After Zero")
	}
}
