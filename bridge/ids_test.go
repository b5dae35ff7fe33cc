package bridge

import (
	"testing"

	"github.com/calimero-network/core-runtime/errs"
)

func TestCollectionIDStringAndParseRoundTrip(t *testing.T) {
	var id CollectionID
	id[0] = 0xAB
	id[31] = 0xCD
	s := id.String()

	got, err := ParseCollectionID(s)
	if err != nil {
		t.Fatalf("ParseCollectionID: %v", err)
	}
	if got != id {
		t.Fatalf("expected round trip to preserve the id, got %x want %x", got, id)
	}
}

func TestParseCollectionIDRejectsWrongLength(t *testing.T) {
	_, err := ParseCollectionID("ab")
	if !errs.Is(err, errs.InvalidID) {
		t.Fatalf("expected errs.InvalidID, got %v", err)
	}
}

func TestParseCollectionIDRejectsNonHex(t *testing.T) {
	bad := make([]byte, idLen*2)
	for i := range bad {
		bad[i] = 'z'
	}
	_, err := ParseCollectionID(string(bad))
	if !errs.Is(err, errs.InvalidID) {
		t.Fatalf("expected errs.InvalidID for malformed hex, got %v", err)
	}
}

func TestIsZero(t *testing.T) {
	var zero CollectionID
	if !zero.IsZero() {
		t.Fatalf("expected the zero value to report IsZero")
	}
	zero[5] = 1
	if zero.IsZero() {
		t.Fatalf("expected a non-zero id to report !IsZero")
	}
}

func TestNodePrefixTakesFirst16Bytes(t *testing.T) {
	var exec ExecutorID
	for i := 0; i < 16; i++ {
		exec[i] = byte(i + 1)
	}
	prefix := exec.NodePrefix()
	for i := 0; i < 16; i++ {
		if prefix[i] != byte(i+1) {
			t.Fatalf("prefix[%d] = %d, want %d", i, prefix[i], i+1)
		}
	}
}

func TestParseExecutorIDMirrorsCollectionID(t *testing.T) {
	var id ExecutorID
	id[3] = 0x7F
	got, err := ParseExecutorID(id.String())
	if err != nil || got != id {
		t.Fatalf("expected round trip, got %x err=%v", got, err)
	}
}
