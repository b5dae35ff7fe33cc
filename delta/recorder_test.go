package delta

import (
	"testing"

	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/internal/hostsim"
)

func newTestHost() *hostsim.Host {
	var exec bridge.ExecutorID
	exec[0] = 0x01
	return hostsim.New(exec, bridge.ContextID{0x02}, nil)
}

func TestRecorderStartRecordCommit(t *testing.T) {
	Abort() // ensure clean Idle state regardless of test order
	host := newTestHost()

	if err := Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if Pending() != 0 {
		t.Fatalf("expected 0 pending actions right after Start")
	}
	var target [32]byte
	target[0] = 0xAA
	if err := Record(host, ActionUpdate, target, []byte("payload")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if Pending() != 1 {
		t.Fatalf("expected 1 pending action, got %d", Pending())
	}
	committed, err := Commit(host)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !committed {
		t.Fatalf("expected Commit to report true when actions were recorded")
	}
	if len(host.Commits()) != 1 {
		t.Fatalf("expected exactly one host.Commit call, got %d", len(host.Commits()))
	}
}

func TestCommitWithNoActionsIsNoop(t *testing.T) {
	Abort()
	host := newTestHost()
	if err := Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	committed, err := Commit(host)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if committed {
		t.Fatalf("expected Commit to report false with nothing recorded")
	}
	if len(host.Commits()) != 0 {
		t.Fatalf("expected no host.Commit call when nothing was recorded")
	}
}

func TestStartWhileRecordingFails(t *testing.T) {
	Abort()
	if err := Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := Start(); err == nil {
		t.Fatalf("expected second Start to fail while already Recording")
	}
	Abort()
}

func TestRecordWhileIdleFails(t *testing.T) {
	Abort()
	host := newTestHost()
	var target [32]byte
	if err := Record(host, ActionUpdate, target, nil); err == nil {
		t.Fatalf("expected Record to fail while Idle")
	}
}

func TestAbortDiscardsBuffer(t *testing.T) {
	Abort()
	host := newTestHost()
	if err := Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	var target [32]byte
	if err := Record(host, ActionUpdate, target, []byte("x")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	Abort()
	if Pending() != 0 {
		t.Fatalf("expected Abort to discard recorded actions")
	}
	if err := Start(); err != nil {
		t.Fatalf("Start after Abort should succeed: %v", err)
	}
	Abort()
}

func TestRecordBudgetExhaustion(t *testing.T) {
	Abort()
	host := newTestHost()
	if err := Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer Abort()

	var target [32]byte
	n := int(MaxActionBudget/ActionCost(ActionUpdate)) + 1
	var lastErr error
	for i := 0; i < n; i++ {
		lastErr = Record(host, ActionUpdate, target, nil)
		if lastErr != nil {
			break
		}
	}
	if lastErr != ErrRecorderFull {
		t.Fatalf("expected ErrRecorderFull once budget is exceeded, got %v", lastErr)
	}
}
