package crdt

import (
	"testing"

	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/delta"
	"github.com/calimero-network/core-runtime/internal/hostsim"
)

// newTestHost builds a simulated host for exercising a handle in isolation.
func newTestHost(executorByte byte) *hostsim.Host {
	var exec bridge.ExecutorID
	exec[0] = executorByte
	return hostsim.New(exec, bridge.ContextID{0x01}, nil)
}

// record runs fn inside a Start/Commit bracket, the same envelope
// runtime.Dispatch gives a registered method body, since every handle
// mutation calls delta.Record and requires the recorder to be Recording.
func record(t *testing.T, host bridge.Host, fn func() error) {
	t.Helper()
	if err := delta.Start(); err != nil {
		t.Fatalf("delta.Start: %v", err)
	}
	if err := fn(); err != nil {
		delta.Abort()
		t.Fatalf("operation: %v", err)
	}
	if _, err := delta.Commit(host); err != nil {
		t.Fatalf("delta.Commit: %v", err)
	}
}
