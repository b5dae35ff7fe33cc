package delta

import (
	"fmt"
	"sync"

	"github.com/calimero-network/core-runtime/bridge"
)

// State is one of the three states of the per-invocation recorder state
// machine (spec.md §4.3).
type State uint8

const (
	Idle State = iota
	Recording
	Sealed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Sealed:
		return "sealed"
	default:
		return "unknown"
	}
}

// recorder is process-wide state with an invocation-scoped lifecycle
// (spec.md §5 "Shared resources"): populated during a method body, flushed
// by the dispatcher after the method returns. Exactly one invocation is
// ever in flight at a time (spec.md §5 "single-threaded cooperative"), so a
// single mutex-guarded package value is sufficient — the same shape as
// crdt's nested-ownership tracker and the teacher's sandbox registry.
var (
	mu      sync.Mutex
	state   = Idle
	actions []Action
	spent   uint64
)

// Start transitions Idle -> Recording at the beginning of an invocation.
func Start() error {
	mu.Lock()
	defer mu.Unlock()
	if state != Idle {
		return fmt.Errorf("delta: Start called while recorder is %s", state)
	}
	state = Recording
	actions = nil
	spent = 0
	return nil
}

// Record appends a mutation to the current invocation's buffer. host
// supplies the timestamp (spec.md §4.3 "timestamp: 64-bit physical time
// sampled at the op"). Returns ErrRecorderFull if the action would exceed
// MaxActionBudget.
func Record(host bridge.Host, kind ActionKind, targetID [32]byte, payload []byte) error {
	mu.Lock()
	defer mu.Unlock()
	if state != Recording {
		return fmt.Errorf("delta: Record called while recorder is %s", state)
	}
	cost := ActionCost(kind)
	if spent+cost > MaxActionBudget {
		return ErrRecorderFull
	}
	spent += cost
	actions = append(actions, Action{
		Kind:      kind,
		TargetID:  targetID,
		Payload:   payload,
		Timestamp: host.TimeNow(),
	})
	return nil
}

// Abort discards the buffer and returns to Idle (spec.md §4.3
// "Recording --abort--> Idle").
func Abort() {
	mu.Lock()
	defer mu.Unlock()
	state = Idle
	actions = nil
	spent = 0
}

// Pending reports the number of actions recorded so far in this invocation.
func Pending() int {
	mu.Lock()
	defer mu.Unlock()
	return len(actions)
}

// Commit implements spec.md §4.3 "Commit": if there is nothing recorded it
// is a no-op (returns false, nil); otherwise it serializes the buffer,
// computes the root hash, calls host.Commit, and clears the buffer,
// returning to Idle either way.
func Commit(host bridge.Host) (bool, error) {
	mu.Lock()
	defer mu.Unlock()
	if state != Recording {
		return false, fmt.Errorf("delta: Commit called while recorder is %s", state)
	}
	if len(actions) == 0 {
		state = Idle
		return false, nil
	}
	artifact := EncodeArtifact(actions)
	root := RootHash(artifact)
	if _, err := host.Commit(root, artifact); err != nil {
		return false, err
	}
	state = Sealed
	actions = nil
	spent = 0
	state = Idle
	return true, nil
}
