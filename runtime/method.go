package runtime

import (
	"fmt"
	"sync"

	"github.com/calimero-network/core-runtime/abi"
	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
)

// MethodKind distinguishes the three method shapes of spec §4.5.
type MethodKind uint8

const (
	Mutating MethodKind = iota
	InitMethod
	View
)

func (k MethodKind) String() string {
	switch k {
	case InitMethod:
		return "init"
	case View:
		return "view"
	default:
		return "mutating"
	}
}

// State is application state, round-tripped through the self-describing
// codec so the dispatcher can persist and reload it without knowing its
// concrete Go type.
type State interface {
	MarshalState() (codec.Value, error)
}

// Handler is the decoded-argument entry point an application registers for
// one method. args has already been normalized per the ABI parameter list
// (§4.5 "Argument normalization"); the handler returns an optional result
// value, encoded via the self-describing codec and passed to value_return.
type Handler func(host bridge.Host, state State, args abi.Value) (codec.Value, bool, error)

// MethodDesc describes one dispatchable method, mirroring abi.MethodDef
// plus the concrete Go handler bound to it.
type MethodDesc struct {
	Name    string
	Kind    MethodKind
	Params  []abi.FieldDef
	Returns abi.TypeRef
	Handle  Handler
}

// methods is process-wide, populated once at application start-up, the
// same lifecycle as the teacher's opcodeTable (spec.md's "registry of
// constructor functions for each collection type" language, §5 "Shared
// resources", extended here to cover the method table itself).
var (
	methodsMu sync.RWMutex
	methods   = make(map[string]MethodDesc)
)

// Register binds a method name to its descriptor. Panics on a duplicate
// name, exactly like the teacher's opcode Register panics on a duplicate
// opcode: a colliding method table is a build-time defect, not a runtime
// condition to recover from.
func Register(desc MethodDesc) {
	methodsMu.Lock()
	defer methodsMu.Unlock()
	if _, exists := methods[desc.Name]; exists {
		panic(fmt.Sprintf("runtime: method %q already registered", desc.Name))
	}
	methods[desc.Name] = desc
}

// Lookup returns the descriptor registered for name, if any.
func Lookup(name string) (MethodDesc, bool) {
	methodsMu.RLock()
	defer methodsMu.RUnlock()
	desc, ok := methods[name]
	return desc, ok
}

// reset clears the method table. Used only by runtime's own tests,
// which register a fresh fixture per test case.
func reset() {
	methodsMu.Lock()
	defer methodsMu.Unlock()
	methods = make(map[string]MethodDesc)
}
