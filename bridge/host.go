package bridge

import "github.com/calimero-network/core-runtime/errs"

// NewHostError wraps the diagnostic string of a negative-status host call
// as an errs.Error of kind HostError. Every negative-status op leaves a
// UTF-8 error in its output register (spec §4.1 Invariants); this is how
// that register payload is raised into the guest.
func NewHostError(op Op, message string) error {
	return errs.New(errs.HostError, "host error in %s: %s", op.Name(), message)
}

// Host is the typed wrapper over the raw host ABI described in spec §4.1.
// Every field of C2-C5 reaches the host exclusively through this interface.
// Two implementations exist in this module: the //go:wasmimport guest
// binding (real builds, GOARCH=wasm) and internal/hostsim.Host (tests and
// the cmd/calimero-harness devtool).
type Host interface {
	// Raw key/value store.
	StorageRead(key []byte) (value []byte, found bool, err error)
	StorageWrite(key, value []byte) error
	StorageRemove(key []byte) (removed bool, err error)

	// Identity and clock.
	TimeNow() uint64
	ExecutorID() ExecutorID
	ContextID() ContextID

	// Diagnostics and events.
	Log(msg string)
	Panic(msg string) // the real host never returns from this call
	Emit(kind string, payload []byte)

	// Invocation I/O.
	Input() []byte
	ValueReturn(data []byte)

	// Delta commit.
	Commit(rootHash [32]byte, artifact []byte) (bool, error)

	// Out-of-band blob references.
	BlobAnnounce(blob BlobID, ctx ContextID) (bool, error)

	// Collection opcodes. NewCollection allocates a fresh handle for a
	// *_new op; Collection performs every other per-collection op, keyed
	// by id and an opcode-specific argument list, with the result encoded
	// the same way for every collection kind: a payload, whether the
	// payload is present (the "zero status" case maps to present=false,
	// payload=nil), and an error for negative status.
	NewCollection(op Op) (CollectionID, error)
	Collection(op Op, id CollectionID, args ...[]byte) (payload []byte, present bool, err error)
}
