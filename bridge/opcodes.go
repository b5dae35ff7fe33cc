// Host opcode catalogue.
//
//   - Every host operation the bridge can invoke is assigned a stable 32-bit
//     opcode: 0xCCNNNNNN -> CC = category byte, NNNNNN = ordinal.
//
//   - op maps opcodes to nothing by itself; it is the wire identifier passed
//     across the guest/host boundary. The in-process hostsim.Host
//     implementation switches on these for its routing; real builds pass
//     collection opcodes as the numeric first argument of the
//     collection_call import, while the other host operations each have
//     their own //go:wasmimport stub.
//
//   - Collisions are fatal at package init: nothing slips into a build
//     unnoticed.
package bridge

import "fmt"

// Op is a 32-bit deterministic host-operation identifier.
type Op uint32

const (
	catStorage  = 0x01_000000
	catSystem   = 0x02_000000
	catRegister = 0x03_000000
	catInvoke   = 0x04_000000
	catEvent    = 0x05_000000
	catCommit   = 0x06_000000
	catMap      = 0x10_000000
	catSet      = 0x11_000000
	catVector   = 0x12_000000
	catCounter  = 0x13_000000
	catLww      = 0x14_000000
)

const (
	OpStorageRead Op = catStorage + iota
	OpStorageWrite
	OpStorageRemove
)

const (
	OpTimeNow Op = catSystem + iota
	OpExecutorID
	OpContextID
	OpPanic
	OpLog
	OpBlobAnnounce
)

const (
	OpRegisterLen Op = catRegister + iota
	OpReadRegister
)

const (
	OpInput Op = catInvoke + iota
	OpValueReturn
)

const (
	OpEmit Op = catEvent + iota
)

const (
	OpCommit Op = catCommit + iota
)

const (
	OpMapNew Op = catMap + iota
	OpMapGet
	OpMapInsert
	OpMapRemove
	OpMapContains
	OpMapIter
)

const (
	OpSetNew Op = catSet + iota
	OpSetInsert
	OpSetContains
	OpSetRemove
	OpSetLen
	OpSetIter
	OpSetClear
)

const (
	OpVectorNew Op = catVector + iota
	OpVectorLen
	OpVectorPush
	OpVectorGet
	OpVectorPop
)

const (
	OpCounterNew Op = catCounter + iota
	OpCounterIncrement
	OpCounterValue
	OpCounterExecutorCount
)

const (
	OpLwwNew Op = catLww + iota
	OpLwwSet
	OpLwwGet
	OpLwwTimestamp
)

var opNames = map[Op]string{}

// registerOpName records a human-readable name for an opcode, panicking on
// a duplicate registration the same way the dispatcher panics on a
// duplicate method name (runtime.Register) or the teacher's opcode table
// panics on a duplicate opcode.
func registerOpName(op Op, name string) {
	if existing, ok := opNames[op]; ok {
		panic(fmt.Sprintf("bridge: opcode 0x%08X already registered as %q", op, existing))
	}
	opNames[op] = name
}

func init() {
	for op, name := range map[Op]string{
		OpStorageRead:          "storage_read",
		OpStorageWrite:         "storage_write",
		OpStorageRemove:        "storage_remove",
		OpTimeNow:              "time_now",
		OpExecutorID:           "executor_id",
		OpContextID:            "context_id",
		OpPanic:                "panic",
		OpLog:                  "log",
		OpBlobAnnounce:         "blob_announce_to_context",
		OpRegisterLen:          "register_len",
		OpReadRegister:         "read_register",
		OpInput:                "input",
		OpValueReturn:          "value_return",
		OpEmit:                 "emit",
		OpCommit:               "commit",
		OpMapNew:               "map_new",
		OpMapGet:               "map_get",
		OpMapInsert:            "map_insert",
		OpMapRemove:            "map_remove",
		OpMapContains:          "map_contains",
		OpMapIter:              "map_iter",
		OpSetNew:               "set_new",
		OpSetInsert:            "set_insert",
		OpSetContains:          "set_contains",
		OpSetRemove:            "set_remove",
		OpSetLen:               "set_len",
		OpSetIter:              "set_iter",
		OpSetClear:             "set_clear",
		OpVectorNew:            "vector_new",
		OpVectorLen:            "vector_len",
		OpVectorPush:           "vector_push",
		OpVectorGet:            "vector_get",
		OpVectorPop:            "vector_pop",
		OpCounterNew:           "counter_new",
		OpCounterIncrement:     "counter_increment",
		OpCounterValue:         "counter_value",
		OpCounterExecutorCount: "counter_get_executor_count",
		OpLwwNew:               "lww_new",
		OpLwwSet:                "lww_set",
		OpLwwGet:                "lww_get",
		OpLwwTimestamp:          "lww_timestamp",
	} {
		registerOpName(op, name)
	}
}

// Name returns the wire name associated with op, or "" if unknown.
func (op Op) Name() string { return opNames[op] }
