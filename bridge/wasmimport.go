//go:build wasm

// Real guest binding: every Host method below is a thin wrapper around a
// //go:wasmimport stub plus the register read-back protocol described in
// spec §4.1. This file only compiles for GOARCH=wasm; internal/hostsim
// provides the same bridge.Host contract for ordinary (non-wasm) builds so
// the rest of the module, and its tests, never need a real guest runtime.
package bridge

import "unsafe"

//go:wasmimport env storage_read
func hostStorageRead(keyPtr, keyLen uint64, reg uint64) int64

//go:wasmimport env storage_write
func hostStorageWrite(keyPtr, keyLen, valPtr, valLen uint64) int64

//go:wasmimport env storage_remove
func hostStorageRemove(keyPtr, keyLen uint64) int64

//go:wasmimport env time_now
func hostTimeNow() uint64

//go:wasmimport env executor_id
func hostExecutorID(reg uint64)

//go:wasmimport env context_id
func hostContextID(reg uint64)

//go:wasmimport env panic
func hostPanic(ptr, ln uint64)

//go:wasmimport env log
func hostLog(ptr, ln uint64)

//go:wasmimport env emit
func hostEmit(kindPtr, kindLen, payloadPtr, payloadLen uint64)

//go:wasmimport env input
func hostInput(reg uint64)

//go:wasmimport env value_return
func hostValueReturn(ptr, ln uint64)

//go:wasmimport env commit
func hostCommit(hashPtr uint64, artifactPtr, artifactLen uint64) int64

//go:wasmimport env blob_announce_to_context
func hostBlobAnnounce(blobPtr, ctxPtr uint64) int64

//go:wasmimport env register_len
func hostRegisterLen(reg uint64) int64

//go:wasmimport env read_register
func hostReadRegister(reg uint64, bufPtr uint64) int64

//go:wasmimport env collection_call
func hostCollectionCall(op uint32, idPtr uint64, argsPtr, argsLen uint64, reg uint64) int64

const outputRegister = 0

func bytesPtr(b []byte) uint64 {
	if len(b) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&b[0])))
}

// drainRegister implements the three-step protocol of spec §4.1: query
// register_len, allocate, read_register.
func drainRegister(reg uint64) []byte {
	n := hostRegisterLen(reg)
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	hostReadRegister(reg, bytesPtr(buf))
	return buf
}

type wasmHost struct{}

// NewWasmHost returns the real guest-side Host implementation. Only usable
// when built with GOARCH=wasm against a compatible host runtime.
func NewWasmHost() Host { return wasmHost{} }

func (wasmHost) StorageRead(key []byte) ([]byte, bool, error) {
	status := hostStorageRead(bytesPtr(key), uint64(len(key)), outputRegister)
	return statusToResult(status, OpStorageRead)
}

func (wasmHost) StorageWrite(key, value []byte) error {
	status := hostStorageWrite(bytesPtr(key), uint64(len(key)), bytesPtr(value), uint64(len(value)))
	_, _, err := statusToResult(status, OpStorageWrite)
	return err
}

func (wasmHost) StorageRemove(key []byte) (bool, error) {
	status := hostStorageRemove(bytesPtr(key), uint64(len(key)))
	_, present, err := statusToResult(status, OpStorageRemove)
	return present, err
}

func (wasmHost) TimeNow() uint64 { return hostTimeNow() }

func (wasmHost) ExecutorID() ExecutorID {
	hostExecutorID(outputRegister)
	var id ExecutorID
	copy(id[:], drainRegister(outputRegister))
	return id
}

func (wasmHost) ContextID() ContextID {
	hostContextID(outputRegister)
	var id ContextID
	copy(id[:], drainRegister(outputRegister))
	return id
}

func (wasmHost) Log(msg string) {
	b := []byte(msg)
	hostLog(bytesPtr(b), uint64(len(b)))
}

func (wasmHost) Panic(msg string) {
	b := []byte(msg)
	hostPanic(bytesPtr(b), uint64(len(b)))
}

func (wasmHost) Emit(kind string, payload []byte) {
	k := []byte(kind)
	hostEmit(bytesPtr(k), uint64(len(k)), bytesPtr(payload), uint64(len(payload)))
}

func (wasmHost) Input() []byte {
	hostInput(outputRegister)
	return drainRegister(outputRegister)
}

func (wasmHost) ValueReturn(data []byte) {
	hostValueReturn(bytesPtr(data), uint64(len(data)))
}

func (wasmHost) Commit(rootHash [32]byte, artifact []byte) (bool, error) {
	status := hostCommit(bytesPtr(rootHash[:]), bytesPtr(artifact), uint64(len(artifact)))
	_, present, err := statusToResult(status, OpCommit)
	return present, err
}

func (wasmHost) BlobAnnounce(blob BlobID, ctx ContextID) (bool, error) {
	status := hostBlobAnnounce(bytesPtr(blob[:]), bytesPtr(ctx[:]))
	if status < 0 {
		_, _, err := statusToResult(status, OpBlobAnnounce)
		return false, err
	}
	return status > 0, nil
}

func (wasmHost) NewCollection(op Op) (CollectionID, error) {
	status := hostCollectionCall(uint32(op), 0, 0, 0, outputRegister)
	payload, _, err := statusToResult(status, op)
	if err != nil {
		return CollectionID{}, err
	}
	var id CollectionID
	copy(id[:], payload)
	return id, nil
}

func (wasmHost) Collection(op Op, id CollectionID, args ...[]byte) ([]byte, bool, error) {
	encoded := encodeArgs(args)
	status := hostCollectionCall(uint32(op), bytesPtr(id[:]), bytesPtr(encoded), uint64(len(encoded)), outputRegister)
	return statusToResult(status, op)
}

// statusToResult interprets the register-protocol status integer per
// spec §4.1: negative -> error, zero -> absent, positive -> present.
func statusToResult(status int64, op Op) ([]byte, bool, error) {
	switch {
	case status < 0:
		return nil, false, NewHostError(op, string(drainRegister(outputRegister)))
	case status == 0:
		return nil, false, nil
	default:
		return drainRegister(outputRegister), true, nil
	}
}

// encodeArgs length-prefixes each argument so collection_call can recover
// individual buffers on the host side of the import boundary.
func encodeArgs(args [][]byte) []byte {
	var out []byte
	for _, a := range args {
		var lenBuf [4]byte
		n := uint32(len(a))
		lenBuf[0] = byte(n)
		lenBuf[1] = byte(n >> 8)
		lenBuf[2] = byte(n >> 16)
		lenBuf[3] = byte(n >> 24)
		out = append(out, lenBuf[:]...)
		out = append(out, a...)
	}
	return out
}
