package crdt

import (
	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
	"github.com/calimero-network/core-runtime/delta"
	"github.com/calimero-network/core-runtime/errs"
)

// Counter is a handle over a host-side grow-only counter (G-Counter): a map
// from ExecutorId to a per-executor count (spec §4.2 "Counter"). Value()
// sums every bucket; Increment writes the current executor's own bucket, so
// concurrent increments from different executors never race on the same
// memory cell (Invariant 4, "counter.value() never decreases").
type Counter struct {
	host bridge.Host
	id   bridge.CollectionID
}

// NewCounter creates a zeroed counter with a fresh id.
func NewCounter(host bridge.Host) (Counter, error) {
	id, err := host.NewCollection(bridge.OpCounterNew)
	if err != nil {
		return Counter{}, err
	}
	return Counter{host: host, id: id}, nil
}

// OpenCounter wraps an existing counter id without allocating.
func OpenCounter(host bridge.Host, id bridge.CollectionID) Counter { return Counter{host: host, id: id} }

// ID returns the handle's underlying collection id.
func (c Counter) ID() bridge.CollectionID { return c.id }

// Increment adds one to the current executor's bucket.
func (c Counter) Increment() error {
	return c.recordIncrement(nil)
}

// IncrementBy adds n to the current executor's bucket. n must be
// non-negative: the counter only ever grows.
func (c Counter) IncrementBy(n int64) error {
	if n < 0 {
		return errs.New(errs.InvalidAmount, "counter: amount %d is negative", n)
	}
	return c.recordIncrement([][]byte{codec.Encode(codec.U64(uint64(n)))})
}

// recordIncrement issues the increment and records the resulting bucket
// under a target id scoped to this host's own executor, since each
// executor's bucket is an independent G-Counter cell that never conflicts
// with another executor's writes.
func (c Counter) recordIncrement(args [][]byte) error {
	raw, _, err := c.host.Collection(bridge.OpCounterIncrement, c.id, args...)
	if err != nil {
		return err
	}
	r := codec.NewReader(raw)
	newTotal, err := r.ReadU64()
	if err != nil {
		return err
	}
	enc, err := EncodeEnvelope(EnvCounterBucket, CounterBucket{Count: newTotal})
	if err != nil {
		return err
	}
	executor := c.host.ExecutorID()
	target := delta.TargetID([32]byte(c.id), executor[:])
	return delta.Record(c.host, delta.ActionUpdate, target, enc)
}

// Value sums every executor's bucket.
func (c Counter) Value() (uint64, error) {
	raw, _, err := c.host.Collection(bridge.OpCounterValue, c.id)
	if err != nil {
		return 0, err
	}
	r := codec.NewReader(raw)
	return r.ReadU64()
}

// ExecutorCount returns the bucket belonging to executor. The zero
// ExecutorID means "the current invocation's executor".
func (c Counter) ExecutorCount(executor bridge.ExecutorID) (uint64, error) {
	var arg []byte
	if executor != (bridge.ExecutorID{}) {
		arg = executor[:]
	}
	var args [][]byte
	if arg != nil {
		args = [][]byte{arg}
	}
	raw, _, err := c.host.Collection(bridge.OpCounterExecutorCount, c.id, args...)
	if err != nil {
		return 0, err
	}
	r := codec.NewReader(raw)
	return r.ReadU64()
}
