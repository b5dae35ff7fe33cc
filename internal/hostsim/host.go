// Package hostsim is a simulated host implementing the bridge.Host
// contract in-process. It stands in for the real, out-of-scope VM host
// (spec §1 Non-goals: "Host-side storage engine, peer-to-peer transport,
// and mempool") so the core can be exercised deterministically by tests
// and by cmd/calimero-harness.
//
// Grounded on the teacher's in-memory ledger (core/virtual_machine.go's
// memState / NewInMemory): a single mutex-guarded struct backing every
// storage-shaped host op, constructed once per simulated replica.
package hostsim

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/crdt"
	"github.com/calimero-network/core-runtime/delta"
)

// Host is an in-process implementation of bridge.Host.
type Host struct {
	mu sync.Mutex

	executor bridge.ExecutorID
	context  bridge.ContextID
	clock    uint64

	kv map[string][]byte // generic storage_read/write/remove keyspace

	collections map[bridge.CollectionID]*collection
	counters    map[bridge.CollectionID]map[bridge.ExecutorID]uint64

	// targetIndex maps a counter bucket's content-addressed delta target back
	// to the (collection, executor) pair it belongs to, so a merged artifact
	// applied through the generic StorageWrite path (delta.ApplyArtifact)
	// still lands in counters where Counter.Value/ExecutorCount can see it.
	// Map, Set, Vector and Lww entries don't need this: their reads recompute
	// the same target id from the position the caller already supplies.
	targetIndex map[[32]byte]counterTarget

	input  []byte
	output []byte
	panicked string

	events    []Event
	committed []Commit
	blobsSeen map[bridge.BlobID]map[bridge.ContextID]bool

	log *logrus.Logger
}

// Event is one emitted application event, captured for test assertions and
// for the harness inspector.
type Event struct {
	Kind    string
	Payload []byte
}

// Commit is one flushed delta artifact.
type Commit struct {
	RootHash [32]byte
	Artifact []byte
}

type collKind uint8

const (
	kindMap collKind = iota
	kindSet
	kindVector
	kindLww
)

type collection struct {
	kind collKind
	// entries records which positions this replica has locally touched, for
	// Iter/Len enumeration only. The actual values live in Host.kv, keyed by
	// delta.TargetID(id, position), which is also where a merged artifact
	// from a peer replica lands.
	entries map[string]struct{}
}

// counterTarget is what targetIndex resolves a delta target id to.
type counterTarget struct {
	id       bridge.CollectionID
	executor bridge.ExecutorID
}

// New constructs a simulated host for one replica. executor and context
// identify the replica's caller and replicated state group respectively;
// log receives every Log and Panic call, mirroring the teacher's use of
// logrus throughout core/virtual_machine.go.
func New(executor bridge.ExecutorID, context bridge.ContextID, log *logrus.Logger) *Host {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Host{
		executor:    executor,
		context:     context,
		kv:          make(map[string][]byte),
		collections: make(map[bridge.CollectionID]*collection),
		counters:    make(map[bridge.CollectionID]map[bridge.ExecutorID]uint64),
		targetIndex: make(map[[32]byte]counterTarget),
		blobsSeen:   make(map[bridge.BlobID]map[bridge.ContextID]bool),
		log:         log,
	}
}

// Advance sets the simulated clock to `to` when that is larger than the
// current value; a smaller value leaves the clock unchanged. Tests use this to
// script the exact (time, node) pairs the §8 scenarios specify.
func (h *Host) Advance(to uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if to > h.clock {
		h.clock = to
	}
}

func (h *Host) TimeNow() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clock++
	return h.clock
}

func (h *Host) ExecutorID() bridge.ExecutorID { return h.executor }
func (h *Host) ContextID() bridge.ContextID   { return h.context }

func (h *Host) StorageRead(key []byte) ([]byte, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.kv[string(key)]
	return v, ok, nil
}

func (h *Host) StorageWrite(key, value []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.kv[string(key)] = append([]byte{}, value...)
	h.projectCounterWriteLocked(key, value)
	return nil
}

// projectCounterWriteLocked reconciles a generic storage write against the
// live counter view when the key is a registered counter bucket target.
// delta.ApplyArtifact (the cross-replica merge path) only ever calls
// StorageWrite/StorageRead/StorageRemove, so this is how an incoming
// artifact's bucket update becomes visible to Counter.Value and
// Counter.ExecutorCount. Buckets only grow (G-Counter semantics), so the
// projected value is the max of what's already recorded and the freshly
// written one, tolerating out-of-order or repeated delivery.
func (h *Host) projectCounterWriteLocked(key, value []byte) {
	var target [32]byte
	if len(key) != len(target) {
		return
	}
	copy(target[:], key)
	ref, ok := h.targetIndex[target]
	if !ok {
		return
	}
	kind, v, err := crdt.DecodeEnvelope(value)
	if err != nil || kind != crdt.EnvCounterBucket {
		return
	}
	n := v.(crdt.CounterBucket).Count
	buckets := h.counters[ref.id]
	if buckets == nil {
		buckets = make(map[bridge.ExecutorID]uint64)
		h.counters[ref.id] = buckets
	}
	if n > buckets[ref.executor] {
		buckets[ref.executor] = n
	}
}

// RegisterCounterParticipant tells this host that executor participates in
// counter id, so a bucket update arriving later through an applied artifact
// (which only carries the content-addressed target id, never the executor it
// came from) can still be attributed to the right bucket. A real host learns
// participants when a replica joins a context; the harness stands in for
// that join by registering both replicas' executors on each other's host at
// setup time (see cmd/calimero-harness's replica wiring).
func (h *Host) RegisterCounterParticipant(id bridge.CollectionID, executor bridge.ExecutorID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registerCounterParticipantLocked(id, executor)
}

func (h *Host) registerCounterParticipantLocked(id bridge.CollectionID, executor bridge.ExecutorID) {
	buckets := h.counters[id]
	if buckets == nil {
		buckets = make(map[bridge.ExecutorID]uint64)
		h.counters[id] = buckets
	}
	if _, known := buckets[executor]; !known {
		buckets[executor] = 0
	}
	h.targetIndex[delta.TargetID([32]byte(id), executor[:])] = counterTarget{id: id, executor: executor}
}

func (h *Host) StorageRemove(key []byte) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.kv[string(key)]
	delete(h.kv, string(key))
	return ok, nil
}

func (h *Host) Log(msg string) {
	h.log.Debug(msg)
}

func (h *Host) Panic(msg string) {
	h.mu.Lock()
	h.panicked = msg
	h.mu.Unlock()
	h.log.WithField("panic", msg).Error("invocation aborted")
}

// Panicked returns the most recent panic message, if the invocation
// aborted, and clears it.
func (h *Host) Panicked() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msg := h.panicked
	h.panicked = ""
	return msg, msg != ""
}

func (h *Host) Emit(kind string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, Event{Kind: kind, Payload: append([]byte{}, payload...)})
}

// Events returns every event emitted so far.
func (h *Host) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event{}, h.events...)
}

// SetInput stages the bytes the next invocation will read via Input().
func (h *Host) SetInput(b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.input = b
}

func (h *Host) Input() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.input
}

func (h *Host) ValueReturn(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.output = append([]byte{}, data...)
}

// TakeOutput returns the bytes passed to the most recent ValueReturn.
func (h *Host) TakeOutput() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.output
}

func (h *Host) Commit(rootHash [32]byte, artifact []byte) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.committed = append(h.committed, Commit{RootHash: rootHash, Artifact: append([]byte{}, artifact...)})
	return true, nil
}

// Commits returns every artifact committed so far.
func (h *Host) Commits() []Commit {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Commit{}, h.committed...)
}

func (h *Host) BlobAnnounce(blob bridge.BlobID, ctx bridge.ContextID) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := h.blobsSeen[blob]
	if seen == nil {
		seen = make(map[bridge.ContextID]bool)
		h.blobsSeen[blob] = seen
	}
	wasNew := !seen[ctx]
	seen[ctx] = true
	return wasNew, nil
}

func (h *Host) newID() bridge.CollectionID {
	var id bridge.CollectionID
	u := uuid.New()
	copy(id[:16], u[:])
	copy(id[16:], u[:])
	return id
}

func (h *Host) NewCollection(op bridge.Op) (bridge.CollectionID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.newID()
	if err := h.adoptLocked(op, id); err != nil {
		return bridge.CollectionID{}, err
	}
	return id, nil
}

// AdoptCollection provisions an empty collection under a caller-chosen id,
// rather than a freshly generated one. A real host hands a newly replicated
// context its peer's existing collection ids out of band; this is the
// simulated equivalent, used by multi-replica tests and the harness to give
// two hostsim.Host instances a shared collection identity to merge against.
func (h *Host) AdoptCollection(op bridge.Op, id bridge.CollectionID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adoptLocked(op, id)
}

func (h *Host) adoptLocked(op bridge.Op, id bridge.CollectionID) error {
	c := &collection{entries: make(map[string]struct{})}
	switch op {
	case bridge.OpMapNew:
		c.kind = kindMap
	case bridge.OpSetNew:
		c.kind = kindSet
	case bridge.OpVectorNew:
		c.kind = kindVector
	case bridge.OpLwwNew:
		c.kind = kindLww
	case bridge.OpCounterNew:
		h.registerCounterParticipantLocked(id, h.executor)
		return nil
	default:
		return fmt.Errorf("hostsim: %s is not a *_new op", op.Name())
	}
	h.collections[id] = c
	return nil
}
