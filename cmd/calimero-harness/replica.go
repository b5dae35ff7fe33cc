package main

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/calimero-network/core-runtime/bridge"
	"github.com/calimero-network/core-runtime/codec"
	"github.com/calimero-network/core-runtime/crdt"
	"github.com/calimero-network/core-runtime/delta"
	"github.com/calimero-network/core-runtime/internal/hostsim"
	"github.com/calimero-network/core-runtime/runtime"
)

// replica pairs a simulated host with a fixed set of collection handles
// that both replicas in a harness session address by the same
// bridge.CollectionID, so their deltas actually merge against each other
// (spec §8 scenarios S1-S6 are all two-replica convergence tests).
type replica struct {
	mu   sync.Mutex
	name string
	host *hostsim.Host

	sentCursor int // how many of this replica's own commits have been sent to its peer

	Counter crdt.Counter
	M       crdt.Map
	S       crdt.Set
	V       crdt.Vector
	L       crdt.LwwRegister
	Users   crdt.UserStorage
	Frozen  crdt.FrozenStorage
}

// newSession builds two replicas sharing one set of collection ids: "a"
// creates every collection, "b" adopts the same ids (see
// hostsim.Host.AdoptCollection), mirroring two peers that have already
// joined the same replicated context.
func newSession(log *logrus.Logger) (a, b *replica, err error) {
	var execA, execB bridge.ExecutorID
	execA[0], execB[0] = 0xA, 0xB
	ctx := bridge.ContextID{0x01}

	hostA := hostsim.New(execA, ctx, log.WithField("replica", "a").Logger)
	hostB := hostsim.New(execB, ctx, log.WithField("replica", "b").Logger)

	a = &replica{name: "a", host: hostA}
	b = &replica{name: "b", host: hostB}

	if err := a.bootstrap(); err != nil {
		return nil, nil, err
	}
	if err := b.adopt(a); err != nil {
		return nil, nil, err
	}
	// Both replicas already know each other's executor id at this point (the
	// harness stands in for a context-join handshake a real transport would
	// perform), so register each as a counter participant on its peer's
	// host. Without this, an artifact merging a counter bucket neither
	// replica has incremented locally would have nowhere to land: the
	// target id it carries is a one-way hash of (collection, executor) and
	// can't be attributed back to an executor the host hasn't been told
	// about.
	a.host.RegisterCounterParticipant(a.Counter.ID(), b.host.ExecutorID())
	b.host.RegisterCounterParticipant(b.Counter.ID(), a.host.ExecutorID())
	return a, b, nil
}

func (r *replica) bootstrap() error {
	counter, err := crdt.NewCounter(r.host)
	if err != nil {
		return err
	}
	m, err := crdt.NewMap(r.host)
	if err != nil {
		return err
	}
	s, err := crdt.NewSet(r.host)
	if err != nil {
		return err
	}
	v, err := crdt.NewVector(r.host)
	if err != nil {
		return err
	}
	l, err := crdt.NewLwwRegister(r.host, codec.Value{})
	if err != nil {
		return err
	}
	users, err := crdt.NewUserStorage(r.host)
	if err != nil {
		return err
	}
	frozen, err := crdt.NewFrozenStorage(r.host)
	if err != nil {
		return err
	}
	r.Counter, r.M, r.S, r.V, r.L, r.Users, r.Frozen = counter, m, s, v, l, users, frozen
	return nil
}

func (r *replica) adopt(peer *replica) error {
	if err := r.host.AdoptCollection(bridge.OpCounterNew, peer.Counter.ID()); err != nil {
		return err
	}
	if err := r.host.AdoptCollection(bridge.OpMapNew, peer.M.ID()); err != nil {
		return err
	}
	if err := r.host.AdoptCollection(bridge.OpSetNew, peer.S.ID()); err != nil {
		return err
	}
	if err := r.host.AdoptCollection(bridge.OpVectorNew, peer.V.ID()); err != nil {
		return err
	}
	if err := r.host.AdoptCollection(bridge.OpLwwNew, peer.L.ID()); err != nil {
		return err
	}
	if err := r.host.AdoptCollection(bridge.OpMapNew, peer.Users.ID()); err != nil {
		return err
	}
	if err := r.host.AdoptCollection(bridge.OpMapNew, peer.Frozen.ID()); err != nil {
		return err
	}
	r.Counter = crdt.OpenCounter(r.host, peer.Counter.ID())
	r.M = crdt.OpenMap(r.host, peer.M.ID())
	r.S = crdt.OpenSet(r.host, peer.S.ID())
	r.V = crdt.OpenVector(r.host, peer.V.ID())
	r.L = crdt.OpenLwwRegister(r.host, peer.L.ID())
	r.Users = crdt.OpenUserStorage(r.host, peer.Users.ID())
	r.Frozen = crdt.OpenFrozenStorage(r.host, peer.Frozen.ID())
	return nil
}

// withRecording runs fn inside a Start/Commit bracket, the same envelope
// runtime.Dispatch gives a registered method body.
func (r *replica) withRecording(fn func() (any, error)) (any, error) {
	if err := delta.Start(); err != nil {
		return nil, err
	}
	result, err := fn()
	if err != nil {
		delta.Abort()
		return nil, err
	}
	if _, err := delta.Commit(r.host); err != nil {
		return nil, err
	}
	return result, nil
}

// pendingForPeer returns the commits made since the last exchange and
// advances the send cursor.
func (r *replica) pendingForPeer() []hostsim.Commit {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.host.Commits()
	if r.sentCursor >= len(all) {
		return nil
	}
	out := all[r.sentCursor:]
	r.sentCursor = len(all)
	return out
}

// apply reconciles incoming commits against this replica's local storage
// using the engine's universal envelope merge (runtime.Merge).
func (r *replica) apply(commits []hostsim.Commit) (int, error) {
	total := 0
	for _, c := range commits {
		n, err := delta.ApplyArtifact(r.host, c.Artifact, runtime.Merge)
		if err != nil {
			return total, fmt.Errorf("replica %s: apply artifact: %w", r.name, err)
		}
		total += n
	}
	return total, nil
}
