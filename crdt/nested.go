package crdt

import (
	"sync"

	"github.com/calimero-network/core-runtime/bridge"
)

// edge records a parent -> child containment relationship (spec §4.2
// "Nested tracking", §9 "Cyclic references / back-edges"): strictly
// parent-to-child, so propagation is a simple upward walk with no cycles
// to guard against.
//
// Grounded on the teacher's vm_sandbox_management.go: a package-level
// registry guarded by a single RWMutex, with Start/Stop/Reset/Status/List
// verbs. Here the registry tracks containment edges instead of sandbox
// lifecycles, and "dirty" stands in for "active".
type edge struct {
	parent   bridge.CollectionID
	position string
	child    bridge.CollectionID
}

var (
	nestedMu  sync.RWMutex
	edgesByChild  = make(map[bridge.CollectionID][]edge)
	dirty         = make(map[bridge.CollectionID]bool)
)

// Track records that parent contains child at position (e.g. a map key or
// a list index rendered as a string). Re-tracking the same (parent,
// position) pair for a different child replaces the edge, leaving the
// superseded child's own id intact for any handle that still references
// it (spec §3 Lifecycle & ownership).
func Track(parent bridge.CollectionID, position string, child bridge.CollectionID) {
	nestedMu.Lock()
	defer nestedMu.Unlock()
	for other, edges := range edgesByChild {
		if other == child {
			continue
		}
		for i, e := range edges {
			if e.parent == parent && e.position == position {
				edgesByChild[other] = append(edges[:i:i], edges[i+1:]...)
				break
			}
		}
	}
	edges := edgesByChild[child]
	for _, e := range edges {
		if e.parent == parent && e.position == position {
			return
		}
	}
	edgesByChild[child] = append(edges, edge{parent: parent, position: position, child: child})
}

// MarkDirty marks id and every transitive ancestor of id (via tracked
// containment edges) dirty, as reported by IsDirty. delta.Commit does not
// consult the dirty set: a parent's outer entry is not re-emitted in the
// delta when only a nested child was mutated.
func MarkDirty(id bridge.CollectionID) {
	nestedMu.Lock()
	defer nestedMu.Unlock()
	markDirtyLocked(id, make(map[bridge.CollectionID]bool))
}

func markDirtyLocked(id bridge.CollectionID, seen map[bridge.CollectionID]bool) {
	if seen[id] {
		return
	}
	seen[id] = true
	dirty[id] = true
	for _, e := range edgesByChild[id] {
		markDirtyLocked(e.parent, seen)
	}
}

// IsDirty reports whether id was marked dirty since the last ClearDirty.
func IsDirty(id bridge.CollectionID) bool {
	nestedMu.RLock()
	defer nestedMu.RUnlock()
	return dirty[id]
}

// ClearDirty resets the dirty set. The dispatcher does not call it; the
// set is only cleared by an explicit call.
func ClearDirty() {
	nestedMu.Lock()
	defer nestedMu.Unlock()
	dirty = make(map[bridge.CollectionID]bool)
}
