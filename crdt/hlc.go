package crdt

import "github.com/calimero-network/core-runtime/bridge"

// HLC is a hybrid logical clock tuple (spec §3 Hybrid Logical Clock):
// physical time from the host plus a 16-byte node prefix for deterministic
// tie-breaking.
type HLC struct {
	Time uint64
	Node [16]byte
}

// Now samples the current HLC from the host: physical time from
// host.TimeNow(), node from the 16-byte prefix of the current executor id.
func Now(host bridge.Host) HLC {
	return HLC{Time: host.TimeNow(), Node: host.ExecutorID().NodePrefix()}
}

// Compare orders HLCs lexicographically on (time, node); on equal times the
// higher node id wins. Returns <0, 0, or >0 like bytes.Compare.
func (a HLC) Compare(b HLC) int {
	switch {
	case a.Time < b.Time:
		return -1
	case a.Time > b.Time:
		return 1
	}
	for i := range a.Node {
		if a.Node[i] != b.Node[i] {
			if a.Node[i] < b.Node[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// After reports whether a strictly follows b under Compare.
func (a HLC) After(b HLC) bool { return a.Compare(b) > 0 }

// Zero is the smallest possible HLC, used as the "no write yet" sentinel.
var Zero = HLC{}
