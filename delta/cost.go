package delta

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// DefaultActionCost is charged for any action kind that has slipped through
// the cracks, mirroring the teacher's gas_table.go DefaultGasCost: punitive,
// so an un-costed kind is conspicuous rather than silently free.
const DefaultActionCost uint64 = 64

// costTable weighs each action kind against MaxActionBudget below. This is local, non-authoritative
// bookkeeping: unlike the teacher's chain-wide gas pricing there is no
// settlement or refund step, only a per-invocation cap.
var costTable = map[ActionKind]uint64{
	ActionUpdate:    8,
	ActionDeleteRef: 4,
}

var loggedUnknownCost = map[ActionKind]bool{}

// ActionCost returns the weight of a single action of the given kind.
func ActionCost(kind ActionKind) uint64 {
	if cost, ok := costTable[kind]; ok {
		return cost
	}
	if !loggedUnknownCost[kind] {
		loggedUnknownCost[kind] = true
		logrus.WithField("kind", kind).Warn("delta: missing action cost, charging default")
	}
	return DefaultActionCost
}

// MaxActionBudget bounds how much cumulative ActionCost a single
// invocation's recording may accumulate before Record refuses further
// mutation. Chosen generously: it exists to catch a runaway method, not to
// constrain normal application logic.
const MaxActionBudget uint64 = 1 << 20

// ErrRecorderFull is returned by Record when appending the next action
// would exceed MaxActionBudget.
var ErrRecorderFull = errors.New("delta: recorder budget exhausted for this invocation")
