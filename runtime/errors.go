package runtime

import "github.com/calimero-network/core-runtime/errs"

// Error and Kind are aliases of errs.Error/errs.Kind rather than a second
// taxonomy: bridge, crdt, and delta already return *errs.Error, and giving
// the dispatcher its own parallel type would mean translating every error
// at the C5 boundary for no reason. Application code that imports only
// runtime still sees the full taxonomy under these names.
type (
	Error = errs.Error
	Kind  = errs.Kind
)

const (
	AlreadyInitialized = errs.AlreadyInitialized
	NotInitialized      = errs.NotInitialized
	UnknownMethod       = errs.UnknownMethod
	InvalidArguments    = errs.InvalidArguments
	InvalidID           = errs.InvalidID
	OutOfBounds         = errs.OutOfBounds
	InvalidAmount       = errs.InvalidAmount
	FrozenViolation     = errs.FrozenViolation
	HostError           = errs.HostError
	Deserialization     = errs.Deserialization
	Application         = errs.Application
)
