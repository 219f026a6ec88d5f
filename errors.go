package gcarena

import (
	"errors"
	"fmt"
)

var (
	// ErrBadSize indicates a requested size that is not positive or exceeds the slot size.
	ErrBadSize = errors.New("gcarena: bad allocation size")

	// ErrOutOfMemory indicates the chunk pool could not grow.
	ErrOutOfMemory = errors.New("gcarena: out of memory")

	// ErrReentrant indicates Allocate or Collect was called while a cycle was in progress.
	ErrReentrant = errors.New("gcarena: called during a collection cycle")

	// ErrReleased indicates use of an arena after Release.
	ErrReleased = errors.New("gcarena: use after Release()")

	// ErrNilProvider indicates New was called without a root provider.
	ErrNilProvider = errors.New("gcarena: nil root provider")

	// ErrCallback matches every *CallbackError.
	ErrCallback = errors.New("gcarena: root provider callback failed")

	// ErrBadType indicates a value type that holds Go pointers.
	ErrBadType = errors.New("gcarena: type must not contain pointers")

	// ErrBadOption indicates an invalid construction option.
	ErrBadOption = errors.New("gcarena: bad option")
)

// CallbackError reports a failure returned by the root provider during a cycle.
// Ref is Nil for failures of RootProvider.Collect.
type CallbackError struct {
	Phase Phase
	Ref   Ref
	Err   error
}

func (e *CallbackError) Error() string {
	if e.Phase == PhaseSweeping {
		return fmt.Sprintf("gcarena: notify dead %d: %v", e.Ref, e.Err)
	}
	return fmt.Sprintf("gcarena: collect roots: %v", e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrCallback) true for any *CallbackError.
func (e *CallbackError) Is(target error) bool { return target == ErrCallback }

// ProtocolError describes a root provider that broke the marking contract.
// It is only raised, as a panic, when the arena was built WithDebug(true).
type ProtocolError struct {
	Ref    Ref
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("gcarena: protocol violation on ref %d: %s", e.Ref, e.Reason)
}
