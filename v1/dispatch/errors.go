package dispatch

import "errors"

var (
	// ErrUnbound is returned when no method is bound under a key.
	ErrUnbound = errors.New("dispatch: no method bound")

	// ErrAlreadyBound is returned when a key is bound twice.
	ErrAlreadyBound = errors.New("dispatch: method already bound")

	// ErrAlreadyWrapped is returned when a wrapper is installed on a key that
	// already carries one.
	ErrAlreadyWrapped = errors.New("dispatch: method already wrapped")

	// ErrKindMismatch is returned when a synchronous call targets an async
	// binding or the other way around.
	ErrKindMismatch = errors.New("dispatch: sync/async mismatch")
)
