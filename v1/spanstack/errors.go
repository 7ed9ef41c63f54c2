package spanstack

import "errors"

var (
	// ErrStackUnderflow is returned when a span is popped from an empty stack.
	// It means an end was lost (or duplicated) somewhere upstream.
	ErrStackUnderflow = errors.New("spanstack: pop on empty stack")

	// ErrOutOfOrder is returned when a frame releases a span that is not on top.
	ErrOutOfOrder = errors.New("spanstack: span released out of order")

	// ErrUnknownPath is returned by Stacks for a path id that is not attached.
	ErrUnknownPath = errors.New("spanstack: unknown path")
)

// IsViolation reports whether err is a stack discipline violation.
func IsViolation(err error) bool {
	return errors.Is(err, ErrStackUnderflow) || errors.Is(err, ErrOutOfOrder)
}
