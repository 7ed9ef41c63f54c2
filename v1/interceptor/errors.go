package interceptor

import (
	"context"
	"errors"
	"fmt"
)

// PanicError describes a panic raised by an intercepted method. It is only
// recorded on the span; the caller still sees the original panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// asError returns the value recovered from a panic as an error.
func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}

// isCancellation reports whether err stems from a cancelled or expired context.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
