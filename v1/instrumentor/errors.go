package instrumentor

import "errors"

var (
	// ErrMissingAPIKey is returned when export is enabled without an API key.
	ErrMissingAPIKey = errors.New("BRAINTRUST_API_KEY is required when export is enabled")

	// ErrAlreadyInstrumented is returned by a second Instrument on the same instrumentor.
	ErrAlreadyInstrumented = errors.New("already instrumented")

	// ErrNilTarget is returned when there is nothing to instrument.
	ErrNilTarget = errors.New("instrumentation target is nil")
)
