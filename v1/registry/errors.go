package registry

import "errors"

var (
	// ErrConfiguration is the parent of every registration error.
	ErrConfiguration = errors.New("instrumentation configuration error")

	// ErrDuplicateRegistration is returned for a key that is already registered.
	ErrDuplicateRegistration = errors.New("duplicate registration")

	// ErrUnknownMethod is returned when the runtime has no method under the key.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrInvalidEntry is returned for entries with missing names or an unknown kind.
	ErrInvalidEntry = errors.New("invalid entry")
)

// configError wraps cause under ErrConfiguration so that both match errors.Is.
type configError struct {
	cause error
	msg   string
}

func (e *configError) Error() string {
	return ErrConfiguration.Error() + ": " + e.msg
}

func (e *configError) Unwrap() []error {
	return []error{ErrConfiguration, e.cause}
}

func newConfigError(cause error, msg string) error {
	return &configError{cause: cause, msg: msg}
}
