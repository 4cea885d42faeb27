package circuit

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid parameter set or a malformed tree. It
// fails the whole evaluation before any node result is computed.
type ConfigError struct {
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a ConfigError with an optional cause.
func NewConfigError(reason string, cause error) *ConfigError {
	return &ConfigError{Reason: reason, Cause: cause}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
