package debounce

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned (wrapped in a *ConfigError) by Wrap and
	// Options.Validate when the given options can not be used.
	ErrInvalidConfig = errors.New("debounce: invalid configuration")

	// ErrNoCall rejects the futures of an attempt group that closed without the
	// underlying function being called, which only happens when both leading
	// and trailing calls are disabled.
	ErrNoCall = errors.New("debounce: attempt group closed without a call")
)

// ConfigError describes a single rejected option.
type ConfigError struct {
	Option string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %q %s", ErrInvalidConfig, e.Option, e.Reason)
	}

	return fmt.Sprintf(
		"%s: %q %s (got %v)", ErrInvalidConfig, e.Option, e.Reason, e.Value,
	)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// PanicError is delivered to the attempt futures when the underlying function
// panics instead of returning.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("debounce: underlying function panicked: %v", e.Value)
}

// Unwrap returns the panic value if it was an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)

	return err
}
