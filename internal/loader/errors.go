package loader

import (
	"errors"
	"fmt"
)

// Load failure kinds, matched with errors.Is
var (
	ErrUnreachable       = errors.New("source unreachable")
	ErrMalformedSource   = errors.New("malformed source")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// LoadError reports why a source could not be turned into a table
type LoadError struct {
	Location string
	Kind     error // one of the Err* kinds above
	Cause    error // underlying error, may be nil
}

func newLoadError(location string, kind error, format string, args ...interface{}) *LoadError {
	return &LoadError{Location: location, Kind: kind, Cause: fmt.Errorf(format, args...)}
}

func (e *LoadError) Error() string {
	msg := "load " + e.Location + ": " + e.Kind.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *LoadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}
