package analytics

import (
	"errors"
	"fmt"
)

// Error kinds shared by the transform, volatility and regression packages.
// Callers match them with errors.Is; the wrapping OpError names the operation
// and column that failed.
var (
	ErrMissingColumn    = errors.New("missing column")
	ErrNonNumeric       = errors.New("non-numeric column")
	ErrDomain           = errors.New("domain error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrDivideByZero     = errors.New("divide by zero")
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrInvalidIndex     = errors.New("invalid index")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// OpError records the operation and column an analysis step failed on
type OpError struct {
	Op     string // operation name, e.g. "log_transform"
	Column string // offending column, may be empty
	Err    error  // one of the Err* kinds above
	Detail string // human readable detail, may be empty
}

// NewOpError creates an OpError with a formatted detail message
func NewOpError(op, column string, kind error, format string, args ...interface{}) *OpError {
	detail := ""
	if format != "" {
		detail = fmt.Sprintf(format, args...)
	}
	return &OpError{Op: op, Column: column, Err: kind, Detail: detail}
}

func (e *OpError) Error() string {
	msg := e.Op
	if e.Column != "" {
		msg += " " + e.Column
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the error kind
func (e *OpError) Unwrap() error {
	return e.Err
}

// WithOp re-labels an OpError produced by a lower-level helper so the caller's
// operation name is reported. Other errors are returned unchanged.
func WithOp(err error, op string) error {
	var opErr *OpError
	if errors.As(err, &opErr) {
		relabeled := *opErr
		relabeled.Op = op
		return &relabeled
	}
	return err
}
