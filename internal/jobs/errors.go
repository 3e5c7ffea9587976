package jobs

import "errors"

// ErrInvalidState is returned when an operation does not apply to the
// job's current status, e.g. starting a job that already completed or
// cancelling a failed one.
var ErrInvalidState = errors.New("operation not valid for current job status")

// ValidationError reports a malformed job submission. Handlers map it
// to a 400 with an INVALID_ARGUMENT code.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrf(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
