package store

import "errors"

// ErrNotFound reports that the requested entity does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a missing or blank required field, or an empty
// update payload. It is always raised before any write reaches the database.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
