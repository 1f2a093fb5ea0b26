package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed request field, or an AOI
// that exceeds the area ceiling.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// DensityError reports an AOI whose estimated pixel count is too high for a
// bounded remote sampling call.
type DensityError struct {
	EstimatedPixels float64
	Limit           float64
}

func (e *DensityError) Error() string {
	return fmt.Sprintf("AOI too dense for sampling: ~%.0f pixels estimated, limit is %.0f", e.EstimatedPixels, e.Limit)
}

// EmptyResultError reports that no usable pixels survived sampling or filtering.
type EmptyResultError struct {
	Msg string
}

func (e *EmptyResultError) Error() string { return e.Msg }

// SchemaError reports a mismatch between supplied features and the columns
// the model was trained on.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required features: %v", e.Missing)
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NewEmptyResultError builds an EmptyResultError with the given message.
func NewEmptyResultError(msg string) error {
	return &EmptyResultError{Msg: msg}
}

// IsClientError reports whether err belongs to the validation class and
// should be answered with a 400.
func IsClientError(err error) bool {
	var (
		ve *ValidationError
		de *DensityError
		ee *EmptyResultError
		se *SchemaError
	)
	return errors.As(err, &ve) || errors.As(err, &de) || errors.As(err, &ee) || errors.As(err, &se)
}
