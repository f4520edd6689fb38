package features

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingFields is returned when a request lacks a required field
	ErrMissingFields = errors.New("missing fields")
	// ErrUnknownCategory is returned for a categorical value outside its table
	ErrUnknownCategory = errors.New("unrecognized category")
	// ErrInvalidValue is returned when a numeric field cannot be coerced
	ErrInvalidValue = errors.New("invalid value")
)

// MissingFieldsError lists the absent fields. Callers facing clients
// should only report ErrMissingFields.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing fields: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingFields
}

// EncodingError reports a categorical value with no trained code
type EncodingError struct {
	Field string
	Value string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("unrecognized category %q for field %s", e.Value, e.Field)
}

func (e *EncodingError) Unwrap() error {
	return ErrUnknownCategory
}

// CoercionError reports a value that could not be converted to the
// field's numeric type
type CoercionError struct {
	Field string
	Want  string
	Value any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("invalid %s value for field %s: %v", e.Want, e.Field, e.Value)
}

func (e *CoercionError) Unwrap() error {
	return ErrInvalidValue
}
