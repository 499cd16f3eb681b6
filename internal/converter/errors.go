package converter

import (
	"errors"
	"fmt"
)

// ErrWriteOnly is returned by FromLDAP on converters whose values cannot be
// read back (e.g. passwords).
var ErrWriteOnly = errors.New("attribute is write-only")

// ErrReadOnly is returned by ToLDAP on converters that only decode values.
var ErrReadOnly = errors.New("attribute is read-only")

// FormatError reports a raw directory value that could not be parsed.
type FormatError struct {
	Converter string
	Raw       string
	Err       error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s: malformed value %q", e.Converter, e.Raw)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// InvalidValueError reports a domain value or option a converter cannot
// handle.
type InvalidValueError struct {
	Converter string
	Value     any
	Err       error
}

func (e *InvalidValueError) Error() string {
	msg := fmt.Sprintf("%s: cannot convert value of type %T", e.Converter, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

// UnknownConverterError is returned when resolving a name that was never
// registered.
type UnknownConverterError struct {
	Name string
}

func (e *UnknownConverterError) Error() string {
	return fmt.Sprintf("attribute converter not registered: %s", e.Name)
}

// DuplicateNameError is returned when registering a name twice.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("attribute converter already registered: %s", e.Name)
}

// ContractViolationError is returned when a registered factory produces
// something that is not a Converter.
type ContractViolationError struct {
	Name string
	Type string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("attribute converter %s does not implement the converter contract (got %s)", e.Name, e.Type)
}

func formatError(converter, raw string, err error) error {
	return &FormatError{Converter: converter, Raw: raw, Err: err}
}

func invalidValue(converter string, value any, err error) error {
	return &InvalidValueError{Converter: converter, Value: value, Err: err}
}
