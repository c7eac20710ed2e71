package dynamix

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("dynamix: item not found")

	// ErrDefinition is returned when an enum, attribute or schema definition
	// is invalid. Definition errors are raised at construction time.
	ErrDefinition = errors.New("dynamix: invalid definition")

	// ErrTypeMismatch is returned when an enum member value does not have
	// the primitive type required by a value-keyed codec.
	ErrTypeMismatch = errors.New("dynamix: member value has the wrong type")

	// ErrNotUnique is returned when the values of an enum are not pairwise
	// distinct but a codec needs to look members up by value.
	ErrNotUnique = errors.New("dynamix: all values must be unique in enum")

	// ErrLookup is returned when an enum member cannot be resolved by name or value.
	ErrLookup = errors.New("dynamix: enum member not found")

	// ErrDecode is returned when a stored value cannot be decoded.
	ErrDecode = errors.New("dynamix: malformed stored value")
)

// NotFoundError represents an error when an item is not found.
type NotFoundError struct {
	table string
	key   any // Optional: the key that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.key != nil {
		return fmt.Sprintf("dynamix: %s item not found (key=%v)", e.table, e.key)
	}
	return fmt.Sprintf("dynamix: %s item not found", e.table)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table name.
func (e *NotFoundError) Table() string {
	return e.table
}

// Key returns the key that was searched for, if available.
func (e *NotFoundError) Key() any {
	return e.key
}

// NewNotFoundError returns a new NotFoundError for the given table.
func NewNotFoundError(table string) *NotFoundError {
	return &NotFoundError{table: table}
}

// NewNotFoundErrorWithKey returns a new NotFoundError with the key that was searched for.
func NewNotFoundErrorWithKey(table string, key any) *NotFoundError {
	return &NotFoundError{table: table, key: key}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// DefinitionError reports an invalid enum, attribute or schema definition.
type DefinitionError struct {
	Name   string // Enum, attribute or table name
	Member string // Offending member or attribute, if any
	Err    error  // Underlying cause
}

// Error returns the error string.
func (e *DefinitionError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("dynamix: definition of %s: member %q: %v", e.Name, e.Member, e.Err)
	}
	return fmt.Sprintf("dynamix: definition of %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error is ErrDefinition.
func (e *DefinitionError) Is(err error) bool {
	return err == ErrDefinition
}

// NewDefinitionError returns a new DefinitionError.
func NewDefinitionError(name, member string, err error) *DefinitionError {
	return &DefinitionError{Name: name, Member: member, Err: err}
}

// IsDefinitionError returns true if the error is a DefinitionError.
func IsDefinitionError(err error) bool {
	if err == nil {
		return false
	}
	var e *DefinitionError
	return errors.As(err, &e)
}

// LookupError is returned when an enum member is requested by an unknown
// name, or when a stored value does not belong to the enum.
type LookupError struct {
	Enum string // Enum name
	Key  any    // Name or value that was looked up
}

// Error returns the error string.
func (e *LookupError) Error() string {
	return fmt.Sprintf("dynamix: %v is not a valid %s", e.Key, e.Enum)
}

// Is reports whether the target error is ErrLookup.
func (e *LookupError) Is(err error) bool {
	return err == ErrLookup
}

// NewLookupError returns a new LookupError.
func NewLookupError(enum string, key any) *LookupError {
	return &LookupError{Enum: enum, Key: key}
}

// IsLookupError returns true if the error is a LookupError.
func IsLookupError(err error) bool {
	if err == nil {
		return false
	}
	var e *LookupError
	return errors.As(err, &e)
}

// DecodeError reports a stored primitive that could not be decoded.
type DecodeError struct {
	Kind  Kind   // Storage primitive kind
	Value string // Offending payload
	Err   error  // Underlying parse error
}

// Error returns the error string.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("dynamix: decode %s value %q: %v", e.Kind, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error is ErrDecode.
func (e *DecodeError) Is(err error) bool {
	return err == ErrDecode
}

// NewDecodeError returns a new DecodeError.
func NewDecodeError(kind Kind, value string, err error) *DecodeError {
	return &DecodeError{Kind: kind, Value: value, Err: err}
}

// IsDecodeError returns true if the error is a DecodeError.
func IsDecodeError(err error) bool {
	if err == nil {
		return false
	}
	var e *DecodeError
	return errors.As(err, &e)
}

// ValidationError represents a validation error for attribute values.
type ValidationError struct {
	Name string // Attribute name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("dynamix: validator failed for attribute %q: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError for the given attribute.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}
