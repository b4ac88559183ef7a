// Package errors provides the error taxonomy shared by the LIFT merge engine,
// the exporter and their collaborators.
//
// Every typed error unwraps to one of the sentinels below, so callers can
// classify a failure with errors.Is without knowing the concrete type.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates malformed input or a validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
	// ErrIdentityConflict indicates a guid that cannot be (re)used
	ErrIdentityConflict = errors.New("identity conflict")
	// ErrDataConflict indicates two non-empty values that disagree
	ErrDataConflict = errors.New("data conflict")
	// ErrUnresolvedReference indicates a reference whose target never appeared
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrCapacity indicates a value larger than the store accepts
	ErrCapacity = errors.New("capacity exceeded")
	// ErrUnknownField indicates a field or trait with no known destination
	ErrUnknownField = errors.New("unknown field")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "entry", "range", "feature")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string // Field name that failed validation
	Value   string // Value that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a structural parse failure: malformed LIFT, ranges
// or feature-structure syntax.
type ParseError struct {
	Format  string // Format being parsed (e.g., "LIFT", "lift-ranges", "feature")
	Path    string // File path or element path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// IdentityConflictError reports a staged guid that could not be used as-is.
type IdentityConflictError struct {
	GUID   string // The rejected guid
	ID     string // The staged id string it came from
	Reason string // "deleted", "kind mismatch", ...
}

func (e *IdentityConflictError) Error() string {
	return fmt.Sprintf("identity conflict on %s (id %q): %s", e.GUID, e.ID, e.Reason)
}

func (e *IdentityConflictError) Unwrap() error { return ErrIdentityConflict }

// DataConflictError reports a field whose existing and imported values differ.
type DataConflictError struct {
	Owner string // guid of the owning object
	Field string
}

func (e *DataConflictError) Error() string {
	return fmt.Sprintf("conflicting values for %s on %s", e.Field, e.Owner)
}

func (e *DataConflictError) Unwrap() error { return ErrDataConflict }

// UnresolvedReferenceError reports a relation whose target id was never found.
type UnresolvedReferenceError struct {
	Relation string // relation type name
	Target   string // staged target id
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s reference to %q", e.Relation, e.Target)
}

func (e *UnresolvedReferenceError) Unwrap() error { return ErrUnresolvedReference }

// CapacityError reports a value truncated to fit its field.
type CapacityError struct {
	Field  string
	Length int
	Limit  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: length %d exceeds limit %d", e.Field, e.Length, e.Limit)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// UnknownFieldError reports a field or trait name that has no destination.
type UnknownFieldError struct {
	Class string // owner class, e.g. "LexEntry"
	Name  string
	Kind  string // "field" or "trait"
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown %s %q on %s", e.Kind, e.Name, e.Class)
}

func (e *UnknownFieldError) Unwrap() error { return ErrUnknownField }

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
