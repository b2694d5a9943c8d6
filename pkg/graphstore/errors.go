package graphstore

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrEntityNotFound   = errors.New("entity not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrStoreClosed      = errors.New("store is closed")
	ErrDepthExceeded    = errors.New("traversal depth exceeds store limit")
	ErrBadRecord        = errors.New("malformed store record")
)

// StoreError provides structured error information for store operations.
type StoreError struct {
	Op      string // Operation that failed (e.g., "BoundedTraversal", "LookupEntity")
	Kind    string // Record kind (e.g., "entity", "relationship", "traversal")
	ID      string // Record ID (if applicable)
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.ID != "" {
		if e.Context != "" {
			return fmt.Sprintf("%s %s %s (%s): %v", e.Op, e.Kind, e.ID, e.Context, e.Cause)
		}
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Kind, e.ID, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Kind, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *StoreError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building StoreErrors.
type ErrorBuilder struct {
	err StoreError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: StoreError{Op: op}}
}

// Entity sets the record kind to "entity" with the given ID.
func (b *ErrorBuilder) Entity(id string) *ErrorBuilder {
	b.err.Kind = "entity"
	b.err.ID = id
	return b
}

// Relationship sets the record kind to "relationship" with the given ID.
func (b *ErrorBuilder) Relationship(id string) *ErrorBuilder {
	b.err.Kind = "relationship"
	b.err.ID = id
	return b
}

// Traversal sets the record kind to "traversal" rooted at the given entity.
func (b *ErrorBuilder) Traversal(rootID string) *ErrorBuilder {
	b.err.Kind = "traversal"
	b.err.ID = rootID
	return b
}

// Store sets the record kind to "store" for whole-backend failures.
func (b *ErrorBuilder) Store() *ErrorBuilder {
	b.err.Kind = "store"
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed StoreError.
func (b *ErrorBuilder) Build() *StoreError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// Convenience functions for common error patterns

// EntityNotFoundError creates an entity not found error.
func EntityNotFoundError(entityID string) error {
	return NewError("lookup").Entity(entityID).Cause(ErrEntityNotFound).Err()
}

// UnavailableError creates a store unavailable error for the given operation.
func UnavailableError(op string, cause error) error {
	return &StoreError{Op: op, Kind: "store", Cause: fmt.Errorf("%w: %v", ErrStoreUnavailable, cause)}
}

// IsNotFound returns true if the error is an entity not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsUnavailable returns true if the error indicates the backend cannot serve reads.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrStoreClosed)
}
