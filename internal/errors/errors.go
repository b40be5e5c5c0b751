package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrListingNotFound is returned when a referenced listing does not exist
	ErrListingNotFound = errors.New("listing not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrStore is returned when the listing or boarding store fails
	ErrStore = errors.New("store failure")
)

// ListingNotFoundError represents a listing not found error with context
type ListingNotFoundError struct {
	ListingID string
}

func (e *ListingNotFoundError) Error() string {
	return fmt.Sprintf("listing with ID '%s' not found", e.ListingID)
}

func (e *ListingNotFoundError) Is(target error) bool {
	return target == ErrListingNotFound
}

// NewListingNotFoundError creates a new ListingNotFoundError
func NewListingNotFoundError(listingID string) *ListingNotFoundError {
	return &ListingNotFoundError{ListingID: listingID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps a failure of the persistence layer with the operation that failed.
// It matches both ErrStore and the wrapped driver error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
