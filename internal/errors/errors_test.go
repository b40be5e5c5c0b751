package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestListingNotFoundError(t *testing.T) {
	err := NewListingNotFoundError("65f1c0ffee")

	expectedMsg := "listing with ID '65f1c0ffee' not found"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrListingNotFound) {
		t.Error("Expected error to match ErrListingNotFound sentinel")
	}

	if errors.Is(err, ErrStore) {
		t.Error("Error should not match ErrStore")
	}

	// Wrapped errors keep matching the sentinel
	wrapped := fmt.Errorf("resolve reference: %w", err)
	if !errors.Is(wrapped, ErrListingNotFound) {
		t.Error("Expected wrapped error to match ErrListingNotFound sentinel")
	}

	var notFound *ListingNotFoundError
	if !errors.As(wrapped, &notFound) || notFound.ListingID != "65f1c0ffee" {
		t.Error("Expected errors.As to recover the listing ID")
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		message string
		want    string
	}{
		{
			name:    "with field",
			field:   "limit",
			message: "must be positive",
			want:    "validation error for field 'limit': must be positive",
		},
		{
			name:    "without field",
			message: "bad request",
			want:    "validation error: bad request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message)
			if err.Error() != tt.want {
				t.Errorf("Expected error message '%s', got '%s'", tt.want, err.Error())
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Error("Expected error to match ErrInvalidInput sentinel")
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreError("find listings", cause)

	expectedMsg := "store find listings failed: connection refused"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, err.Error())
	}

	if !errors.Is(err, ErrStore) {
		t.Error("Expected error to match ErrStore sentinel")
	}

	if !errors.Is(err, cause) {
		t.Error("Expected error to unwrap to the driver error")
	}

	if errors.Is(err, ErrListingNotFound) {
		t.Error("Error should not match ErrListingNotFound")
	}
}
