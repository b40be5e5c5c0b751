package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unimate/listing-search/internal/logger"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeListingNotFound  ErrorCode = "LISTING_NOT_FOUND"

	// Server Error Codes (5xx)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeTimeout       ErrorCode = "REQUEST_TIMEOUT"
)

const (
	messageListingNotFound = "Listing not found"
	messageServerError     = "Server error"
	messageValidation      = "Invalid request"
	messageTimeout         = "request timeout"
)

// ErrorDetail provides field context for a validation error
type ErrorDetail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// APIError represents a standardized API error response
type APIError struct {
	Error     string        `json:"error"`
	Code      ErrorCode     `json:"code"`
	Details   string        `json:"details,omitempty"`
	Fields    []ErrorDetail `json:"fields,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIErrorResponse creates a standardized error response
func APIErrorResponse(code ErrorCode, message, details string) *APIError {
	return &APIError{
		Error:     message,
		Code:      code,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// SendError sends a standardized error response and aborts the chain.
func SendError(c *gin.Context, statusCode int, resp *APIError) {
	if id, ok := c.Get(requestIDKey); ok {
		if s, ok := id.(string); ok {
			resp.RequestID = s
		}
	}
	c.AbortWithStatusJSON(statusCode, resp)
}

// SendListingNotFoundError sends the 404 for an unknown listing or similarity
// reference.
func SendListingNotFoundError(c *gin.Context) {
	SendError(c, http.StatusNotFound, APIErrorResponse(ErrorCodeListingNotFound, messageListingNotFound, ""))
}

// SendServerError sends a 500 carrying err in details. An expired request
// deadline is reported as 504.
func SendServerError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		SendError(c, http.StatusGatewayTimeout, APIErrorResponse(ErrorCodeTimeout, messageTimeout, ""))
		return
	}
	logger.FromContext(c.Request.Context()).Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err)
	SendError(c, http.StatusInternalServerError, APIErrorResponse(ErrorCodeInternalError, messageServerError, err.Error()))
}

// SendValidationError sends a 400 listing every invalid field.
func SendValidationError(c *gin.Context, result *ValidationResult) {
	resp := APIErrorResponse(ErrorCodeValidationFailed, messageValidation, "")
	for _, e := range result.Errors {
		resp.Fields = append(resp.Fields, ErrorDetail{Field: e.Field, Message: e.Message})
	}
	SendError(c, http.StatusBadRequest, resp)
}
