// Package api provides the HTTP surface of the listing search service.
package api

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unimate/listing-search/internal/logger"
	"github.com/unimate/listing-search/services"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateListingID validates a listing id path parameter
func ValidateListingID(id string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if strings.TrimSpace(id) == "" {
		result.AddError("id", "Listing ID cannot be empty or whitespace-only")
		return result
	}
	if strings.TrimSpace(id) != id {
		result.AddError("id", "Listing ID cannot have leading or trailing whitespace")
	}
	return result
}

// ParseSearchQuery reads the search parameters from the query string.
// Malformed numbers never fail the request: a bad bound is dropped, a bad
// limit becomes defaultLimit and a bad page becomes 1.
func ParseSearchQuery(c *gin.Context, defaultLimit int) services.SearchQuery {
	ctx := c.Request.Context()
	return services.SearchQuery{
		Text:        c.Query("q"),
		Type:        c.Query("type"),
		Gender:      c.Query("gender"),
		KeyMoney:    c.Query("keyMoney"),
		Sort:        c.Query("sort"),
		Page:        parsePage(ctx, c.Query("page")),
		Limit:       parseLimit(ctx, c.Query("limit"), defaultLimit),
		PriceMin:    parseFloatParam(ctx, "priceMin", c.Query("priceMin")),
		PriceMax:    parseFloatParam(ctx, "priceMax", c.Query("priceMax")),
		DistanceMin: parseFloatParam(ctx, "distanceMin", c.Query("distanceMin")),
		DistanceMax: parseFloatParam(ctx, "distanceMax", c.Query("distanceMax")),
		SimilarTo:   strings.TrimSpace(c.Query("similarTo")),
		Minimal:     parseBool(c.Query("minimal")),
	}
}

// parseFloatParam returns nil for an absent or malformed value.
func parseFloatParam(ctx context.Context, name, raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.FromContext(ctx).Debug("ignoring malformed numeric parameter", "param", name, "value", raw)
		return nil
	}
	return &v
}

// parseLimit returns 0 (unlimited) when absent.
func parseLimit(ctx context.Context, raw string, defaultLimit int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		logger.FromContext(ctx).Debug("malformed limit, using default", "value", raw, "default", defaultLimit)
		return defaultLimit
	}
	return n
}

func parsePage(ctx context.Context, raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		logger.FromContext(ctx).Debug("malformed page, using first page", "value", raw)
		return 1
	}
	return n
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}
