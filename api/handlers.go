package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unimate/listing-search/config"
	"github.com/unimate/listing-search/internal/analytics"
	internalErrors "github.com/unimate/listing-search/internal/errors"
	"github.com/unimate/listing-search/internal/metrics"
	"github.com/unimate/listing-search/services"
)

// API holds dependencies for API handlers.
type API struct {
	searcher  services.Searcher
	analytics *analytics.Service
	metrics   *metrics.Metrics
	server    config.ServerConfig

	defaultLimit int
}

// Option configures an API.
type Option func(*API)

// WithMetrics records request metrics and serves m on the metrics path.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *API) { a.metrics = m }
}

// WithServerConfig sets CORS origins and the per-request timeout.
func WithServerConfig(cfg config.ServerConfig) Option {
	return func(a *API) { a.server = cfg }
}

// WithDefaultLimit sets the page size used for a malformed limit parameter.
func WithDefaultLimit(n int) Option {
	return func(a *API) { a.defaultLimit = n }
}

// NewAPI creates a new API handler structure.
func NewAPI(searcher services.Searcher, tracker *analytics.Service, opts ...Option) *API {
	a := &API{
		searcher:  searcher,
		analytics: tracker,
		server:    config.Default().Server,

		defaultLimit: config.DefaultSearchSettings().DefaultLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetupRoutes installs the middleware chain and defines all routes.
func SetupRoutes(router *gin.Engine, api *API, metricsPath string) {
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(api.server.AllowedOrigins))
	if api.metrics != nil {
		router.Use(MetricsMiddleware(api.metrics))
	}
	router.Use(TimeoutMiddleware(api.server.RequestTimeout))

	router.GET("/health", api.HealthCheckHandler)
	router.GET("/analytics", api.GetAnalyticsHandler)
	if api.metrics != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		router.GET(metricsPath, gin.WrapH(api.metrics.Handler()))
	}

	listingRoutes := router.Group("/listings")
	{
		listingRoutes.GET("/search", api.SearchListingsHandler) // Browse, free-text, or similar search
		listingRoutes.GET("/:id", api.GetListingHandler)        // Single listing with its boarding
	}
}

// GetListingHandler returns one listing joined with its boarding.
func (api *API) GetListingHandler(c *gin.Context) {
	id := c.Param("id")
	if result := ValidateListingID(id); result.HasErrors() {
		SendValidationError(c, result)
		return
	}

	view, err := api.searcher.Listing(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, internalErrors.ErrListingNotFound) {
			SendListingNotFoundError(c)
			return
		}
		SendServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
