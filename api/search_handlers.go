package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	internalErrors "github.com/unimate/listing-search/internal/errors"
	"github.com/unimate/listing-search/internal/logger"
	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
)

// SearchListingsHandler serves GET /listings/search.
// A similarTo reference ranks by similarity, q ranks the page by relevance,
// and otherwise the store order is returned. minimal=true replies with the
// bare listing array.
func (api *API) SearchListingsHandler(c *gin.Context) {
	startTime := time.Now()
	query := ParseSearchQuery(c, api.defaultLimit)

	result, err := api.searcher.Search(c.Request.Context(), query)
	api.trackSearch(c, query, result, err, time.Since(startTime))
	if err != nil {
		if errors.Is(err, internalErrors.ErrListingNotFound) {
			SendListingNotFoundError(c)
			return
		}
		SendServerError(c, err)
		return
	}

	if query.Minimal {
		c.JSON(http.StatusOK, result.Listings)
		return
	}
	c.JSON(http.StatusOK, result)
}

// trackSearch records the search asynchronously to avoid slowing down the
// response.
func (api *API) trackSearch(c *gin.Context, query services.SearchQuery, result services.SearchResult, err error, elapsed time.Duration) {
	if api.analytics == nil {
		return
	}
	requestID, _ := c.Get(requestIDKey)
	id, _ := requestID.(string)

	event := model.SearchEvent{
		RequestID:    id,
		Query:        strings.TrimSpace(query.Text),
		SimilarTo:    query.SimilarTo,
		Mode:         string(modeOf(query)),
		ResponseTime: elapsed,
		ResultCount:  len(result.Listings),
		Total:        result.Total,
		Failed:       err != nil,
	}
	if query.SimilarTo != "" {
		event.Query = ""
	}

	log := logger.FromContext(c.Request.Context())
	go func() {
		if err := api.analytics.TrackSearchEvent(event); err != nil {
			log.Warn("failed to track search event", "error", err)
		}
	}()
}

func modeOf(query services.SearchQuery) services.SearchMode {
	switch {
	case query.SimilarTo != "":
		return services.ModeSimilar
	case strings.TrimSpace(query.Text) != "":
		return services.ModeFreeText
	default:
		return services.ModeBrowse
	}
}
