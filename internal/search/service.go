// Package search implements listing search: candidate filtering through a
// ListingStore, TF-IDF ranking over the fetched candidates and response shaping.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unimate/listing-search/config"
	"github.com/unimate/listing-search/index"
	apperrors "github.com/unimate/listing-search/internal/errors"
	"github.com/unimate/listing-search/internal/logger"
	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
)

// NoResultsMessage is attached to empty search results.
const NoResultsMessage = "No listings found"

// Search outcomes reported to the Recorder.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Recorder receives search measurements.
type Recorder interface {
	SearchCompleted(mode services.SearchMode, outcome string, candidates int, elapsed time.Duration)
	ScoreCache(result string)
}

type nopRecorder struct{}

func (nopRecorder) SearchCompleted(services.SearchMode, string, int, time.Duration) {}
func (nopRecorder) ScoreCache(string)                                              {}

// Service implements services.Searcher over a listing and a boarding store.
type Service struct {
	listings  services.ListingStore
	boardings services.BoardingStore
	settings  config.SearchSettings
	cache     ScoreCache
	recorder  Recorder

	buildIndex func([]index.Document) *index.Index
}

var _ services.Searcher = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithScoreCache enables caching of TF-IDF weights.
func WithScoreCache(cache ScoreCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithRecorder reports search measurements to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a new search Service.
func NewService(listings services.ListingStore, boardings services.BoardingStore, settings config.SearchSettings, opts ...Option) (*Service, error) {
	if listings == nil {
		return nil, fmt.Errorf("listing store cannot be nil")
	}
	if boardings == nil {
		return nil, fmt.Errorf("boarding store cannot be nil")
	}
	settings.ApplyDefaults()
	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid search settings: %v", problems)
	}

	s := &Service{
		listings:   listings,
		boardings:  boardings,
		settings:   settings,
		recorder:   nopRecorder{},
		buildIndex: index.Build,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Settings returns the effective search settings.
func (s *Service) Settings() config.SearchSettings {
	return s.settings
}

// Search runs one listing search. A SimilarTo reference switches to
// similarity ranking, a non-empty Text to free-text ranking of the current
// page; otherwise the store order is final.
func (s *Service) Search(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	start := time.Now()
	if s.settings.MaxLimit > 0 && query.Limit > s.settings.MaxLimit {
		query.Limit = s.settings.MaxLimit
	}

	var (
		result     services.SearchResult
		candidates int
		err        error
	)
	if query.SimilarTo != "" {
		result, candidates, err = s.similar(ctx, query)
	} else {
		result, candidates, err = s.search(ctx, query)
	}

	elapsed := time.Since(start)
	log := logger.FromContext(ctx)
	if err != nil {
		outcome := OutcomeError
		if isNotFound(err) {
			outcome = OutcomeNotFound
		}
		s.recorder.SearchCompleted(result.Mode, outcome, candidates, elapsed)
		log.Debug("search failed", "mode", result.Mode, "error", err)
		return services.SearchResult{}, err
	}

	result.QueryID = uuid.New().String()
	if len(result.Listings) == 0 {
		result.Message = NoResultsMessage
	}
	s.recorder.SearchCompleted(result.Mode, OutcomeOK, candidates, elapsed)
	log.Debug("search completed",
		"query_id", result.QueryID,
		"mode", result.Mode,
		"candidates", candidates,
		"results", len(result.Listings),
		"total", result.Total,
		"elapsed", elapsed)
	return result, nil
}

// search serves browse and free-text requests.
func (s *Service) search(ctx context.Context, query services.SearchQuery) (services.SearchResult, int, error) {
	result := services.SearchResult{Mode: services.ModeBrowse}

	owners, err := s.boardings.ApprovedOwners(ctx)
	if err != nil {
		return result, 0, err
	}
	filter := BuildFilter(query, owners)
	if filter.Text != "" {
		result.Mode = services.ModeFreeText
	}

	views, err := s.listings.FindListings(ctx, filter)
	if err != nil {
		return result, 0, err
	}

	total := len(views)
	if filter.Limit > 0 {
		if total, err = s.listings.CountListings(ctx, filter); err != nil {
			return result, len(views), err
		}
	}

	if result.Mode == services.ModeFreeText && len(views) > 0 {
		result.Listings = s.rankFreeText(ctx, views, filter.Text)
	} else {
		result.Listings = plainHits(views)
	}
	result.Total = total

	if filter.Limit > 0 {
		page := pageNumber(query.Page)
		pages := (total + filter.Limit - 1) / filter.Limit
		result.Page, result.Pages = &page, &pages
	}
	return result, len(views), nil
}

// similar serves similarTo requests. The reference is resolved before any
// candidate is fetched or indexed.
func (s *Service) similar(ctx context.Context, query services.SearchQuery) (services.SearchResult, int, error) {
	result := services.SearchResult{Mode: services.ModeSimilar}

	reference, err := s.listings.GetListing(ctx, query.SimilarTo)
	if err != nil {
		return result, 0, err
	}

	owners, err := s.boardings.ApprovedOwners(ctx)
	if err != nil {
		return result, 0, err
	}
	filter := BuildFilter(query, owners)
	filter.Text = ""
	filter.Skip, filter.Limit = 0, 0

	views, err := s.listings.FindListings(ctx, filter)
	if err != nil {
		return result, 0, err
	}

	result.Listings = s.rankSimilar(ctx, reference, views)
	result.Total = len(result.Listings)
	return result, len(views), nil
}

// Listing returns a single listing joined with its boarding.
func (s *Service) Listing(ctx context.Context, id string) (model.ListingView, error) {
	return s.listings.GetListing(ctx, id)
}

func plainHits(views []model.ListingView) []services.ListingHit {
	hits := make([]services.ListingHit, len(views))
	for i, view := range views {
		hits[i] = services.ListingHit{ListingView: view}
	}
	return hits
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrListingNotFound)
}
