package services

import (
	"context"
	"strings"

	"github.com/unimate/listing-search/model"
)

// SortOrder selects the pre-ranking order of listing candidates.
type SortOrder string

const (
	SortNewest       SortOrder = "newest"
	SortNameAsc      SortOrder = "name_asc"
	SortNameDesc     SortOrder = "name_desc"
	SortPriceAsc     SortOrder = "price_asc"
	SortPriceDesc    SortOrder = "price_desc"
	SortDistanceAsc  SortOrder = "distance_asc"
	SortDistanceDesc SortOrder = "distance_desc"
)

// ParseSortOrder maps a sort token to a SortOrder. Hyphenated spellings
// ("price-asc") are accepted; anything unrecognized falls back to SortNewest.
func ParseSortOrder(value string) SortOrder {
	token := SortOrder(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_"))
	switch token {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc, SortDistanceAsc, SortDistanceDesc:
		return token
	default:
		return SortNewest
	}
}

// KeyMoneyFilter constrains listings by their key-money deposit.
type KeyMoneyFilter string

const (
	KeyMoneyAny     KeyMoneyFilter = ""
	KeyMoneyWith    KeyMoneyFilter = "with"
	KeyMoneyWithout KeyMoneyFilter = "without"
)

// SearchMode identifies which ranking path served a search.
type SearchMode string

const (
	ModeBrowse   SearchMode = "browse"    // structured filters only
	ModeFreeText SearchMode = "free_text" // TF-IDF ranking of the page against q
	ModeSimilar  SearchMode = "similar"   // TF-IDF ranking against a reference listing
)

// ListingFilter is the structured predicate a ListingStore evaluates.
//
// Stores always apply the searchable invariant on top of it: available >= 0,
// status Approved and payStatus Done. Owners is the approved-owner whitelist;
// an empty whitelist matches nothing. Nil bounds do not constrain.
type ListingFilter struct {
	Owners      []string
	Type        string // "" means any type
	Gender      string // "" means any gender
	KeyMoney    KeyMoneyFilter
	PriceMin    *float64
	PriceMax    *float64
	DistanceMin *float64
	DistanceMax *float64
	Text        string // case-insensitive substring across listing and boarding text fields
	Sort        SortOrder
	Skip        int
	Limit       int // 0 means unlimited
}

// ListingStore is the read side of the listing collection, joined with boardings.
type ListingStore interface {
	// FindListings returns the listings matching filter in filter.Sort order,
	// after applying Skip and Limit.
	FindListings(ctx context.Context, filter ListingFilter) ([]model.ListingView, error)
	// CountListings counts every listing matching filter, ignoring Skip and Limit.
	CountListings(ctx context.Context, filter ListingFilter) (int, error)
	// GetListing resolves one listing by ID regardless of its moderation state.
	// It returns an error matching errors.ErrListingNotFound when the ID is unknown.
	GetListing(ctx context.Context, id string) (model.ListingView, error)
}

// BoardingStore is the read side of the boarding collection.
type BoardingStore interface {
	// ApprovedOwners returns the distinct owners of approved boardings.
	ApprovedOwners(ctx context.Context) ([]string, error)
}

// Seeder loads records into a store.
type Seeder interface {
	PutBoardings(ctx context.Context, boardings []model.Boarding) error
	PutListings(ctx context.Context, listings []model.Listing) error
}

// Store bundles every capability a concrete backend provides.
type Store interface {
	ListingStore
	BoardingStore
	Seeder
	Close() error
}

// SearchQuery is a parsed listing search request.
type SearchQuery struct {
	Text        string
	Type        string
	Gender      string
	KeyMoney    string
	Sort        string
	Page        int
	Limit       int // 0 means unlimited
	PriceMin    *float64
	PriceMax    *float64
	DistanceMin *float64
	DistanceMax *float64
	SimilarTo   string
	Minimal     bool
}

// ListingHit is a listing in a search response. RelevanceScore is only set by
// free-text ranking.
type ListingHit struct {
	model.ListingView
	RelevanceScore *float64 `json:"relevanceScore,omitempty"`
}

// SearchResult is the shaped payload of a listing search.
type SearchResult struct {
	Listings []ListingHit `json:"listings"`
	Total    int          `json:"total"`
	Page     *int         `json:"page,omitempty"`
	Pages    *int         `json:"pages,omitempty"`
	Message  string       `json:"message,omitempty"`
	Mode     SearchMode   `json:"-"`
	QueryID  string       `json:"-"`
}

// Searcher defines operations for querying listings
type Searcher interface {
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
	Listing(ctx context.Context, id string) (model.ListingView, error)
}
