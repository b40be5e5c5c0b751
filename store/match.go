// Package store holds the backend-independent pieces of listing persistence:
// in-memory evaluation of a ListingFilter, candidate ordering and paging.
// Concrete backends live in the bunt, postgres and mongo subpackages.
package store

import (
	"sort"
	"strings"

	"github.com/unimate/listing-search/internal/logger"
	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
)

// Searchable reports whether a listing passes the moderation predicate every
// search applies: non-negative availability, approved and paid.
func Searchable(listing model.Listing) bool {
	return listing.Available >= 0 &&
		listing.Status == model.StatusApproved &&
		listing.PayStatus == model.PayStatusDone
}

// OwnerSet turns the approved-owner whitelist into a lookup set.
func OwnerSet(owners []string) map[string]struct{} {
	set := make(map[string]struct{}, len(owners))
	for _, owner := range owners {
		set[owner] = struct{}{}
	}
	return set
}

// Matches evaluates filter against a joined listing. owners must be
// OwnerSet(filter.Owners).
func Matches(view model.ListingView, filter services.ListingFilter, owners map[string]struct{}) bool {
	listing := view.Listing
	if !Searchable(listing) {
		return false
	}
	if _, ok := owners[listing.Owner]; !ok {
		return false
	}
	if filter.Type != "" && listing.Type != filter.Type {
		return false
	}
	if filter.Gender != "" && listing.Gender != filter.Gender {
		return false
	}
	if !matchesKeyMoney(listing, filter.KeyMoney) {
		return false
	}
	if !withinBounds(listing.Price, filter.PriceMin, filter.PriceMax) {
		return false
	}
	if !withinBounds(listing.Distance, filter.DistanceMin, filter.DistanceMax) {
		return false
	}
	if filter.Text != "" && !MatchesText(view, filter.Text) {
		return false
	}
	return true
}

func matchesKeyMoney(listing model.Listing, want services.KeyMoneyFilter) bool {
	if want == services.KeyMoneyAny {
		return true
	}
	if listing.KeyMoney == nil {
		// Neither "with" nor "without" can be decided for an unset deposit
		logger.WithComponent("store").Debug("listing has no keyMoney value",
			"listing_id", listing.ID, "filter", string(want))
		return false
	}
	switch want {
	case services.KeyMoneyWith:
		return *listing.KeyMoney > 0
	case services.KeyMoneyWithout:
		return *listing.KeyMoney == 0
	default:
		return true
	}
}

func withinBounds(value float64, min, max *float64) bool {
	if min != nil && value < *min {
		return false
	}
	if max != nil && value > *max {
		return false
	}
	return true
}

// MatchesText reports whether text occurs, case-insensitively, in the listing
// name, description or type, or in the boarding name, address or description.
func MatchesText(view model.ListingView, text string) bool {
	needle := strings.ToLower(text)
	fields := []string{view.Name, view.Description, view.Type}
	if view.Boarding != nil {
		fields = append(fields, view.Boarding.Name, view.Boarding.Address, view.Boarding.Description)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// SortViews orders views in place. Ties fall back to ascending listing ID.
func SortViews(views []model.ListingView, order services.SortOrder) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].Listing, views[j].Listing
		switch order {
		case services.SortNameAsc:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		case services.SortNameDesc:
			if a.Name != b.Name {
				return a.Name > b.Name
			}
		case services.SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case services.SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case services.SortDistanceAsc:
			if a.Distance != b.Distance {
				return a.Distance < b.Distance
			}
		case services.SortDistanceDesc:
			if a.Distance != b.Distance {
				return a.Distance > b.Distance
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})
}

// Page applies skip and limit to an already ordered slice. limit 0 keeps
// everything after skip.
func Page(views []model.ListingView, skip, limit int) []model.ListingView {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(views) {
		return []model.ListingView{}
	}
	views = views[skip:]
	if limit > 0 && limit < len(views) {
		views = views[:limit]
	}
	return views
}

// Apply filters, orders and pages views, returning the page and the number of
// matches before paging.
func Apply(views []model.ListingView, filter services.ListingFilter) ([]model.ListingView, int) {
	owners := OwnerSet(filter.Owners)
	matched := make([]model.ListingView, 0, len(views))
	for _, view := range views {
		if Matches(view, filter, owners) {
			matched = append(matched, view)
		}
	}
	SortViews(matched, filter.Sort)
	return Page(matched, filter.Skip, filter.Limit), len(matched)
}
