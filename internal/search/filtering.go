package search

import (
	"strings"

	"github.com/unimate/listing-search/services"
)

// allValue disables the type, gender and keyMoney filters.
const allValue = "all"

// BuildFilter converts a search request into the store predicate. owners is
// the approved-owner whitelist; a nil whitelist is treated as empty.
//
// Paging is only applied when query.Limit is positive; page numbers below 1
// are read as page 1.
func BuildFilter(query services.SearchQuery, owners []string) services.ListingFilter {
	if owners == nil {
		owners = []string{}
	}
	filter := services.ListingFilter{
		Owners:      owners,
		Type:        exactValue(query.Type),
		Gender:      exactValue(query.Gender),
		KeyMoney:    parseKeyMoney(query.KeyMoney),
		PriceMin:    query.PriceMin,
		PriceMax:    query.PriceMax,
		DistanceMin: query.DistanceMin,
		DistanceMax: query.DistanceMax,
		Text:        strings.TrimSpace(query.Text),
		Sort:        services.ParseSortOrder(query.Sort),
	}
	if query.Limit > 0 {
		filter.Limit = query.Limit
		filter.Skip = (pageNumber(query.Page) - 1) * query.Limit
	}
	return filter
}

func exactValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, allValue) {
		return ""
	}
	return v
}

func parseKeyMoney(v string) services.KeyMoneyFilter {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case string(services.KeyMoneyWith):
		return services.KeyMoneyWith
	case string(services.KeyMoneyWithout):
		return services.KeyMoneyWithout
	default:
		return services.KeyMoneyAny
	}
}

func pageNumber(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
