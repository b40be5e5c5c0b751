package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unimate/listing-search/internal/testutil"
	"github.com/unimate/listing-search/services"
	"github.com/unimate/listing-search/store"
)

func baseFilter() services.ListingFilter {
	return services.ListingFilter{Owners: testutil.ApprovedOwners(), Sort: services.SortNewest}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *services.ListingFilter)
		wantIDs []string
	}{
		{
			name:    "moderation and whitelist only",
			mutate:  func(f *services.ListingFilter) {},
			wantIDs: []string{"l4", "l3", "l2", "l1"},
		},
		{
			name:    "empty whitelist matches nothing",
			mutate:  func(f *services.ListingFilter) { f.Owners = []string{} },
			wantIDs: []string{},
		},
		{
			name:    "type",
			mutate:  func(f *services.ListingFilter) { f.Type = "Shared" },
			wantIDs: []string{"l3"},
		},
		{
			name:    "gender",
			mutate:  func(f *services.ListingFilter) { f.Gender = "Female" },
			wantIDs: []string{"l4", "l2"},
		},
		{
			name:    "key money without skips unknown deposits",
			mutate:  func(f *services.ListingFilter) { f.KeyMoney = services.KeyMoneyWithout },
			wantIDs: []string{"l1"},
		},
		{
			name:    "key money with",
			mutate:  func(f *services.ListingFilter) { f.KeyMoney = services.KeyMoneyWith },
			wantIDs: []string{"l4", "l2"},
		},
		{
			name: "price range inclusive",
			mutate: func(f *services.ListingFilter) {
				f.PriceMin, f.PriceMax = testutil.Float(12000), testutil.Float(15000)
			},
			wantIDs: []string{"l2", "l1"},
		},
		{
			name:    "distance max",
			mutate:  func(f *services.ListingFilter) { f.DistanceMax = testutil.Float(1.2) },
			wantIDs: []string{"l2", "l1"},
		},
		{
			name:    "text matches boarding address case-insensitively",
			mutate:  func(f *services.ListingFilter) { f.Text = "TEMPLE lane" },
			wantIDs: []string{"l4", "l3"},
		},
		{
			name:    "text matches listing description",
			mutate:  func(f *services.ListingFilter) { f.Text = "wifi" },
			wantIDs: []string{"l2", "l1"},
		},
		{
			name:    "price ascending",
			mutate:  func(f *services.ListingFilter) { f.Sort = services.SortPriceAsc },
			wantIDs: []string{"l3", "l2", "l1", "l4"},
		},
		{
			name:    "distance descending",
			mutate:  func(f *services.ListingFilter) { f.Sort = services.SortDistanceDesc },
			wantIDs: []string{"l4", "l3", "l1", "l2"},
		},
		{
			name:    "name ascending",
			mutate:  func(f *services.ListingFilter) { f.Sort = services.SortNameAsc },
			wantIDs: []string{"l4", "l2", "l3", "l1"},
		},
		{
			name:    "skip and limit",
			mutate:  func(f *services.ListingFilter) { f.Skip, f.Limit = 1, 2 },
			wantIDs: []string{"l3", "l2"},
		},
		{
			name:    "skip past the end",
			mutate:  func(f *services.ListingFilter) { f.Skip, f.Limit = 10, 2 },
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := baseFilter()
			tt.mutate(&filter)

			page, _ := store.Apply(testutil.Views(), filter)
			assert.Equal(t, tt.wantIDs, testutil.IDs(page))
		})
	}
}

func TestApply_TotalIgnoresPaging(t *testing.T) {
	filter := baseFilter()
	filter.Skip, filter.Limit = 2, 1

	page, total := store.Apply(testutil.Views(), filter)
	assert.Len(t, page, 1)
	assert.Equal(t, 4, total)
}

func TestApply_PriceBoundsNeverAddCandidates(t *testing.T) {
	_, unbounded := store.Apply(testutil.Views(), baseFilter())

	bounds := []struct{ min, max *float64 }{
		{testutil.Float(0), nil},
		{nil, testutil.Float(100000)},
		{testutil.Float(10000), testutil.Float(16000)},
		{testutil.Float(50000), nil},
	}
	for _, b := range bounds {
		filter := baseFilter()
		filter.PriceMin, filter.PriceMax = b.min, b.max
		_, bounded := store.Apply(testutil.Views(), filter)
		assert.LessOrEqual(t, bounded, unbounded)
	}
}

func TestSortViews_TiesBreakOnID(t *testing.T) {
	views := testutil.Views()[:4]
	for i := range views {
		views[i].Price = 100
	}
	views[0], views[3] = views[3], views[0]

	store.SortViews(views, services.SortPriceDesc)
	assert.Equal(t, []string{"l1", "l2", "l3", "l4"}, testutil.IDs(views))
}

func TestSearchable(t *testing.T) {
	views := testutil.Views()
	assert.True(t, store.Searchable(views[0].Listing))

	negative := views[0].Listing
	negative.Available = -1
	assert.False(t, store.Searchable(negative))

	assert.False(t, store.Searchable(views[5].Listing), "unpaid")
	assert.False(t, store.Searchable(views[6].Listing), "rejected")
}

func TestMatchesText_WithoutBoarding(t *testing.T) {
	view := testutil.Views()[0]
	view.Boarding = nil

	assert.True(t, store.MatchesText(view, "palace"))
	assert.False(t, store.MatchesText(view, "lake road"))
}
