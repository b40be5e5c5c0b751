// Package testutil provides listing fixtures and a seeded embedded store for tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/store/bunt"
)

// Owner identities used by the fixtures.
const (
	OwnerAmal  = "amal@example.com"
	OwnerNimal = "nimal@example.com"
	OwnerSunil = "sunil@example.com" // only owns a pending boarding
)

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

var baseTime = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// Boardings returns two approved boardings and one pending boarding.
func Boardings() []model.Boarding {
	return []model.Boarding{
		{
			ID:          "b1",
			Name:        "Lakeside Residence",
			Address:     "12 Lake Road, Colombo",
			Description: "Modern boarding near the university",
			Amenities:   []string{"Laundry"},
			Status:      model.StatusApproved,
			Owner:       OwnerAmal,
		},
		{
			ID:          "b2",
			Name:        "Hillview Hostel",
			Address:     "4 Temple Lane, Kandy",
			Description: "Family run hostel",
			Amenities:   []string{"Kitchen"},
			Status:      model.StatusApproved,
			Owner:       OwnerNimal,
		},
		{
			ID:     "b3",
			Name:   "Pending House",
			Status: model.StatusPending,
			Owner:  OwnerSunil,
		},
	}
}

// Listings returns four searchable listings (l1..l4) and three that the
// moderation predicate or owner whitelist excludes (l5..l7).
//
// Searchable, newest first: l4, l3, l2, l1.
func Listings() []model.Listing {
	listing := func(id string, day int) model.Listing {
		created := baseTime.AddDate(0, 0, day)
		return model.Listing{
			ID:        id,
			Available: 1,
			Status:    model.StatusApproved,
			PayStatus: model.PayStatusDone,
			CreatedAt: created,
			UpdatedAt: created,
		}
	}

	l1 := listing("l1", 1)
	l1.Name, l1.Description = "WiFi Palace", "Spacious single room"
	l1.Type, l1.Gender = "Single", "Male"
	l1.Amenities = []string{"Parking"}
	l1.Price, l1.Distance, l1.KeyMoney = 15000, 1.2, Float(0)
	l1.Owner, l1.BoardingID = OwnerAmal, "b1"

	l2 := listing("l2", 2)
	l2.Name, l2.Description = "Quiet Room", "Fast wifi included, close to campus"
	l2.Type, l2.Gender = "Single", "Female"
	l2.Amenities = []string{"Desk"}
	l2.Price, l2.Distance, l2.KeyMoney = 12000, 0.8, Float(500)
	l2.Owner, l2.BoardingID = OwnerAmal, "b1"

	l3 := listing("l3", 3)
	l3.Name, l3.Description = "Shared Annex", "Shared room with attached bathroom"
	l3.Type, l3.Gender = "Shared", "Male"
	l3.Amenities = []string{"Attached bathroom"}
	l3.Price, l3.Distance = 8000, 2.5
	l3.Owner, l3.BoardingID = OwnerNimal, "b2"

	l4 := listing("l4", 4)
	l4.Name, l4.Description = "Garden Studio", "Quiet studio with a garden view"
	l4.Type, l4.Gender = "Single", "Female"
	l4.Amenities = []string{"Garden", "Desk"}
	l4.Price, l4.Distance, l4.KeyMoney = 20000, 3.0, Float(1000)
	l4.Owner, l4.BoardingID = OwnerNimal, "b2"

	l5 := listing("l5", 5)
	l5.Name, l5.Description = "Pending Owner Room", "Room with wifi"
	l5.Type, l5.Gender = "Single", "Male"
	l5.Price, l5.Distance, l5.KeyMoney = 9000, 1.0, Float(0)
	l5.Owner, l5.BoardingID = OwnerSunil, "b3"

	l6 := listing("l6", 6)
	l6.Name, l6.Description = "Unpaid Room", "Room with wifi"
	l6.Type, l6.Gender = "Single", "Male"
	l6.Price, l6.Distance, l6.KeyMoney = 9000, 1.0, Float(0)
	l6.PayStatus = "Pending"
	l6.Owner, l6.BoardingID = OwnerAmal, "b1"

	l7 := listing("l7", 7)
	l7.Name, l7.Description = "Rejected Room", "Room with wifi"
	l7.Type, l7.Gender = "Single", "Male"
	l7.Price, l7.Distance, l7.KeyMoney = 9000, 1.0, Float(0)
	l7.Status = model.StatusRejected
	l7.Owner, l7.BoardingID = OwnerNimal, "b2"

	return []model.Listing{l1, l2, l3, l4, l5, l6, l7}
}

// Views joins Listings with Boardings.
func Views() []model.ListingView {
	boardings := make(map[string]model.Boarding)
	for _, b := range Boardings() {
		boardings[b.ID] = b
	}
	listings := Listings()
	views := make([]model.ListingView, 0, len(listings))
	for _, l := range listings {
		view := model.ListingView{Listing: l}
		if b, ok := boardings[l.BoardingID]; ok {
			view.Boarding = &b
		}
		views = append(views, view)
	}
	return views
}

// ApprovedOwners is the whitelist the fixture boardings produce.
func ApprovedOwners() []string {
	return []string{OwnerAmal, OwnerNimal}
}

// NewSeededStore returns an in-memory bunt store loaded with the fixtures.
// It is closed when the test finishes.
func NewSeededStore(t *testing.T) *bunt.Store {
	t.Helper()

	s, err := bunt.Open(":memory:")
	require.NoError(t, err, "Failed to open in-memory store")
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.PutBoardings(ctx, Boardings()))
	require.NoError(t, s.PutListings(ctx, Listings()))
	return s
}

// IDs extracts listing IDs in order.
func IDs(views []model.ListingView) []string {
	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}
