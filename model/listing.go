// Package model defines the listing and boarding records the search service reads.
package model

import "time"

// Listing and boarding moderation states.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// PayStatusDone marks a listing whose owner has paid the listing fee.
const PayStatusDone = "Done"

// Listing is a rentable unit advertised by a boarding owner.
// KeyMoney is a pointer because older listing documents never carried the field;
// nil means "unknown", which is not the same as a zero deposit.
type Listing struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Gender      string    `json:"gender"`
	Amenities   []string  `json:"amenities"`
	Price       float64   `json:"price"`
	Distance    float64   `json:"distance"`
	Available   int       `json:"available"`
	KeyMoney    *float64  `json:"keyMoney,omitempty"`
	Status      string    `json:"status"`
	PayStatus   string    `json:"payStatus"`
	Owner       string    `json:"owner"`
	BoardingID  string    `json:"boardingID"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListingView is a listing joined with the boarding record it references.
// Boarding is nil when the reference does not resolve.
//
// The Boarding field shadows Listing.BoardingID in JSON, so a view serializes
// "boardingID" as the joined object the way the web client expects.
type ListingView struct {
	Listing
	Boarding *Boarding `json:"boardingID"`
}
