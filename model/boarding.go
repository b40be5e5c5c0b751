package model

// Boarding is the physical property an owner manages. Listings reference it
// through Listing.BoardingID.
type Boarding struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities"`
	Status      string   `json:"status"`
	Owner       string   `json:"owner"`
}

// Approved reports whether the boarding passed moderation.
func (b Boarding) Approved() bool {
	return b.Status == StatusApproved
}
