package search

import (
	"strings"

	"github.com/unimate/listing-search/index"
	"github.com/unimate/listing-search/internal/tokenizer"
	"github.com/unimate/listing-search/model"
)

// DocumentText builds the normalized composite text of a listing: its name,
// description, type and amenities followed by the boarding's name, address,
// description and amenities. Empty fields are dropped before normalizing.
func DocumentText(view model.ListingView) string {
	parts := make([]string, 0, 8+len(view.Amenities))
	parts = appendNonEmpty(parts, view.Name, view.Description, view.Type)
	parts = appendNonEmpty(parts, view.Amenities...)
	if b := view.Boarding; b != nil {
		parts = appendNonEmpty(parts, b.Name, b.Address, b.Description)
		parts = appendNonEmpty(parts, b.Amenities...)
	}
	return tokenizer.Normalize(strings.Join(parts, " "))
}

func appendNonEmpty(parts []string, values ...string) []string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return parts
}

// documents converts candidates into index documents keyed by listing ID.
func documents(views []model.ListingView) []index.Document {
	docs := make([]index.Document, len(views))
	for i, view := range views {
		docs[i] = index.Document{Key: view.ID, Text: DocumentText(view)}
	}
	return docs
}
