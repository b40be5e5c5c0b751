// Package bunt is the embedded listing store backed by buntdb. Records are
// kept as JSON values under "listing:<id>" and "boarding:<id>" keys.
package bunt

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/tidwall/buntdb"

	apperrors "github.com/unimate/listing-search/internal/errors"
	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
	"github.com/unimate/listing-search/store"
)

const (
	listingPrefix  = "listing:"
	boardingPrefix = "boarding:"
)

// Store implements services.Store on a buntdb database.
type Store struct {
	db *buntdb.DB
}

var _ services.Store = (*Store)(nil)

// Open opens (or creates) the database at path. Use ":memory:" for a
// non-persistent store.
func Open(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, apperrors.NewStoreError("open", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func listingKey(id string) string  { return listingPrefix + id }
func boardingKey(id string) string { return boardingPrefix + id }

// PutBoardings inserts or replaces boardings in one transaction.
func (s *Store) PutBoardings(ctx context.Context, boardings []model.Boarding) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, b := range boardings {
		if b.ID == "" {
			return apperrors.NewValidationError("_id", "boarding ID cannot be empty")
		}
	}
	err := s.db.Update(func(tx *buntdb.Tx) error {
		for _, b := range boardings {
			value, err := json.Marshal(b)
			if err != nil {
				return err
			}
			if _, _, err := tx.Set(boardingKey(b.ID), string(value), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewStoreError("put boardings", err)
	}
	return nil
}

// PutListings inserts or replaces listings in one transaction.
func (s *Store) PutListings(ctx context.Context, listings []model.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, l := range listings {
		if l.ID == "" {
			return apperrors.NewValidationError("_id", "listing ID cannot be empty")
		}
	}
	err := s.db.Update(func(tx *buntdb.Tx) error {
		for _, l := range listings {
			value, err := json.Marshal(l)
			if err != nil {
				return err
			}
			if _, _, err := tx.Set(listingKey(l.ID), string(value), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.NewStoreError("put listings", err)
	}
	return nil
}

// ApprovedOwners returns the distinct owners of approved boardings, sorted.
func (s *Store) ApprovedOwners(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var decodeErr error
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(boardingPrefix+"*", func(key, value string) bool {
			var b model.Boarding
			if decodeErr = json.Unmarshal([]byte(value), &b); decodeErr != nil {
				return false
			}
			if b.Approved() {
				seen[b.Owner] = struct{}{}
			}
			return true
		})
	})
	if err == nil {
		err = decodeErr
	}
	if err != nil {
		return nil, apperrors.NewStoreError("approved owners", err)
	}

	owners := make([]string, 0, len(seen))
	for owner := range seen {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners, nil
}

// FindListings returns the ordered, paged listings matching filter.
func (s *Store) FindListings(ctx context.Context, filter services.ListingFilter) ([]model.ListingView, error) {
	views, err := s.loadViews(ctx)
	if err != nil {
		return nil, err
	}
	page, _ := store.Apply(views, filter)
	return page, nil
}

// CountListings counts every listing matching filter.
func (s *Store) CountListings(ctx context.Context, filter services.ListingFilter) (int, error) {
	views, err := s.loadViews(ctx)
	if err != nil {
		return 0, err
	}
	filter.Skip, filter.Limit = 0, 0
	_, total := store.Apply(views, filter)
	return total, nil
}

// GetListing resolves one listing joined with its boarding.
func (s *Store) GetListing(ctx context.Context, id string) (model.ListingView, error) {
	if err := ctx.Err(); err != nil {
		return model.ListingView{}, err
	}
	var view model.ListingView
	err := s.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(listingKey(id))
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(value), &view.Listing); err != nil {
			return err
		}
		view.Boarding, err = lookupBoarding(tx, view.BoardingID)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return model.ListingView{}, apperrors.NewListingNotFoundError(id)
	}
	if err != nil {
		return model.ListingView{}, apperrors.NewStoreError("get listing", err)
	}
	return view, nil
}

// loadViews reads every listing joined with its boarding, in key order.
func (s *Store) loadViews(ctx context.Context) ([]model.ListingView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var views []model.ListingView
	var iterErr error
	err := s.db.View(func(tx *buntdb.Tx) error {
		boardings := make(map[string]*model.Boarding)
		err := tx.AscendKeys(listingPrefix+"*", func(key, value string) bool {
			if iterErr = ctx.Err(); iterErr != nil {
				return false
			}
			var view model.ListingView
			if iterErr = json.Unmarshal([]byte(value), &view.Listing); iterErr != nil {
				return false
			}
			boarding, ok := boardings[view.BoardingID]
			if !ok {
				if boarding, iterErr = lookupBoarding(tx, view.BoardingID); iterErr != nil {
					return false
				}
				boardings[view.BoardingID] = boarding
			}
			view.Boarding = boarding
			views = append(views, view)
			return true
		})
		if err != nil {
			return err
		}
		return iterErr
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.NewStoreError("find listings", err)
	}
	return views, nil
}

// lookupBoarding returns nil without error for a dangling reference.
func lookupBoarding(tx *buntdb.Tx, id string) (*model.Boarding, error) {
	if id == "" {
		return nil, nil
	}
	value, err := tx.Get(boardingKey(id))
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var b model.Boarding
	if err := json.Unmarshal([]byte(value), &b); err != nil {
		return nil, err
	}
	return &b, nil
}
