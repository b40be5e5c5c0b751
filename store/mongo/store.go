// Package mongo is the MongoDB listing store. Listings are joined with their
// boarding through a $lookup aggregation stage.
package mongo

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/unimate/listing-search/config"
	apperrors "github.com/unimate/listing-search/internal/errors"
	"github.com/unimate/listing-search/internal/logger"
	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
)

// Store implements services.Store on MongoDB.
type Store struct {
	client             *mongo.Client
	listings           *mongo.Collection
	boardings          *mongo.Collection
	boardingCollection string
}

var _ services.Store = (*Store)(nil)

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	logger.WithComponent("mongo").Info("connected to mongo", "database", cfg.Database)
	return &Store{
		client:             client,
		listings:           db.Collection(cfg.ListingCollection),
		boardings:          db.Collection(cfg.BoardingCollection),
		boardingCollection: cfg.BoardingCollection,
	}, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// PutBoardings upserts boardings by ID.
func (s *Store) PutBoardings(ctx context.Context, boardings []model.Boarding) error {
	if len(boardings) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(boardings))
	for _, b := range boardings {
		doc := toBoardingDoc(b)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	if _, err := s.boardings.BulkWrite(ctx, models); err != nil {
		return apperrors.NewStoreError("put boardings", err)
	}
	return nil
}

// PutListings upserts listings by ID.
func (s *Store) PutListings(ctx context.Context, listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(listings))
	for _, l := range listings {
		doc := toListingDoc(l)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}
	if _, err := s.listings.BulkWrite(ctx, models); err != nil {
		return apperrors.NewStoreError("put listings", err)
	}
	return nil
}

// ApprovedOwners returns the distinct owners of approved boardings, sorted.
func (s *Store) ApprovedOwners(ctx context.Context) ([]string, error) {
	values, err := s.boardings.Distinct(ctx, "owner", bson.M{"status": model.StatusApproved})
	if err != nil {
		return nil, apperrors.NewStoreError("approved owners", err)
	}
	owners := make([]string, 0, len(values))
	for _, v := range values {
		if owner, ok := v.(string); ok {
			owners = append(owners, owner)
		}
	}
	sort.Strings(owners)
	return owners, nil
}

// FindListings runs the filter pipeline.
func (s *Store) FindListings(ctx context.Context, filter services.ListingFilter) ([]model.ListingView, error) {
	docs, err := s.aggregate(ctx, findPipeline(filter, s.boardingCollection))
	if err != nil {
		return nil, apperrors.NewStoreError("find listings", err)
	}
	views := make([]model.ListingView, 0, len(docs))
	for _, d := range docs {
		views = append(views, d.view())
	}
	return views, nil
}

// CountListings counts matches. Without a text predicate no join is needed.
func (s *Store) CountListings(ctx context.Context, filter services.ListingFilter) (int, error) {
	if filter.Text == "" {
		n, err := s.listings.CountDocuments(ctx, matchFilter(filter))
		if err != nil {
			return 0, apperrors.NewStoreError("count listings", err)
		}
		return int(n), nil
	}

	cursor, err := s.listings.Aggregate(ctx, countPipeline(filter, s.boardingCollection))
	if err != nil {
		return 0, apperrors.NewStoreError("count listings", err)
	}
	var result []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, apperrors.NewStoreError("count listings", err)
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}

// GetListing resolves one listing regardless of moderation state.
func (s *Store) GetListing(ctx context.Context, id string) (model.ListingView, error) {
	docs, err := s.aggregate(ctx, byIDPipeline(id, s.boardingCollection))
	if err != nil {
		return model.ListingView{}, apperrors.NewStoreError("get listing", err)
	}
	if len(docs) == 0 {
		return model.ListingView{}, apperrors.NewListingNotFoundError(id)
	}
	return docs[0].view(), nil
}

func (s *Store) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]listingDoc, error) {
	cursor, err := s.listings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var docs []listingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
