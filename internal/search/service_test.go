package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unimate/listing-search/config"
	"github.com/unimate/listing-search/index"
	apperrors "github.com/unimate/listing-search/internal/errors"
	"github.com/unimate/listing-search/internal/testutil"
	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
)

// --- Test Helpers ---

type countingBuilder struct {
	calls int
	sizes []int
}

func (b *countingBuilder) build(docs []index.Document) *index.Index {
	b.calls++
	b.sizes = append(b.sizes, len(docs))
	return index.Build(docs)
}

func setupTestSearchService(t *testing.T, opts ...Option) (*Service, *countingBuilder) {
	t.Helper()
	s := testutil.NewSeededStore(t)

	svc, err := NewService(s, s, config.DefaultSearchSettings(), opts...)
	require.NoError(t, err, "Failed to create search service")

	builder := &countingBuilder{}
	svc.buildIndex = builder.build
	return svc, builder
}

func hitIDs(hits []services.ListingHit) []string {
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	return ids
}

type failingStore struct {
	ownersErr error
	findErr   error
}

func (f failingStore) ApprovedOwners(context.Context) ([]string, error) {
	return testutil.ApprovedOwners(), f.ownersErr
}

func (f failingStore) FindListings(context.Context, services.ListingFilter) ([]model.ListingView, error) {
	return nil, f.findErr
}

func (f failingStore) CountListings(context.Context, services.ListingFilter) (int, error) {
	return 0, f.findErr
}

func (f failingStore) GetListing(_ context.Context, id string) (model.ListingView, error) {
	return model.ListingView{}, apperrors.NewListingNotFoundError(id)
}

type fakeCache struct {
	weights []float64
	err     error
	calls   int
	keys    []string
}

func (c *fakeCache) Weights(_ context.Context, key string, compute func() ([]float64, error)) ([]float64, bool, error) {
	c.calls++
	c.keys = append(c.keys, key)
	if c.err != nil {
		return nil, false, c.err
	}
	if c.weights != nil {
		return c.weights, true, nil
	}
	w, err := compute()
	return w, false, err
}

type recordedSearch struct {
	mode    services.SearchMode
	outcome string
}

type fakeRecorder struct {
	searches []recordedSearch
	cache    []string
}

func (r *fakeRecorder) SearchCompleted(mode services.SearchMode, outcome string, _ int, _ time.Duration) {
	r.searches = append(r.searches, recordedSearch{mode, outcome})
}

func (r *fakeRecorder) ScoreCache(result string) {
	r.cache = append(r.cache, result)
}

// --- Test Cases ---

func TestNewService_Validation(t *testing.T) {
	s := testutil.NewSeededStore(t)

	_, err := NewService(nil, s, config.SearchSettings{})
	assert.Error(t, err)

	_, err = NewService(s, nil, config.SearchSettings{})
	assert.Error(t, err)

	_, err = NewService(s, s, config.SearchSettings{NameBonus: -1})
	assert.Error(t, err)

	svc, err := NewService(s, s, config.SearchSettings{})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSearchSettings(), svc.Settings(), "zero settings get defaults")
}

func TestSearch_Browse(t *testing.T) {
	svc, builder := setupTestSearchService(t)

	result, err := svc.Search(context.Background(), services.SearchQuery{})
	require.NoError(t, err)

	assert.Equal(t, services.ModeBrowse, result.Mode)
	assert.Equal(t, []string{"l4", "l3", "l2", "l1"}, hitIDs(result.Listings))
	assert.Equal(t, 4, result.Total, "total equals the number of listings without a limit")
	assert.Nil(t, result.Page)
	assert.Nil(t, result.Pages)
	assert.Empty(t, result.Message)
	assert.NotEmpty(t, result.QueryID)
	for _, hit := range result.Listings {
		assert.Nil(t, hit.RelevanceScore)
		assert.NotNil(t, hit.Boarding, "listing %s", hit.ID)
	}
	assert.Zero(t, builder.calls, "browse never builds an index")
}

func TestSearch_Pagination(t *testing.T) {
	svc, _ := setupTestSearchService(t)

	tests := []struct {
		name      string
		page      int
		limit     int
		wantIDs   []string
		wantPage  int
		wantPages int
	}{
		{"first page", 1, 2, []string{"l4", "l3"}, 1, 2},
		{"second page", 2, 2, []string{"l2", "l1"}, 2, 2},
		{"page defaults to one", 0, 3, []string{"l4", "l3", "l2"}, 1, 2},
		{"past the end", 5, 2, []string{}, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Search(context.Background(), services.SearchQuery{Page: tt.page, Limit: tt.limit})
			require.NoError(t, err)

			assert.Equal(t, tt.wantIDs, hitIDs(result.Listings))
			assert.Equal(t, 4, result.Total)
			require.NotNil(t, result.Page)
			require.NotNil(t, result.Pages)
			assert.Equal(t, tt.wantPage, *result.Page)
			assert.Equal(t, tt.wantPages, *result.Pages)
		})
	}
}

func TestSearch_MaxLimitClamps(t *testing.T) {
	s := testutil.NewSeededStore(t)
	settings := config.DefaultSearchSettings()
	settings.MaxLimit = 2
	settings.DefaultLimit = 2

	svc, err := NewService(s, s, settings)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), services.SearchQuery{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, result.Listings, 2)
	assert.Equal(t, 2, *result.Pages)
}

func TestSearch_KeyMoneyWithout(t *testing.T) {
	svc, _ := setupTestSearchService(t)

	// l1 has keyMoney 0, l2 has 500 and l3 has no value at all
	result, err := svc.Search(context.Background(), services.SearchQuery{KeyMoney: "without"})
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, hitIDs(result.Listings))
}

func TestSearch_FreeTextRanking(t *testing.T) {
	svc, builder := setupTestSearchService(t)

	result, err := svc.Search(context.Background(), services.SearchQuery{Text: "wifi"})
	require.NoError(t, err)

	assert.Equal(t, services.ModeFreeText, result.Mode)
	require.Equal(t, []string{"l1", "l2"}, hitIDs(result.Listings),
		"a name match outranks a description match")

	// Both documents contain "wifi" once: equal TF-IDF, the name bonus decides
	idf := 1 + math.Log(2.0/3.0)
	require.NotNil(t, result.Listings[0].RelevanceScore)
	require.NotNil(t, result.Listings[1].RelevanceScore)
	assert.InDelta(t, idf+2.0, *result.Listings[0].RelevanceScore, 1e-9)
	assert.InDelta(t, idf, *result.Listings[1].RelevanceScore, 1e-9)

	assert.Equal(t, 1, builder.calls)
	assert.Equal(t, []int{2}, builder.sizes, "the index covers exactly the fetched candidates")
}

func TestSearch_FreeTextBoardingBonuses(t *testing.T) {
	svc, _ := setupTestSearchService(t)

	result, err := svc.Search(context.Background(), services.SearchQuery{Text: "Temple Lane"})
	require.NoError(t, err)
	require.Len(t, result.Listings, 2)

	for _, hit := range result.Listings {
		require.NotNil(t, hit.RelevanceScore)
		assert.GreaterOrEqual(t, *hit.RelevanceScore, 1.5, "boarding address bonus for %s", hit.ID)
	}
}

func TestSearch_FreeTextRanksOnlyCurrentPage(t *testing.T) {
	svc, builder := setupTestSearchService(t)

	result, err := svc.Search(context.Background(), services.SearchQuery{Text: "room", Limit: 1, Page: 2})
	require.NoError(t, err)

	// "room" matches l3, l2 and l1; page two holds l2 alone
	assert.Equal(t, []string{"l2"}, hitIDs(result.Listings))
	assert.Equal(t, []int{1}, builder.sizes)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, *result.Page)
	assert.Equal(t, 3, *result.Pages)
}

func TestSearch_NoCandidatesSkipsRanking(t *testing.T) {
	svc, builder := setupTestSearchService(t)

	result, err := svc.Search(context.Background(), services.SearchQuery{Text: "swimming pool"})
	require.NoError(t, err)

	assert.Empty(t, result.Listings)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, NoResultsMessage, result.Message)
	assert.Zero(t, builder.calls)
}

func TestSearch_Deterministic(t *testing.T) {
	svc, _ := setupTestSearchService(t)
	query := services.SearchQuery{Text: "room", Sort: "price-desc"}

	first, err := svc.Search(context.Background(), query)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, hitIDs(first.Listings), hitIDs(second.Listings))
}

func TestSearch_PriceBoundsNeverIncreaseCandidates(t *testing.T) {
	svc, _ := setupTestSearchService(t)
	ctx := context.Background()

	unbounded, err := svc.Search(ctx, services.SearchQuery{})
	require.NoError(t, err)

	for _, bounds := range []struct{ min, max *float64 }{
		{testutil.Float(10000), nil},
		{nil, testutil.Float(15000)},
		{testutil.Float(12000), testutil.Float(12000)},
	} {
		bounded, err := svc.Search(ctx, services.SearchQuery{PriceMin: bounds.min, PriceMax: bounds.max})
		require.NoError(t, err)
		assert.LessOrEqual(t, bounded.Total, unbounded.Total)
	}
}

func TestSearch_Similar(t *testing.T) {
	svc, builder := setupTestSearchService(t)

	result, err := svc.Search(context.Background(), services.SearchQuery{SimilarTo: "l2"})
	require.NoError(t, err)

	assert.Equal(t, services.ModeSimilar, result.Mode)
	ids := hitIDs(result.Listings)
	assert.NotContains(t, ids, "l2", "the reference is never its own neighbour")
	assert.LessOrEqual(t, len(ids), 5)
	assert.ElementsMatch(t, []string{"l1", "l3", "l4"}, ids)
	assert.Equal(t, "l1", ids[0], "same boarding and amenities rank first")
	assert.Equal(t, len(ids), result.Total)
	assert.Nil(t, result.Page)
	for _, hit := range result.Listings {
		assert.Nil(t, hit.RelevanceScore)
	}
	assert.Equal(t, []int{4}, builder.sizes, "similarity indexes the full candidate set")
}

func TestSearch_SimilarIgnoresTextAndPaging(t *testing.T) {
	svc, _ := setupTestSearchService(t)

	result, err := svc.Search(context.Background(), services.SearchQuery{
		SimilarTo: "l2",
		Text:      "nothing matches this",
		Limit:     1,
		Page:      3,
	})
	require.NoError(t, err)

	assert.Len(t, result.Listings, 3)
	assert.Nil(t, result.Page)
	assert.Nil(t, result.Pages)
}

func TestSearch_SimilarKeepsStructuredFilters(t *testing.T) {
	svc, _ := setupTestSearchService(t)

	result, err := svc.Search(context.Background(), services.SearchQuery{SimilarTo: "l2", Gender: "Male"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"l1", "l3"}, hitIDs(result.Listings))
}

func TestSearch_SimilarLimit(t *testing.T) {
	s := testutil.NewSeededStore(t)
	settings := config.DefaultSearchSettings()
	settings.SimilarLimit = 2

	svc, err := NewService(s, s, settings)
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), services.SearchQuery{SimilarTo: "l2"})
	require.NoError(t, err)
	assert.Len(t, result.Listings, 2)
}

func TestSearch_SimilarNotFound(t *testing.T) {
	recorder := &fakeRecorder{}
	svc, builder := setupTestSearchService(t, WithRecorder(recorder))

	_, err := svc.Search(context.Background(), services.SearchQuery{SimilarTo: "missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrListingNotFound))
	assert.Zero(t, builder.calls, "no ranking work for an unknown reference")
	assert.Equal(t, []recordedSearch{{services.ModeSimilar, OutcomeNotFound}}, recorder.searches)
}

func TestSearch_StoreErrors(t *testing.T) {
	storeErr := apperrors.NewStoreError("find listings", errors.New("connection reset"))
	tests := []struct {
		name  string
		store failingStore
	}{
		{"owners", failingStore{ownersErr: storeErr}},
		{"find", failingStore{findErr: storeErr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			svc, err := NewService(tt.store, tt.store, config.SearchSettings{}, WithRecorder(recorder))
			require.NoError(t, err)

			_, err = svc.Search(context.Background(), services.SearchQuery{Text: "wifi"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrStore))
			require.Len(t, recorder.searches, 1)
			assert.Equal(t, OutcomeError, recorder.searches[0].outcome)
		})
	}
}

func TestSearch_ScoreCache(t *testing.T) {
	t.Run("miss computes and reports", func(t *testing.T) {
		cache := &fakeCache{}
		recorder := &fakeRecorder{}
		svc, _ := setupTestSearchService(t, WithScoreCache(cache), WithRecorder(recorder))

		result, err := svc.Search(context.Background(), services.SearchQuery{Text: "wifi"})
		require.NoError(t, err)
		assert.Equal(t, []string{"l1", "l2"}, hitIDs(result.Listings))
		assert.Equal(t, 1, cache.calls)
		assert.Len(t, cache.keys[0], 64)
		assert.Equal(t, []string{cacheMiss}, recorder.cache)
	})

	t.Run("hit uses cached weights", func(t *testing.T) {
		// candidates arrive newest first: l2, l1
		cache := &fakeCache{weights: []float64{10, 0}}
		svc, _ := setupTestSearchService(t, WithScoreCache(cache))

		result, err := svc.Search(context.Background(), services.SearchQuery{Text: "wifi"})
		require.NoError(t, err)
		assert.Equal(t, []string{"l2", "l1"}, hitIDs(result.Listings))
		assert.InDelta(t, 10.0, *result.Listings[0].RelevanceScore, 1e-9)
	})

	t.Run("failure falls back to computing", func(t *testing.T) {
		cache := &fakeCache{err: errors.New("redis down")}
		recorder := &fakeRecorder{}
		svc, _ := setupTestSearchService(t, WithScoreCache(cache), WithRecorder(recorder))

		result, err := svc.Search(context.Background(), services.SearchQuery{Text: "wifi"})
		require.NoError(t, err)
		assert.Equal(t, []string{"l1", "l2"}, hitIDs(result.Listings))
		assert.Equal(t, []string{cacheError}, recorder.cache)
	})

	t.Run("mismatched length is ignored", func(t *testing.T) {
		cache := &fakeCache{weights: []float64{1}}
		svc, _ := setupTestSearchService(t, WithScoreCache(cache))

		result, err := svc.Search(context.Background(), services.SearchQuery{Text: "wifi"})
		require.NoError(t, err)
		assert.Equal(t, []string{"l1", "l2"}, hitIDs(result.Listings))
	})
}

func TestListing(t *testing.T) {
	svc, _ := setupTestSearchService(t)

	view, err := svc.Listing(context.Background(), "l3")
	require.NoError(t, err)
	assert.Equal(t, "Shared Annex", view.Name)

	_, err = svc.Listing(context.Background(), "nope")
	assert.True(t, errors.Is(err, apperrors.ErrListingNotFound))
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("hash", []string{"wifi", "room"})
	assert.Equal(t, a, CacheKey("hash", []string{"wifi", "room"}))
	assert.NotEqual(t, a, CacheKey("hash", []string{"room", "wifi"}))
	assert.NotEqual(t, a, CacheKey("other", []string{"wifi", "room"}))
}
