package search

import (
	"context"
	"sort"
	"strings"

	"github.com/unimate/listing-search/index"
	"github.com/unimate/listing-search/internal/logger"
	"github.com/unimate/listing-search/internal/tokenizer"
	"github.com/unimate/listing-search/model"
	"github.com/unimate/listing-search/services"
)

// Score cache outcomes reported to the Recorder.
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

type rankedHit struct {
	view  model.ListingView
	score float64
}

// rankFreeText orders views by TF-IDF weight against text plus the exact
// substring bonuses, highest first. Equal scores keep their incoming order.
func (s *Service) rankFreeText(ctx context.Context, views []model.ListingView, text string) []services.ListingHit {
	idx := s.buildIndex(documents(views))
	weights := s.weightsByKey(ctx, idx, tokenizer.Terms(text))

	needle := strings.ToLower(text)
	ranked := make([]rankedHit, len(views))
	for i, view := range views {
		score := weights[view.ID]
		if containsFold(view.Name, needle) {
			score += s.settings.NameBonus
		}
		if b := view.Boarding; b != nil {
			if containsFold(b.Name, needle) {
				score += s.settings.BoardingNameBonus
			}
			if containsFold(b.Address, needle) {
				score += s.settings.BoardingAddressBonus
			}
		}
		ranked[i] = rankedHit{view: view, score: score}
	}
	sortRanked(ranked)

	hits := make([]services.ListingHit, len(ranked))
	for i, r := range ranked {
		score := r.score
		hits[i] = services.ListingHit{ListingView: r.view, RelevanceScore: &score}
	}
	return hits
}

// rankSimilar orders candidates by TF-IDF weight against the reference
// listing's own document and keeps the top SimilarLimit, reference excluded.
func (s *Service) rankSimilar(ctx context.Context, reference model.ListingView, views []model.ListingView) []services.ListingHit {
	idx := s.buildIndex(documents(views))
	weights := s.weightsByKey(ctx, idx, strings.Fields(DocumentText(reference)))

	ranked := make([]rankedHit, 0, len(views))
	for _, view := range views {
		if view.ID == reference.ID {
			continue
		}
		ranked = append(ranked, rankedHit{view: view, score: weights[view.ID]})
	}
	sortRanked(ranked)

	if len(ranked) > s.settings.SimilarLimit {
		ranked = ranked[:s.settings.SimilarLimit]
	}
	hits := make([]services.ListingHit, len(ranked))
	for i, r := range ranked {
		hits[i] = services.ListingHit{ListingView: r.view}
	}
	return hits
}

func sortRanked(ranked []rankedHit) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
}

func containsFold(field, lowerNeedle string) bool {
	return lowerNeedle != "" && strings.Contains(strings.ToLower(field), lowerNeedle)
}

// weightsByKey scores terms against idx, through the score cache when one is
// configured, and returns the weight of each document by listing ID.
func (s *Service) weightsByKey(ctx context.Context, idx *index.Index, terms []string) map[string]float64 {
	compute := func() ([]float64, error) {
		scored := idx.Score(terms)
		weights := make([]float64, len(scored))
		for _, w := range scored {
			weights[w.Position] = w.Weight
		}
		return weights, nil
	}

	var weights []float64
	if s.cache != nil {
		weights = s.cachedWeights(ctx, idx, terms, compute)
	} else {
		weights, _ = compute()
	}

	byKey := make(map[string]float64, len(weights))
	for pos, w := range weights {
		byKey[idx.Key(pos)] = w
	}
	return byKey
}

func (s *Service) cachedWeights(ctx context.Context, idx *index.Index, terms []string, compute func() ([]float64, error)) []float64 {
	weights, hit, err := s.cache.Weights(ctx, CacheKey(idx.ContentHash(), terms), compute)
	if err != nil || len(weights) != idx.Len() {
		if err != nil {
			logger.FromContext(ctx).Warn("score cache unavailable, computing weights", "error", err)
		} else {
			logger.FromContext(ctx).Warn("score cache returned mismatched weights, recomputing",
				"cached", len(weights), "documents", idx.Len())
		}
		s.recorder.ScoreCache(cacheError)
		weights, _ = compute()
		return weights
	}
	if hit {
		s.recorder.ScoreCache(cacheHit)
	} else {
		s.recorder.ScoreCache(cacheMiss)
	}
	return weights
}
