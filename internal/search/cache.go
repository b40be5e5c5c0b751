package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ScoreCache memoizes the per-document weights of a term list against an
// indexed candidate set. compute is called on a miss; hit reports whether the
// weights came from the cache.
type ScoreCache interface {
	Weights(ctx context.Context, key string, compute func() ([]float64, error)) (weights []float64, hit bool, err error)
}

// CacheKey identifies a ranking computation by the indexed content and the
// query terms, in order.
func CacheKey(contentHash string, terms []string) string {
	sum := sha256.Sum256([]byte(contentHash + "|" + strings.Join(terms, " ")))
	return hex.EncodeToString(sum[:])
}
