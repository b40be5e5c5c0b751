package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocuments() []Document {
	return []Document{
		{Key: "l1", Text: "wifi palac wifi"},
		{Key: "l2", Text: "quiet room wifi includ"},
		{Key: "l3", Text: ""},
		{Key: "l4", Text: "quiet room park"},
	}
}

func TestBuild_KeepsEveryDocument(t *testing.T) {
	docs := testDocuments()
	idx := Build(docs)

	require.Equal(t, len(docs), idx.Len(), "empty documents must not be skipped")
	for pos, doc := range docs {
		assert.Equal(t, doc.Key, idx.Key(pos))
	}
	assert.Equal(t, 0, idx.DocumentLength(2))
	assert.Equal(t, 3, idx.DocumentLength(0))
}

func TestBuild_Empty(t *testing.T) {
	idx := Build(nil)

	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Score([]string{"wifi"}))
	assert.Equal(t, 0.0, idx.IDF("wifi"))
}

func TestTermAndDocumentFrequency(t *testing.T) {
	idx := Build(testDocuments())

	t.Run("term frequency", func(t *testing.T) {
		assert.Equal(t, 2, idx.TermFrequency("wifi", 0))
		assert.Equal(t, 1, idx.TermFrequency("wifi", 1))
		assert.Equal(t, 0, idx.TermFrequency("wifi", 2))
		assert.Equal(t, 0, idx.TermFrequency("wifi", 3))
		assert.Equal(t, 0, idx.TermFrequency("missing", 0))
	})

	t.Run("document frequency", func(t *testing.T) {
		assert.Equal(t, 2, idx.DocumentFrequency("wifi"))
		assert.Equal(t, 2, idx.DocumentFrequency("room"))
		assert.Equal(t, 1, idx.DocumentFrequency("park"))
		assert.Equal(t, 0, idx.DocumentFrequency("missing"))
	})
}

func TestIDF(t *testing.T) {
	idx := Build(testDocuments())

	// N = 4
	assert.InDelta(t, 1+math.Log(4.0/3.0), idx.IDF("wifi"), 1e-9)
	assert.InDelta(t, 1+math.Log(4.0/2.0), idx.IDF("park"), 1e-9)

	// Rarer terms weigh more
	assert.Greater(t, idx.IDF("park"), idx.IDF("wifi"))

	// A term present in every document gets the lowest weight of the corpus
	everywhere := Build([]Document{{Key: "a", Text: "room wifi"}, {Key: "b", Text: "room"}})
	assert.Less(t, everywhere.IDF("room"), everywhere.IDF("wifi"))
}

func TestScore(t *testing.T) {
	idx := Build(testDocuments())

	weights := idx.Score([]string{"wifi"})
	require.Len(t, weights, 4)

	wifiIDF := idx.IDF("wifi")
	assert.InDelta(t, 2*wifiIDF, weights[0].Weight, 1e-9)
	assert.InDelta(t, wifiIDF, weights[1].Weight, 1e-9)
	assert.Equal(t, 0.0, weights[2].Weight)
	assert.Equal(t, 0.0, weights[3].Weight)

	for pos, w := range weights {
		assert.Equal(t, pos, w.Position)
		assert.Equal(t, idx.Key(pos), w.Key)
	}
}

func TestScore_MultipleAndRepeatedTerms(t *testing.T) {
	idx := Build(testDocuments())

	weights := idx.Score([]string{"quiet", "park"})
	expected := idx.IDF("quiet") + idx.IDF("park")
	assert.InDelta(t, expected, weights[3].Weight, 1e-9)
	assert.InDelta(t, idx.IDF("quiet"), weights[1].Weight, 1e-9)

	// Each occurrence of a query term contributes
	repeated := idx.Score([]string{"park", "park"})
	assert.InDelta(t, 2*idx.IDF("park"), repeated[3].Weight, 1e-9)
}

func TestScore_UnknownTermsContributeNothing(t *testing.T) {
	idx := Build(testDocuments())

	for _, w := range idx.Score([]string{"swim", "pool"}) {
		assert.Equal(t, 0.0, w.Weight, "document %s", w.Key)
	}
	for _, w := range idx.Score(nil) {
		assert.Equal(t, 0.0, w.Weight, "document %s", w.Key)
	}
}

func TestContentHash(t *testing.T) {
	a := Build(testDocuments())
	b := Build(testDocuments())
	assert.Equal(t, a.ContentHash(), b.ContentHash())
	assert.NotEmpty(t, a.ContentHash())

	reordered := testDocuments()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	assert.NotEqual(t, a.ContentHash(), Build(reordered).ContentHash())

	shifted := []Document{{Key: "ab", Text: "c"}}
	other := []Document{{Key: "a", Text: "bc"}}
	assert.NotEqual(t, Build(shifted).ContentHash(), Build(other).ContentHash())
}
