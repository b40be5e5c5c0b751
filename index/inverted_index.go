// Package index builds the per-request term-weight index used to rank listing
// candidates. An Index is immutable once built and never shared across requests.
package index

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"
	"strings"
)

// Document is one candidate's normalized composite text.
// Key is a stable identifier (the listing ID) carried alongside the position.
type Document struct {
	Key  string
	Text string
}

// Weight is the TF-IDF weight of a query against one indexed document.
type Weight struct {
	Position int
	Key      string
	Weight   float64
}

// Index maps each term to the documents containing it, and keeps corpus
// statistics over exactly the documents passed to Build.
type Index struct {
	Index   map[string]PostingList
	keys    []string
	lengths []int
	hash    string
}

// Build indexes docs in order. Documents with empty text are indexed as empty
// documents so positions stay aligned with the caller's candidates.
func Build(docs []Document) *Index {
	idx := &Index{
		Index:   make(map[string]PostingList),
		keys:    make([]string, len(docs)),
		lengths: make([]int, len(docs)),
	}

	hasher := sha256.New()
	for pos, doc := range docs {
		idx.keys[pos] = doc.Key

		// Key and text are NUL-separated so ("ab","c") and ("a","bc") hash differently
		hasher.Write([]byte(doc.Key))
		hasher.Write([]byte{0})
		hasher.Write([]byte(doc.Text))
		hasher.Write([]byte{0})

		terms := strings.Fields(doc.Text)
		idx.lengths[pos] = len(terms)

		counts := make(map[string]int, len(terms))
		for _, term := range terms {
			counts[term]++
		}
		// Positions are visited in ascending order, so posting lists stay sorted
		for term, count := range counts {
			idx.Index[term] = append(idx.Index[term], PostingEntry{Position: pos, Frequency: count})
		}
	}
	idx.hash = hex.EncodeToString(hasher.Sum(nil))

	return idx
}

// Len returns the number of indexed documents, empty ones included.
func (idx *Index) Len() int {
	return len(idx.keys)
}

// Key returns the key of the document at pos.
func (idx *Index) Key(pos int) string {
	return idx.keys[pos]
}

// DocumentLength returns the number of terms in the document at pos.
func (idx *Index) DocumentLength(pos int) int {
	return idx.lengths[pos]
}

// DocumentFrequency returns the number of documents containing term.
func (idx *Index) DocumentFrequency(term string) int {
	return len(idx.Index[term])
}

// TermFrequency returns how many times term occurs in the document at pos.
func (idx *Index) TermFrequency(term string, pos int) int {
	postings := idx.Index[term]
	i := sort.Search(len(postings), func(i int) bool { return postings[i].Position >= pos })
	if i < len(postings) && postings[i].Position == pos {
		return postings[i].Frequency
	}
	return 0
}

// IDF returns the smoothed inverse document frequency of term:
// 1 + ln(N / (1 + df)). Terms found in every document get the lowest weight of
// the corpus; terms found nowhere never reach a document, so their IDF is moot.
func (idx *Index) IDF(term string) float64 {
	totalDocs := float64(len(idx.keys))
	if totalDocs == 0 {
		return 0.0
	}
	docFreq := float64(idx.DocumentFrequency(term))
	return 1 + math.Log(totalDocs/(1+docFreq))
}

// Score returns one Weight per indexed document, in Build order. Each weight is
// the sum over terms of tf(term, doc) * idf(term); repeated query terms count
// once per occurrence.
func (idx *Index) Score(terms []string) []Weight {
	weights := make([]Weight, len(idx.keys))
	for pos, key := range idx.keys {
		weights[pos] = Weight{Position: pos, Key: key}
	}

	for _, term := range terms {
		postings, found := idx.Index[term]
		if !found {
			continue
		}
		idf := idx.IDF(term)
		for _, entry := range postings {
			weights[entry.Position].Weight += float64(entry.Frequency) * idf
		}
	}

	return weights
}

// ContentHash returns a digest of the ordered (key, text) pairs the index was
// built from. Two indexes with the same hash score every query identically.
func (idx *Index) ContentHash() string {
	return idx.hash
}
