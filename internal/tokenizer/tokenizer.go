// Package tokenizer turns free text into the normalized term stream used by the
// listing search index: lowercase, strip punctuation, drop stop words and short
// tokens, then stem with the Snowball English stemmer.
package tokenizer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	snowballeng "github.com/kljensen/snowball/english"
)

// minTokenLength is the shortest token that survives normalization.
// Anything of two characters or fewer is dropped.
const minTokenLength = 3

// possessiveRegex matches a possessive "'s" at the end of a word ("owner's").
var possessiveRegex = regexp.MustCompile(`['’]s\b`)

// apostropheReplacer removes the remaining apostrophes ("don't" -> "dont").
var apostropheReplacer = strings.NewReplacer("'", "", "’", "")

// nonAlphanumericRegex matches runs of characters that are neither letters, digits nor whitespace.
var nonAlphanumericRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// Terms runs the normalization pipeline and returns the surviving stems in order.
// Duplicates are kept: term frequency matters to the index.
func Terms(text string) []string {
	if text == "" {
		return []string{}
	}

	// 1. Lowercase
	lowerText := strings.ToLower(text)

	// 2. Drop possessives, then any apostrophe left over
	processedText := possessiveRegex.ReplaceAllString(lowerText, "")
	processedText = apostropheReplacer.Replace(processedText)

	// 3. Punctuation and symbols become word boundaries
	processedText = nonAlphanumericRegex.ReplaceAllString(processedText, " ")

	// 4. Split on whitespace
	words := strings.Fields(processedText)

	terms := make([]string, 0, len(words))
	for _, word := range words {
		// 5. Stop words and short tokens
		if utf8.RuneCountInString(word) < minTokenLength || IsStopWord(word) {
			continue
		}
		// 6. Stem
		terms = append(terms, Stem(word))
	}
	return terms
}

// Normalize returns the normalized terms of text joined with single spaces.
// Empty input, or input made only of stop words and punctuation, yields "".
func Normalize(text string) string {
	return strings.Join(Terms(text), " ")
}

// Stem reduces a single lowercase word to its Snowball English stem.
func Stem(word string) string {
	return snowballeng.Stem(word, false)
}
