package tokenizer

// stopWords is a standard English stop-word list extended with the filler words
// that show up in listing titles ("room in the house at ...").
var stopWords = buildStopWords(
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
	"any", "are", "aren", "as", "at", "be", "because", "been", "before", "being",
	"below", "between", "both", "but", "by", "can", "cannot", "could", "couldn",
	"did", "didn", "do", "does", "doesn", "doing", "don", "down", "during", "each",
	"few", "for", "from", "further", "had", "hadn", "has", "hasn", "have", "haven",
	"having", "he", "her", "here", "hers", "herself", "him", "himself", "his", "how",
	"i", "if", "in", "into", "is", "isn", "it", "its", "itself", "just", "me", "more",
	"most", "mustn", "my", "myself", "no", "nor", "not", "now", "of", "off", "on",
	"once", "only", "or", "other", "ought", "our", "ours", "ourselves", "out", "over",
	"own", "same", "shan", "she", "should", "shouldn", "so", "some", "such", "than",
	"that", "the", "their", "theirs", "them", "themselves", "then", "there", "these",
	"they", "this", "those", "through", "to", "too", "under", "until", "up", "very",
	"was", "wasn", "we", "were", "weren", "what", "when", "where", "which", "while",
	"who", "whom", "why", "will", "with", "won", "would", "wouldn", "you", "your",
	"yours", "yourself", "yourselves",
)

func buildStopWords(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether word (already lowercased) is ignored by Normalize.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
