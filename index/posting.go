package index

// PostingEntry records that a term occurs in the document at Position,
// Frequency times.
type PostingEntry struct {
	Position  int // Position of the document in the slice passed to Build
	Frequency int // Raw term count within that document
}

// PostingList is a slice of PostingEntry sorted by Position ascending.
// Its length is the term's document frequency.
type PostingList []PostingEntry
