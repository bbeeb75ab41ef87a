package entity

// Chunk is a bounded contiguous slice of a document's text, the atomic unit
// of embedding and retrieval. Never mutated after creation; re-ingestion
// produces a new generation of chunks for the same document id.
type Chunk struct {
	ChunkID    string
	DocumentID string
	Text       string
	Ordinal    int
	// CharStart/CharEnd are rune offsets into the source document.
	CharStart int
	CharEnd   int
}
