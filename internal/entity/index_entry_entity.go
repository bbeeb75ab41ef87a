package entity

import "time"

// IndexEntry is the persisted unit of the vector index: one chunk together
// with its embedding. Vector and text are written atomically per chunk id.
type IndexEntry struct {
	ChunkID    string
	DocumentID string
	Ordinal    int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
