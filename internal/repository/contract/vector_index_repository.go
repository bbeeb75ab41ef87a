package contract

import (
	"context"

	"ragbot-be/internal/entity"
)

// ScoredEntry wraps an IndexEntry with its similarity score.
type ScoredEntry struct {
	Entry      *entity.IndexEntry
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

// VectorIndexRepository is the access contract for the persistent vector
// index. Upserts are idempotent and row-atomic: a reader sees either the old
// or the new entry for a chunk id, never a mix.
type VectorIndexRepository interface {
	// Upsert creates or replaces entries keyed by chunk id.
	Upsert(ctx context.Context, entries []*entity.IndexEntry) error

	// SearchSimilarWithScore returns up to limit entries ranked by cosine
	// similarity descending, ties broken by ascending chunk id.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredEntry, error)

	// DeleteByDocumentID removes every entry of the document's current
	// generation, used during re-ingestion.
	DeleteByDocumentID(ctx context.Context, documentID string) error

	// CountByDocumentID reports how many entries a document currently has.
	CountByDocumentID(ctx context.Context, documentID string) (int64, error)
}
