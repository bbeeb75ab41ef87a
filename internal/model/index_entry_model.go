package model

import (
	"time"

	"ragbot-be/internal/apperrors"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimension is baked into the Embedding column type below; gorm
// tags are static, so the column cannot follow EMBEDDING_DIMENSION at
// runtime. ValidateDimension is checked at boot to keep the two aligned.
const EmbeddingDimension = 768

// ValidateDimension rejects a configured embedding dimension that does not
// match the vector column.
func ValidateDimension(configured int) error {
	if configured != EmbeddingDimension {
		return apperrors.Wrapf(apperrors.ErrConfiguration,
			"embedding dimension %d does not match vector column dimension %d", configured, EmbeddingDimension)
	}
	return nil
}

type IndexEntry struct {
	ChunkId    string          `gorm:"type:text;primaryKey"`
	DocumentId string          `gorm:"type:text;not null;index"`
	Ordinal    int             `gorm:"default:0"` // 0-based index for ordering
	Content    string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text uses 768 dimensions
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

func (IndexEntry) TableName() string {
	return "index_entries"
}
