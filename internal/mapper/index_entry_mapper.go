package mapper

import (
	"time"

	"ragbot-be/internal/entity"
	"ragbot-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type IndexEntryMapper struct{}

func NewIndexEntryMapper() *IndexEntryMapper {
	return &IndexEntryMapper{}
}

func (m *IndexEntryMapper) ToEntity(e *model.IndexEntry) *entity.IndexEntry {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.IndexEntry{
		ChunkID:    e.ChunkId,
		DocumentID: e.DocumentId,
		Ordinal:    e.Ordinal,
		Content:    e.Content,
		Embedding:  e.Embedding.Slice(),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *IndexEntryMapper) ToModel(e *entity.IndexEntry) *model.IndexEntry {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.IndexEntry{
		ChunkId:    e.ChunkID,
		DocumentId: e.DocumentID,
		Ordinal:    e.Ordinal,
		Content:    e.Content,
		Embedding:  pgvector.NewVector(e.Embedding),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *IndexEntryMapper) ToModels(entries []*entity.IndexEntry) []*model.IndexEntry {
	models := make([]*model.IndexEntry, len(entries))
	for i, e := range entries {
		models[i] = m.ToModel(e)
	}
	return models
}
