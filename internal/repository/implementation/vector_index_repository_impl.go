package implementation

import (
	"context"

	"ragbot-be/internal/apperrors"
	"ragbot-be/internal/entity"
	"ragbot-be/internal/mapper"
	"ragbot-be/internal/model"
	"ragbot-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VectorIndexRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.IndexEntryMapper
}

func NewVectorIndexRepository(db *gorm.DB) contract.VectorIndexRepository {
	return &VectorIndexRepositoryImpl{
		db:     db,
		mapper: mapper.NewIndexEntryMapper(),
	}
}

// Upsert replaces vector, text and metadata together per chunk id via
// ON CONFLICT DO UPDATE. Postgres row visibility keeps each entry atomic
// for concurrent readers.
func (r *VectorIndexRepositoryImpl) Upsert(ctx context.Context, entries []*entity.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	models := r.mapper.ToModels(entries)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chunk_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"document_id", "ordinal", "content", "embedding", "updated_at"}),
		}).
		Create(models).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrIndexUnavailable, err)
	}
	return nil
}

// SearchSimilarWithScore ranks entries by cosine similarity.
// Cosine distance in pgvector is 1 - cosine_similarity, so we select
// 1 - (embedding <=> query_vector) as the similarity score. Ties are broken
// by ascending chunk id for reproducible ordering.
func (r *VectorIndexRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredEntry, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.IndexEntry
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("index_entries").
		Select("index_entries.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order("similarity DESC, chunk_id ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrIndexUnavailable, err)
	}

	scored := make([]*contract.ScoredEntry, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredEntry{
			Entry:      r.mapper.ToEntity(&res.IndexEntry),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *VectorIndexRepositoryImpl) DeleteByDocumentID(ctx context.Context, documentID string) error {
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.IndexEntry{}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrIndexUnavailable, err)
	}
	return nil
}

func (r *VectorIndexRepositoryImpl) CountByDocumentID(ctx context.Context, documentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.IndexEntry{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrIndexUnavailable, err)
	}
	return count, nil
}
