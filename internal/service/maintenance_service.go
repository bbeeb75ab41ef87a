package service

import (
	"context"
	"os"
	"time"

	"ragbot-be/internal/apperrors"
	"ragbot-be/internal/entity"
	"ragbot-be/internal/pkg/logger"
	"ragbot-be/internal/repository/contract"
	"ragbot-be/pkg/chunker"
	"ragbot-be/pkg/embedding"
	"ragbot-be/pkg/events"
	"ragbot-be/pkg/nats"
	"ragbot-be/pkg/retry"
)

type IMaintenanceService interface {
	// Reindex rebuilds the index generation for one document and returns
	// the number of chunks written.
	Reindex(ctx context.Context, documentID, path string) (int, error)
}

type maintenanceService struct {
	splitter          *chunker.Splitter
	embeddingProvider embedding.EmbeddingProvider
	indexRepo         contract.VectorIndexRepository
	publisher         *nats.Publisher
	logger            logger.ILogger
	retryPolicy       retry.Policy

	// documentLocks serializes maintenance per document so two rebuilds of
	// the same document cannot interleave deletes and upserts.
	documentLocks keyedMutex
}

func NewMaintenanceService(
	splitter *chunker.Splitter,
	embeddingProvider embedding.EmbeddingProvider,
	indexRepo contract.VectorIndexRepository,
	publisher *nats.Publisher,
	log logger.ILogger,
) IMaintenanceService {
	return &maintenanceService{
		splitter:          splitter,
		embeddingProvider: embeddingProvider,
		indexRepo:         indexRepo,
		publisher:         publisher,
		logger:            log,
		retryPolicy:       retry.DefaultPolicy(),
	}
}

func (ms *maintenanceService) Reindex(ctx context.Context, documentID, path string) (int, error) {
	lock := ms.documentLocks.get(documentID)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()
	ms.logger.Info("MaintenanceService", "reindex started", map[string]interface{}{
		"document_id": documentID,
		"path":        path,
	})

	raw, err := os.ReadFile(path)
	if err != nil {
		ms.logger.Error("MaintenanceService", "failed to read document", map[string]interface{}{
			"document_id": documentID,
			"path":        path,
			"error":       err.Error(),
		})
		return 0, apperrors.Wrap(apperrors.ErrInvalidRequest, err)
	}

	chunks, err := ms.splitter.Split(documentID, string(raw))
	if err != nil {
		return 0, err
	}

	// Stale entries go first. Readers see a partially-built generation for
	// the duration of the rebuild; each entry stays individually consistent.
	err = retry.DoVoid(ctx, ms.retryPolicy, func() error {
		return ms.indexRepo.DeleteByDocumentID(ctx, documentID)
	})
	if err != nil {
		return 0, err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := ms.embeddingProvider.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}

	entries := make([]*entity.IndexEntry, len(chunks))
	now := time.Now()
	for i, chunk := range chunks {
		entries[i] = &entity.IndexEntry{
			ChunkID:    chunk.ChunkID,
			DocumentID: chunk.DocumentID,
			Ordinal:    chunk.Ordinal,
			Content:    chunk.Text,
			Embedding:  vectors[i],
			CreatedAt:  now,
		}
	}

	err = retry.DoVoid(ctx, ms.retryPolicy, func() error {
		return ms.indexRepo.Upsert(ctx, entries)
	})
	if err != nil {
		return 0, err
	}

	ms.publishIndexUpdated(ctx, documentID, len(entries))

	ms.logger.Info("MaintenanceService", "reindex finished", map[string]interface{}{
		"document_id": documentID,
		"chunks":      len(entries),
		"elapsed_ms":  time.Since(started).Milliseconds(),
	})
	return len(entries), nil
}

// publishIndexUpdated is best effort. Lifecycle events never fail a rebuild
// that already committed; the publisher may be nil when NATS is not
// configured.
func (ms *maintenanceService) publishIndexUpdated(ctx context.Context, documentID string, chunks int) {
	if ms.publisher == nil {
		return
	}
	if err := ms.publisher.Publish(ctx, events.NewIndexUpdated(documentID, chunks)); err != nil {
		ms.logger.Warn("MaintenanceService", "failed to publish index event", map[string]interface{}{
			"document_id": documentID,
			"error":       err.Error(),
		})
	}
}
