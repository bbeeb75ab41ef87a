package chunker

import (
	"fmt"
	"strings"

	"ragbot-be/internal/apperrors"
	"ragbot-be/internal/entity"
)

// Splitter splits a document into overlapping chunks of approximately
// Size runes. The overlap preserves context at chunk boundaries.
// This is a character-based splitter; splitting is deterministic for a
// fixed (Size, Overlap) pair.
type Splitter struct {
	Size    int
	Overlap int
}

// NewSplitter validates the chunking parameters. Overlap must be strictly
// smaller than size, both positive.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, apperrors.Wrapf(apperrors.ErrConfiguration, "chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, apperrors.Wrapf(apperrors.ErrConfiguration, "chunk overlap must be in [0, size), got %d", overlap)
	}
	return &Splitter{Size: size, Overlap: overlap}, nil
}

// Split chunks the document text. Chunk ids are derived from the document id
// and the ordinal so re-ingesting the same document upserts the same keys.
// Returns ErrEmptyDocument when the text is empty or whitespace only.
func (s *Splitter) Split(documentID, text string) ([]entity.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.Wrapf(apperrors.ErrEmptyDocument, "document %q has no content", documentID)
	}

	runes := []rune(text)
	totalLen := len(runes)
	step := s.Size - s.Overlap

	var chunks []entity.Chunk
	for i := 0; i < totalLen; i += step {
		end := i + s.Size
		if end > totalLen {
			end = totalLen
		}

		ordinal := len(chunks)
		chunks = append(chunks, entity.Chunk{
			ChunkID:    ChunkID(documentID, ordinal),
			DocumentID: documentID,
			Text:       string(runes[i:end]),
			Ordinal:    ordinal,
			CharStart:  i,
			CharEnd:    end,
		})

		if end == totalLen {
			break
		}
	}

	return chunks, nil
}

// ChunkID builds the deterministic chunk key. Zero-padding keeps string
// ordering aligned with ordinal ordering for up to 10k chunks per document.
func ChunkID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s#%04d", documentID, ordinal)
}
