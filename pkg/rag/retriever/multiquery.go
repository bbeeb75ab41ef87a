package retriever

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"ragbot-be/internal/apperrors"
	"ragbot-be/internal/constant"
	"ragbot-be/internal/repository/contract"
	"ragbot-be/pkg/embedding"
	"ragbot-be/pkg/llm"
	"ragbot-be/pkg/retry"
	"ragbot-be/pkg/store"
)

// Config encapsulates retrieval parameters.
type Config struct {
	// Expansions is the total number of query variants searched, the
	// original included.
	Expansions int
	// TopK is the per-variant search depth.
	TopK int
	// FinalK is the size of the merged candidate set handed to the chain.
	FinalK int
	// Retry bounds re-attempts on transient index failures per variant.
	Retry retry.Policy
}

// DefaultConfig mirrors the production settings: five variants, fifteen
// results per variant, three survivors after the merge.
func DefaultConfig() Config {
	return Config{
		Expansions: 5,
		TopK:       15,
		FinalK:     3,
		Retry:      retry.DefaultPolicy(),
	}
}

// Retriever expands a user query into several semantically-varied queries,
// searches the vector index for each, and merges the result sets into one
// ranked candidate list. Expansion failures degrade to single-query
// retrieval instead of failing the request.
type Retriever struct {
	llmProvider       llm.LLMProvider
	embeddingProvider embedding.EmbeddingProvider
	index             contract.VectorIndexRepository
	logger            *log.Logger
	config            Config
}

func New(
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	index contract.VectorIndexRepository,
	logger *log.Logger,
	config Config,
) *Retriever {
	if config.Retry.MaxAttempts == 0 {
		config.Retry = retry.DefaultPolicy()
	}
	return &Retriever{
		llmProvider:       llmProvider,
		embeddingProvider: embeddingProvider,
		index:             index,
		logger:            logger,
		config:            config,
	}
}

// Retrieve returns the merged, ranked candidate set for the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]store.Candidate, error) {
	variants := r.expandQuery(ctx, query)

	merged := make(map[string]store.Candidate)
	searched := 0
	var lastErr error

	for _, variant := range variants {
		vec, err := r.embeddingProvider.EmbedQuery(ctx, variant)
		if err != nil {
			r.logger.Printf("[WARN] embedding variant failed, skipping: %v", err)
			lastErr = err
			continue
		}

		results, err := retry.Do(ctx, r.config.Retry, func() ([]*contract.ScoredEntry, error) {
			return r.index.SearchSimilarWithScore(ctx, vec, r.config.TopK)
		})
		if err != nil {
			r.logger.Printf("[WARN] vector search for variant failed, skipping: %v", err)
			lastErr = err
			continue
		}
		searched++

		// Dedup across variants: keep the maximum score per chunk.
		for _, res := range results {
			score := float32(res.Similarity)
			if existing, ok := merged[res.Entry.ChunkID]; !ok || score > existing.Score {
				merged[res.Entry.ChunkID] = store.Candidate{
					ChunkID: res.Entry.ChunkID,
					Content: res.Entry.Content,
					Score:   score,
				}
			}
		}
	}

	if searched == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, apperrors.Wrapf(apperrors.ErrIndexUnavailable, "no query variant could be searched")
	}

	candidates := rankCandidates(merged)
	if len(candidates) > r.config.FinalK {
		candidates = candidates[:r.config.FinalK]
	}

	return candidates, nil
}

// rankCandidates orders merged candidates by score descending, ties broken
// by ascending chunk id for reproducible results.
func rankCandidates(merged map[string]store.Candidate) []store.Candidate {
	candidates := make([]store.Candidate, 0, len(merged))
	for _, c := range merged {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})
	return candidates
}

// expandQuery asks the model for paraphrases of the original question. The
// original is always first; on any failure the original alone is returned.
func (r *Retriever) expandQuery(ctx context.Context, query string) []string {
	if r.config.Expansions <= 1 {
		return []string{query}
	}

	prompt := fmt.Sprintf(constant.QueryExpansionPromptV1, r.config.Expansions-1, query)
	raw, err := r.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0))
	if err != nil {
		r.logger.Printf("[WARN] query expansion failed, degrading to single-query retrieval: %v", err)
		return []string{query}
	}

	parsed, err := parseVariants(raw)
	if err != nil {
		r.logger.Printf("[WARN] could not parse expansion output, degrading to single-query retrieval: %v", err)
		return []string{query}
	}

	variants := []string{query}
	seen := map[string]bool{query: true}
	for _, v := range parsed {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		variants = append(variants, v)
		seen[v] = true
		if len(variants) == r.config.Expansions {
			break
		}
	}
	return variants
}

// parseVariants extracts a JSON string array from the model output,
// tolerating markdown code fences and surrounding prose.
func parseVariants(raw string) ([]string, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in expansion output")
	}

	var variants []string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &variants); err != nil {
		return nil, fmt.Errorf("invalid JSON array in expansion output: %w", err)
	}
	return variants, nil
}
