package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"ragbot-be/internal/apperrors"
	"ragbot-be/pkg/retry"
)

// OllamaProvider implements EmbeddingProvider for local Ollama models
// (e.g., nomic-embed-text).
type OllamaProvider struct {
	BaseURL   string
	Model     string
	Dimension int
	Client    *http.Client
	Policy    retry.Policy
}

var _ EmbeddingProvider = &OllamaProvider{}

// NewOllamaProvider creates an Ollama embedding gateway. dimension is the
// index's established embedding dimension; responses with any other
// dimension are rejected as a configuration error.
func NewOllamaProvider(baseURL, model string, dimension int) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &OllamaProvider{
		BaseURL:   baseURL,
		Model:     model,
		Dimension: dimension,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
		Policy: retry.DefaultPolicy(),
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"` // Ollama returns float64
}

func (p *OllamaProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := p.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (p *OllamaProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	attempts := 0
	vec, err := retry.Do(ctx, p.Policy, func() ([]float32, error) {
		attempts++
		return p.embedOnce(ctx, text)
	})
	if err != nil {
		log.Printf("[WARN] embedding request failed after %d attempt(s): %v", attempts, err)
		return nil, err
	}
	return vec, nil
}

func (p *OllamaProvider) embedOnce(ctx context.Context, text string) ([]float32, error) {
	reqBody := ollamaEmbeddingRequest{
		Model:  p.Model,
		Prompt: text,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, retry.Permanent(apperrors.Wrap(apperrors.ErrEmbeddingService, err))
	}

	endpoint := fmt.Sprintf("%s/api/embeddings", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, retry.Permanent(apperrors.Wrap(apperrors.ErrEmbeddingService, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrEmbeddingService, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrEmbeddingService, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrapf(apperrors.ErrEmbeddingService, "ollama embedding error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var ollamaResp ollamaEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrEmbeddingService, err)
	}

	if len(ollamaResp.Embedding) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrEmbeddingService, "ollama returned an empty vector")
	}
	// A dimension mismatch against the index's established dimension is a
	// configuration problem, not a transient failure.
	if p.Dimension > 0 && len(ollamaResp.Embedding) != p.Dimension {
		return nil, retry.Permanent(apperrors.Wrapf(apperrors.ErrConfiguration,
			"embedding dimension mismatch: model returned %d, index expects %d", len(ollamaResp.Embedding), p.Dimension))
	}

	values := make([]float32, len(ollamaResp.Embedding))
	for i, v := range ollamaResp.Embedding {
		values[i] = float32(v)
	}

	// Cosine distance in pgvector expects normalized vectors (magnitude = 1).
	return normalizeVector(values), nil
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
