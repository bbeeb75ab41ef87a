package factory

import (
	"ragbot-be/internal/apperrors"
	"ragbot-be/pkg/llm"
	"ragbot-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, apperrors.Wrapf(apperrors.ErrConfiguration, "unsupported LLM provider: %s", providerType)
	}
}
