package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	// SessionStore selects the conversation store backend: "memory" or "redis".
	SessionStore string
	// ReindexTopic is the in-process queue topic for reindex jobs.
	ReindexTopic string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider  string // "ollama"
	OllamaBaseURL      string
	OllamaModel        string // embedding model
	EmbeddingDimension int
	LLMProvider        string // "ollama"
	LLMModel           string // e.g. "llama3.2"
}

type RagConfig struct {
	// DocumentPath is the default document ingested at startup and by
	// POST /api/update.
	DocumentPath    string
	ChunkSize       int
	ChunkOverlap    int
	RetrievalK      int
	RetrievalKFinal int
	QueryExpansions int
	HistoryMaxTurns int
	// Budgets are rune counts for the assembled context window.
	CandidateBudget int
	HistoryBudget   int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/ragbot.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionStore:       getEnv("SESSION_STORE", "memory"),
			ReindexTopic:       getEnv("REINDEX_TOPIC_NAME", "REINDEX_DOCUMENT"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "llama3.2"),
		},
		Rag: RagConfig{
			DocumentPath:    getEnv("DOC_PATH", "data/document.txt"),
			ChunkSize:       getEnvAsInt("CHUNK_SIZE", 500),
			ChunkOverlap:    getEnvAsInt("CHUNK_OVERLAP", 50),
			RetrievalK:      getEnvAsInt("RETRIEVAL_K", 15),
			RetrievalKFinal: getEnvAsInt("RETRIEVAL_K_FINAL", 3),
			QueryExpansions: getEnvAsInt("QUERY_EXPANSIONS", 5),
			HistoryMaxTurns: getEnvAsInt("HISTORY_MAX_TURNS", 10),
			CandidateBudget: getEnvAsInt("CONTEXT_CANDIDATE_BUDGET", 6000),
			HistoryBudget:   getEnvAsInt("CONTEXT_HISTORY_BUDGET", 4000),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
