package bootstrap

import (
	"log"
	"os"
	"path/filepath"

	"ragbot-be/internal/config"
	"ragbot-be/internal/constant"
	"ragbot-be/internal/controller"
	"ragbot-be/internal/model"
	"ragbot-be/internal/pkg/logger"
	"ragbot-be/internal/repository/contract"
	"ragbot-be/internal/repository/implementation"
	"ragbot-be/internal/repository/memory"
	"ragbot-be/internal/repository/redisstore"
	"ragbot-be/internal/service"
	"ragbot-be/pkg/embedding"
	"ragbot-be/pkg/llm/factory"
	"ragbot-be/pkg/rag/prompt"
	"ragbot-be/pkg/rag/retriever"

	"ragbot-be/pkg/chunker"
	pktNats "ragbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController  controller.IChatController
	IndexController controller.IIndexController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	PublisherService service.IPublisherService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Gateways
	// The configured dimension must match the vector column before any
	// embedding is written.
	if err := model.ValidateDimension(cfg.Ai.EmbeddingDimension); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
			cfg.Ai.EmbeddingDimension,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s, dim=%d)", cfg.Ai.OllamaModel, cfg.Ai.EmbeddingDimension)
	} else {
		log.Fatalf("[FATAL] Unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Conversation store: in-process by default, Redis when configured.
	var conversationRepo contract.ConversationRepository
	if cfg.App.SessionStore == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		conversationRepo = redisstore.NewConversationRepository(rdb, cfg.Rag.HistoryMaxTurns)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		conversationRepo = memory.NewConversationRepository(cfg.Rag.HistoryMaxTurns)
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	indexRepo := implementation.NewVectorIndexRepository(db)

	// 5. RAG Components
	splitter, err := chunker.NewSplitter(cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)
	if err != nil {
		log.Fatalf("[FATAL] Invalid chunking configuration: %v", err)
	}

	ragLogger := initRagLogger()
	ragRetriever := retriever.New(
		llmProvider,
		embeddingProvider,
		indexRepo,
		ragLogger,
		retriever.Config{
			Expansions: cfg.Rag.QueryExpansions,
			TopK:       cfg.Rag.RetrievalK,
			FinalK:     cfg.Rag.RetrievalKFinal,
		},
	)

	promptBuilder := prompt.NewBuilder(
		constant.AnswerSystemPromptV1,
		cfg.Rag.CandidateBudget,
		cfg.Rag.HistoryBudget,
	)

	// 6. Services
	chatService := service.NewChatService(
		ragRetriever,
		llmProvider,
		conversationRepo,
		promptBuilder,
		sysLogger,
	)

	maintenanceService := service.NewMaintenanceService(
		splitter,
		embeddingProvider,
		indexRepo,
		natsPub,
		sysLogger,
	)

	publisherService := service.NewPublisherService(cfg.App.ReindexTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.ReindexTopic,
		maintenanceService,
	)

	// 7. Controllers
	return &Container{
		ChatController:  controller.NewChatController(chatService),
		IndexController: controller.NewIndexController(maintenanceService, cfg.Rag.DocumentPath),

		ConsumerService:  consumerService,
		PublisherService: publisherService,

		Logger: sysLogger,
	}
}

func initRagLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
