package main

import (
	"context"
	"log"
	"os"

	"ragbot-be/internal/bootstrap"
	"ragbot-be/internal/config"
	"ragbot-be/internal/constant"
	"ragbot-be/internal/dto"
	"ragbot-be/internal/server"
	"ragbot-be/internal/tracer"
	"ragbot-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Startup Ingestion
	// The configured knowledge document is indexed in the background so the
	// server starts answering as soon as the index is built.
	if _, err := os.Stat(cfg.Rag.DocumentPath); err == nil {
		job := &dto.ReindexJobMessage{
			DocumentId: constant.DefaultDocumentID,
			Path:       cfg.Rag.DocumentPath,
		}
		if err := container.PublisherService.PublishReindexJob(job); err != nil {
			log.Printf("[WARN] Failed to queue startup ingestion: %v", err)
		} else {
			log.Printf("[INFO] Queued startup ingestion for %s", cfg.Rag.DocumentPath)
		}
	} else {
		log.Printf("[WARN] Knowledge document not found at %s, skipping startup ingestion", cfg.Rag.DocumentPath)
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}
