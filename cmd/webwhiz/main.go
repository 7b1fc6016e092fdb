package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/webwhiz/webwhiz/internal/api"
	"github.com/webwhiz/webwhiz/internal/chunker"
	"github.com/webwhiz/webwhiz/internal/config"
	"github.com/webwhiz/webwhiz/internal/fetcher"
	"github.com/webwhiz/webwhiz/internal/llm"
	"github.com/webwhiz/webwhiz/internal/repository"
	"github.com/webwhiz/webwhiz/internal/service"
	"github.com/webwhiz/webwhiz/internal/vectorstore"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// OpenAI client covers chat, embeddings, transcription and speech
	llmClient := llm.NewClient(cfg.OpenAI)

	// Connect to Qdrant (shared collection, session-partitioned)
	qdrantAddr := fmt.Sprintf("%s:%d", cfg.Qdrant.Host, cfg.Qdrant.Port)
	conn, err := grpc.NewClient(qdrantAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Fatal("Failed to connect to Qdrant", zap.String("addr", qdrantAddr), zap.Error(err))
	}
	defer conn.Close()

	store := vectorstore.NewQdrant(conn, llmClient, cfg.Qdrant.Collection, cfg.Qdrant.VectorSize)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	if err := store.Init(initCtx); err != nil {
		cancelInit()
		logger.Fatal("Failed to initialize vector store", zap.Error(err))
	}
	cancelInit()

	// In-memory session state
	sessions := repository.NewSessionStore(cfg.Chat.HistoryLimit)

	// Fetchers and chunker
	web := fetcher.NewWeb(30 * time.Second)
	wiki := fetcher.NewConfluence(30*time.Second, cfg.Ingest.WikiPageLimit)
	splitter := chunker.NewSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)

	// Initialize services
	ingestService := service.NewIngestService(sessions, store, web, wiki, splitter, logger)
	chatService := service.NewChatService(
		sessions,
		store,
		llmClient,
		logger,
		cfg.Chat.TopK,
		cfg.Chat.ConfidenceTopK,
		cfg.Chat.ConfidenceFallback,
	)
	summaryService := service.NewSummaryService(sessions, web, wiki, splitter, llmClient, logger)
	audioService := service.NewAudioService(llmClient, llmClient, chatService, logger)

	// Setup router
	router := api.SetupRouter(ingestService, chatService, summaryService, audioService, logger, api.RouterConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
	})

	// Create HTTP server. Write timeout is generous: answer and audio
	// paths block on upstream model calls.
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting WebWhiz server",
			zap.String("address", cfg.Address()),
			zap.String("qdrant", qdrantAddr),
			zap.String("collection", cfg.Qdrant.Collection),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
