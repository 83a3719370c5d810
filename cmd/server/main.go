package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/crispai/crisp-backend/internal/ai"
	"github.com/crispai/crisp-backend/internal/config"
	"github.com/crispai/crisp-backend/internal/database"
	"github.com/crispai/crisp-backend/internal/handler"
	"github.com/crispai/crisp-backend/internal/logger"
	"github.com/crispai/crisp-backend/internal/repository"
	"github.com/crispai/crisp-backend/internal/router"
	"github.com/crispai/crisp-backend/internal/service"
	"github.com/crispai/crisp-backend/internal/validator"
	"github.com/crispai/crisp-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Crisp Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Connect to Gemini ─────────────────────────────────────────────
	gemini, err := ai.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	gateway := ai.NewGateway(gemini, cfg, log)

	// ─── Initialize Repositories ───────────────────────────────────────
	candidateRepo := repository.NewCandidateRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	sessionStore := service.NewRedisSessionStore(rdb, cfg, log)
	checkpointQueue := service.NewRedisCheckpointQueue(rdb, log)
	resumeService := service.NewResumeService(gateway, sessionStore, log)
	interviewService := service.NewInterviewService(gateway, sessionStore, checkpointQueue, log)
	progressService := service.NewProgressService(candidateRepo, checkpointQueue, log)
	candidateService := service.NewCandidateService(candidateRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Resume:    handler.NewResumeHandler(resumeService, cfg),
		Interview: handler.NewInterviewHandler(interviewService),
		Progress:  handler.NewProgressHandler(progressService),
		Candidate: handler.NewCandidateHandler(candidateService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	checkpointWorker := worker.NewCheckpointWorker(candidateRepo, rdb, log)
	go checkpointWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the checkpoint worker and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow the worker to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
