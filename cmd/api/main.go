package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"go-hirestream-backend/config"
	v1 "go-hirestream-backend/internal/delivery/http/v1"
	"go-hirestream-backend/internal/realtime"
	"go-hirestream-backend/internal/repository/docstore"
	"go-hirestream-backend/internal/store"
	storememory "go-hirestream-backend/internal/store/memory"
	storepg "go-hirestream-backend/internal/store/postgres"
	"go-hirestream-backend/internal/usecase"
	"go-hirestream-backend/pkg/auth"
	"go-hirestream-backend/pkg/blob"
	"go-hirestream-backend/pkg/database"
	"go-hirestream-backend/pkg/email"
	"go-hirestream-backend/pkg/logger"
	"go-hirestream-backend/pkg/redis"

	"go-hirestream-backend/pkg/ai"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting hirestream backend", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Document Store
	var docStore store.Store
	if cfg.DBUrl != "" {
		dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()

		pgStore := storepg.New(dbPool)
		if err := pgStore.Migrate(ctx); err != nil {
			logger.Log.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		docStore = pgStore
	} else {
		logger.Log.Warn("DATABASE_URL not set - using in-memory store, data will not persist")
		docStore = storememory.New()
	}

	// 4. Setup Redis (rate limiting)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable - rate limiting falls back to in-memory", "error", err)
		}
	}
	defer redis.Close()

	// 5. Setup Blob Storage
	var blobs blob.Store
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		s3Store, err := blob.NewS3Store(ctx, blob.S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			logger.Log.Error("Failed to configure blob storage", "error", err)
			os.Exit(1)
		}
		if err := s3Store.CheckBucket(ctx); err != nil {
			logger.Log.Warn("Blob storage bucket check failed", "bucket", cfg.S3Bucket, "error", err)
		}
		blobs = s3Store
	} else {
		logger.Log.Warn("S3 credentials not set - interview recordings held in memory only")
		blobs = blob.NewMemoryStore()
	}

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - status notifications disabled")
	}

	// 7. Setup Repositories
	jobRepo := docstore.NewJobRepository(docStore)
	candidateRepo := docstore.NewCandidateRepository(docStore)
	applicationRepo := docstore.NewApplicationRepository(docStore)
	interviewRepo := docstore.NewInterviewRepository(docStore)
	evaluationRepo := docstore.NewEvaluationRepository(docStore)

	// 8. Setup AI Completer
	completer := ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)

	// 9. Setup UseCases
	validate := validator.New()
	jobUC := usecase.NewJobUsecase(jobRepo)
	candidateUC := usecase.NewCandidateUsecase(candidateRepo, validate)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, candidateRepo, emailService)
	evaluationUC := usecase.NewEvaluationUsecase(evaluationRepo, interviewRepo, applicationRepo, jobRepo, candidateRepo, completer)
	interviewUC := usecase.NewInterviewUsecase(
		interviewRepo, applicationRepo, jobRepo, candidateRepo,
		applicationUC, evaluationUC, completer, blobs)

	// 10. Setup Realtime Cache + Change Feed
	cache := realtime.NewCache(jobRepo, candidateRepo, applicationRepo.FetchAll)
	feed := realtime.NewFeedClient(docStore, store.CollectionApplications, cache)
	go func() {
		if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Log.Error("change feed stopped", "error", err)
		}
	}()

	// 11. Setup Auth Provider (JWKS)
	jwksProvider := auth.NewProvider(cfg.AuthIssuerURL + "/.well-known/jwks.json")

	// 12. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		JobUC:         jobUC,
		CandidateUC:   candidateUC,
		ApplicationUC: applicationUC,
		InterviewUC:   interviewUC,
		EvaluationUC:  evaluationUC,
		Cache:         cache,
		JWKSProvider:  jwksProvider,
		Config:        cfg,
	})

	// 13. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
}
