package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"docuvault/internal/areas"
	"docuvault/internal/auth"
	"docuvault/internal/config"
	"docuvault/internal/handler"
	"docuvault/internal/middleware"
	"docuvault/internal/repository/postgres"
	"docuvault/internal/service"
	"docuvault/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
	)

	// JWT verification is optional: without a JWKS URL the server runs open,
	// which is how local development works.
	var jwtVerifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		verifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
		jwtVerifier = verifier
	} else {
		logger.Warn("JWKS_URL not set, bearer-token verification disabled")
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	fileRepo := postgres.NewFileRepository(repoConfig)
	activityRepo := postgres.NewActivityRepository(repoConfig)
	changeFeed := postgres.NewChangeListener(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Blob storage
	blobStore, err := storage.NewMinioStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup blob storage: %v", err)
	}

	// Dashboard area registry
	areaRegistry, err := areas.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize area registry: %v", err)
	}
	logger.Info("area registry initialized", "areas", len(areaRegistry.List()))

	// Create services
	folderService := service.NewFolderService(folderRepo, fileRepo, activityRepo, blobStore, txManager, logger)
	fileService := service.NewFileService(fileRepo, folderRepo, activityRepo, blobStore, logger)
	statsService := service.NewStatsService(folderRepo, fileRepo, logger)

	// Dashboard watcher: recomputes aggregations on collection changes and
	// feeds the SSE stream.
	watcher := service.NewWatcher(statsService, changeFeed, logger)
	watcherCtx, stopWatcher := context.WithCancel(ctx)
	defer stopWatcher()
	go func() {
		if err := watcher.Run(watcherCtx); err != nil && watcherCtx.Err() == nil {
			logger.Error("dashboard watcher stopped", "error", err)
		}
	}()

	// Create handlers
	folderHandler := handler.NewFolderHandler(folderService, logger)
	fileHandler := handler.NewFileHandler(fileService, logger)
	statsHandler := handler.NewStatsHandler(statsService, activityRepo, areaRegistry, watcher, logger)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Folder routes
	mux.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	mux.HandleFunc("GET /api/folders", folderHandler.ListRootFolders)
	mux.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	mux.HandleFunc("GET /api/folders/{id}/children", folderHandler.ListChildren)
	mux.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("POST /api/folders/{id}/assignees", folderHandler.AddAssignee)
	mux.HandleFunc("DELETE /api/folders/{id}/assignees", folderHandler.RemoveAssignee)

	// File routes
	mux.HandleFunc("POST /api/folders/{id}/files", fileHandler.Upload)
	mux.HandleFunc("GET /api/files/{id}", fileHandler.GetFile)
	mux.HandleFunc("GET /api/files/{id}/content", fileHandler.Download)
	mux.HandleFunc("PATCH /api/files/{id}", fileHandler.UpdateFile)
	mux.HandleFunc("DELETE /api/files/{id}", fileHandler.DeleteFile)

	// Dashboard routes
	mux.HandleFunc("GET /api/stats/progress", statsHandler.OverallProgress)
	mux.HandleFunc("GET /api/stats/empty-subfolders", statsHandler.EmptySubfolders)
	mux.HandleFunc("GET /api/stats/completed-subfolders", statsHandler.CompletedSubfolders)
	mux.HandleFunc("GET /api/stats/root-file-counts", statsHandler.RootFileCounts)
	mux.HandleFunc("GET /api/stats/stream", statsHandler.StreamDashboard)
	mux.HandleFunc("GET /api/folders/{id}/file-count", statsHandler.SubtreeFileCount)
	mux.HandleFunc("GET /api/areas", statsHandler.ListAreas)
	mux.HandleFunc("GET /api/areas/{name}", statsHandler.AreaTree)
	mux.HandleFunc("GET /api/me/folders", statsHandler.UserFolders)
	mux.HandleFunc("GET /api/activity", statsHandler.RecentActivity)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-shutdown
	logger.Info("shutting down")

	stopWatcher()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
