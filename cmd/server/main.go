package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vantage/internal/auth"
	"vantage/internal/cache"
	"vantage/internal/config"
	orgtreeSvc "vantage/internal/domain/services/orgtree"
	"vantage/internal/handler"
	"vantage/internal/middleware"
	"vantage/internal/repository/postgres"
	"vantage/internal/service"
	serviceAuth "vantage/internal/service/auth"
	serviceOrgtree "vantage/internal/service/orgtree"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
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

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "server", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create JWT verifier for Supabase authentication
	issuer := ""
	if cfg.SupabaseURL != "" {
		issuer = strings.TrimRight(cfg.SupabaseURL, "/") + "/auth/v1"
	}
	jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.SupabaseJWKSURL, issuer, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	hierarchyRepo := postgres.NewHierarchyRepository(repoConfig)
	membershipRepo := postgres.NewMembershipRepository(repoConfig)
	userPrefsRepo := postgres.NewUserPreferencesRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	healthChecks := map[string]handler.Pinger{"postgres": pool}

	// Snapshot cache: Redis when configured, in-process otherwise
	var snapshots orgtreeSvc.SnapshotCache
	if cfg.RedisURL != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse REDIS_URL: %v", err)
		}
		defer redisClient.Close()

		redisCache := cache.NewRedisSnapshotCache(redisClient, cache.DefaultKeyPrefix, cfg.TreeCacheTTL, logger)
		if err := redisCache.Ping(ctx); err != nil {
			// Lookups fall through to Postgres while Redis is down
			logger.Warn("redis unreachable at startup", "error", err)
		}
		snapshots = redisCache
		healthChecks["redis"] = redisCache
		logger.Info("snapshot cache: redis", "ttl", cfg.TreeCacheTTL)
	} else {
		snapshots = cache.NewMemorySnapshotCache(cfg.TreeCacheTTL)
		logger.Info("snapshot cache: memory", "ttl", cfg.TreeCacheTTL)
	}

	// Authorization
	authzMode, err := serviceAuth.ParseMode(cfg.AuthzMode)
	if err != nil {
		log.Fatalf("Invalid AUTHZ_MODE: %v", err)
	}
	authorizer, err := serviceAuth.NewCasbinAuthorizer(membershipRepo, cfg.AuthzPolicyPath, authzMode, logger)
	if err != nil {
		log.Fatalf("Failed to create authorizer: %v", err)
	}
	logger.Info("authorization initialized", "mode", authzMode, "policy", cfg.AuthzPolicyPath)

	// Create services
	userPrefsService := service.NewUserPreferencesService(userPrefsRepo, logger)
	treeService := serviceOrgtree.NewTreeService(hierarchyRepo, snapshots, authorizer, logger)
	reorderService := serviceOrgtree.NewReorderService(hierarchyRepo, txManager, snapshots, authorizer, nil, logger)
	editorService := serviceOrgtree.NewEditorService(
		hierarchyRepo,
		snapshots,
		authorizer,
		reorderService, // In-process persistence
		userPrefsService,
		serviceOrgtree.EditorConfig{
			IndentationWidth: cfg.IndentationWidth,
			IdleTimeout:      config.EditorSessionIdleTimeout,
		},
		logger,
	)

	// Create handlers
	healthHandler := handler.NewHealthHandler(healthChecks)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	reorderHandler := handler.NewReorderHandler(reorderService, logger)
	editorHandler := handler.NewEditorHandler(editorService, logger)
	userPrefsHandler := handler.NewUserPreferencesHandler(userPrefsService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check and metrics
	mux.HandleFunc("GET /health", healthHandler.HealthCheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Tree routes
	mux.HandleFunc("GET /api/companies/{id}/tree", treeHandler.GetTree)
	mux.HandleFunc("POST /api/companies/{id}/tree/reorder", reorderHandler.Reorder)

	// Editor session routes
	mux.HandleFunc("POST /api/companies/{id}/editor/session", editorHandler.OpenSession)
	mux.HandleFunc("GET /api/companies/{id}/editor/visible", editorHandler.GetVisible)
	mux.HandleFunc("POST /api/companies/{id}/editor/toggle", editorHandler.Toggle)
	mux.HandleFunc("POST /api/companies/{id}/editor/drag/start", editorHandler.DragStart)
	mux.HandleFunc("POST /api/companies/{id}/editor/drag/move", editorHandler.DragMove)
	mux.HandleFunc("POST /api/companies/{id}/editor/drag/end", editorHandler.DragEnd)
	mux.HandleFunc("POST /api/companies/{id}/editor/drag/cancel", editorHandler.DragCancel)

	// User preferences routes
	mux.HandleFunc("GET /api/users/me/preferences", userPrefsHandler.GetPreferences)
	mux.HandleFunc("PATCH /api/users/me/preferences", userPrefsHandler.UpdatePreferences)

	// Debug routes
	if cfg.Debug {
		mux.HandleFunc("GET /api/companies/{id}/tree/render", treeHandler.RenderTree)
		logger.Warn("Debug route registered: GET /api/companies/{id}/tree/render (plain-text tree)")
	}

	// Build middleware chain
	var handler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Metrics → Routes
	// Metrics wraps the mux directly so the matched pattern is available
	handler = middleware.Metrics(handler)
	handler = middleware.AuthMiddleware(jwtVerifier)(handler)
	handler = middleware.Recovery(logger)(handler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	handler = corsHandler.Handler(handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	// Let in-flight editor reorders reach Postgres before the pool closes
	if err := editorService.Wait(shutdownCtx); err != nil {
		logger.Warn("pending reorders did not finish", "error", err)
	}
	logger.Info("server stopped")
}
