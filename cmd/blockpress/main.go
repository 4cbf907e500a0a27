// Package main is the entry point for the blockpress server. It loads
// configuration, connects to Postgres and Valkey, wires stores, services,
// and handlers, and starts the HTTP server with graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blockpress/internal/apikey"
	"blockpress/internal/audit"
	"blockpress/internal/auth"
	"blockpress/internal/cache"
	"blockpress/internal/config"
	"blockpress/internal/content"
	"blockpress/internal/database"
	"blockpress/internal/handlers"
	"blockpress/internal/middleware"
	"blockpress/internal/router"
	"blockpress/internal/store"
)

func main() {
	// Structured logger. Text output; log shippers handle the rest.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Valkey backs the published-page cache. The app runs without it;
	// public reads just always hit the database.
	var pageCache *cache.PageCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, public page cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		pageCache = cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	}

	// Stores.
	workspaceStore := store.NewWorkspaceStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	apiKeyStore := store.NewAPIKeyStore(db)
	pageStore := store.NewPageStore(db)
	blockStore := store.NewBlockStore(db)
	sectionStore := store.NewSectionStore(db)
	auditStore := store.NewAuditStore(db)

	// Services.
	auditLog := audit.New(auditStore)
	authService := auth.New(userStore, sessionStore, workspaceStore, auditLog, cfg.SessionTTL)
	keyService := apikey.New(apiKeyStore, auditLog)

	var invalidator content.PageInvalidator
	if pageCache != nil {
		invalidator = pageCache
	}
	contentService := content.New(pageStore, blockStore, sectionStore, invalidator, auditLog)

	// HTTP plumbing.
	metrics := middleware.NewMetrics()
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	defer limiter.Stop()

	var cacher handlers.PageCacher
	if pageCache != nil {
		cacher = pageCache
	}

	r := router.New(router.Deps{
		Authn:    authService,
		Metrics:  metrics,
		Limiter:  limiter,
		Auth:     handlers.NewAuth(authService),
		Users:    handlers.NewUsers(authService),
		Pages:    handlers.NewPages(contentService),
		Blocks:   handlers.NewBlocks(contentService),
		Sections: handlers.NewSections(contentService),
		APIKeys:  handlers.NewAPIKeys(keyService),
		Audit:    handlers.NewAudit(auditLog),
		Public:   handlers.NewPublic(contentService, cacher),
		External: handlers.NewExternal(keyService, contentService, cacher),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
