package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pantrybase/ingredients/config"
	httpDelivery "github.com/pantrybase/ingredients/internal/delivery/http"
	"github.com/pantrybase/ingredients/internal/domain"
	"github.com/pantrybase/ingredients/internal/infrastructure/cache"
	"github.com/pantrybase/ingredients/internal/infrastructure/catalog"
	"github.com/pantrybase/ingredients/internal/infrastructure/postgres"
	"github.com/pantrybase/ingredients/internal/logging"
	"github.com/pantrybase/ingredients/internal/usecase"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Server.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting ingredients backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache", cfg.Cache.Type))

	// Match store per configuration
	var matches domain.MatchStore
	switch cfg.Cache.Type {
	case "redis":
		redisStore, err := cache.NewRedisStore(context.Background(), cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisStore.Close()
		matches = redisStore
	default:
		matches = cache.NewMemoryStore()
	}

	// Catalog store: Postgres when configured, in-memory otherwise
	var cat domain.Catalog
	if cfg.Database.URL != "" {
		db, err := postgres.Open(cfg.Database.URL)
		if err != nil {
			log.Fatal("failed to open catalog database", zap.Error(err))
		}
		defer db.Close()
		cat = postgres.NewCatalog(db)
		// Postgres can also host the match store; Redis/memory wins when
		// cache.type says so, since the resolver hits it on every mention.
		if cfg.Cache.Type == "memory" {
			matches = postgres.NewMatchStore(db)
		}
		log.Info("using postgres catalog")
	} else {
		cat = catalog.NewMemoryCatalog(nil)
		log.Warn("no database url configured, using empty in-memory catalog")
	}

	resolver := usecase.NewResolver(cat, matches, usecase.ResolverConfig{
		HighConfidence:   cfg.Resolver.HighConfidence,
		MediumConfidence: cfg.Resolver.MediumConfidence,
		LookupTimeout:    cfg.Resolver.LookupTimeout,
	}, log)

	handler := httpDelivery.NewHandler(resolver, matches, cfg.Dedup.SimilarityThreshold, log)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt, then drain
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("server exited")
}
