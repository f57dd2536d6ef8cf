package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/config"
	h "github.com/CoderAaditya/BookBliss-Backend/internal/http"
	"github.com/CoderAaditya/BookBliss-Backend/internal/logger"
	"github.com/CoderAaditya/BookBliss-Backend/internal/ratelimit"
	"github.com/CoderAaditya/BookBliss-Backend/internal/repository"
	"github.com/CoderAaditya/BookBliss-Backend/internal/service"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const startupTimeout = 30 * time.Second

type indexer interface {
	CreateIndexes(ctx context.Context) error
}

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err = logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("failed to sync logger: %v", err)
		}
	}()

	otel.SetTextMapPropagator(propagation.TraceContext{})

	// Set up MongoDB connection
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.DatabaseURI(), cfg.MongoDBName, cfg.MongoConnectTimeout)
	if err != nil {
		logger.Log.Fatalw("Failed to connect to MongoDB", "error", err)
	}
	logger.Log.Infow("Connected to MongoDB", "database", cfg.MongoDBName)

	carts := repository.NewMongoCartRepository(mongoDB)
	users := repository.NewMongoUserRepository(mongoDB)
	books := repository.NewMongoBookRepository(mongoDB)

	for _, repo := range []indexer{carts, users, books} {
		if err := repo.CreateIndexes(ctx); err != nil {
			logger.Log.Errorw("Failed to create indexes", "error", err)
		}
	}

	authService, err := service.NewAuthService(users, service.AuthConfig{
		Secret:     []byte(cfg.JWTSecret),
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	})
	if err != nil {
		logger.Log.Fatalw("Failed to create auth service", "error", err)
	}
	catalogService := service.NewCatalogService(books)
	cartService := service.NewCartService(carts, books)

	if cfg.SeedBooks {
		if _, err := catalogService.SeedSampleBooks(ctx); err != nil {
			logger.Log.Errorw("Failed to seed sample books", "error", err)
		}
	}

	deps := h.Dependencies{
		Auth:    authService,
		Catalog: catalogService,
		Cart:    cartService,
		Ping: func(ctx context.Context) error {
			return repository.Ping(ctx, mongoDB)
		},
	}

	var redisClient *redis.Client
	if cfg.RateLimitEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Log.Warnw("Redis ping failed, auth rate limiting will fail open", "error", err)
		}

		limiter, err := ratelimit.NewRedisLimiter(redisClient, cfg.AuthRateLimit, cfg.AuthRateWindow)
		if err != nil {
			logger.Log.Fatalw("Failed to create rate limiter", "error", err)
		}
		deps.Limiter = limiter
		logger.Log.Infow("Auth rate limiting enabled", "limit", cfg.AuthRateLimit, "window", cfg.AuthRateWindow)
	}

	router := h.NewRouter(h.RouterConfig{
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Log.Infow("BookBliss API starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalw("server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("server forced to shutdown", "error", err)
	}

	closeStores(shutdownCtx, mongoDB, redisClient)
	logger.Log.Info("server exited")
}

func closeStores(ctx context.Context, mongoDB *mongo.Database, redisClient *redis.Client) {
	if err := repository.Disconnect(ctx, mongoDB); err != nil {
		logger.Log.Errorw("failed to disconnect MongoDB", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Log.Errorw("failed to close Redis client", "error", err)
		}
	}
}
