// Package http exposes the BookBliss REST API over chi.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/CoderAaditya/BookBliss-Backend/internal/logger"
	"github.com/CoderAaditya/BookBliss-Backend/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
)

const healthCheckTimeout = 2 * time.Second

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	CORSAllowedOrigins []string
}

type Dependencies struct {
	Auth    AuthService
	Catalog CatalogService
	Cart    CartService
	// Limiter throttles the signup and login routes; nil disables it.
	Limiter ratelimit.Limiter
	// Ping reports store health for /health; nil means always healthy.
	Ping func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig, deps Dependencies) http.Handler {
	authHandler := NewAuthHandler(deps.Auth, cfg.RequestTimeout, cfg.MaxRequestBodySize)
	bookHandler := NewBookHandler(deps.Catalog, cfg.RequestTimeout, cfg.MaxRequestBodySize)
	cartHandler := NewCartHandler(deps.Cart, cfg.RequestTimeout, cfg.MaxRequestBodySize)

	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(logger.WithLoggingHTTPMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(middleware.SetHeader("Referrer-Policy", "no-referrer"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With", "Accept"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler(deps.Ping))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if deps.Limiter != nil {
				r.Use(RateLimitMiddleware(deps.Limiter, "auth"))
			}
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})

		// Catalog writes are open to anonymous clients.
		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookHandler.ListBooks)
			r.Post("/", bookHandler.CreateBook)
			r.Get("/{id}", bookHandler.GetBook)
			r.Put("/{id}", bookHandler.UpdateBook)
			r.Delete("/{id}", bookHandler.DeleteBook)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(AuthMiddleware(deps.Auth))
			r.Get("/", cartHandler.GetCart)
			r.Post("/add", cartHandler.AddItem)
			r.Put("/update", cartHandler.UpdateQuantity)
			r.Delete("/remove/{bookId}", cartHandler.RemoveItem)
		})
	})

	return otelhttp.NewHandler(r, "bookbliss",
		otelhttp.WithPropagators(propagation.TraceContext{}),
	)
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()

			if err := ping(ctx); err != nil {
				logger.Log.Warnw("health check failed", "error", err)
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}

		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
