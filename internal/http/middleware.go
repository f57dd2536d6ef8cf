package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/CoderAaditya/BookBliss-Backend/internal/domain"
	"github.com/CoderAaditya/BookBliss-Backend/internal/logger"
	"github.com/CoderAaditya/BookBliss-Backend/internal/ratelimit"
	"github.com/CoderAaditya/BookBliss-Backend/internal/service"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
)

// TokenVerifier resolves a bearer token to its user.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.User, error)
}

// RequestIDMiddleware keeps an incoming X-Request-ID or assigns a new uuid,
// stores it where middleware.GetReqID finds it and echoes it back.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(middleware.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, requestID)
		w.Header().Set(middleware.RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware admits requests carrying a valid token and puts the user into the context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondMsg(w, http.StatusUnauthorized, msgNoToken)
				return
			}

			// a raw token without the scheme is accepted too
			token := strings.TrimPrefix(header, "Bearer ")
			if token == "" {
				respondMsg(w, http.StatusUnauthorized, msgNoToken)
				return
			}

			user, err := verifier.VerifyToken(r.Context(), token)
			if errors.Is(err, service.ErrUnauthorized) {
				logger.Log.Debugw("rejected token", "error", err, "request_id", middleware.GetReqID(r.Context()))
				respondMsg(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}
			if err != nil {
				respondMsgError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by AuthMiddleware.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok && user != nil
}

// RateLimitMiddleware throttles requests per client IP. Limiter failures let the request through.
func RateLimitMiddleware(limiter ratelimit.Limiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + clientIP(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Log.Warnw("rate limiter unavailable", "error", err, "key", key)
			}
			if !allowed {
				respondMsg(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
