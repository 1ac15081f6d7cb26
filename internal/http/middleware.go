package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"

	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "user"

// userFromContext returns the authenticated user placed there by
// requireAuth. The bool is false on unauthenticated routes.
func userFromContext(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userContextKey).(core.User)
	return u, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger tags each request with an id and logs its outcome at a level
// derived from the status code.
func requestLogger(logger *applog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()

			reqLogger := logger.WithComponent(applog.ComponentHTTP).With(
				applog.FieldRequestID, requestID,
				applog.FieldClientIP, extractClientIP(r),
			)
			ctx := context.WithValue(r.Context(), applog.LoggerContextKey, reqLogger)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			reqLogger.Log(ctx, applog.RequestLevel(rec.status), "request completed",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldStatusCode, rec.status,
				applog.FieldDuration, time.Since(start).Milliseconds(),
			)
		})
	}
}

func rateLimit(limiter *rateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(extractClientIP(r)) {
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth resolves the bearer token and stores the user in the context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		user, err := s.authService.Authenticate(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
