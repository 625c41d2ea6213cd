package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/GoArmGo/WorkoutTracker/internal/domain"
)

// RequestLogger logs every HTTP request with its status and duration.
func RequestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// wrap the writer to see the status
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}

// responseWriter captures the response code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// TokenAuthenticator resolves a bearer token to an active user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

type userCtxKey struct{}

// Authenticator rejects requests without a valid bearer token and stores the
// resolved user in the request context.
func Authenticator(tokens TokenAuthenticator, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, r, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized), logger)
				return
			}

			user, err := tokens.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, r, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// currentUser returns the user set by Authenticator.
func currentUser(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userCtxKey{}).(*domain.User)
	return user
}
