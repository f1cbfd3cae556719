package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Middleware provides common HTTP middleware
type Middleware struct {
	authUC interfaces.Auth
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(ctx context.Context, authUC interfaces.Auth) *Middleware {
	return &Middleware{
		authUC: authUC,
	}
}

// CORS middleware adds CORS headers
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuth verifies the bearer token and stores the identity in the request context
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			writeError(w, goerr.New("no authorization token provided"), http.StatusUnauthorized)
			return
		}

		authCtx, err := m.authUC.Verify(r.Context(), strings.TrimSpace(token))
		if err != nil {
			ctxlog.From(r.Context()).Debug("Token verification failed", "error", err)
			writeError(w, goerr.New("invalid authorization token"), http.StatusUnauthorized)
			return
		}

		ctx := model.WithAuthContext(r.Context(), authCtx)
		logger := ctxlog.From(ctx).With("user_id", authCtx.UserID, "role", authCtx.Role)
		ctx = ctxlog.With(ctx, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireOperator rejects requests from users who are not staff or admin
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx, ok := model.GetAuthContext(r.Context())
		if !ok {
			writeError(w, goerr.New("authentication required"), http.StatusUnauthorized)
			return
		}
		if !authCtx.IsOperator() {
			writeError(w, goerr.New("operator role required"), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests from users who are not admin
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx, ok := model.GetAuthContext(r.Context())
		if !ok {
			writeError(w, goerr.New("authentication required"), http.StatusUnauthorized)
			return
		}
		if !authCtx.IsAdmin() {
			writeError(w, goerr.New("admin role required"), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware creates a chi-compatible logging middleware
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Embed logger from the initial context into request context
			logger := ctxlog.From(ctx).With("request_id", middleware.GetReqID(r.Context()))
			r = r.WithContext(ctxlog.With(r.Context(), logger))

			start := time.Now()

			// Wrap response writer to capture status
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// Process request
			next.ServeHTTP(ww, r)

			// Log request
			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.Query(),
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		})
	}
}
