package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	slackCtrl "github.com/campusfix/issuedesk/pkg/controller/slack"
	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/utils/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// UseCases bundles the use cases served over HTTP
type UseCases struct {
	Auth         interfaces.Auth
	Issue        interfaces.Issue
	Notification interfaces.Notification
}

// Server represents the HTTP server
type Server struct {
	*http.Server
	router chi.Router
}

// ServerOption configures optional routes
type ServerOption func(*serverOptions)

type serverOptions struct {
	slackHandler *slackCtrl.Handler
}

// WithSlackHandler mounts the Slack interaction endpoint at /slack/interaction
func WithSlackHandler(h *slackCtrl.Handler) ServerOption {
	return func(o *serverOptions) {
		o.slackHandler = h
	}
}

// NewServer creates a new HTTP server
func NewServer(ctx context.Context, addr string, uc UseCases, campus *model.CampusConfig, opts ...ServerOption) (*Server, error) {
	if uc.Auth == nil || uc.Issue == nil || uc.Notification == nil {
		return nil, goerr.New("auth, issue and notification use cases are required")
	}
	if campus == nil {
		campus = model.DefaultCampusConfig()
	}

	var options serverOptions
	for _, opt := range opts {
		opt(&options)
	}

	router := chi.NewRouter()
	authMiddleware := NewMiddleware(ctx, uc.Auth)
	issueHandler := NewIssueHandler(uc.Issue)
	notificationHandler := NewNotificationHandler(uc.Notification)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	router.Use(authMiddleware.CORS)

	// Health check
	router.Get("/health", handleHealth)

	// Slack signs its callbacks instead of sending a bearer token
	if options.slackHandler != nil {
		router.Post("/slack/interaction", options.slackHandler.HandleInteraction)
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Get("/auth/me", handleMe)
		r.Get("/campus", handleCampus(campus))

		r.Route("/issues", func(r chi.Router) {
			r.Post("/", issueHandler.HandleCreate)
			r.Get("/browse", issueHandler.HandleBrowse)
			r.Get("/my", issueHandler.HandleListMine)

			r.Group(func(r chi.Router) {
				r.Use(RequireOperator)
				r.Get("/", issueHandler.HandleListAll)
				r.Get("/analytics/stats", issueHandler.HandleAnalytics)
				r.Put("/{id}/status", issueHandler.HandleUpdateStatus)
			})

			r.Get("/{id}", issueHandler.HandleGet)
			r.With(RequireAdmin).Delete("/{id}", issueHandler.HandleDelete)
			r.Post("/{id}/upvote", issueHandler.HandleUpvote)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.HandleList)
			r.Get("/unread-count", notificationHandler.HandleUnreadCount)
			r.Put("/mark-all-read", notificationHandler.HandleMarkAllRead)
			r.Put("/{id}/read", notificationHandler.HandleMarkRead)
			r.Delete("/{id}", notificationHandler.HandleDelete)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, goerr.New("route not found"), http.StatusNotFound)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: router,
	}

	return server, nil
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "issuedesk",
	})
}

// handleMe returns the identity carried by the bearer token
func handleMe(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := model.GetAuthContext(r.Context())
	if !ok {
		writeError(w, goerr.New("authentication required"), http.StatusUnauthorized)
		return
	}
	writeJSON(w, r, http.StatusOK, authCtx)
}

func handleCampus(campus *model.CampusConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, campus)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// errorStatus maps the error kind to an HTTP status code
func errorStatus(err error) int {
	switch {
	case model.HasErrorTag(err, model.ErrTagValidation):
		return http.StatusBadRequest
	case model.HasErrorTag(err, model.ErrTagUnauthenticated):
		return http.StatusUnauthorized
	case model.HasErrorTag(err, model.ErrTagForbidden):
		return http.StatusForbidden
	case model.HasErrorTag(err, model.ErrTagNotFound):
		return http.StatusNotFound
	case model.HasErrorTag(err, model.ErrTagRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs and writes err with the status its kind maps to.
// Internal failures are reported without their details.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	logger := ctxlog.From(r.Context())

	switch status {
	case http.StatusInternalServerError:
		apperr.Handle(r.Context(), err, "path", r.URL.Path)
		writeError(w, errors.New("internal server error"), status)

	case http.StatusTooManyRequests:
		var limited *model.RateLimitedError
		if !errors.As(err, &limited) {
			writeError(w, err, status)
			return
		}
		retryAfter := int(math.Ceil(limited.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, r, status, map[string]any{
			"error":       "too many issues reported, try again later",
			"retry_after": retryAfter,
		})

	default:
		logger.Debug("Request rejected", "error", err, "status", status)
		writeError(w, err, status)
	}
}

// writeError writes an error response
func writeError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var message string
	if goErr := goerr.Unwrap(err); goErr != nil {
		message = goErr.Error()
	} else {
		message = err.Error()
	}

	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	}); err != nil {
		// Can't get context here, so use background context
		ctxlog.From(context.Background()).Error("Failed to encode error response", "error", err)
	}
}
