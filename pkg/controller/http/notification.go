package http

import (
	"net/http"
	"strconv"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
)

// NotificationHandler serves the notification inbox
type NotificationHandler struct {
	uc interfaces.Notification
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(uc interfaces.Notification) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

func notificationQuery(r *http.Request) (model.NotificationQuery, error) {
	q := r.URL.Query()
	var query model.NotificationQuery

	for name, dst := range map[string]*int{"limit": &query.Limit, "skip": &query.Skip} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return query, goerr.New(name+" must be an integer",
				goerr.V(name, raw),
				goerr.T(model.ErrTagValidation))
		}
		*dst = v
	}

	if raw := q.Get("unreadOnly"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return query, goerr.New("unreadOnly must be a boolean",
				goerr.V("unreadOnly", raw),
				goerr.T(model.ErrTagValidation))
		}
		query.UnreadOnly = v
	}

	return query, nil
}

// HandleList returns a page of the requester's notifications
func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query, err := notificationQuery(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	page, err := h.uc.List(r.Context(), query)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

// HandleUnreadCount returns the number of unread notifications
func (h *NotificationHandler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.uc.UnreadCount(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"count": count})
}

// HandleMarkRead marks one notification read
func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.uc.MarkRead(r.Context(), types.NotificationID(chi.URLParam(r, "id")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, n)
}

// HandleMarkAllRead marks every notification read
func (h *NotificationHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.uc.MarkAllRead(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"message": "All notifications marked as read",
		"updated": updated,
	})
}

// HandleDelete deletes one notification
func (h *NotificationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), types.NotificationID(chi.URLParam(r, "id"))); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "Notification deleted"})
}
