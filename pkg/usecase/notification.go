package usecase

import (
	"context"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Notification implements the notification inbox and the best-effort sink
// used by issue updates
type Notification struct {
	repo interfaces.Repository
	now  func() time.Time
}

var (
	_ interfaces.Notification     = (*Notification)(nil)
	_ interfaces.NotificationSink = (*Notification)(nil)
)

// NewNotification creates a new Notification use case
func NewNotification(repo interfaces.Repository) *Notification {
	return &Notification{
		repo: repo,
		now:  time.Now,
	}
}

// Notify stores a notification for userID. Failures are logged and yield nil.
func (u *Notification) Notify(ctx context.Context, userID types.UserID, issueID types.IssueID, notificationType types.NotificationType, message string) *model.Notification {
	logger := ctxlog.From(ctx)

	n, err := model.NewNotification(userID, issueID, notificationType, message, u.now())
	if err != nil {
		logger.Error("Failed to build notification",
			"error", err,
			"user_id", userID,
			"issue_id", issueID)
		return nil
	}

	if err := u.repo.PutNotification(ctx, n); err != nil {
		logger.Error("Failed to save notification",
			"error", err,
			"user_id", userID,
			"issue_id", issueID,
			"type", notificationType)
		return nil
	}

	logger.Debug("Notification sent",
		"notification_id", n.ID,
		"user_id", userID,
		"type", notificationType)
	return n
}

// List returns a page of the requester's notifications
func (u *Notification) List(ctx context.Context, query model.NotificationQuery) (*model.NotificationPage, error) {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	page, err := u.repo.ListNotifications(ctx, authCtx.UserID, query.Normalize())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V("user_id", authCtx.UserID))
	}
	return page, nil
}

// UnreadCount returns the number of the requester's unread notifications
func (u *Notification) UnreadCount(ctx context.Context) (int, error) {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return 0, err
	}

	count, err := u.repo.CountUnreadNotifications(ctx, authCtx.UserID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count unread notifications", goerr.V("user_id", authCtx.UserID))
	}
	return count, nil
}

// MarkRead marks one of the requester's notifications read
func (u *Notification) MarkRead(ctx context.Context, id types.NotificationID) (*model.Notification, error) {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	return u.repo.MarkNotificationRead(ctx, authCtx.UserID, id)
}

// MarkAllRead marks every unread notification of the requester read
func (u *Notification) MarkAllRead(ctx context.Context) (int, error) {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return 0, err
	}

	updated, err := u.repo.MarkAllNotificationsRead(ctx, authCtx.UserID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to mark notifications read", goerr.V("user_id", authCtx.UserID))
	}
	return updated, nil
}

// Delete removes one of the requester's notifications
func (u *Notification) Delete(ctx context.Context, id types.NotificationID) error {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	return u.repo.DeleteNotification(ctx, authCtx.UserID, id)
}
