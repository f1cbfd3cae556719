package interfaces

import (
	"context"

	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
)

// IssueUpdater mutates an issue inside an atomic read-modify-write. It may
// be invoked more than once when the backend retries, always with a fresh
// copy of the stored issue. Returning an error aborts the update.
type IssueUpdater func(issue *model.Issue) error

// Repository defines the interface for data persistence
type Repository interface {
	// Issue operations
	PutIssue(ctx context.Context, issue *model.Issue) error
	GetIssue(ctx context.Context, id types.IssueID) (*model.Issue, error)
	ListIssues(ctx context.Context, query model.IssueQuery) ([]*model.Issue, error)
	CountIssues(ctx context.Context, filter model.IssueFilter) (int, error)
	UpdateIssue(ctx context.Context, id types.IssueID, update IssueUpdater) (*model.Issue, error)
	DeleteIssue(ctx context.Context, id types.IssueID) error

	// Notification operations
	PutNotification(ctx context.Context, notification *model.Notification) error
	ListNotifications(ctx context.Context, userID types.UserID, query model.NotificationQuery) (*model.NotificationPage, error)
	CountUnreadNotifications(ctx context.Context, userID types.UserID) (int, error)
	MarkNotificationRead(ctx context.Context, userID types.UserID, id types.NotificationID) (*model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID types.UserID) (int, error)
	DeleteNotification(ctx context.Context, userID types.UserID, id types.NotificationID) error

	// Close closes the repository connection
	Close() error
}
