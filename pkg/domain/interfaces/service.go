package interfaces

//go:generate moq -out mocks/service_mock.go -pkg mocks . ImageStore IssueAlerter RateLimiter NotificationSink

import (
	"context"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
)

// ImageStore persists images attached to issues
type ImageStore interface {
	Store(ctx context.Context, image *model.ImageUpload) (*model.StoredImage, error)
	Delete(ctx context.Context, ref string) error
}

// IssueAlerter tells operators about a newly reported issue
type IssueAlerter interface {
	AlertIssue(ctx context.Context, issue *model.Issue) error
}

// RateLimiter counts events per key in a fixed window
type RateLimiter interface {
	// Allow records one event for key. When the limit is exceeded it returns
	// false and the time until the window resets.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// NotificationSink delivers notifications on a best-effort basis. Failures
// are logged by the implementation and reported as a nil result.
type NotificationSink interface {
	Notify(ctx context.Context, userID types.UserID, issueID types.IssueID, notificationType types.NotificationType, message string) *model.Notification
}
