package model

import (
	"fmt"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 100
)

// Notification is a message delivered to a user about one of their issues
type Notification struct {
	ID        types.NotificationID   `json:"id" bson:"_id" firestore:"id"`
	UserID    types.UserID           `json:"userId" bson:"userId" firestore:"userId"`
	IssueID   types.IssueID          `json:"issueId" bson:"issueId" firestore:"issueId"`
	Type      types.NotificationType `json:"type" bson:"type" firestore:"type"`
	Message   string                 `json:"message" bson:"message" firestore:"message"`
	Read      bool                   `json:"read" bson:"read" firestore:"read"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}

// NewNotification creates an unread notification
func NewNotification(userID types.UserID, issueID types.IssueID, notificationType types.NotificationType, message string, now time.Time) (*Notification, error) {
	if userID == "" {
		return nil, goerr.New("user ID is required")
	}
	if !notificationType.IsValid() {
		return nil, goerr.New("invalid notification type", goerr.V("type", notificationType))
	}

	id, err := types.NewNotificationID()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate notification ID")
	}

	return &Notification{
		ID:        id,
		UserID:    userID,
		IssueID:   issueID,
		Type:      notificationType,
		Message:   message,
		CreatedAt: now,
	}, nil
}

// StatusChangeNotice returns the notification type and message sent to the
// reporter when an operator sets the status of their issue.
func StatusChangeNotice(title string, status types.Status) (types.NotificationType, string) {
	switch status {
	case types.StatusResolved:
		return types.NotificationResolved, fmt.Sprintf("Your issue \"%s\" has been resolved!", title)
	case types.StatusInProgress:
		return types.NotificationInProgress, fmt.Sprintf("Your issue \"%s\" is now being worked on", title)
	case types.StatusRejected:
		return types.NotificationRejected, fmt.Sprintf("Your issue \"%s\" has been reviewed", title)
	default:
		return types.NotificationStatusUpdate, fmt.Sprintf("Your issue \"%s\" status updated to %s", title, status)
	}
}

// NotificationQuery selects a page of a user's notifications
type NotificationQuery struct {
	Limit      int
	Skip       int
	UnreadOnly bool
}

// Normalize applies the default and maximum limit
func (x NotificationQuery) Normalize() NotificationQuery {
	if x.Limit <= 0 {
		x.Limit = DefaultNotificationLimit
	}
	if x.Limit > MaxNotificationLimit {
		x.Limit = MaxNotificationLimit
	}
	if x.Skip < 0 {
		x.Skip = 0
	}
	return x
}

// NotificationPage is a page of notifications, newest first
type NotificationPage struct {
	Notifications []*Notification `json:"notifications"`
	Total         int             `json:"total"`
	HasMore       bool            `json:"hasMore"`
}
