package types

import (
	"github.com/google/uuid"
)

// UserID represents a user identifier issued by the identity provider
type UserID string

// String returns the string representation
func (id UserID) String() string {
	return string(id)
}

// IssueID represents an issue identifier
type IssueID string

// String returns the string representation
func (id IssueID) String() string {
	return string(id)
}

// NewIssueID creates a new IssueID using UUID v7
func NewIssueID() (IssueID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return IssueID(id.String()), nil
}

// NotificationID represents a notification identifier
type NotificationID string

// String returns the string representation
func (id NotificationID) String() string {
	return string(id)
}

// NewNotificationID creates a new NotificationID using UUID v7
func NewNotificationID() (NotificationID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return NotificationID(id.String()), nil
}
