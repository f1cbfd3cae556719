package repository

import (
	"context"
	"sync"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Memory implements Repository interface with in-memory storage
type Memory struct {
	mu            sync.RWMutex
	issues        map[types.IssueID]*model.Issue
	notifications map[types.NotificationID]*model.Notification
}

var _ interfaces.Repository = (*Memory)(nil)

// NewMemory creates a new memory repository
func NewMemory() *Memory {
	return &Memory{
		issues:        make(map[types.IssueID]*model.Issue),
		notifications: make(map[types.NotificationID]*model.Notification),
	}
}

// PutIssue stores an issue, replacing any issue with the same ID
func (m *Memory) PutIssue(ctx context.Context, issue *model.Issue) error {
	if issue == nil {
		return goerr.New("issue is nil")
	}
	if issue.ID == "" {
		return goerr.New("issue ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored := issue.Clone()
	stored.UpvoteCount = len(stored.Upvotes)
	m.issues[issue.ID] = stored
	return nil
}

// GetIssue retrieves an issue by ID
func (m *Memory) GetIssue(ctx context.Context, id types.IssueID) (*model.Issue, error) {
	if id == "" {
		return nil, goerr.New("issue ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	issue, exists := m.issues[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrIssueNotFound, "failed to get issue", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return issue.Clone(), nil
}

// ListIssues returns issues matching the query filter in the query order
func (m *Memory) ListIssues(ctx context.Context, query model.IssueQuery) ([]*model.Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	issues := []*model.Issue{}
	for _, issue := range m.issues {
		if query.Filter.Match(issue) {
			issues = append(issues, issue.Clone())
		}
	}

	orderIssues(issues, query.Sort)
	return issues, nil
}

// CountIssues counts issues matching filter
func (m *Memory) CountIssues(ctx context.Context, filter model.IssueFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, issue := range m.issues {
		if filter.Match(issue) {
			count++
		}
	}
	return count, nil
}

// UpdateIssue applies update to the stored issue while holding the write lock
func (m *Memory) UpdateIssue(ctx context.Context, id types.IssueID, update interfaces.IssueUpdater) (*model.Issue, error) {
	if id == "" {
		return nil, goerr.New("issue ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.issues[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrIssueNotFound, "failed to update issue", goerr.V("id", id))
	}

	updated := current.Clone()
	if err := update(updated); err != nil {
		return nil, err
	}
	updated.ID = id
	updated.UpvoteCount = len(updated.Upvotes)
	updated.Revision = current.Revision + 1

	m.issues[id] = updated
	return updated.Clone(), nil
}

// DeleteIssue removes an issue
func (m *Memory) DeleteIssue(ctx context.Context, id types.IssueID) error {
	if id == "" {
		return goerr.New("issue ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.issues[id]; !exists {
		return goerr.Wrap(model.ErrIssueNotFound, "failed to delete issue", goerr.V("id", id))
	}
	delete(m.issues, id)
	return nil
}

// PutNotification stores a notification
func (m *Memory) PutNotification(ctx context.Context, notification *model.Notification) error {
	if notification == nil {
		return goerr.New("notification is nil")
	}
	if notification.ID == "" {
		return goerr.New("notification ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := *notification
	m.notifications[notification.ID] = &n
	return nil
}

// ListNotifications returns a page of the user's notifications, newest first
func (m *Memory) ListNotifications(ctx context.Context, userID types.UserID, query model.NotificationQuery) (*model.NotificationPage, error) {
	if userID == "" {
		return nil, goerr.New("user ID is empty")
	}
	query = query.Normalize()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if query.UnreadOnly && n.Read {
			continue
		}
		c := *n
		matched = append(matched, &c)
	}

	orderNotifications(matched)
	return paginate(matched, query), nil
}

// CountUnreadNotifications counts the user's unread notifications
func (m *Memory) CountUnreadNotifications(ctx context.Context, userID types.UserID) (int, error) {
	if userID == "" {
		return 0, goerr.New("user ID is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkNotificationRead marks one of the user's notifications read
func (m *Memory) MarkNotificationRead(ctx context.Context, userID types.UserID, id types.NotificationID) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, exists := m.notifications[id]
	if !exists || n.UserID != userID {
		return nil, goerr.Wrap(model.ErrNotificationNotFound, "failed to mark notification read",
			goerr.V("id", id),
			goerr.V("user_id", userID))
	}

	n.Read = true
	c := *n
	return &c, nil
}

// MarkAllNotificationsRead marks every unread notification of the user read
func (m *Memory) MarkAllNotificationsRead(ctx context.Context, userID types.UserID) (int, error) {
	if userID == "" {
		return 0, goerr.New("user ID is empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	updated := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}

// DeleteNotification deletes one of the user's notifications
func (m *Memory) DeleteNotification(ctx context.Context, userID types.UserID, id types.NotificationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, exists := m.notifications[id]
	if !exists || n.UserID != userID {
		return goerr.Wrap(model.ErrNotificationNotFound, "failed to delete notification",
			goerr.V("id", id),
			goerr.V("user_id", userID))
	}

	delete(m.notifications, id)
	return nil
}

// Close closes the repository (no-op for memory)
func (m *Memory) Close() error {
	return nil
}
