package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// Collection names
	issuesCollection        = "issues"
	notificationsCollection = "notifications"
)

// Firestore implements Repository interface with Firestore
type Firestore struct {
	client *firestore.Client
}

var _ interfaces.Repository = (*Firestore)(nil)

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on invalid project or missing permissions
	_, err = client.Collection(issuesCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized successfully",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{
		client: client,
	}, nil
}

// PutIssue saves an issue to Firestore
func (f *Firestore) PutIssue(ctx context.Context, issue *model.Issue) error {
	if issue == nil {
		return goerr.New("issue is nil")
	}
	if issue.ID == "" {
		return goerr.New("issue ID is empty")
	}

	stored := issue.Clone()
	stored.UpvoteCount = len(stored.Upvotes)
	if _, err := f.client.Collection(issuesCollection).Doc(issue.ID.String()).Set(ctx, stored); err != nil {
		return goerr.Wrap(err, "failed to save issue", goerr.V("id", issue.ID))
	}

	return nil
}

// GetIssue retrieves an issue from Firestore
func (f *Firestore) GetIssue(ctx context.Context, id types.IssueID) (*model.Issue, error) {
	if id == "" {
		return nil, goerr.New("issue ID is empty")
	}

	doc, err := f.client.Collection(issuesCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrIssueNotFound, "failed to get issue", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get issue", goerr.V("id", id))
	}

	var issue model.Issue
	if err := doc.DataTo(&issue); err != nil {
		return nil, goerr.Wrap(err, "failed to decode issue", goerr.V("id", id))
	}

	return issue.Clone(), nil
}

// issueQuery pushes the equality criteria of filter down to Firestore. The
// remaining criteria are applied by the caller with filter.Match so that no
// composite index is needed.
func (f *Firestore) issueQuery(filter model.IssueFilter) firestore.Query {
	q := f.client.Collection(issuesCollection).Query
	if filter.ReportedBy != "" {
		q = q.Where("reportedBy.id", "==", filter.ReportedBy.String())
	}
	if filter.Status != "" {
		q = q.Where("status", "==", filter.Status.String())
	}
	if filter.Category != "" {
		q = q.Where("category", "==", filter.Category.String())
	}
	if filter.Severity != "" {
		q = q.Where("severity", "==", filter.Severity.String())
	}
	if filter.Building != "" {
		q = q.Where("location.building", "==", filter.Building)
	}
	return q
}

func (f *Firestore) collectIssues(ctx context.Context, filter model.IssueFilter) ([]*model.Issue, error) {
	iter := f.issueQuery(filter).Documents(ctx)
	defer iter.Stop()

	issues := []*model.Issue{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate issues")
		}

		var issue model.Issue
		if err := doc.DataTo(&issue); err != nil {
			return nil, goerr.Wrap(err, "failed to decode issue", goerr.V("doc", doc.Ref.ID))
		}
		if filter.Match(&issue) {
			issues = append(issues, issue.Clone())
		}
	}

	return issues, nil
}

// ListIssues lists issues matching the query
func (f *Firestore) ListIssues(ctx context.Context, query model.IssueQuery) ([]*model.Issue, error) {
	issues, err := f.collectIssues(ctx, query.Filter)
	if err != nil {
		return nil, err
	}

	orderIssues(issues, query.Sort)
	return issues, nil
}

// CountIssues counts issues matching filter
func (f *Firestore) CountIssues(ctx context.Context, filter model.IssueFilter) (int, error) {
	issues, err := f.collectIssues(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(issues), nil
}

// UpdateIssue applies update inside a Firestore transaction
func (f *Firestore) UpdateIssue(ctx context.Context, id types.IssueID, update interfaces.IssueUpdater) (*model.Issue, error) {
	if id == "" {
		return nil, goerr.New("issue ID is empty")
	}

	ref := f.client.Collection(issuesCollection).Doc(id.String())

	var result *model.Issue
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrIssueNotFound, "failed to update issue", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get issue document")
		}

		var issue model.Issue
		if err := doc.DataTo(&issue); err != nil {
			return goerr.Wrap(err, "failed to decode issue")
		}

		updated := issue.Clone()
		if err := update(updated); err != nil {
			return err
		}
		updated.ID = id
		updated.UpvoteCount = len(updated.Upvotes)
		updated.Revision = issue.Revision + 1

		result = updated
		return tx.Set(ref, updated)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run issue update transaction", goerr.V("id", id))
	}

	return result.Clone(), nil
}

// DeleteIssue deletes an issue from Firestore
func (f *Firestore) DeleteIssue(ctx context.Context, id types.IssueID) error {
	if id == "" {
		return goerr.New("issue ID is empty")
	}

	_, err := f.client.Collection(issuesCollection).Doc(id.String()).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrIssueNotFound, "failed to delete issue", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to delete issue", goerr.V("id", id))
	}

	return nil
}

// PutNotification saves a notification to Firestore
func (f *Firestore) PutNotification(ctx context.Context, notification *model.Notification) error {
	if notification == nil {
		return goerr.New("notification is nil")
	}
	if notification.ID == "" {
		return goerr.New("notification ID is empty")
	}

	if _, err := f.client.Collection(notificationsCollection).Doc(notification.ID.String()).Set(ctx, notification); err != nil {
		return goerr.Wrap(err, "failed to save notification", goerr.V("id", notification.ID))
	}

	return nil
}

func (f *Firestore) userNotifications(ctx context.Context, userID types.UserID, unreadOnly bool) ([]*model.Notification, []*firestore.DocumentRef, error) {
	q := f.client.Collection(notificationsCollection).Where("userId", "==", userID.String())
	if unreadOnly {
		q = q.Where("read", "==", false)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var (
		notifications []*model.Notification
		refs          []*firestore.DocumentRef
	)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to iterate notifications")
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return nil, nil, goerr.Wrap(err, "failed to decode notification", goerr.V("doc", doc.Ref.ID))
		}
		notifications = append(notifications, &n)
		refs = append(refs, doc.Ref)
	}

	return notifications, refs, nil
}

// ListNotifications returns a page of the user's notifications, newest first
func (f *Firestore) ListNotifications(ctx context.Context, userID types.UserID, query model.NotificationQuery) (*model.NotificationPage, error) {
	if userID == "" {
		return nil, goerr.New("user ID is empty")
	}
	query = query.Normalize()

	notifications, _, err := f.userNotifications(ctx, userID, query.UnreadOnly)
	if err != nil {
		return nil, err
	}

	orderNotifications(notifications)
	return paginate(notifications, query), nil
}

// CountUnreadNotifications counts the user's unread notifications
func (f *Firestore) CountUnreadNotifications(ctx context.Context, userID types.UserID) (int, error) {
	if userID == "" {
		return 0, goerr.New("user ID is empty")
	}

	notifications, _, err := f.userNotifications(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	return len(notifications), nil
}

// MarkNotificationRead marks one of the user's notifications read
func (f *Firestore) MarkNotificationRead(ctx context.Context, userID types.UserID, id types.NotificationID) (*model.Notification, error) {
	if id == "" {
		return nil, goerr.New("notification ID is empty")
	}

	ref := f.client.Collection(notificationsCollection).Doc(id.String())

	var result model.Notification
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotificationNotFound, "failed to mark notification read", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get notification document")
		}

		if err := doc.DataTo(&result); err != nil {
			return goerr.Wrap(err, "failed to decode notification")
		}
		if result.UserID != userID {
			return goerr.Wrap(model.ErrNotificationNotFound, "failed to mark notification read",
				goerr.V("id", id),
				goerr.V("user_id", userID))
		}

		result.Read = true
		return tx.Update(ref, []firestore.Update{{Path: "read", Value: true}})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to run notification update transaction", goerr.V("id", id))
	}

	return &result, nil
}

// MarkAllNotificationsRead marks every unread notification of the user read
func (f *Firestore) MarkAllNotificationsRead(ctx context.Context, userID types.UserID) (int, error) {
	if userID == "" {
		return 0, goerr.New("user ID is empty")
	}

	_, refs, err := f.userNotifications(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := f.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Update(ref, []firestore.Update{{Path: "read", Value: true}})
		if err != nil {
			bw.End()
			return 0, goerr.Wrap(err, "failed to enqueue notification update", goerr.V("doc", ref.ID))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	updated := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return updated, goerr.Wrap(err, "failed to mark notification read")
		}
		updated++
	}

	return updated, nil
}

// DeleteNotification deletes one of the user's notifications
func (f *Firestore) DeleteNotification(ctx context.Context, userID types.UserID, id types.NotificationID) error {
	if id == "" {
		return goerr.New("notification ID is empty")
	}

	ref := f.client.Collection(notificationsCollection).Doc(id.String())
	return f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrNotificationNotFound, "failed to delete notification", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get notification document")
		}

		var n model.Notification
		if err := doc.DataTo(&n); err != nil {
			return goerr.Wrap(err, "failed to decode notification")
		}
		if n.UserID != userID {
			return goerr.Wrap(model.ErrNotificationNotFound, "failed to delete notification",
				goerr.V("id", id),
				goerr.V("user_id", userID))
		}

		return tx.Delete(ref)
	})
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}
