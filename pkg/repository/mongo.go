package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// maxUpdateAttempts bounds optimistic retries of UpdateIssue
const maxUpdateAttempts = 5

// Mongo implements Repository interface with MongoDB
type Mongo struct {
	client        *mongo.Client
	issues        *mongo.Collection
	notifications *mongo.Collection
}

var _ interfaces.Repository = (*Mongo)(nil)

// NewMongo connects to MongoDB and prepares the collections
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	logger := ctxlog.From(ctx)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect to mongodb")
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, goerr.Wrap(err, "failed to ping mongodb", goerr.V("database", database))
	}

	db := client.Database(database)
	repo := &Mongo{
		client:        client,
		issues:        db.Collection(issuesCollection),
		notifications: db.Collection(notificationsCollection),
	}

	if err := repo.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("MongoDB repository initialized successfully", "database", database)
	return repo, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.issues.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location.building", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "reportedBy.id", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create issue indexes")
	}

	_, err = m.notifications.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "read", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create notification indexes")
	}

	return nil
}

// issueFilterDoc converts filter to a MongoDB query document. Search is a
// case-insensitive literal match on title or description.
func issueFilterDoc(filter model.IssueFilter) bson.M {
	doc := bson.M{}

	if filter.ReportedBy != "" {
		doc["reportedBy.id"] = filter.ReportedBy
	}

	statusCond := bson.M{}
	if filter.Status != "" {
		statusCond["$eq"] = filter.Status
	}
	if len(filter.StatusIn) > 0 {
		statusCond["$in"] = filter.StatusIn
	}
	if len(statusCond) > 0 {
		doc["status"] = statusCond
	}

	if filter.Category != "" {
		doc["category"] = filter.Category
	}
	if filter.Severity != "" {
		doc["severity"] = filter.Severity
	}
	if filter.Building != "" {
		doc["location.building"] = filter.Building
	}
	if !filter.CreatedSince.IsZero() {
		doc["createdAt"] = bson.M{"$gte": filter.CreatedSince}
	}
	if filter.Search != "" {
		pattern := regexp.QuoteMeta(filter.Search)
		doc["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	return doc
}

func issueSortDoc(key model.SortKey) bson.D {
	if key.Field == "" {
		key = model.DefaultSortKey
	}

	dir := 1
	if key.Descending {
		dir = -1
	}

	sortDoc := bson.D{{Key: key.Field.StoragePath(), Value: dir}}
	if key.Field != model.SortByCreatedAt {
		sortDoc = append(sortDoc, bson.E{Key: "createdAt", Value: -1})
	}
	return append(sortDoc, bson.E{Key: "_id", Value: -1})
}

// PutIssue saves an issue to MongoDB
func (m *Mongo) PutIssue(ctx context.Context, issue *model.Issue) error {
	if issue == nil {
		return goerr.New("issue is nil")
	}
	if issue.ID == "" {
		return goerr.New("issue ID is empty")
	}

	stored := issue.Clone()
	stored.UpvoteCount = len(stored.Upvotes)

	_, err := m.issues.ReplaceOne(ctx, bson.M{"_id": issue.ID}, stored, options.Replace().SetUpsert(true))
	if err != nil {
		return goerr.Wrap(err, "failed to save issue", goerr.V("id", issue.ID))
	}
	return nil
}

// GetIssue retrieves an issue from MongoDB
func (m *Mongo) GetIssue(ctx context.Context, id types.IssueID) (*model.Issue, error) {
	if id == "" {
		return nil, goerr.New("issue ID is empty")
	}

	var issue model.Issue
	if err := m.issues.FindOne(ctx, bson.M{"_id": id}).Decode(&issue); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, goerr.Wrap(model.ErrIssueNotFound, "failed to get issue", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get issue", goerr.V("id", id))
	}

	return issue.Clone(), nil
}

// ListIssues lists issues matching the query
func (m *Mongo) ListIssues(ctx context.Context, query model.IssueQuery) ([]*model.Issue, error) {
	cursor, err := m.issues.Find(ctx, issueFilterDoc(query.Filter), options.Find().SetSort(issueSortDoc(query.Sort)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find issues")
	}
	defer cursor.Close(ctx)

	var found []*model.Issue
	if err := cursor.All(ctx, &found); err != nil {
		return nil, goerr.Wrap(err, "failed to decode issues")
	}

	issues := make([]*model.Issue, 0, len(found))
	for _, issue := range found {
		issues = append(issues, issue.Clone())
	}
	return issues, nil
}

// CountIssues counts issues matching filter
func (m *Mongo) CountIssues(ctx context.Context, filter model.IssueFilter) (int, error) {
	n, err := m.issues.CountDocuments(ctx, issueFilterDoc(filter))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count issues")
	}
	return int(n), nil
}

// UpdateIssue applies update with an optimistic revision check, retrying
// when another writer got there first.
func (m *Mongo) UpdateIssue(ctx context.Context, id types.IssueID, update interfaces.IssueUpdater) (*model.Issue, error) {
	if id == "" {
		return nil, goerr.New("issue ID is empty")
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var current model.Issue
		if err := m.issues.FindOne(ctx, bson.M{"_id": id}).Decode(&current); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, goerr.Wrap(model.ErrIssueNotFound, "failed to update issue", goerr.V("id", id))
			}
			return nil, goerr.Wrap(err, "failed to get issue", goerr.V("id", id))
		}

		updated := current.Clone()
		if err := update(updated); err != nil {
			return nil, err
		}
		updated.ID = id
		updated.UpvoteCount = len(updated.Upvotes)
		updated.Revision = current.Revision + 1

		res, err := m.issues.ReplaceOne(ctx, bson.M{"_id": id, "revision": current.Revision}, updated)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to replace issue", goerr.V("id", id))
		}
		if res.MatchedCount == 1 {
			return updated, nil
		}

		ctxlog.From(ctx).Debug("issue revision changed, retrying update",
			"id", id,
			"attempt", attempt+1,
		)
	}

	return nil, goerr.Wrap(model.ErrConcurrentUpdate, "failed to update issue",
		goerr.V("id", id),
		goerr.V("attempts", maxUpdateAttempts))
}

// DeleteIssue deletes an issue from MongoDB
func (m *Mongo) DeleteIssue(ctx context.Context, id types.IssueID) error {
	if id == "" {
		return goerr.New("issue ID is empty")
	}

	res, err := m.issues.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return goerr.Wrap(err, "failed to delete issue", goerr.V("id", id))
	}
	if res.DeletedCount == 0 {
		return goerr.Wrap(model.ErrIssueNotFound, "failed to delete issue", goerr.V("id", id))
	}
	return nil
}

// PutNotification saves a notification to MongoDB
func (m *Mongo) PutNotification(ctx context.Context, notification *model.Notification) error {
	if notification == nil {
		return goerr.New("notification is nil")
	}
	if notification.ID == "" {
		return goerr.New("notification ID is empty")
	}

	_, err := m.notifications.ReplaceOne(ctx, bson.M{"_id": notification.ID}, notification, options.Replace().SetUpsert(true))
	if err != nil {
		return goerr.Wrap(err, "failed to save notification", goerr.V("id", notification.ID))
	}
	return nil
}

// ListNotifications returns a page of the user's notifications, newest first
func (m *Mongo) ListNotifications(ctx context.Context, userID types.UserID, query model.NotificationQuery) (*model.NotificationPage, error) {
	if userID == "" {
		return nil, goerr.New("user ID is empty")
	}
	query = query.Normalize()

	filter := bson.M{"userId": userID}
	if query.UnreadOnly {
		filter["read"] = false
	}

	total, err := m.notifications.CountDocuments(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count notifications")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(query.Skip)).
		SetLimit(int64(query.Limit))

	cursor, err := m.notifications.Find(ctx, filter, opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find notifications")
	}
	defer cursor.Close(ctx)

	notifications := []*model.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notifications")
	}

	return &model.NotificationPage{
		Notifications: notifications,
		Total:         int(total),
		HasMore:       int(total) > query.Skip+len(notifications),
	}, nil
}

// CountUnreadNotifications counts the user's unread notifications
func (m *Mongo) CountUnreadNotifications(ctx context.Context, userID types.UserID) (int, error) {
	if userID == "" {
		return 0, goerr.New("user ID is empty")
	}

	n, err := m.notifications.CountDocuments(ctx, bson.M{"userId": userID, "read": false})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count unread notifications")
	}
	return int(n), nil
}

// MarkNotificationRead marks one of the user's notifications read
func (m *Mongo) MarkNotificationRead(ctx context.Context, userID types.UserID, id types.NotificationID) (*model.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n model.Notification
	err := m.notifications.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"read": true}},
		opts,
	).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, goerr.Wrap(model.ErrNotificationNotFound, "failed to mark notification read",
				goerr.V("id", id),
				goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to mark notification read", goerr.V("id", id))
	}

	return &n, nil
}

// MarkAllNotificationsRead marks every unread notification of the user read
func (m *Mongo) MarkAllNotificationsRead(ctx context.Context, userID types.UserID) (int, error) {
	if userID == "" {
		return 0, goerr.New("user ID is empty")
	}

	res, err := m.notifications.UpdateMany(ctx,
		bson.M{"userId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to mark notifications read")
	}
	return int(res.ModifiedCount), nil
}

// DeleteNotification deletes one of the user's notifications
func (m *Mongo) DeleteNotification(ctx context.Context, userID types.UserID, id types.NotificationID) error {
	res, err := m.notifications.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return goerr.Wrap(err, "failed to delete notification", goerr.V("id", id))
	}
	if res.DeletedCount == 0 {
		return goerr.Wrap(model.ErrNotificationNotFound, "failed to delete notification",
			goerr.V("id", id),
			goerr.V("user_id", userID))
	}
	return nil
}

// Close disconnects from MongoDB
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
