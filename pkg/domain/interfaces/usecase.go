package interfaces

import (
	"context"

	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
)

// BrowseParams are the raw query parameters of the list views
type BrowseParams struct {
	Status   types.Status
	Category types.Category
	Severity types.Severity
	Building string
	Search   string
	Sort     string
}

// Issue is the issue use case consumed by the HTTP controller. Every method
// reads the requester from the model.AuthContext in ctx.
type Issue interface {
	Create(ctx context.Context, input *model.CreateIssueInput) (*model.Issue, error)
	Get(ctx context.Context, id types.IssueID) (*model.Issue, error)
	ListMine(ctx context.Context, sort string) ([]*model.Issue, error)
	ListAll(ctx context.Context, params BrowseParams) ([]*model.Issue, error)
	Browse(ctx context.Context, params BrowseParams) ([]*model.Issue, error)
	UpdateStatus(ctx context.Context, id types.IssueID, update model.StatusUpdate) (*model.Issue, error)
	Delete(ctx context.Context, id types.IssueID) error
	ToggleUpvote(ctx context.Context, id types.IssueID) (*model.UpvoteResult, error)
	Analytics(ctx context.Context) (*model.AnalyticsSummary, error)
}

// Notification is the notification inbox use case
type Notification interface {
	List(ctx context.Context, query model.NotificationQuery) (*model.NotificationPage, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, id types.NotificationID) (*model.Notification, error)
	MarkAllRead(ctx context.Context) (int, error)
	Delete(ctx context.Context, id types.NotificationID) error
}

// Auth verifies bearer tokens
type Auth interface {
	Verify(ctx context.Context, token string) (*model.AuthContext, error)
}
