package usecase

import (
	"context"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/campusfix/issuedesk/pkg/service/severity"
	"github.com/campusfix/issuedesk/pkg/utils/async"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// DefaultAnalyticsTTL is how long an analytics summary is served from cache
	DefaultAnalyticsTTL = 15 * time.Second

	analyticsCacheKey = "summary"
)

// IssueOption is a functional option for configuring Issue
type IssueOption func(*Issue)

// WithClock replaces the clock used for timestamps
func WithClock(now func() time.Time) IssueOption {
	return func(u *Issue) {
		u.now = now
	}
}

// WithImageStore sets the store for images attached to new issues
func WithImageStore(store interfaces.ImageStore) IssueOption {
	return func(u *Issue) {
		u.images = store
	}
}

// WithAlerter sets the operator alerter notified about new severe issues
func WithAlerter(alerter interfaces.IssueAlerter) IssueOption {
	return func(u *Issue) {
		u.alerter = alerter
	}
}

// WithRateLimiter limits how often a user may report issues
func WithRateLimiter(limiter interfaces.RateLimiter) IssueOption {
	return func(u *Issue) {
		u.limiter = limiter
	}
}

// WithAnalyticsTTL sets the analytics cache lifetime. Zero disables caching.
func WithAnalyticsTTL(ttl time.Duration) IssueOption {
	return func(u *Issue) {
		u.analyticsTTL = ttl
	}
}

// Issue implements interfaces.Issue
type Issue struct {
	repo         interfaces.Repository
	notifier     interfaces.NotificationSink
	images       interfaces.ImageStore
	alerter      interfaces.IssueAlerter
	limiter      interfaces.RateLimiter
	now          func() time.Time
	analyticsTTL time.Duration
	analytics    *expirable.LRU[string, *model.AnalyticsSummary]
}

var _ interfaces.Issue = (*Issue)(nil)

// NewIssue creates a new Issue use case. notifier receives the status change
// notifications for reporters.
func NewIssue(repo interfaces.Repository, notifier interfaces.NotificationSink, opts ...IssueOption) *Issue {
	u := &Issue{
		repo:         repo,
		notifier:     notifier,
		now:          time.Now,
		analyticsTTL: DefaultAnalyticsTTL,
	}
	for _, opt := range opts {
		opt(u)
	}

	if u.analyticsTTL > 0 {
		u.analytics = expirable.NewLRU[string, *model.AnalyticsSummary](1, nil, u.analyticsTTL)
	}

	return u
}

func requireAuth(ctx context.Context) (*model.AuthContext, error) {
	authCtx, ok := model.GetAuthContext(ctx)
	if !ok || authCtx.UserID == "" {
		return nil, model.Unauthenticated("authentication required")
	}
	return authCtx, nil
}

func requireOperator(ctx context.Context) (*model.AuthContext, error) {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !authCtx.IsOperator() {
		return nil, model.Forbidden("operator role required",
			goerr.V("user_id", authCtx.UserID),
			goerr.V("role", authCtx.Role))
	}
	return authCtx, nil
}

func (u *Issue) purgeAnalytics() {
	if u.analytics != nil {
		u.analytics.Purge()
	}
}

// Create reports a new issue on behalf of the requester
func (u *Issue) Create(ctx context.Context, input *model.CreateIssueInput) (*model.Issue, error) {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if input == nil {
		return nil, goerr.New("issue input is required", goerr.T(model.ErrTagValidation))
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	logger := ctxlog.From(ctx)

	var stored *model.StoredImage
	if input.Image != nil {
		if u.images == nil {
			return nil, goerr.New("image storage is not configured")
		}
		stored, err = u.images.Store(ctx, input.Image)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to store issue image")
		}
	}

	now := u.now()
	recent := u.countRecentAtBuilding(ctx, input.Location.Building, now)
	level := severity.Compute(severity.Input{
		Category:      input.Category,
		Description:   input.Description,
		ImageProvided: input.Image != nil,
	}, recent)

	issue, err := model.NewIssue(input, authCtx.UserRef(), level, now)
	if err != nil {
		u.discardImage(ctx, stored)
		return nil, err
	}
	if stored != nil {
		issue.ImageURL = stored.URL
		issue.ImageRef = stored.Ref
	}

	// a creation slot is only taken once nothing but the save can fail
	if err := u.checkRateLimit(ctx, authCtx.UserID); err != nil {
		u.discardImage(ctx, stored)
		return nil, err
	}

	if err := u.repo.PutIssue(ctx, issue); err != nil {
		u.discardImage(ctx, stored)
		return nil, goerr.Wrap(err, "failed to save issue", goerr.V("issue_id", issue.ID))
	}
	u.purgeAnalytics()

	logger.Info("Issue created",
		"issue_id", issue.ID,
		"category", issue.Category,
		"severity", issue.Severity,
		"building", issue.Location.Building,
		"recent_at_building", recent,
		"reported_by", authCtx.UserID)

	if u.alerter != nil {
		alerted := issue.Clone()
		async.Dispatch(ctx, func(ctx context.Context) error {
			return u.alerter.AlertIssue(ctx, alerted)
		})
	}

	return issue, nil
}

// checkRateLimit fails open when the limiter itself is unavailable
func (u *Issue) checkRateLimit(ctx context.Context, userID types.UserID) error {
	if u.limiter == nil {
		return nil
	}

	allowed, retryAfter, err := u.limiter.Allow(ctx, "create_issue:"+string(userID))
	if err != nil {
		ctxlog.From(ctx).Warn("Rate limiter unavailable, allowing request",
			"error", err,
			"user_id", userID)
		return nil
	}
	if !allowed {
		return model.NewRateLimitedError(retryAfter)
	}
	return nil
}

// countRecentAtBuilding returns the number of open issues reported at
// building within the recent window. Lookup failures count as zero.
func (u *Issue) countRecentAtBuilding(ctx context.Context, building string, now time.Time) int {
	if building == "" {
		return 0
	}

	count, err := u.repo.CountIssues(ctx, model.IssueFilter{
		Building:     building,
		StatusIn:     []types.Status{types.StatusPending, types.StatusInProgress},
		CreatedSince: now.Add(-model.RecentWindow),
	})
	if err != nil {
		ctxlog.From(ctx).Warn("Failed to count recent issues at building",
			"error", err,
			"building", building)
		return 0
	}
	return count
}

func (u *Issue) discardImage(ctx context.Context, stored *model.StoredImage) {
	if stored == nil || u.images == nil {
		return
	}
	if err := u.images.Delete(ctx, stored.Ref); err != nil {
		ctxlog.From(ctx).Warn("Failed to delete orphaned issue image",
			"error", err,
			"image_ref", stored.Ref)
	}
}

// Get returns a single issue. Students may only read their own reports.
func (u *Issue) Get(ctx context.Context, id types.IssueID) (*model.Issue, error) {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	issue, err := u.repo.GetIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authCtx.IsOperator() && !issue.IsReportedBy(authCtx.UserID) {
		return nil, model.Forbidden("not authorized to view this issue",
			goerr.V("issue_id", id),
			goerr.V("user_id", authCtx.UserID))
	}

	return issue, nil
}

// ListMine returns the requester's own issues
func (u *Issue) ListMine(ctx context.Context, sort string) ([]*model.Issue, error) {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	key, err := model.ParseSortKey(sort, model.SelfViewSortFields)
	if err != nil {
		return nil, err
	}

	issues, err := u.repo.ListIssues(ctx, model.IssueQuery{
		Filter: model.IssueFilter{ReportedBy: authCtx.UserID},
		Sort:   key,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list own issues", goerr.V("user_id", authCtx.UserID))
	}
	return issues, nil
}

// ListAll is the operator view over every issue. Search is not offered.
func (u *Issue) ListAll(ctx context.Context, params interfaces.BrowseParams) ([]*model.Issue, error) {
	if _, err := requireOperator(ctx); err != nil {
		return nil, err
	}

	params.Search = ""
	return u.list(ctx, params)
}

// Browse is the public view over every issue
func (u *Issue) Browse(ctx context.Context, params interfaces.BrowseParams) ([]*model.Issue, error) {
	if _, err := requireAuth(ctx); err != nil {
		return nil, err
	}

	return u.list(ctx, params)
}

func (u *Issue) list(ctx context.Context, params interfaces.BrowseParams) ([]*model.Issue, error) {
	filter := model.IssueFilter{
		Status:   params.Status,
		Category: params.Category,
		Severity: params.Severity,
		Building: params.Building,
		Search:   params.Search,
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	key, err := model.ParseSortKey(params.Sort, model.BrowseSortFields)
	if err != nil {
		return nil, err
	}

	issues, err := u.repo.ListIssues(ctx, model.IssueQuery{Filter: filter, Sort: key})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list issues", goerr.V("sort", key.String()))
	}
	return issues, nil
}

// UpdateStatus applies an operator update and notifies the reporter when the
// status was supplied
func (u *Issue) UpdateStatus(ctx context.Context, id types.IssueID, update model.StatusUpdate) (*model.Issue, error) {
	authCtx, err := requireOperator(ctx)
	if err != nil {
		return nil, err
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}

	now := u.now()
	issue, err := u.repo.UpdateIssue(ctx, id, func(x *model.Issue) error {
		update.Apply(x, now)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update issue status", goerr.V("issue_id", id))
	}
	u.purgeAnalytics()

	ctxlog.From(ctx).Info("Issue updated",
		"issue_id", id,
		"status", issue.Status,
		"assigned_to", issue.AssignedTo,
		"updated_by", authCtx.UserID)

	if update.Status != "" && u.notifier != nil {
		notificationType, message := model.StatusChangeNotice(issue.Title, update.Status)
		u.notifier.Notify(ctx, issue.ReportedBy.ID, issue.ID, notificationType, message)
	}

	return issue, nil
}

// Delete removes an issue and its stored image. Admin only.
func (u *Issue) Delete(ctx context.Context, id types.IssueID) error {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return err
	}
	if !authCtx.IsAdmin() {
		return model.Forbidden("admin role required",
			goerr.V("user_id", authCtx.UserID),
			goerr.V("role", authCtx.Role))
	}

	issue, err := u.repo.GetIssue(ctx, id)
	if err != nil {
		return err
	}

	if issue.ImageRef != "" && u.images != nil {
		if err := u.images.Delete(ctx, issue.ImageRef); err != nil {
			return goerr.Wrap(err, "failed to delete issue image",
				goerr.V("issue_id", id),
				goerr.V("image_ref", issue.ImageRef))
		}
	}

	if err := u.repo.DeleteIssue(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete issue", goerr.V("issue_id", id))
	}
	u.purgeAnalytics()

	ctxlog.From(ctx).Info("Issue deleted", "issue_id", id, "deleted_by", authCtx.UserID)
	return nil
}

// ToggleUpvote flips the requester's upvote on an issue
func (u *Issue) ToggleUpvote(ctx context.Context, id types.IssueID) (*model.UpvoteResult, error) {
	authCtx, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	// The updater may run more than once when the backend retries
	var hasUpvoted bool
	issue, err := u.repo.UpdateIssue(ctx, id, func(x *model.Issue) error {
		hasUpvoted = x.ToggleUpvote(authCtx.UserID)
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to toggle upvote",
			goerr.V("issue_id", id),
			goerr.V("user_id", authCtx.UserID))
	}
	u.purgeAnalytics()

	return &model.UpvoteResult{
		UpvoteCount: len(issue.Upvotes),
		HasUpvoted:  hasUpvoted,
	}, nil
}

// Analytics returns aggregate statistics over every issue
func (u *Issue) Analytics(ctx context.Context) (*model.AnalyticsSummary, error) {
	if _, err := requireOperator(ctx); err != nil {
		return nil, err
	}

	if u.analytics != nil {
		if summary, ok := u.analytics.Get(analyticsCacheKey); ok {
			return summary, nil
		}
	}

	issues, err := u.repo.ListIssues(ctx, model.IssueQuery{Sort: model.DefaultSortKey})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list issues for analytics")
	}

	summary := model.Summarize(issues, u.now())
	if u.analytics != nil {
		u.analytics.Add(analyticsCacheKey, summary)
	}
	return summary, nil
}
