package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/interfaces/mocks"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/campusfix/issuedesk/pkg/repository"
	"github.com/campusfix/issuedesk/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func asUser(id types.UserID, role types.Role) context.Context {
	authCtx := model.NewAuthContext(id, role)
	authCtx.Name = "User " + string(id)
	return model.WithAuthContext(context.Background(), authCtx)
}

func newInput(building string) *model.CreateIssueInput {
	return &model.CreateIssueInput{
		Title:       "Water cooler leaking",
		Description: "Cooler on the ground floor leaks",
		Category:    types.CategoryWater,
		Location:    model.IssueLocation{Building: building, Floor: "G"},
	}
}

func pngUpload() *model.ImageUpload {
	return &model.ImageUpload{
		Filename:    "leak.png",
		ContentType: "image/png",
		Data:        []byte{0x89, 'P', 'N', 'G'},
	}
}

func newImageStoreMock() *mocks.ImageStoreMock {
	return &mocks.ImageStoreMock{
		StoreFunc: func(ctx context.Context, image *model.ImageUpload) (*model.StoredImage, error) {
			return &model.StoredImage{URL: "https://img.example/leak.png", Ref: "campus-issues/leak"}, nil
		},
		DeleteFunc: func(ctx context.Context, ref string) error {
			return nil
		},
	}
}

// faultyRepository fails selected operations of an otherwise working repository
type faultyRepository struct {
	interfaces.Repository
	putIssueErr        error
	countIssuesErr     error
	putNotificationErr error
}

func (r *faultyRepository) PutIssue(ctx context.Context, issue *model.Issue) error {
	if r.putIssueErr != nil {
		return r.putIssueErr
	}
	return r.Repository.PutIssue(ctx, issue)
}

func (r *faultyRepository) CountIssues(ctx context.Context, filter model.IssueFilter) (int, error) {
	if r.countIssuesErr != nil {
		return 0, r.countIssuesErr
	}
	return r.Repository.CountIssues(ctx, filter)
}

func (r *faultyRepository) PutNotification(ctx context.Context, n *model.Notification) error {
	if r.putNotificationErr != nil {
		return r.putNotificationErr
	}
	return r.Repository.PutNotification(ctx, n)
}

func seedIssue(t *testing.T, repo interfaces.Repository, mutate func(x *model.Issue)) *model.Issue {
	id, err := types.NewIssueID()
	gt.NoError(t, err).Required()

	issue := &model.Issue{
		ID:          id,
		Title:       "Seeded issue",
		Description: "seeded",
		Category:    types.CategoryOther,
		Severity:    types.SeverityLow,
		Status:      types.StatusPending,
		Location:    model.Location{Building: "Library"},
		ReportedBy:  model.UserRef{ID: "student-1"},
		Upvotes:     []types.UserID{},
		CreatedAt:   testNow.Add(-time.Hour),
		UpdatedAt:   testNow.Add(-time.Hour),
	}
	if mutate != nil {
		mutate(issue)
	}
	gt.NoError(t, repo.PutIssue(context.Background(), issue)).Required()
	return issue
}

func TestIssueCreate(t *testing.T) {
	t.Run("creates a pending issue scored by category", func(t *testing.T) {
		repo := repository.NewMemory()
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo), usecase.WithClock(fixedClock))

		issue, err := uc.Create(asUser("student-1", types.RoleStudent), newInput("Hostel A"))
		gt.NoError(t, err).Required()
		gt.Equal(t, issue.Status, types.StatusPending)
		// Water 40
		gt.Equal(t, issue.Severity, types.SeverityMedium)
		gt.Equal(t, issue.ReportedBy.ID, types.UserID("student-1"))
		gt.Equal(t, issue.ReportedBy.Name, "User student-1")
		gt.Equal(t, issue.UpvoteCount, 0)
		gt.V(t, issue.ResolvedAt).Nil()
		gt.Equal(t, issue.CreatedAt, testNow)

		saved, err := repo.GetIssue(context.Background(), issue.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, saved.Title, "Water cooler leaking")
	})

	t.Run("image, clustering and keywords raise severity and alert operators", func(t *testing.T) {
		repo := repository.NewMemory()
		for i := 0; i < 5; i++ {
			seedIssue(t, repo, func(x *model.Issue) { x.Location.Building = "Block C" })
		}
		// Outside the window and closed issues do not count
		seedIssue(t, repo, func(x *model.Issue) {
			x.Location.Building = "Block C"
			x.CreatedAt = testNow.Add(-8 * 24 * time.Hour)
		})
		seedIssue(t, repo, func(x *model.Issue) {
			x.Location.Building = "Block C"
			x.Status = types.StatusResolved
		})

		images := newImageStoreMock()
		alerted := make(chan *model.Issue, 1)
		alerter := &mocks.IssueAlerterMock{
			AlertIssueFunc: func(ctx context.Context, issue *model.Issue) error {
				alerted <- issue
				return nil
			},
		}

		uc := usecase.NewIssue(repo, usecase.NewNotification(repo),
			usecase.WithClock(fixedClock),
			usecase.WithImageStore(images),
			usecase.WithAlerter(alerter),
		)

		input := newInput("Block C")
		input.Description = "Urgent: the pipe is leaking onto the wiring"
		input.Image = pngUpload()

		issue, err := uc.Create(asUser("student-1", types.RoleStudent), input)
		gt.NoError(t, err).Required()
		// Water 40 + image 15 + cluster 30 + keyword 15
		gt.Equal(t, issue.Severity, types.SeverityCritical)
		gt.Equal(t, issue.ImageURL, "https://img.example/leak.png")
		gt.Equal(t, issue.ImageRef, "campus-issues/leak")
		gt.Equal(t, len(images.StoreCalls()), 1)

		select {
		case got := <-alerted:
			gt.Equal(t, got.ID, issue.ID)
		case <-time.After(time.Second):
			t.Fatal("alert was not dispatched")
		}
	})

	t.Run("validation error has no side effects", func(t *testing.T) {
		repo := repository.NewMemory()
		images := newImageStoreMock()
		limiter := &mocks.RateLimiterMock{
			AllowFunc: func(ctx context.Context, key string) (bool, time.Duration, error) {
				return true, 0, nil
			},
		}
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo),
			usecase.WithImageStore(images),
			usecase.WithRateLimiter(limiter),
		)

		testCases := []struct {
			name   string
			mutate func(in *model.CreateIssueInput)
		}{
			{"missing title", func(in *model.CreateIssueInput) { in.Title = "  " }},
			{"missing description", func(in *model.CreateIssueInput) { in.Description = "" }},
			{"missing building", func(in *model.CreateIssueInput) { in.Location.Building = "" }},
			{"invalid category", func(in *model.CreateIssueInput) { in.Category = "Plumbing" }},
			{"title too long", func(in *model.CreateIssueInput) { in.Title = strings.Repeat("a", 101) }},
			{"description too long", func(in *model.CreateIssueInput) { in.Description = strings.Repeat("a", 501) }},
			{"latitude out of range", func(in *model.CreateIssueInput) {
				in.Location.Coordinates = &model.Coordinates{Lat: 91, Lng: 77}
			}},
			{"unsupported image", func(in *model.CreateIssueInput) {
				in.Image = &model.ImageUpload{Filename: "notes.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
			}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				input := newInput("Library")
				tc.mutate(input)

				_, err := uc.Create(asUser("student-1", types.RoleStudent), input)
				gt.Error(t, err)
				gt.True(t, model.HasErrorTag(err, model.ErrTagValidation))
			})
		}

		gt.Equal(t, len(images.StoreCalls()), 0)
		gt.Equal(t, len(limiter.AllowCalls()), 0)
		all, err := repo.ListIssues(context.Background(), model.IssueQuery{})
		gt.NoError(t, err)
		gt.Equal(t, len(all), 0)
	})

	t.Run("image store failure aborts creation", func(t *testing.T) {
		repo := repository.NewMemory()
		images := &mocks.ImageStoreMock{
			StoreFunc: func(ctx context.Context, image *model.ImageUpload) (*model.StoredImage, error) {
				return nil, goerr.New("upload failed")
			},
		}
		limiter := &mocks.RateLimiterMock{
			AllowFunc: func(ctx context.Context, key string) (bool, time.Duration, error) {
				return true, 0, nil
			},
		}
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo),
			usecase.WithImageStore(images),
			usecase.WithRateLimiter(limiter),
		)

		input := newInput("Library")
		input.Image = pngUpload()

		_, err := uc.Create(asUser("student-1", types.RoleStudent), input)
		gt.Error(t, err)
		gt.False(t, model.HasErrorTag(err, model.ErrTagValidation))

		// the failed upload does not use up a creation slot
		gt.Equal(t, len(limiter.AllowCalls()), 0)

		all, err := repo.ListIssues(context.Background(), model.IssueQuery{})
		gt.NoError(t, err)
		gt.Equal(t, len(all), 0)
	})

	t.Run("stored image is removed when saving fails", func(t *testing.T) {
		repo := &faultyRepository{Repository: repository.NewMemory(), putIssueErr: errors.New("db down")}
		images := newImageStoreMock()
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo), usecase.WithImageStore(images))

		input := newInput("Library")
		input.Image = pngUpload()

		_, err := uc.Create(asUser("student-1", types.RoleStudent), input)
		gt.Error(t, err)
		gt.Equal(t, len(images.DeleteCalls()), 1)
		gt.Equal(t, images.DeleteCalls()[0].Ref, "campus-issues/leak")
	})

	t.Run("clustering lookup failure contributes nothing", func(t *testing.T) {
		repo := &faultyRepository{Repository: repository.NewMemory(), countIssuesErr: errors.New("index missing")}
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo))

		issue, err := uc.Create(asUser("student-1", types.RoleStudent), newInput("Library"))
		gt.NoError(t, err).Required()
		gt.Equal(t, issue.Severity, types.SeverityMedium)
	})

	t.Run("rate limited", func(t *testing.T) {
		repo := repository.NewMemory()
		limiter := &mocks.RateLimiterMock{
			AllowFunc: func(ctx context.Context, key string) (bool, time.Duration, error) {
				return false, 30 * time.Second, nil
			},
		}
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo), usecase.WithRateLimiter(limiter))

		_, err := uc.Create(asUser("student-1", types.RoleStudent), newInput("Library"))
		gt.Error(t, err)
		gt.True(t, model.HasErrorTag(err, model.ErrTagRateLimited))

		var limited *model.RateLimitedError
		gt.True(t, errors.As(err, &limited))
		gt.Equal(t, limited.RetryAfter, 30*time.Second)
		gt.S(t, limiter.AllowCalls()[0].Key).Contains("student-1")
	})

	t.Run("rate limited creation removes the stored image", func(t *testing.T) {
		repo := repository.NewMemory()
		images := newImageStoreMock()
		limiter := &mocks.RateLimiterMock{
			AllowFunc: func(ctx context.Context, key string) (bool, time.Duration, error) {
				return false, time.Minute, nil
			},
		}
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo),
			usecase.WithImageStore(images),
			usecase.WithRateLimiter(limiter),
		)

		input := newInput("Library")
		input.Image = pngUpload()

		_, err := uc.Create(asUser("student-1", types.RoleStudent), input)
		gt.True(t, model.HasErrorTag(err, model.ErrTagRateLimited))
		gt.Equal(t, len(images.StoreCalls()), 1)
		gt.Equal(t, len(images.DeleteCalls()), 1)

		all, err := repo.ListIssues(context.Background(), model.IssueQuery{})
		gt.NoError(t, err)
		gt.Equal(t, len(all), 0)
	})

	t.Run("rate limiter failure allows creation", func(t *testing.T) {
		repo := repository.NewMemory()
		limiter := &mocks.RateLimiterMock{
			AllowFunc: func(ctx context.Context, key string) (bool, time.Duration, error) {
				return false, 0, errors.New("redis unavailable")
			},
		}
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo), usecase.WithRateLimiter(limiter))

		_, err := uc.Create(asUser("student-1", types.RoleStudent), newInput("Library"))
		gt.NoError(t, err)
	})

	t.Run("requires authentication", func(t *testing.T) {
		repo := repository.NewMemory()
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo))

		_, err := uc.Create(context.Background(), newInput("Library"))
		gt.True(t, model.HasErrorTag(err, model.ErrTagUnauthenticated))
	})
}

func TestIssueGet(t *testing.T) {
	repo := repository.NewMemory()
	uc := usecase.NewIssue(repo, usecase.NewNotification(repo))
	issue := seedIssue(t, repo, nil)

	t.Run("reporter can read", func(t *testing.T) {
		got, err := uc.Get(asUser("student-1", types.RoleStudent), issue.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, got.ID, issue.ID)
	})

	t.Run("operator can read", func(t *testing.T) {
		_, err := uc.Get(asUser("staff-1", types.RoleStaff), issue.ID)
		gt.NoError(t, err)
	})

	t.Run("other student is forbidden", func(t *testing.T) {
		_, err := uc.Get(asUser("student-2", types.RoleStudent), issue.ID)
		gt.True(t, model.HasErrorTag(err, model.ErrTagForbidden))
	})

	t.Run("unknown issue", func(t *testing.T) {
		_, err := uc.Get(asUser("staff-1", types.RoleStaff), "missing")
		gt.True(t, errors.Is(err, model.ErrIssueNotFound))
		gt.True(t, model.HasErrorTag(err, model.ErrTagNotFound))
	})
}

func TestIssueListViews(t *testing.T) {
	repo := repository.NewMemory()
	uc := usecase.NewIssue(repo, usecase.NewNotification(repo))

	old := seedIssue(t, repo, func(x *model.Issue) {
		x.Title = "Broken bench"
		x.Category = types.CategoryInfrastructure
		x.CreatedAt = testNow.Add(-3 * time.Hour)
		x.Upvotes = []types.UserID{"a", "b"}
	})
	mid := seedIssue(t, repo, func(x *model.Issue) {
		x.Title = "Leaking pipe"
		x.Category = types.CategoryWater
		x.Location.Building = "Hostel B"
		x.CreatedAt = testNow.Add(-2 * time.Hour)
		x.Upvotes = []types.UserID{"a", "b"}
	})
	recent := seedIssue(t, repo, func(x *model.Issue) {
		x.Title = "Wifi down"
		x.Category = types.CategoryInternet
		x.Status = types.StatusInProgress
		x.ReportedBy = model.UserRef{ID: "student-2"}
		x.CreatedAt = testNow.Add(-1 * time.Hour)
		x.Upvotes = []types.UserID{"c"}
	})

	ids := func(issues []*model.Issue) []types.IssueID {
		var out []types.IssueID
		for _, issue := range issues {
			out = append(out, issue.ID)
		}
		return out
	}

	t.Run("own issues newest first", func(t *testing.T) {
		issues, err := uc.ListMine(asUser("student-1", types.RoleStudent), "")
		gt.NoError(t, err).Required()
		gt.Equal(t, ids(issues), []types.IssueID{mid.ID, old.ID})
	})

	t.Run("own issues by upvotes keeps ties in retrieval order", func(t *testing.T) {
		issues, err := uc.ListMine(asUser("student-1", types.RoleStudent), "-upvotes")
		gt.NoError(t, err).Required()
		gt.Equal(t, ids(issues), []types.IssueID{mid.ID, old.ID})
	})

	t.Run("own issues reject other sort keys", func(t *testing.T) {
		_, err := uc.ListMine(asUser("student-1", types.RoleStudent), "title")
		gt.True(t, model.HasErrorTag(err, model.ErrTagValidation))
	})

	t.Run("browse by upvotes descending", func(t *testing.T) {
		issues, err := uc.Browse(asUser("student-3", types.RoleStudent), interfaces.BrowseParams{Sort: "-upvoteCount"})
		gt.NoError(t, err).Required()
		gt.Equal(t, ids(issues), []types.IssueID{mid.ID, old.ID, recent.ID})
	})

	t.Run("browse search is case-insensitive and literal", func(t *testing.T) {
		issues, err := uc.Browse(asUser("student-3", types.RoleStudent), interfaces.BrowseParams{Search: "LEAK"})
		gt.NoError(t, err).Required()
		gt.Equal(t, ids(issues), []types.IssueID{mid.ID})

		issues, err = uc.Browse(asUser("student-3", types.RoleStudent), interfaces.BrowseParams{Search: "wi.i"})
		gt.NoError(t, err).Required()
		gt.Equal(t, len(issues), 0)
	})

	t.Run("browse filters combine", func(t *testing.T) {
		issues, err := uc.Browse(asUser("student-3", types.RoleStudent), interfaces.BrowseParams{
			Status:   types.StatusPending,
			Building: "Library",
		})
		gt.NoError(t, err).Required()
		gt.Equal(t, ids(issues), []types.IssueID{old.ID})
	})

	t.Run("browse rejects invalid enum and sort", func(t *testing.T) {
		_, err := uc.Browse(asUser("student-3", types.RoleStudent), interfaces.BrowseParams{Status: "Closed"})
		gt.True(t, model.HasErrorTag(err, model.ErrTagValidation))

		_, err = uc.Browse(asUser("student-3", types.RoleStudent), interfaces.BrowseParams{Sort: "reporter"})
		gt.True(t, model.HasErrorTag(err, model.ErrTagValidation))
	})

	t.Run("operator view ignores search", func(t *testing.T) {
		issues, err := uc.ListAll(asUser("staff-1", types.RoleStaff), interfaces.BrowseParams{
			Search: "nothing matches this",
			Sort:   "title",
		})
		gt.NoError(t, err).Required()
		gt.Equal(t, ids(issues), []types.IssueID{old.ID, mid.ID, recent.ID})
	})

	t.Run("operator view is forbidden for students", func(t *testing.T) {
		_, err := uc.ListAll(asUser("student-1", types.RoleStudent), interfaces.BrowseParams{})
		gt.True(t, model.HasErrorTag(err, model.ErrTagForbidden))
	})
}

func TestIssueUpdateStatus(t *testing.T) {
	t.Run("resolving sets resolvedAt once and notifies the reporter", func(t *testing.T) {
		repo := repository.NewMemory()
		notifications := usecase.NewNotification(repo)
		now := testNow
		uc := usecase.NewIssue(repo, notifications, usecase.WithClock(func() time.Time { return now }))
		issue := seedIssue(t, repo, func(x *model.Issue) { x.Title = "Dim lights" })
		staff := asUser("staff-1", types.RoleStaff)

		updated, err := uc.UpdateStatus(staff, issue.ID, model.StatusUpdate{
			Status:     types.StatusResolved,
			AssignedTo: "Electrical team",
		})
		gt.NoError(t, err).Required()
		gt.Equal(t, updated.Status, types.StatusResolved)
		gt.Equal(t, updated.AssignedTo, "Electrical team")
		gt.Equal(t, *updated.ResolvedAt, testNow)

		now = testNow.Add(time.Hour)
		updated, err = uc.UpdateStatus(staff, issue.ID, model.StatusUpdate{Status: types.StatusResolved})
		gt.NoError(t, err).Required()
		gt.Equal(t, *updated.ResolvedAt, testNow)
		gt.Equal(t, updated.AssignedTo, "Electrical team")

		page, err := notifications.List(asUser("student-1", types.RoleStudent), model.NotificationQuery{})
		gt.NoError(t, err).Required()
		gt.Equal(t, page.Total, 2)
		gt.Equal(t, page.Notifications[0].Type, types.NotificationResolved)
		gt.Equal(t, page.Notifications[0].Message, `Your issue "Dim lights" has been resolved!`)
		gt.Equal(t, page.Notifications[0].IssueID, issue.ID)
	})

	t.Run("notification type follows the new status", func(t *testing.T) {
		testCases := []struct {
			status  types.Status
			kind    types.NotificationType
			message string
		}{
			{types.StatusInProgress, types.NotificationInProgress, `Your issue "Dim lights" is now being worked on`},
			{types.StatusRejected, types.NotificationRejected, `Your issue "Dim lights" has been reviewed`},
			{types.StatusPending, types.NotificationStatusUpdate, `Your issue "Dim lights" status updated to Pending`},
		}

		for _, tc := range testCases {
			t.Run(string(tc.status), func(t *testing.T) {
				repo := repository.NewMemory()
				notifications := usecase.NewNotification(repo)
				uc := usecase.NewIssue(repo, notifications)
				issue := seedIssue(t, repo, func(x *model.Issue) { x.Title = "Dim lights" })

				updated, err := uc.UpdateStatus(asUser("admin-1", types.RoleAdmin), issue.ID, model.StatusUpdate{Status: tc.status})
				gt.NoError(t, err).Required()
				gt.V(t, updated.ResolvedAt).Nil()

				page, err := notifications.List(asUser("student-1", types.RoleStudent), model.NotificationQuery{})
				gt.NoError(t, err).Required()
				gt.Equal(t, page.Total, 1)
				gt.Equal(t, page.Notifications[0].Type, tc.kind)
				gt.Equal(t, page.Notifications[0].Message, tc.message)
			})
		}
	})

	t.Run("notes without status do not notify", func(t *testing.T) {
		repo := repository.NewMemory()
		notifications := usecase.NewNotification(repo)
		uc := usecase.NewIssue(repo, notifications)
		issue := seedIssue(t, repo, nil)

		updated, err := uc.UpdateStatus(asUser("staff-1", types.RoleStaff), issue.ID, model.StatusUpdate{AdminNotes: "parts ordered"})
		gt.NoError(t, err).Required()
		gt.Equal(t, updated.Status, types.StatusPending)
		gt.Equal(t, updated.AdminNotes, "parts ordered")

		count, err := notifications.UnreadCount(asUser("student-1", types.RoleStudent))
		gt.NoError(t, err)
		gt.Equal(t, count, 0)
	})

	t.Run("notification failure does not fail the update", func(t *testing.T) {
		repo := &faultyRepository{Repository: repository.NewMemory(), putNotificationErr: errors.New("quota")}
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo))
		issue := seedIssue(t, repo, nil)

		updated, err := uc.UpdateStatus(asUser("staff-1", types.RoleStaff), issue.ID, model.StatusUpdate{Status: types.StatusInProgress})
		gt.NoError(t, err).Required()
		gt.Equal(t, updated.Status, types.StatusInProgress)
	})

	t.Run("rejects invalid input and callers", func(t *testing.T) {
		repo := repository.NewMemory()
		notifications := usecase.NewNotification(repo)
		uc := usecase.NewIssue(repo, notifications)
		issue := seedIssue(t, repo, nil)

		_, err := uc.UpdateStatus(asUser("staff-1", types.RoleStaff), issue.ID, model.StatusUpdate{Status: "Closed"})
		gt.True(t, model.HasErrorTag(err, model.ErrTagValidation))

		_, err = uc.UpdateStatus(asUser("student-1", types.RoleStudent), issue.ID, model.StatusUpdate{Status: types.StatusResolved})
		gt.True(t, model.HasErrorTag(err, model.ErrTagForbidden))

		_, err = uc.UpdateStatus(asUser("staff-1", types.RoleStaff), "missing", model.StatusUpdate{Status: types.StatusResolved})
		gt.True(t, errors.Is(err, model.ErrIssueNotFound))

		got, err := repo.GetIssue(context.Background(), issue.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, got.Status, types.StatusPending)

		count, err := notifications.UnreadCount(asUser("student-1", types.RoleStudent))
		gt.NoError(t, err)
		gt.Equal(t, count, 0)
	})
}

func TestIssueDelete(t *testing.T) {
	t.Run("admin deletes issue and image", func(t *testing.T) {
		repo := repository.NewMemory()
		images := newImageStoreMock()
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo), usecase.WithImageStore(images))
		issue := seedIssue(t, repo, func(x *model.Issue) { x.ImageRef = "campus-issues/abc" })

		gt.NoError(t, uc.Delete(asUser("admin-1", types.RoleAdmin), issue.ID))
		gt.Equal(t, len(images.DeleteCalls()), 1)
		gt.Equal(t, images.DeleteCalls()[0].Ref, "campus-issues/abc")

		_, err := repo.GetIssue(context.Background(), issue.ID)
		gt.True(t, errors.Is(err, model.ErrIssueNotFound))
	})

	t.Run("image deletion failure keeps the issue", func(t *testing.T) {
		repo := repository.NewMemory()
		images := &mocks.ImageStoreMock{
			DeleteFunc: func(ctx context.Context, ref string) error {
				return goerr.New("cdn unavailable")
			},
		}
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo), usecase.WithImageStore(images))
		issue := seedIssue(t, repo, func(x *model.Issue) { x.ImageRef = "campus-issues/abc" })

		gt.Error(t, uc.Delete(asUser("admin-1", types.RoleAdmin), issue.ID))

		_, err := repo.GetIssue(context.Background(), issue.ID)
		gt.NoError(t, err)
	})

	t.Run("staff cannot delete", func(t *testing.T) {
		repo := repository.NewMemory()
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo))
		issue := seedIssue(t, repo, nil)

		err := uc.Delete(asUser("staff-1", types.RoleStaff), issue.ID)
		gt.True(t, model.HasErrorTag(err, model.ErrTagForbidden))
	})

	t.Run("unknown issue", func(t *testing.T) {
		repo := repository.NewMemory()
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo))

		err := uc.Delete(asUser("admin-1", types.RoleAdmin), "missing")
		gt.True(t, errors.Is(err, model.ErrIssueNotFound))
	})
}

func TestIssueToggleUpvote(t *testing.T) {
	t.Run("toggle twice restores the set", func(t *testing.T) {
		repo := repository.NewMemory()
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo))
		issue := seedIssue(t, repo, nil)
		ctx := asUser("student-9", types.RoleStudent)

		result, err := uc.ToggleUpvote(ctx, issue.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, *result, model.UpvoteResult{UpvoteCount: 1, HasUpvoted: true})

		result, err = uc.ToggleUpvote(ctx, issue.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, *result, model.UpvoteResult{UpvoteCount: 0, HasUpvoted: false})
	})

	t.Run("concurrent toggles by different users all count", func(t *testing.T) {
		repo := repository.NewMemory()
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo))
		issue := seedIssue(t, repo, nil)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := uc.ToggleUpvote(asUser(types.UserID(string(rune('a'+i))), types.RoleStudent), issue.ID)
				gt.NoError(t, err)
			}(i)
		}
		wg.Wait()

		got, err := repo.GetIssue(context.Background(), issue.ID)
		gt.NoError(t, err).Required()
		gt.Equal(t, got.UpvoteCount, 20)
	})

	t.Run("unknown issue", func(t *testing.T) {
		repo := repository.NewMemory()
		uc := usecase.NewIssue(repo, usecase.NewNotification(repo))

		_, err := uc.ToggleUpvote(asUser("student-9", types.RoleStudent), "missing")
		gt.True(t, errors.Is(err, model.ErrIssueNotFound))
	})
}

func TestIssueAnalytics(t *testing.T) {
	repo := repository.NewMemory()
	uc := usecase.NewIssue(repo, usecase.NewNotification(repo), usecase.WithClock(fixedClock))
	staff := asUser("staff-1", types.RoleStaff)

	seedIssue(t, repo, func(x *model.Issue) {
		x.Status = types.StatusResolved
		resolvedAt := x.CreatedAt.Add(3 * time.Hour)
		x.ResolvedAt = &resolvedAt
	})
	seedIssue(t, repo, func(x *model.Issue) { x.Location.Building = "Hostel B" })

	summary, err := uc.Analytics(staff)
	gt.NoError(t, err).Required()
	gt.Equal(t, summary.TotalIssues, 2)
	gt.Equal(t, summary.AvgResolutionTimeHours, 3.0)
	gt.Equal(t, summary.RecentIssuesCount, 2)
	gt.Equal(t, summary.LocationStats, []model.CountEntry{{ID: "Hostel B", Count: 1}, {ID: "Library", Count: 1}})

	t.Run("mutations through the use case refresh the summary", func(t *testing.T) {
		_, err := uc.Create(asUser("student-1", types.RoleStudent), newInput("Library"))
		gt.NoError(t, err).Required()

		summary, err := uc.Analytics(staff)
		gt.NoError(t, err).Required()
		gt.Equal(t, summary.TotalIssues, 3)
	})

	t.Run("students are forbidden", func(t *testing.T) {
		_, err := uc.Analytics(asUser("student-1", types.RoleStudent))
		gt.True(t, model.HasErrorTag(err, model.ErrTagForbidden))
	})
}
