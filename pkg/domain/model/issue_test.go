package model_test

import (
	"strings"
	"testing"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func validInput() *model.CreateIssueInput {
	return &model.CreateIssueInput{
		Title:       "Broken light in corridor",
		Description: "The light outside room 204 flickers all night",
		Category:    types.CategoryElectricity,
		Location: model.IssueLocation{
			Building: "Science Block",
			Floor:    "2",
			Room:     "204",
		},
	}
}

func TestNewIssue(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	input := validInput()
	input.Title = "  padded title  "

	issue, err := model.NewIssue(input, model.UserRef{ID: "u1", Name: "Alice"}, types.SeverityHigh, now)
	gt.NoError(t, err).Required()

	gt.NotEqual(t, issue.ID, types.IssueID(""))
	gt.Equal(t, issue.Title, "padded title")
	gt.Equal(t, issue.Status, types.StatusPending)
	gt.Equal(t, issue.Severity, types.SeverityHigh)
	gt.Equal(t, issue.ReportedBy.ID, types.UserID("u1"))
	gt.Equal(t, issue.Location.Building, "Science Block")
	gt.Equal(t, len(issue.Upvotes), 0)
	gt.V(t, issue.ResolvedAt).Nil()
	gt.Equal(t, issue.CreatedAt, now)
}

func TestIssueToggleUpvote(t *testing.T) {
	issue := &model.Issue{ID: "i1"}

	gt.True(t, issue.ToggleUpvote("u1"))
	gt.Equal(t, issue.UpvoteCount, 1)
	gt.True(t, issue.HasUpvoted("u1"))

	gt.True(t, issue.ToggleUpvote("u2"))
	gt.Equal(t, issue.UpvoteCount, 2)

	gt.False(t, issue.ToggleUpvote("u1"))
	gt.Equal(t, issue.UpvoteCount, 1)
	gt.False(t, issue.HasUpvoted("u1"))
	gt.True(t, issue.HasUpvoted("u2"))

	t.Run("toggle twice restores the original set", func(t *testing.T) {
		issue := &model.Issue{ID: "i2", Upvotes: []types.UserID{"a", "b"}}
		issue.ToggleUpvote("c")
		issue.ToggleUpvote("c")
		gt.Equal(t, issue.Upvotes, []types.UserID{"a", "b"})
	})
}

func TestIssueClone(t *testing.T) {
	resolved := time.Now()
	issue := &model.Issue{
		ID:         "i1",
		Upvotes:    []types.UserID{"u1"},
		ResolvedAt: &resolved,
		Location: model.Location{
			Building:    "Library",
			Coordinates: &model.Coordinates{Lat: 1, Lng: 2},
		},
	}

	c := issue.Clone()
	c.Upvotes[0] = "changed"
	c.Location.Coordinates.Lat = 99
	*c.ResolvedAt = resolved.Add(time.Hour)

	gt.Equal(t, issue.Upvotes[0], types.UserID("u1"))
	gt.Equal(t, issue.Location.Coordinates.Lat, 1.0)
	gt.Equal(t, *issue.ResolvedAt, resolved)
}

func TestStatusUpdateApply(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)
	t2 := t1.Add(time.Hour)

	t.Run("resolvedAt is set on first resolution only", func(t *testing.T) {
		issue := &model.Issue{Status: types.StatusPending}

		model.StatusUpdate{Status: types.StatusResolved}.Apply(issue, t1)
		gt.V(t, issue.ResolvedAt).NotNil()
		gt.Equal(t, *issue.ResolvedAt, t1)

		model.StatusUpdate{Status: types.StatusInProgress}.Apply(issue, t2)
		gt.Equal(t, issue.Status, types.StatusInProgress)
		gt.Equal(t, *issue.ResolvedAt, t1)

		model.StatusUpdate{Status: types.StatusResolved}.Apply(issue, t2)
		gt.Equal(t, *issue.ResolvedAt, t1)
	})

	t.Run("empty fields are left unchanged", func(t *testing.T) {
		issue := &model.Issue{
			Status:     types.StatusInProgress,
			AssignedTo: "staff-1",
			AdminNotes: "checking",
		}

		model.StatusUpdate{AdminNotes: "parts ordered"}.Apply(issue, t1)
		gt.Equal(t, issue.Status, types.StatusInProgress)
		gt.Equal(t, issue.AssignedTo, "staff-1")
		gt.Equal(t, issue.AdminNotes, "parts ordered")
		gt.V(t, issue.ResolvedAt).Nil()
		gt.Equal(t, issue.UpdatedAt, t1)
	})

	t.Run("invalid status is rejected", func(t *testing.T) {
		err := model.StatusUpdate{Status: "Closed"}.Validate()
		gt.Error(t, err)
		gt.True(t, model.HasErrorTag(err, model.ErrTagValidation))

		gt.NoError(t, model.StatusUpdate{}.Validate())
	})
}

func TestCreateIssueInputValidate(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		gt.NoError(t, validInput().Validate())
	})

	t.Run("title is trimmed", func(t *testing.T) {
		input := validInput()
		input.Title = "   Leak   "
		gt.NoError(t, input.Validate())
		gt.Equal(t, input.Title, "Leak")
	})

	testCases := []struct {
		name   string
		modify func(*model.CreateIssueInput)
	}{
		{"missing title", func(in *model.CreateIssueInput) { in.Title = "" }},
		{"blank title", func(in *model.CreateIssueInput) { in.Title = "    " }},
		{"title too long", func(in *model.CreateIssueInput) { in.Title = strings.Repeat("a", 101) }},
		{"missing description", func(in *model.CreateIssueInput) { in.Description = "" }},
		{"description too long", func(in *model.CreateIssueInput) { in.Description = strings.Repeat("a", 501) }},
		{"invalid category", func(in *model.CreateIssueInput) { in.Category = "Plumbing" }},
		{"missing category", func(in *model.CreateIssueInput) { in.Category = "" }},
		{"missing building", func(in *model.CreateIssueInput) { in.Location.Building = " " }},
		{"latitude out of range", func(in *model.CreateIssueInput) {
			in.Location.Coordinates = &model.Coordinates{Lat: 91, Lng: 0}
		}},
		{"longitude out of range", func(in *model.CreateIssueInput) {
			in.Location.Coordinates = &model.Coordinates{Lat: 0, Lng: -181}
		}},
		{"unsupported image type", func(in *model.CreateIssueInput) {
			in.Image = &model.ImageUpload{Filename: "doc.pdf", ContentType: "application/pdf", Data: []byte("x")}
		}},
		{"image extension mismatch", func(in *model.CreateIssueInput) {
			in.Image = &model.ImageUpload{Filename: "photo.exe", ContentType: "image/png", Data: []byte("x")}
		}},
		{"image too large", func(in *model.CreateIssueInput) {
			in.Image = &model.ImageUpload{Filename: "a.png", ContentType: "image/png", Data: make([]byte, model.MaxImageSize+1)}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.modify(input)
			err := input.Validate()
			gt.Error(t, err)
			gt.True(t, model.HasErrorTag(err, model.ErrTagValidation))
		})
	}

	t.Run("title of exactly 100 characters is accepted", func(t *testing.T) {
		input := validInput()
		input.Title = strings.Repeat("é", 100)
		gt.NoError(t, input.Validate())
	})

	t.Run("valid coordinates and image", func(t *testing.T) {
		input := validInput()
		input.Location.Coordinates = &model.Coordinates{Lat: -90, Lng: 180}
		input.Image = &model.ImageUpload{Filename: "photo.JPG", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}
		gt.NoError(t, input.Validate())
	})

	t.Run("error message names the field", func(t *testing.T) {
		input := validInput()
		input.Location.Building = ""
		err := input.Validate()
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains("location.building")
	})
}
