package model

import (
	"slices"
	"strings"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Issue is a facilities problem reported by a campus user
type Issue struct {
	ID          types.IssueID  `json:"id" bson:"_id" firestore:"id"`
	Title       string         `json:"title" bson:"title" firestore:"title"`
	Description string         `json:"description" bson:"description" firestore:"description"`
	Category    types.Category `json:"category" bson:"category" firestore:"category"`
	ImageURL    string         `json:"imageUrl,omitempty" bson:"imageUrl,omitempty" firestore:"imageUrl"`
	ImageRef    string         `json:"imageRef,omitempty" bson:"imageRef,omitempty" firestore:"imageRef"`
	Severity    types.Severity `json:"severity" bson:"severity" firestore:"severity"`
	Status      types.Status   `json:"status" bson:"status" firestore:"status"`
	Location    Location       `json:"location" bson:"location" firestore:"location"`
	ReportedBy  UserRef        `json:"reportedBy" bson:"reportedBy" firestore:"reportedBy"`
	AssignedTo  string         `json:"assignedTo,omitempty" bson:"assignedTo,omitempty" firestore:"assignedTo"`
	Upvotes     []types.UserID `json:"upvotes" bson:"upvotes" firestore:"upvotes"`
	UpvoteCount int            `json:"upvoteCount" bson:"upvoteCount" firestore:"upvoteCount"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty" firestore:"resolvedAt"`
	AdminNotes  string         `json:"adminNotes,omitempty" bson:"adminNotes,omitempty" firestore:"adminNotes"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`

	// Revision is incremented on every stored mutation
	Revision int64 `json:"-" bson:"revision" firestore:"revision"`
}

// Location describes where on campus an issue is
type Location struct {
	Building    string       `json:"building" bson:"building" firestore:"building"`
	Floor       string       `json:"floor,omitempty" bson:"floor,omitempty" firestore:"floor"`
	Room        string       `json:"room,omitempty" bson:"room,omitempty" firestore:"room"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty" firestore:"coordinates"`
}

// Coordinates is a WGS84 point
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" firestore:"lat" validate:"latitude"`
	Lng float64 `json:"lng" bson:"lng" firestore:"lng" validate:"longitude"`
}

// UserRef is a snapshot of a user taken when the reference was recorded
type UserRef struct {
	ID    types.UserID `json:"id" bson:"id" firestore:"id"`
	Name  string       `json:"name,omitempty" bson:"name,omitempty" firestore:"name"`
	Email string       `json:"email,omitempty" bson:"email,omitempty" firestore:"email"`
}

// NewIssue creates a Pending issue from validated input
func NewIssue(input *CreateIssueInput, reporter UserRef, severity types.Severity, now time.Time) (*Issue, error) {
	id, err := types.NewIssueID()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate issue ID")
	}

	return &Issue{
		ID:          id,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    input.Category,
		Severity:    severity,
		Status:      types.StatusPending,
		Location:    input.Location.Clone(),
		ReportedBy:  reporter,
		Upvotes:     []types.UserID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Clone returns a deep copy of the issue
func (x *Issue) Clone() *Issue {
	if x == nil {
		return nil
	}
	c := *x
	c.Upvotes = slices.Clone(x.Upvotes)
	if c.Upvotes == nil {
		c.Upvotes = []types.UserID{}
	}
	if x.ResolvedAt != nil {
		t := *x.ResolvedAt
		c.ResolvedAt = &t
	}
	c.Location = x.Location.Clone()
	return &c
}

// Clone returns a deep copy of the location
func (x Location) Clone() Location {
	if x.Coordinates != nil {
		coords := *x.Coordinates
		x.Coordinates = &coords
	}
	return x
}

// IsReportedBy reports whether userID is the reporter of the issue
func (x *Issue) IsReportedBy(userID types.UserID) bool {
	return x.ReportedBy.ID == userID
}

// HasUpvoted reports whether userID is in the upvote set
func (x *Issue) HasUpvoted(userID types.UserID) bool {
	return slices.Contains(x.Upvotes, userID)
}

// ToggleUpvote flips userID's membership in the upvote set and returns
// whether the user has upvoted after the flip.
func (x *Issue) ToggleUpvote(userID types.UserID) bool {
	hasUpvoted := false
	if idx := slices.Index(x.Upvotes, userID); idx >= 0 {
		x.Upvotes = slices.Delete(x.Upvotes, idx, idx+1)
	} else {
		x.Upvotes = append(x.Upvotes, userID)
		hasUpvoted = true
	}
	x.UpvoteCount = len(x.Upvotes)
	return hasUpvoted
}

// StatusUpdate carries the operator-editable fields of an issue. Empty
// values leave the corresponding field unchanged.
type StatusUpdate struct {
	Status     types.Status `json:"status,omitempty"`
	AssignedTo string       `json:"assignedTo,omitempty"`
	AdminNotes string       `json:"adminNotes,omitempty"`
}

// Validate checks the update values
func (x StatusUpdate) Validate() error {
	if x.Status != "" && !x.Status.IsValid() {
		return goerr.New("invalid status",
			goerr.V("status", x.Status),
			goerr.T(ErrTagValidation))
	}
	return nil
}

// Apply writes the supplied fields to the issue. resolvedAt is set the first
// time the issue enters Resolved and never changed afterwards.
func (x StatusUpdate) Apply(issue *Issue, now time.Time) {
	if x.Status != "" {
		issue.Status = x.Status
	}
	if x.AssignedTo != "" {
		issue.AssignedTo = x.AssignedTo
	}
	if x.AdminNotes != "" {
		issue.AdminNotes = x.AdminNotes
	}
	if x.Status == types.StatusResolved && issue.ResolvedAt == nil {
		resolvedAt := now
		issue.ResolvedAt = &resolvedAt
	}
	issue.UpdatedAt = now
}

// UpvoteResult is the state of an upvote set after a toggle
type UpvoteResult struct {
	UpvoteCount int  `json:"upvoteCount"`
	HasUpvoted  bool `json:"hasUpvoted"`
}
