package model

import (
	"sort"
	"strings"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// IssueFilter selects issues. Zero values are ignored, so an empty filter
// matches every issue.
type IssueFilter struct {
	ReportedBy   types.UserID
	Status       types.Status
	Category     types.Category
	Severity     types.Severity
	Building     string
	Search       string
	StatusIn     []types.Status
	CreatedSince time.Time
}

// Validate rejects enum values outside their enum
func (x IssueFilter) Validate() error {
	if x.Status != "" && !x.Status.IsValid() {
		return goerr.New("invalid status filter", goerr.V("status", x.Status), goerr.T(ErrTagValidation))
	}
	if x.Category != "" && !x.Category.IsValid() {
		return goerr.New("invalid category filter", goerr.V("category", x.Category), goerr.T(ErrTagValidation))
	}
	if x.Severity != "" && !x.Severity.IsValid() {
		return goerr.New("invalid severity filter", goerr.V("severity", x.Severity), goerr.T(ErrTagValidation))
	}
	return nil
}

// Match reports whether issue satisfies every non-empty criterion
func (x IssueFilter) Match(issue *Issue) bool {
	if x.ReportedBy != "" && issue.ReportedBy.ID != x.ReportedBy {
		return false
	}
	if x.Status != "" && issue.Status != x.Status {
		return false
	}
	if x.Category != "" && issue.Category != x.Category {
		return false
	}
	if x.Severity != "" && issue.Severity != x.Severity {
		return false
	}
	if x.Building != "" && issue.Location.Building != x.Building {
		return false
	}
	if len(x.StatusIn) > 0 {
		found := false
		for _, s := range x.StatusIn {
			if issue.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !x.CreatedSince.IsZero() && issue.CreatedAt.Before(x.CreatedSince) {
		return false
	}
	if x.Search != "" {
		q := strings.ToLower(x.Search)
		if !strings.Contains(strings.ToLower(issue.Title), q) &&
			!strings.Contains(strings.ToLower(issue.Description), q) {
			return false
		}
	}
	return true
}

// SortField names an issue attribute that views can be ordered by
type SortField string

const (
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
	SortByResolvedAt  SortField = "resolvedAt"
	SortByTitle       SortField = "title"
	SortByCategory    SortField = "category"
	SortBySeverity    SortField = "severity"
	SortByStatus      SortField = "status"
	SortByBuilding    SortField = "building"
	SortByUpvoteCount SortField = "upvoteCount"
)

var sortFieldAliases = map[string]SortField{
	"upvotes":           SortByUpvoteCount,
	"location.building": SortByBuilding,
}

// SelfViewSortFields are the orderings offered on a user's own issues
var SelfViewSortFields = []SortField{SortByCreatedAt, SortByUpvoteCount}

// BrowseSortFields are the orderings offered on browse and operator views
var BrowseSortFields = []SortField{
	SortByCreatedAt, SortByUpdatedAt, SortByResolvedAt, SortByTitle,
	SortByCategory, SortBySeverity, SortByStatus, SortByBuilding, SortByUpvoteCount,
}

// StoragePath returns the document path of the field in stored issues
func (f SortField) StoragePath() string {
	if f == SortByBuilding {
		return "location.building"
	}
	return string(f)
}

// SortKey is a parsed signed sort key such as "-createdAt"
type SortKey struct {
	Field      SortField
	Descending bool
}

// DefaultSortKey orders most recent first
var DefaultSortKey = SortKey{Field: SortByCreatedAt, Descending: true}

// String returns the signed form of the key
func (x SortKey) String() string {
	if x.Descending {
		return "-" + string(x.Field)
	}
	return string(x.Field)
}

// IsUpvoteCount reports whether the key orders by upvote set size, which is
// applied after retrieval.
func (x SortKey) IsUpvoteCount() bool {
	return x.Field == SortByUpvoteCount
}

// ParseSortKey parses a signed sort key. An empty key yields DefaultSortKey;
// a field outside allowed is a validation error.
func ParseSortKey(raw string, allowed []SortField) (SortKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSortKey, nil
	}

	key := SortKey{}
	if strings.HasPrefix(raw, "-") {
		key.Descending = true
		raw = raw[1:]
	} else {
		raw = strings.TrimPrefix(raw, "+")
	}

	field := SortField(raw)
	if alias, ok := sortFieldAliases[raw]; ok {
		field = alias
	}

	for _, f := range allowed {
		if f == field {
			key.Field = field
			return key, nil
		}
	}

	return SortKey{}, goerr.New("unsupported sort key",
		goerr.V("sort", raw),
		goerr.V("allowed", allowed),
		goerr.T(ErrTagValidation))
}

// IssueQuery is a filtered, ordered retrieval of issues. Sort must be a
// stored field; upvote ordering is applied by the caller.
type IssueQuery struct {
	Filter IssueFilter
	Sort   SortKey
}

// SortIssues orders issues by key with a stable sort, so issues that compare
// equal keep their incoming order.
func SortIssues(issues []*Issue, key SortKey) {
	sort.SliceStable(issues, func(i, j int) bool {
		c := compareIssues(issues[i], issues[j], key.Field)
		if key.Descending {
			return c > 0
		}
		return c < 0
	})
}

func compareIssues(a, b *Issue, field SortField) int {
	switch field {
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortByResolvedAt:
		switch {
		case a.ResolvedAt == nil && b.ResolvedAt == nil:
			return 0
		case a.ResolvedAt == nil:
			return -1
		case b.ResolvedAt == nil:
			return 1
		}
		return a.ResolvedAt.Compare(*b.ResolvedAt)
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case SortByCategory:
		return strings.Compare(string(a.Category), string(b.Category))
	case SortBySeverity:
		return strings.Compare(string(a.Severity), string(b.Severity))
	case SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case SortByBuilding:
		return strings.Compare(a.Location.Building, b.Location.Building)
	case SortByUpvoteCount:
		return len(a.Upvotes) - len(b.Upvotes)
	default:
		return 0
	}
}
