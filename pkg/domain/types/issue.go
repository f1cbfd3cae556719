package types

// Category represents the facility area an issue belongs to
type Category string

const (
	CategoryElectricity    Category = "Electricity"
	CategoryWater          Category = "Water"
	CategoryInternet       Category = "Internet"
	CategoryCleanliness    Category = "Cleanliness"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryOther          Category = "Other"
)

// AllCategories returns every category in display order
func AllCategories() []Category {
	return []Category{
		CategoryElectricity,
		CategoryWater,
		CategoryInternet,
		CategoryCleanliness,
		CategoryInfrastructure,
		CategoryOther,
	}
}

// String returns the string representation
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryElectricity, CategoryWater, CategoryInternet,
		CategoryCleanliness, CategoryInfrastructure, CategoryOther:
		return true
	default:
		return false
	}
}

// Severity represents the computed urgency of an issue
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// AllSeverities returns every severity from lowest to highest
func AllSeverities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// String returns the string representation
func (s Severity) String() string {
	return string(s)
}

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// Status represents the lifecycle state of an issue
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusRejected   Status = "Rejected"
)

// AllStatuses returns every status in lifecycle order
func AllStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusResolved, StatusRejected}
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	default:
		return false
	}
}

// IsOpen reports whether the issue still awaits handling
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusInProgress
}

// Role represents the role of an authenticated user
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsOperator reports whether the role may triage issues
func (r Role) IsOperator() bool {
	return r == RoleStaff || r == RoleAdmin
}

// NotificationType represents the kind of a notification
type NotificationType string

const (
	NotificationStatusUpdate    NotificationType = "status_update"
	NotificationResolved        NotificationType = "resolved"
	NotificationInProgress      NotificationType = "in_progress"
	NotificationRejected        NotificationType = "rejected"
	NotificationComment         NotificationType = "comment"
	NotificationUpvoteMilestone NotificationType = "upvote_milestone"
)

// String returns the string representation
func (t NotificationType) String() string {
	return string(t)
}

// IsValid checks if the notification type is valid
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationStatusUpdate, NotificationResolved, NotificationInProgress,
		NotificationRejected, NotificationComment, NotificationUpvoteMilestone:
		return true
	default:
		return false
	}
}
