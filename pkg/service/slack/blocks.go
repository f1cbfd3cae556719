package slack

import (
	"fmt"
	"strings"

	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/slack-go/slack"
)

// Action IDs of the buttons attached to issue alerts. The button value is
// the issue ID.
const (
	ActionStartIssue  = "start_issue"
	ActionRejectIssue = "reject_issue"
	ActionOpenIssue   = "open_issue"
)

// GetSeverityEmoji returns emoji based on severity level
func GetSeverityEmoji(severity types.Severity) string {
	switch severity {
	case types.SeverityCritical:
		return "🚨"
	case types.SeverityHigh:
		return "⚠️"
	case types.SeverityMedium:
		return "🔶"
	default:
		return "ℹ️"
	}
}

// FormatLocation renders building, floor and room on one line
func FormatLocation(loc model.Location) string {
	parts := []string{loc.Building}
	if loc.Floor != "" {
		parts = append(parts, "Floor "+loc.Floor)
	}
	if loc.Room != "" {
		parts = append(parts, "Room "+loc.Room)
	}
	return strings.Join(parts, ", ")
}

// BuildIssueAlertBlocks builds the operator alert for a newly reported issue.
// issueURL is optional and adds a link button next to the triage buttons.
func BuildIssueAlertBlocks(issue *model.Issue, issueURL string) []slack.Block {
	header := slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType,
			fmt.Sprintf("%s %s issue reported", GetSeverityEmoji(issue.Severity), issue.Severity), true, false),
	)

	title := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*\n%s", issue.Title, issue.Description), false, false),
		nil, nil,
	)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Category:*\n%s", issue.Category), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Severity:*\n%s", issue.Severity), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Location:*\n%s", FormatLocation(issue.Location)), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Reported by:*\n%s", reporterName(issue.ReportedBy)), false, false),
	}
	details := slack.NewSectionBlock(nil, fields, nil)

	blocks := []slack.Block{header, title, details}

	if issue.ImageURL != "" {
		blocks = append(blocks, slack.NewImageBlock(issue.ImageURL, "issue image", "", nil))
	}

	var buttons []slack.BlockElement
	if issueURL != "" {
		open := slack.NewButtonBlockElement(ActionOpenIssue, string(issue.ID),
			slack.NewTextBlockObject(slack.PlainTextType, "Open issue", false, false))
		open.URL = issueURL
		buttons = append(buttons, open)
	}
	start := slack.NewButtonBlockElement(ActionStartIssue, string(issue.ID),
		slack.NewTextBlockObject(slack.PlainTextType, "Start work", false, false)).
		WithStyle(slack.StylePrimary)
	reject := slack.NewButtonBlockElement(ActionRejectIssue, string(issue.ID),
		slack.NewTextBlockObject(slack.PlainTextType, "Reject", false, false)).
		WithStyle(slack.StyleDanger)
	buttons = append(buttons, start, reject)
	blocks = append(blocks, slack.NewActionBlock("issue_actions", buttons...))

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("Issue `%s` • <!date^%d^{date_short_pretty} {time}|%s>",
				issue.ID, issue.CreatedAt.Unix(), issue.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")),
			false, false),
	))

	return blocks
}

func reporterName(ref model.UserRef) string {
	if ref.Name != "" {
		return ref.Name
	}
	return string(ref.ID)
}
