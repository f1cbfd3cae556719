package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// Alerter posts High and Critical issues to an operator channel
type Alerter struct {
	poster    MessagePoster
	channelID string
	baseURL   string
}

var _ interfaces.IssueAlerter = (*Alerter)(nil)

// NewAlerter creates an alerter posting to channelID. baseURL, when set, is
// used to link the alert to the issue.
func NewAlerter(poster MessagePoster, channelID, baseURL string) *Alerter {
	return &Alerter{
		poster:    poster,
		channelID: channelID,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// ShouldAlert reports whether an issue is severe enough to page operators
func ShouldAlert(issue *model.Issue) bool {
	return issue.Severity == types.SeverityHigh || issue.Severity == types.SeverityCritical
}

// AlertIssue implements interfaces.IssueAlerter
func (a *Alerter) AlertIssue(ctx context.Context, issue *model.Issue) error {
	if issue == nil || !ShouldAlert(issue) {
		return nil
	}

	var issueURL string
	if a.baseURL != "" {
		issueURL = a.baseURL + "/issues/" + string(issue.ID)
	}

	fallback := fmt.Sprintf("%s issue reported: %s (%s)", issue.Severity, issue.Title, issue.Location.Building)
	_, ts, err := a.poster.PostMessage(ctx, a.channelID,
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(BuildIssueAlertBlocks(issue, issueURL)...),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post issue alert",
			goerr.V("issue_id", issue.ID),
			goerr.V("channel_id", a.channelID))
	}

	ctxlog.From(ctx).Info("Posted issue alert",
		"issue_id", issue.ID,
		"severity", issue.Severity,
		"channel_id", a.channelID,
		"ts", ts)
	return nil
}
