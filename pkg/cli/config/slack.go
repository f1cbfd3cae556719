package config

import (
	"context"
	"log/slog"
	"strings"

	slackCtrl "github.com/campusfix/issuedesk/pkg/controller/slack"
	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	slackSvc "github.com/campusfix/issuedesk/pkg/service/slack"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Slack holds the settings for operator alerts
type Slack struct {
	OAuthToken    string
	SigningSecret string
	ChannelID     string
	BaseURL       string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-oauth-token",
			Usage:       "Slack bot token used to post alerts",
			Category:    "Slack",
			Sources:     cli.EnvVars("ISSUEDESK_SLACK_OAUTH_TOKEN"),
			Destination: &s.OAuthToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack signing secret. Enables the triage buttons on alerts",
			Category:    "Slack",
			Sources:     cli.EnvVars("ISSUEDESK_SLACK_SIGNING_SECRET"),
			Destination: &s.SigningSecret,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel ID receiving high and critical severity alerts",
			Category:    "Slack",
			Sources:     cli.EnvVars("ISSUEDESK_SLACK_CHANNEL"),
			Destination: &s.ChannelID,
		},
		&cli.StringFlag{
			Name:        "slack-base-url",
			Usage:       "Public URL of the web client, used for links in alerts",
			Category:    "Slack",
			Sources:     cli.EnvVars("ISSUEDESK_SLACK_BASE_URL"),
			Destination: &s.BaseURL,
		},
	}
}

// Configure returns the alerter, or nil when Slack is not configured
func (s *Slack) Configure(ctx context.Context) (interfaces.IssueAlerter, error) {
	logger := ctxlog.From(ctx)

	if !s.IsConfigured() {
		logger.Warn("Slack not configured, severe issues will not be alerted")
		return nil, nil
	}
	if s.ChannelID == "" {
		return nil, goerr.New("slack channel is required when a token is set. Please provide ISSUEDESK_SLACK_CHANNEL")
	}

	svc := slackSvc.New(s.OAuthToken)
	resp, err := svc.AuthTestContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to verify slack token")
	}
	logger.Info("Slack alerts enabled",
		slog.String("team", resp.Team),
		slog.String("bot_user", resp.UserID),
		slog.String("channel", s.ChannelID),
	)

	return slackSvc.NewAlerter(svc, s.ChannelID, strings.TrimRight(s.BaseURL, "/")), nil
}

// InteractionHandler returns the handler for button clicks on alerts, or nil
// when no signing secret is set
func (s *Slack) InteractionHandler(issueUC interfaces.Issue) *slackCtrl.Handler {
	if s.SigningSecret == "" {
		return nil
	}
	return slackCtrl.NewHandler(s.SigningSecret, issueUC)
}

// IsConfigured checks if a bot token is set
func (s *Slack) IsConfigured() bool {
	return s.OAuthToken != ""
}

// LogValue returns structured log value
func (s Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_oauth_token", s.OAuthToken != ""),
		slog.Bool("has_signing_secret", s.SigningSecret != ""),
		slog.String("channel", s.ChannelID),
		slog.String("base_url", s.BaseURL),
	)
}
