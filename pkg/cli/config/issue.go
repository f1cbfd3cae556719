package config

import (
	"log/slog"
	"time"

	"github.com/campusfix/issuedesk/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Issue holds the tunables of the issue use case
type Issue struct {
	CreateLimit  int
	CreateWindow time.Duration
	AnalyticsTTL time.Duration
}

// Flags returns CLI flags for Issue configuration
func (i *Issue) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "create-limit",
			Usage:       "Issues a user may report per window (0 disables the limit)",
			Category:    "Issue",
			Value:       20,
			Sources:     cli.EnvVars("ISSUEDESK_CREATE_LIMIT"),
			Destination: &i.CreateLimit,
		},
		&cli.DurationFlag{
			Name:        "create-window",
			Usage:       "Window of the report rate limit",
			Category:    "Issue",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("ISSUEDESK_CREATE_WINDOW"),
			Destination: &i.CreateWindow,
		},
		&cli.DurationFlag{
			Name:        "analytics-ttl",
			Usage:       "How long an analytics summary is cached",
			Category:    "Issue",
			Value:       15 * time.Second,
			Sources:     cli.EnvVars("ISSUEDESK_ANALYTICS_TTL"),
			Destination: &i.AnalyticsTTL,
		},
	}
}

// Validate validates the issue configuration
func (i *Issue) Validate() error {
	if i.CreateLimit < 0 {
		return goerr.New("create limit must not be negative", goerr.V("limit", i.CreateLimit))
	}
	if i.CreateLimit > 0 && i.CreateWindow <= 0 {
		return goerr.New("create window must be positive", goerr.V("window", i.CreateWindow))
	}
	if i.AnalyticsTTL <= 0 {
		return goerr.New("analytics TTL must be positive", goerr.V("ttl", i.AnalyticsTTL))
	}
	return nil
}

// Options returns the use case options derived from the configuration
func (i *Issue) Options() []usecase.IssueOption {
	return []usecase.IssueOption{
		usecase.WithAnalyticsTTL(i.AnalyticsTTL),
	}
}

// LogValue returns structured log value
func (i Issue) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("create_limit", i.CreateLimit),
		slog.Duration("create_window", i.CreateWindow),
		slog.Duration("analytics_ttl", i.AnalyticsTTL),
	)
}
