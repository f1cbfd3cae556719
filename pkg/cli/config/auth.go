package config

import (
	"log/slog"
	"time"

	"github.com/campusfix/issuedesk/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Auth holds the bearer token settings
type Auth struct {
	Secret   string
	TokenTTL time.Duration
}

// Flags returns CLI flags for Auth configuration
func (a *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-secret",
			Usage:       "HMAC secret used to sign and verify bearer tokens",
			Category:    "Auth",
			Sources:     cli.EnvVars("ISSUEDESK_AUTH_SECRET"),
			Destination: &a.Secret,
		},
		&cli.DurationFlag{
			Name:        "auth-token-ttl",
			Usage:       "Lifetime of tokens minted by the token command",
			Category:    "Auth",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("ISSUEDESK_AUTH_TOKEN_TTL"),
			Destination: &a.TokenTTL,
		},
	}
}

// Configure creates the token verifier
func (a *Auth) Configure() (*usecase.Auth, error) {
	if !a.IsConfigured() {
		return nil, goerr.New("auth secret is required. Please provide ISSUEDESK_AUTH_SECRET")
	}
	if a.TokenTTL <= 0 {
		return nil, goerr.New("token TTL must be positive", goerr.V("ttl", a.TokenTTL))
	}
	return usecase.NewAuth(a.Secret)
}

// IsConfigured checks if a signing secret is set
func (a *Auth) IsConfigured() bool {
	return a.Secret != ""
}

// LogValue returns structured log value
func (a Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_secret", a.Secret != ""),
		slog.Duration("token_ttl", a.TokenTTL),
	)
}
