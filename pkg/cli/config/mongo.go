package config

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Mongo holds MongoDB configuration
type Mongo struct {
	URI      string
	Database string
}

// Flags returns CLI flags for MongoDB configuration
func (m *Mongo) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "mongo-uri",
			Usage:       "MongoDB connection URI. Takes precedence over Firestore when set",
			Category:    "MongoDB",
			Sources:     cli.EnvVars("ISSUEDESK_MONGO_URI"),
			Destination: &m.URI,
		},
		&cli.StringFlag{
			Name:        "mongo-database",
			Usage:       "MongoDB database name",
			Category:    "MongoDB",
			Value:       "issuedesk",
			Sources:     cli.EnvVars("ISSUEDESK_MONGO_DATABASE"),
			Destination: &m.Database,
		},
	}
}

// Configure connects to MongoDB and returns the repository
func (m *Mongo) Configure(ctx context.Context) (interfaces.Repository, error) {
	if !m.IsConfigured() {
		return nil, goerr.New("mongo URI is required")
	}

	repo, err := repository.NewMongo(ctx, m.URI, m.Database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to init mongo",
			goerr.V("host", m.host()),
			goerr.V("database", m.Database),
		)
	}
	return repo, nil
}

// IsConfigured checks if a connection URI is set
func (m *Mongo) IsConfigured() bool {
	return m.URI != ""
}

// host strips credentials from the URI so it can be logged
func (m *Mongo) host() string {
	u, err := url.Parse(m.URI)
	if err != nil {
		return ""
	}
	return u.Host
}

// LogValue returns structured log value
func (m Mongo) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", m.host()),
		slog.String("database", m.Database),
	)
}
