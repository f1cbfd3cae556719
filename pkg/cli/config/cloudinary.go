package config

import (
	"context"
	"log/slog"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/service/storage"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Cloudinary holds image hosting credentials
type Cloudinary struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Flags returns CLI flags for Cloudinary configuration
func (c *Cloudinary) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cloudinary-cloud-name",
			Usage:       "Cloudinary cloud name",
			Category:    "Cloudinary",
			Sources:     cli.EnvVars("ISSUEDESK_CLOUDINARY_CLOUD_NAME"),
			Destination: &c.CloudName,
		},
		&cli.StringFlag{
			Name:        "cloudinary-api-key",
			Usage:       "Cloudinary API key",
			Category:    "Cloudinary",
			Sources:     cli.EnvVars("ISSUEDESK_CLOUDINARY_API_KEY"),
			Destination: &c.APIKey,
		},
		&cli.StringFlag{
			Name:        "cloudinary-api-secret",
			Usage:       "Cloudinary API secret",
			Category:    "Cloudinary",
			Sources:     cli.EnvVars("ISSUEDESK_CLOUDINARY_API_SECRET"),
			Destination: &c.APISecret,
		},
	}
}

// Configure returns the image store. Uploaded images stay in process memory
// when Cloudinary is not configured.
func (c *Cloudinary) Configure(ctx context.Context) (interfaces.ImageStore, error) {
	if !c.IsConfigured() {
		ctxlog.From(ctx).Warn("Cloudinary not configured, images are kept in memory")
		return storage.NewMemory(), nil
	}

	store, err := storage.NewCloudinary(c.CloudName, c.APIKey, c.APISecret)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to init cloudinary", goerr.V("cloud_name", c.CloudName))
	}
	return store, nil
}

// IsConfigured checks if all credentials are set
func (c *Cloudinary) IsConfigured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

// LogValue returns structured log value
func (c Cloudinary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("cloud_name", c.CloudName),
		slog.Bool("has_api_key", c.APIKey != ""),
		slog.Bool("has_api_secret", c.APISecret != ""),
	)
}
