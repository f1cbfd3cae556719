package config

import (
	"log/slog"
	"os"

	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Campus holds the path of the campus map file
type Campus struct {
	Path string
}

// Flags returns CLI flags for Campus configuration
func (c *Campus) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "campus-config",
			Usage:       "Path to the campus map YAML file",
			Category:    "Campus",
			Sources:     cli.EnvVars("ISSUEDESK_CAMPUS_CONFIG"),
			Destination: &c.Path,
		},
	}
}

// Configure loads the campus map, or the built-in default without a path
func (c *Campus) Configure() (*model.CampusConfig, error) {
	if c.Path == "" {
		return model.DefaultCampusConfig(), nil
	}
	return LoadCampusFromFile(c.Path)
}

// LogValue returns structured log value
func (c Campus) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", c.Path))
}

// LoadCampusFromFile loads the campus map from a YAML file
func LoadCampusFromFile(path string) (*model.CampusConfig, error) {
	if path == "" {
		return nil, goerr.New("configuration file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "configuration file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read configuration file",
			goerr.V("path", path))
	}

	var campus model.CampusConfig
	if err := yaml.Unmarshal(data, &campus); err != nil {
		return nil, goerr.Wrap(err, "failed to parse YAML configuration",
			goerr.V("path", path))
	}

	if err := campus.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid configuration",
			goerr.V("path", path))
	}

	return &campus, nil
}
