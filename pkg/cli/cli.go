package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/campusfix/issuedesk/pkg/cli/config"
	"github.com/joho/godotenv"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	// A .env file in the working directory is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(err, "failed to load .env file")
	}

	var loggerCfg config.Logger

	app := &cli.Command{
		Name:    "issuedesk",
		Usage:   "Campus facilities issue reporting service",
		Version: "0.1.0",
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdToken(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return goerr.Wrap(err, "CLI execution failed")
	}

	return nil
}

// joinFlags concatenates the flags of several config groups
func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	return slices.Concat(groups...)
}
