package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campusfix/issuedesk/pkg/cli/config"
	controller "github.com/campusfix/issuedesk/pkg/controller/http"
	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/usecase"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var (
		serverCfg     config.Server
		authCfg       config.Auth
		issueCfg      config.Issue
		campusCfg     config.Campus
		mongoCfg      config.Mongo
		firestoreCfg  config.Firestore
		redisCfg      config.Redis
		cloudinaryCfg config.Cloudinary
		slackCfg      config.Slack
	)

	flags := joinFlags(
		serverCfg.Flags(),
		authCfg.Flags(),
		issueCfg.Flags(),
		campusCfg.Flags(),
		mongoCfg.Flags(),
		firestoreCfg.Flags(),
		redisCfg.Flags(),
		cloudinaryCfg.Flags(),
		slackCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting issuedesk server",
				slog.Any("server", serverCfg),
				slog.Any("auth", authCfg),
				slog.Any("issue", issueCfg),
				slog.Any("campus", campusCfg),
				slog.Any("mongo", mongoCfg),
				slog.Any("firestore", firestoreCfg),
				slog.Any("redis", redisCfg),
				slog.Any("cloudinary", cloudinaryCfg),
				slog.Any("slack", slackCfg),
			)

			if err := issueCfg.Validate(); err != nil {
				return err
			}

			campus, err := campusCfg.Configure()
			if err != nil {
				return err
			}

			authUC, err := authCfg.Configure()
			if err != nil {
				return err
			}

			repo, err := configureRepository(ctx, &mongoCfg, &firestoreCfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Warn("failed to close repository", slog.Any("error", err))
				}
			}()

			limiter, closeLimiter, err := redisCfg.Configure(ctx, issueCfg.CreateLimit, issueCfg.CreateWindow)
			if err != nil {
				return err
			}
			defer closeLimiter()

			images, err := cloudinaryCfg.Configure(ctx)
			if err != nil {
				return err
			}

			alerter, err := slackCfg.Configure(ctx)
			if err != nil {
				return err
			}

			notificationUC := usecase.NewNotification(repo)
			opts := append(issueCfg.Options(),
				usecase.WithImageStore(images),
				usecase.WithRateLimiter(limiter),
			)
			if alerter != nil {
				opts = append(opts, usecase.WithAlerter(alerter))
			}
			issueUC := usecase.NewIssue(repo, notificationUC, opts...)

			var serverOpts []controller.ServerOption
			if h := slackCfg.InteractionHandler(issueUC); h != nil {
				serverOpts = append(serverOpts, controller.WithSlackHandler(h))
			}

			server, err := controller.NewServer(ctx, serverCfg.Addr, controller.UseCases{
				Auth:         authUC,
				Issue:        issueUC,
				Notification: notificationUC,
			}, campus, serverOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// configureRepository picks MongoDB when a URI is set and otherwise
// Firestore, which itself falls back to memory
func configureRepository(ctx context.Context, mongoCfg *config.Mongo, firestoreCfg *config.Firestore) (interfaces.Repository, error) {
	if mongoCfg.IsConfigured() {
		if firestoreCfg.IsConfigured() {
			ctxlog.From(ctx).Warn("Both MongoDB and Firestore are configured, using MongoDB")
		}
		return mongoCfg.Configure(ctx)
	}
	return firestoreCfg.Configure(ctx)
}
