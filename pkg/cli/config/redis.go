package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/service/ratelimit"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
)

// Redis holds the settings of the Redis instance backing the rate limiter
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Flags returns CLI flags for Redis configuration
func (r *Redis) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (host:port) for shared rate limiting",
			Category:    "Redis",
			Sources:     cli.EnvVars("ISSUEDESK_REDIS_ADDR"),
			Destination: &r.Addr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Redis",
			Sources:     cli.EnvVars("ISSUEDESK_REDIS_PASSWORD"),
			Destination: &r.Password,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Redis",
			Sources:     cli.EnvVars("ISSUEDESK_REDIS_DB"),
			Destination: &r.DB,
		},
	}
}

// Configure returns a rate limiter allowing limit events per window. Without
// an address the counters are kept in process memory. The returned cleanup
// function must be called on shutdown.
func (r *Redis) Configure(ctx context.Context, limit int, window time.Duration) (interfaces.RateLimiter, func(), error) {
	logger := ctxlog.From(ctx)

	if !r.IsConfigured() {
		logger.Warn("Redis not configured, rate limit counters are kept per process")
		return ratelimit.NewMemory(limit, window), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", r.Addr))
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", slog.Any("error", err))
		}
	}
	return ratelimit.NewRedis(client, limit, window), cleanup, nil
}

// IsConfigured checks if a Redis address is set
func (r *Redis) IsConfigured() bool {
	return r.Addr != ""
}

// LogValue returns structured log value
func (r Redis) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", r.Addr),
		slog.Bool("has_password", r.Password != ""),
		slog.Int("db", r.DB),
	)
}
