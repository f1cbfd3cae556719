// Package apperr reports errors that cannot be returned to a caller, such as
// failures in background work.
package apperr

import (
	"context"
	"log/slog"

	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/m-mizutani/ctxlog"
)

// Handle logs err. Errors caused by the client (validation, missing or
// forbidden resources) are logged as warnings, everything else as errors.
func Handle(ctx context.Context, err error, attrs ...any) {
	if err == nil {
		return
	}

	level := slog.LevelError
	if isClientError(err) {
		level = slog.LevelWarn
	}

	args := append([]any{"error", err}, attrs...)
	ctxlog.From(ctx).Log(ctx, level, "application error", args...)
}

func isClientError(err error) bool {
	return model.HasErrorTag(err, model.ErrTagValidation) ||
		model.HasErrorTag(err, model.ErrTagNotFound) ||
		model.HasErrorTag(err, model.ErrTagForbidden) ||
		model.HasErrorTag(err, model.ErrTagUnauthenticated) ||
		model.HasErrorTag(err, model.ErrTagRateLimited)
}
