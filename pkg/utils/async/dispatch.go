package async

import (
	"context"
	"runtime/debug"

	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/utils/apperr"
	"github.com/m-mizutani/ctxlog"
)

// Dispatch executes a handler function asynchronously with proper context and panic recovery.
// The request can complete while the handler keeps running in the background.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	// Create a new background context preserving important values
	newCtx := newBackgroundContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(newCtx).Error("Panic in async handler",
					"recover", r,
					"stack", string(stack),
				)
			}
		}()

		if err := handler(newCtx); err != nil {
			apperr.Handle(newCtx, err)
		}
	}()
}

// newBackgroundContext creates a context that outlives the request but keeps
// its logger and requester identity
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()

	// Preserve logger
	logger := ctxlog.From(ctx)
	if logger != nil {
		newCtx = ctxlog.With(newCtx, logger)
	}

	if authCtx, ok := model.GetAuthContext(ctx); ok {
		newCtx = model.WithAuthContext(newCtx, authCtx.Clone())
	}

	return newCtx
}
