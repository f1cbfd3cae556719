package model

import (
	"context"

	"github.com/campusfix/issuedesk/pkg/domain/types"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	authContextKey contextKey = "authContext"
)

// AuthContext contains the identity of the requesting user. It is set by the
// HTTP layer after token verification and read by use cases.
type AuthContext struct {
	UserID types.UserID `json:"id"`
	Name   string       `json:"name,omitempty"`
	Email  string       `json:"email,omitempty"`
	Role   types.Role   `json:"role"`
}

// NewAuthContext creates a new AuthContext
func NewAuthContext(userID types.UserID, role types.Role) *AuthContext {
	return &AuthContext{
		UserID: userID,
		Role:   role,
	}
}

// IsOperator reports whether the user is staff or admin
func (a *AuthContext) IsOperator() bool {
	return a != nil && a.Role.IsOperator()
}

// IsAdmin reports whether the user is an admin
func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == types.RoleAdmin
}

// UserRef returns the reference stored on issues the user reports
func (a *AuthContext) UserRef() UserRef {
	return UserRef{
		ID:    a.UserID,
		Name:  a.Name,
		Email: a.Email,
	}
}

// WithAuthContext adds AuthContext to the context
func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	if authCtx == nil {
		return ctx
	}
	return context.WithValue(ctx, authContextKey, authCtx)
}

// GetAuthContext retrieves AuthContext from the context
func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	authCtx, ok := ctx.Value(authContextKey).(*AuthContext)
	return authCtx, ok && authCtx != nil
}

// Clone creates a copy of the AuthContext
func (a *AuthContext) Clone() *AuthContext {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
