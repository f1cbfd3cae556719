package usecase

import (
	"context"
	"time"

	"github.com/campusfix/issuedesk/pkg/domain/interfaces"
	"github.com/campusfix/issuedesk/pkg/domain/model"
	"github.com/campusfix/issuedesk/pkg/domain/types"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
)

const (
	claimRole  = "role"
	claimName  = "name"
	claimEmail = "email"
)

// Auth verifies and issues HS256 bearer tokens
type Auth struct {
	key []byte
	now func() time.Time
}

var _ interfaces.Auth = (*Auth)(nil)

// AuthOption is a functional option for configuring Auth
type AuthOption func(*Auth)

// WithAuthClock replaces the clock used to validate and stamp tokens
func WithAuthClock(now func() time.Time) AuthOption {
	return func(a *Auth) {
		a.now = now
	}
}

// NewAuth creates a new Auth use case with the shared signing secret
func NewAuth(secret string, opts ...AuthOption) (*Auth, error) {
	if secret == "" {
		return nil, goerr.New("token secret is required")
	}

	a := &Auth{
		key: []byte(secret),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Verify parses and validates a token and returns the identity it carries
func (a *Auth) Verify(ctx context.Context, token string) (*model.AuthContext, error) {
	if token == "" {
		return nil, model.Unauthenticated("no token provided")
	}

	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, a.key),
		jwt.WithValidate(true),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
		jwt.WithClock(jwt.ClockFunc(a.now)),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid token", goerr.T(model.ErrTagUnauthenticated))
	}

	if tok.Subject() == "" {
		return nil, model.Unauthenticated("token has no subject")
	}

	role := types.Role(stringClaim(tok, claimRole))
	if !role.IsValid() {
		return nil, model.Unauthenticated("token has unknown role",
			goerr.V("sub", tok.Subject()),
			goerr.V("role", role))
	}

	authCtx := model.NewAuthContext(types.UserID(tok.Subject()), role)
	authCtx.Name = stringClaim(tok, claimName)
	authCtx.Email = stringClaim(tok, claimEmail)
	return authCtx, nil
}

// Issue signs a token for identity that expires after ttl
func (a *Auth) Issue(identity *model.AuthContext, ttl time.Duration) (string, error) {
	if identity == nil || identity.UserID == "" {
		return "", goerr.New("user ID is required")
	}
	if !identity.Role.IsValid() {
		return "", goerr.New("invalid role", goerr.V("role", identity.Role))
	}

	now := a.now()
	builder := jwt.NewBuilder().
		Subject(string(identity.UserID)).
		Claim(claimRole, string(identity.Role)).
		IssuedAt(now).
		Expiration(now.Add(ttl))
	if identity.Name != "" {
		builder = builder.Claim(claimName, identity.Name)
	}
	if identity.Email != "" {
		builder = builder.Claim(claimEmail, identity.Email)
	}

	tok, err := builder.Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token")
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, a.key))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token")
	}
	return string(signed), nil
}

func stringClaim(tok jwt.Token, name string) string {
	v, ok := tok.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
