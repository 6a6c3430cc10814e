package services

import (
	"context"
	"errors"
	"strings"

	"hostel-complaints-backend-go/internal/models"
	"hostel-complaints-backend-go/internal/store"
)

// Identity is the authenticated caller. Handlers pass it explicitly to every
// service call.
type Identity struct {
	UserID   string
	Username string
	Role     models.Role
}

type IdentityGate struct {
	Tokens TokenService
	Users  store.UserStore
}

// Resolve turns an Authorization header value into the caller's identity.
// The role comes from the live user record, not from the token.
func (g IdentityGate) Resolve(ctx context.Context, header string) (Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Identity{}, ErrUnauthenticated(ReasonCredentialMissing, "Authorization header missing")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return Identity{}, ErrUnauthenticated(ReasonCredentialMalformed, "Invalid token format")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return Identity{}, ErrUnauthenticated(ReasonCredentialMalformed, "Token not provided")
	}
	return g.ResolveToken(ctx, token)
}

// ResolveToken verifies a bare token, as sent on websocket query strings.
func (g IdentityGate) ResolveToken(ctx context.Context, token string) (Identity, error) {
	claims, err := g.Tokens.Verify(token)
	if errors.Is(err, ErrTokenExpired) {
		return Identity{}, ErrUnauthenticated(ReasonTokenExpired, "Token expired")
	}
	if err != nil {
		return Identity{}, ErrUnauthenticated(ReasonTokenInvalid, "Invalid or expired token")
	}
	if !validID(claims.Subject) {
		return Identity{}, ErrUnauthenticated(ReasonTokenInvalid, "Invalid or expired token")
	}
	user, err := g.Users.FindUserByID(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, ErrUnauthenticated(ReasonUserNotFound, "Invalid or expired token")
	}
	if err != nil {
		return Identity{}, ErrInternal(err, "resolve token subject")
	}
	return Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}
