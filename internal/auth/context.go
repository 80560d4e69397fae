package auth

import (
	"context"

	"github.com/isdelr/blog-be/internal/models"
)

// Identity is the authenticated caller of one request. It is stored by value
// so handlers cannot alter what later middleware sees.
type Identity struct {
	User models.PublicUser
}

type contextKey string

const identityKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached by the authenticator.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
