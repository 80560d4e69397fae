package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/blog-be/internal/api/respond"
	"github.com/isdelr/blog-be/internal/models"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// NotAuthorizedMessage is the body for every token failure, so clients cannot
// tell a missing token from an expired one or a deleted user.
const NotAuthorizedMessage = "Not authorized, token invalid or missing"

// TokenParser verifies a raw token string.
type TokenParser interface {
	Parse(tokenStr string) (*Claims, error)
}

// IdentityLookup resolves a user ID to its public record.
type IdentityLookup interface {
	FindByID(ctx context.Context, id string) (models.PublicUser, error)
}

// Authenticator is the bearer-token verification middleware.
type Authenticator struct {
	tokens TokenParser
	users  IdentityLookup
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens TokenParser, users IdentityLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate resolves an Authorization header value to an identity.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (Identity, error) {
	tokenStr, ok := bearerToken(header)
	if !ok {
		return Identity{}, ErrMissingToken
	}

	claims, err := a.tokens.Parse(tokenStr)
	if err != nil {
		return Identity{}, err
	}

	user, err := a.users.FindByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return Identity{}, ErrStaleToken
		}
		return Identity{}, err
	}

	return Identity{User: user}, nil
}

// Middleware protects next: requests without a valid token for an existing
// user are rejected with 401 before reaching it.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			logger := hlog.FromRequest(r)
			switch {
			case isTokenFailure(err):
				logger.Warn().Err(err).Msg("Rejected request token")
				respond.Error(w, r, http.StatusUnauthorized, NotAuthorizedMessage)
			default:
				logger.Error().Err(err).Msg("Failed to resolve token identity")
				respond.Error(w, r, http.StatusInternalServerError, "Server Error")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Optional attaches the caller's identity when the request carries a valid
// token and lets every other request through anonymously. A token that fails
// verification is treated as absent, so public reads keep working for
// clients holding an expired token.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := a.Authenticate(r.Context(), header)
		if err != nil {
			if isTokenFailure(err) {
				hlog.FromRequest(r).Debug().Err(err).Msg("Ignoring unusable token on public route")
				next.ServeHTTP(w, r)
				return
			}
			hlog.FromRequest(r).Error().Err(err).Msg("Failed to resolve token identity")
			respond.Error(w, r, http.StatusInternalServerError, "Server Error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func isTokenFailure(err error) bool {
	return errors.Is(err, ErrMissingToken) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrStaleToken)
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
