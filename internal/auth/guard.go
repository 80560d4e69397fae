package auth

import (
	"net/http"

	"github.com/isdelr/blog-be/internal/api/respond"
	"github.com/isdelr/blog-be/internal/models"
	"github.com/rs/zerolog/hlog"
)

// RequireRole admits only identities whose role equals role exactly. Roles are
// not ordered: an admin is refused on a route guarded for "user".
// It must be mounted after Authenticator.Middleware.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				hlog.FromRequest(r).Error().Err(ErrUnauthorized).Msg("Role guard reached without an authenticated identity")
				respond.Error(w, r, http.StatusUnauthorized, "Unauthorized: No user found")
				return
			}

			if id.User.Role != role {
				hlog.FromRequest(r).Warn().Err(ErrForbidden).
					Str("user_id", id.User.ID).
					Str("role", string(id.User.Role)).
					Str("required_role", string(role)).
					Msg("Role check failed")
				respond.Error(w, r, http.StatusForbidden, "Forbidden: Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
