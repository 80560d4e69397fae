package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isdelr/blog-be/internal/models"
	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func guarded(role models.Role, caller *models.PublicUser) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodDelete, "/api/posts/1", nil)
	if caller != nil {
		req = req.WithContext(WithIdentity(req.Context(), Identity{User: *caller}))
	}
	rec := httptest.NewRecorder()
	RequireRole(role)(okHandler).ServeHTTP(rec, req)
	return rec
}

func TestRequireRole(t *testing.T) {
	user := models.PublicUser{ID: "u", Role: models.RoleUser}
	admin := models.PublicUser{ID: "a", Role: models.RoleAdmin}

	tests := []struct {
		name     string
		required models.Role
		caller   *models.PublicUser
		want     int
	}{
		{"admin on admin route", models.RoleAdmin, &admin, http.StatusOK},
		{"user on user route", models.RoleUser, &user, http.StatusOK},
		{"user on admin route", models.RoleAdmin, &user, http.StatusForbidden},
		// Roles are compared for equality, not rank.
		{"admin on user route", models.RoleUser, &admin, http.StatusForbidden},
		{"no identity", models.RoleAdmin, nil, http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := guarded(tc.required, tc.caller)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want != http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"success":false`)
			}
		})
	}
}
