package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/isdelr/blog-be/internal/models"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	users map[string]models.PublicUser
	err   error
}

func (f *fakeLookup) FindByID(ctx context.Context, id string) (models.PublicUser, error) {
	if f.err != nil {
		return models.PublicUser{}, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return models.PublicUser{}, services.ErrUserNotFound
	}
	return u, nil
}

var alice = models.PublicUser{ID: "u1", Name: "Alice", Email: "alice@x.com", Role: models.RoleUser}

func newTestAuthenticator(t *testing.T) (*Authenticator, *TokenIssuer, *fakeLookup) {
	t.Helper()
	issuer := newTestIssuer(t, "secret", time.Hour)
	lookup := &fakeLookup{users: map[string]models.PublicUser{alice.ID: alice}}
	return NewAuthenticator(issuer, lookup), issuer, lookup
}

// echoIdentity responds with the identity the middleware attached.
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_ = json.NewEncoder(w).Encode(id.User)
})

func serve(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_AttachesIdentity(t *testing.T) {
	a, issuer, _ := newTestAuthenticator(t)
	tok, err := issuer.Issue(alice.ID)
	require.NoError(t, err)

	rec := serve(a.Middleware(echoIdentity), "Bearer "+tok)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, alice, got)
}

func TestMiddleware_Rejections(t *testing.T) {
	a, issuer, _ := newTestAuthenticator(t)

	valid, err := issuer.Issue(alice.ID)
	require.NoError(t, err)
	ghost, err := issuer.Issue("deleted-user")
	require.NoError(t, err)

	past := newTestIssuer(t, "secret", time.Hour)
	past.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }
	expired, err := past.Issue(alice.ID)
	require.NoError(t, err)

	foreign, err := newTestIssuer(t, "other-secret", time.Hour).Issue(alice.ID)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"bearer without token", "Bearer "},
		{"raw token without scheme", valid},
		{"malformed", "Bearer not.a.jwt"},
		{"wrong signature", "Bearer " + foreign},
		{"expired", "Bearer " + expired},
		{"deleted user", "Bearer " + ghost},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(a.Middleware(echoIdentity), tc.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"success":false,"message":"`+NotAuthorizedMessage+`"}`, rec.Body.String())
		})
	}
}

func TestAuthenticate_ReportsReason(t *testing.T) {
	a, issuer, _ := newTestAuthenticator(t)
	ctx := context.Background()

	_, err := a.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = a.Authenticate(ctx, "Bearer garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	ghost, err := issuer.Issue("nobody")
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, "Bearer "+ghost)
	assert.ErrorIs(t, err, ErrStaleToken)

	tok, err := issuer.Issue(alice.ID)
	require.NoError(t, err)
	id, err := a.Authenticate(ctx, "bearer "+tok)
	require.NoError(t, err)
	assert.Equal(t, alice, id.User)
}

func TestMiddleware_StoreFailureIs500(t *testing.T) {
	a, issuer, lookup := newTestAuthenticator(t)
	lookup.err = errors.New("store unavailable")

	tok, err := issuer.Issue(alice.ID)
	require.NoError(t, err)

	rec := serve(a.Middleware(echoIdentity), "Bearer "+tok)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "store unavailable")
}

func TestOptional(t *testing.T) {
	a, issuer, lookup := newTestAuthenticator(t)
	tok, err := issuer.Issue(alice.ID)
	require.NoError(t, err)

	rec := serve(a.Optional(echoIdentity), "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), alice.Email)

	// Anonymous and unusable tokens both reach the handler without an identity.
	for _, header := range []string{"", "Bearer garbage", "Basic dXNlcjpwYXNz"} {
		rec := serve(a.Optional(echoIdentity), header)
		assert.Equal(t, http.StatusTeapot, rec.Code, header)
	}

	lookup.err = errors.New("store unavailable")
	rec = serve(a.Optional(echoIdentity), "Bearer "+tok)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
