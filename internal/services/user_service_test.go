package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/isdelr/blog-be/internal/database"
	"github.com/isdelr/blog-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(newTestDB(t), bcrypt.MinCost)
}

func TestRegister_HashesPasswordAndDefaultsRole(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "A", "a@x.com", "secret123", "")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "A", user.Name)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.CreatedAt.IsZero())

	stored, err := s.FindByEmailWithCredential(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "secret123")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestRegister_DistinctEmailsNeverStorePlaintext(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		email := fmt.Sprintf("user%d@x.com", i)
		password := fmt.Sprintf("password-%d", i)
		_, err := s.Register(ctx, "User", email, password, models.RoleUser)
		require.NoError(t, err)

		stored, err := s.FindByEmailWithCredential(ctx, email)
		require.NoError(t, err)
		assert.NotEqual(t, password, stored.PasswordHash)
	}
}

func TestRegister_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "A", "a@x.com", "secret123", "")
	require.NoError(t, err)

	for _, email := range []string{"a@x.com", "A@X.COM", "  a@X.com "} {
		_, err = s.Register(ctx, "B", email, "another1", "")
		assert.ErrorIs(t, err, ErrDuplicateEmail, email)
	}
}

func TestRegister_ConcurrentDuplicatesOnlyOneWins(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Register(ctx, "Racer", "race@x.com", "secret123", "")
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	}
	assert.Equal(t, 1, ok)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	tests := []struct {
		name, userName, email, password string
		role                            models.Role
	}{
		{"missing name", "", "a@x.com", "secret123", ""},
		{"missing email", "A", "", "secret123", ""},
		{"missing password", "A", "a@x.com", "", ""},
		{"short password", "A", "a@x.com", "abc", ""},
		{"bad email", "A", "not-an-email", "secret123", ""},
		{"unknown role", "A", "a@x.com", "secret123", "superuser"},
		{"too long password", "A", "a@x.com", strings.Repeat("p", 80), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(ctx, tc.userName, tc.email, tc.password, tc.role)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegister_AdminRole(t *testing.T) {
	s := newTestUserService(t)

	user, err := s.Register(context.Background(), "Admin", "admin@x.com", "adminpass", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
}

func TestFindByID(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	created, err := s.Register(ctx, "A", "a@x.com", "secret123", "")
	require.NoError(t, err)

	found, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Email, found.Email)
	assert.Equal(t, created.Role, found.Role)

	_, err = s.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindByEmailWithCredential_NotFound(t *testing.T) {
	s := newTestUserService(t)

	_, err := s.FindByEmailWithCredential(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyPassword(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "A", "a@x.com", "secret123", "")
	require.NoError(t, err)
	user, err := s.FindByEmailWithCredential(ctx, "A@x.com")
	require.NoError(t, err)

	assert.True(t, s.VerifyPassword(user, "secret123"))
	assert.False(t, s.VerifyPassword(user, "secret124"))
	assert.False(t, s.VerifyPassword(models.User{}, "secret123"))
}

func TestAuthenticate(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	created, err := s.Register(ctx, "A", "a@x.com", "secret123", "")
	require.NoError(t, err)

	user, err := s.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, wrongPassword := s.Authenticate(ctx, "a@x.com", "wrong-password")
	_, unknownEmail := s.Authenticate(ctx, "b@x.com", "secret123")
	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownEmail)
}
