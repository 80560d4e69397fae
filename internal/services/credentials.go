package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/isdelr/blog-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// UserServiceProvider defines the interface for the credential store.
type UserServiceProvider interface {
	Register(ctx context.Context, name, email, password string, role models.Role) (models.PublicUser, error)
	FindByEmailWithCredential(ctx context.Context, email string) (models.User, error)
	VerifyPassword(user models.User, candidate string) bool
	FindByID(ctx context.Context, id string) (models.PublicUser, error)
	Authenticate(ctx context.Context, email, password string) (models.PublicUser, error)
}

// passwordHasher owns bcrypt hashing for the credential stores.
type passwordHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

func newPasswordHasher(cost int) *passwordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &passwordHasher{cost: cost}
}

func (h *passwordHasher) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password is too long", ErrValidation)
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword checks candidate against the stored hash using bcrypt's own comparison.
func (h *passwordHasher) VerifyPassword(user models.User, candidate string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(candidate)) == nil
}

// burn spends one bcrypt comparison so a login for an unknown email takes as
// long as one for a known email with a wrong password.
func (h *passwordHasher) burn(candidate string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(candidate))
}

type credentialLookup interface {
	FindByEmailWithCredential(ctx context.Context, email string) (models.User, error)
	VerifyPassword(user models.User, candidate string) bool
}

// authenticate verifies a login. Unknown email and wrong password both yield
// ErrInvalidCredentials.
func authenticate(ctx context.Context, store credentialLookup, h *passwordHasher, email, password string) (models.PublicUser, error) {
	user, err := store.FindByEmailWithCredential(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.burn(password)
			return models.PublicUser{}, ErrInvalidCredentials
		}
		return models.PublicUser{}, err
	}

	if !store.VerifyPassword(user, password) {
		return models.PublicUser{}, ErrInvalidCredentials
	}
	return user.Public(), nil
}

// registration is the validated input of a Register call.
type registration struct {
	name     string
	email    string
	password string
	role     models.Role
}

func validateRegistration(name, email, password string, role models.Role) (registration, error) {
	reg := registration{
		name:     strings.TrimSpace(name),
		email:    normalizeEmail(email),
		password: password,
		role:     role,
	}

	switch {
	case reg.name == "":
		return reg, fmt.Errorf("%w: name is required", ErrValidation)
	case reg.email == "":
		return reg, fmt.Errorf("%w: email is required", ErrValidation)
	case password == "":
		return reg, fmt.Errorf("%w: password is required", ErrValidation)
	case len(password) < MinPasswordLength:
		return reg, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	if addr, err := mail.ParseAddress(reg.email); err != nil || addr.Address != reg.email {
		return reg, fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	if reg.role == "" {
		reg.role = models.RoleUser
	}
	if !reg.role.Valid() {
		return reg, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return reg, nil
}

// normalizeEmail makes email comparison case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
