package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/blog-be/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// UserService is the SQLite-backed credential store.
type UserService struct {
	db *sql.DB
	*passwordHasher
}

// NewUserService creates a new UserService hashing with the given bcrypt cost.
func NewUserService(db *sql.DB, bcryptCost int) *UserService {
	return &UserService{db: db, passwordHasher: newPasswordHasher(bcryptCost)}
}

// Register creates a new user, hashing their password.
func (s *UserService) Register(ctx context.Context, name, email, password string, role models.Role) (models.PublicUser, error) {
	reg, err := validateRegistration(name, email, password, role)
	if err != nil {
		return models.PublicUser{}, err
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", reg.email).Scan(&exists)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return models.PublicUser{}, ErrDuplicateEmail
	}

	hashed, err := s.hash(reg.password)
	if err != nil {
		return models.PublicUser{}, err
	}

	user := models.User{
		ID:           uuid.New().String(),
		Name:         reg.name,
		Email:        reg.email,
		PasswordHash: hashed,
		Role:         reg.role,
		CreatedAt:    time.Now().UTC(),
	}

	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO users(id, name, email, password_hash, role, created_at) VALUES(?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.PublicUser{}, err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt)
	if err != nil {
		// The unique index settles a race with a concurrent registration.
		if isConstraintViolation(err) {
			return models.PublicUser{}, ErrDuplicateEmail
		}
		return models.PublicUser{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return user.Public(), nil
}

// FindByEmailWithCredential retrieves a user by email, including the password hash.
// It is meant for login verification only.
func (s *UserService) FindByEmailWithCredential(ctx context.Context, email string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx, "SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = ?", normalizeEmail(email))
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// FindByID retrieves a single user by their ID, without the password hash.
func (s *UserService) FindByID(ctx context.Context, id string) (models.PublicUser, error) {
	var user models.PublicUser
	row := s.db.QueryRowContext(ctx, "SELECT id, name, email, role, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PublicUser{}, ErrUserNotFound
		}
		return models.PublicUser{}, err
	}
	return user, nil
}

// Authenticate verifies a user's credentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.PublicUser, error) {
	return authenticate(ctx, s, s.passwordHasher, email, password)
}

// isConstraintViolation reports whether err is a SQLite constraint failure,
// which covers unique indexes and foreign keys alike.
func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
