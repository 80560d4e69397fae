package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/isdelr/blog-be/internal/api/respond"
	"github.com/isdelr/blog-be/internal/auth"
	"github.com/isdelr/blog-be/internal/models"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// TokenIssuer mints a bearer token for a user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthHandler handles registration, login and the current-user endpoint.
type AuthHandler struct {
	users  services.UserServiceProvider
	tokens TokenIssuer
	events services.EventServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tokens TokenIssuer, events services.EventServiceProvider) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, events: events}
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role,omitempty"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), payload.Name, payload.Email, payload.Password, payload.Role)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) || errors.Is(err, services.ErrValidation) {
			hlog.FromRequest(r).Info().Err(err).Msg("Registration rejected")
		}
		writeError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, r, err)
		return
	}

	recordEvent(r.Context(), h.events, "user.register", "info", fmt.Sprintf("User %s registered with role %s.", user.Email, user.Role), &user.ID)

	respond.JSON(w, r, http.StatusCreated, map[string]any{
		"success": true,
		"token":   token,
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respond.Error(w, r, http.StatusBadRequest, "Please provide email and password")
		return
	}

	user, err := h.users.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			hlog.FromRequest(r).Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			recordEvent(r.Context(), h.events, "user.login.fail", "warn", fmt.Sprintf("Failed login for %s.", payload.Email), nil)
		}
		writeError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, r, err)
		return
	}

	recordEvent(r.Context(), h.events, "user.login", "info", fmt.Sprintf("User %s logged in.", user.Email), &user.ID)

	respond.JSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		hlog.FromRequest(r).Error().Msg("Could not retrieve identity from context")
		respond.Error(w, r, http.StatusUnauthorized, auth.NotAuthorizedMessage)
		return
	}

	respond.JSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"data":    id.User,
	})
}
