package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/isdelr/blog-be/internal/api/respond"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// writeError maps service errors to a status code and the failure envelope.
// Unknown errors become a generic 500 so internals never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDuplicateEmail):
		respond.Error(w, r, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, services.ErrDuplicateCategory):
		respond.Error(w, r, http.StatusBadRequest, "Category already exists")
	case errors.Is(err, services.ErrCategoryInUse):
		respond.Error(w, r, http.StatusBadRequest, "Cannot delete category with associated posts")
	case errors.Is(err, services.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrNotAuthor):
		respond.Error(w, r, http.StatusForbidden, "Forbidden: Insufficient permissions")
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrUserNotFound):
		respond.Error(w, r, http.StatusNotFound, "Resource not found")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("Request failed")
		respond.Error(w, r, http.StatusInternalServerError, "Server Error")
	}
}

// decodeJSON reads the request body into v. A malformed body is a validation error.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", services.ErrValidation)
	}
	return nil
}
