package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/isdelr/blog-be/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{fmt.Errorf("%w: title is required", services.ErrValidation), http.StatusBadRequest, "validation error: title is required"},
		{services.ErrDuplicateEmail, http.StatusBadRequest, "Email already registered"},
		{services.ErrDuplicateCategory, http.StatusBadRequest, "Category already exists"},
		{services.ErrCategoryInUse, http.StatusBadRequest, "Cannot delete category with associated posts"},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{services.ErrNotAuthor, http.StatusForbidden, "Forbidden: Insufficient permissions"},
		{services.ErrNotFound, http.StatusNotFound, "Resource not found"},
		{services.ErrUserNotFound, http.StatusNotFound, "Resource not found"},
		{errors.New("disk I/O error"), http.StatusInternalServerError, "Server Error"},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"success":false,"message":%q}`, tc.message), rec.Body.String())
		})
	}
}

func TestDecodeJSON_MalformedBodyIsValidationError(t *testing.T) {
	var v LoginPayload
	err := decodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")), &v)
	assert.ErrorIs(t, err, services.ErrValidation)
}
