package handlers

import (
	"net/http"

	"github.com/isdelr/blog-be/internal/api/respond"
)

// Health reports that the API is up.
func Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, map[string]any{"success": true, "message": "Blog API is running"})
}
