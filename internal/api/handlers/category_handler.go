package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/blog-be/internal/api/respond"
	"github.com/isdelr/blog-be/internal/services"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service services.CategoryServiceProvider
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service services.CategoryServiceProvider) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// GetAll lists all categories.
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetAllCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(categories),
		"data":    categories,
	})
}

// Get returns a single category.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategoryByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]any{"success": true, "data": category})
}

// Create adds a category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), payload.Name, payload.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, map[string]any{"success": true, "data": category})
}

// Update changes a category's name and/or description.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload services.CategoryUpdate
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]any{"success": true, "data": category})
}

// Delete removes a category that no post refers to.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]any{"success": true, "data": map[string]any{}})
}
