package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/blog-be/internal/api/respond"
	"github.com/isdelr/blog-be/internal/auth"
	"github.com/isdelr/blog-be/internal/services"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	service services.PostServiceProvider
	events  services.EventServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider, events services.EventServiceProvider) *PostHandler {
	return &PostHandler{service: service, events: events}
}

// GetAll lists published posts and the caller's own drafts, optionally
// filtered by ?category=<id>.
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetVisiblePosts(r.Context(), viewerID(r), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(posts),
		"data":    posts,
	})
}

// Get returns a single post.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetVisiblePost(r.Context(), chi.URLParam(r, "id"), viewerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]any{"success": true, "data": post})
}

// Create stores a post written by the caller.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, auth.NotAuthorizedMessage)
		return
	}

	var payload services.PostInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), id.User.ID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, map[string]any{"success": true, "data": post})
}

// Update edits a post. Only its author may do so.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, auth.NotAuthorizedMessage)
		return
	}

	var payload services.PostInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	post, err := h.service.UpdatePost(r.Context(), chi.URLParam(r, "id"), id.User.ID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]any{"success": true, "data": post})
}

// Delete removes a post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	if err := h.service.DeletePost(r.Context(), postID); err != nil {
		writeError(w, r, err)
		return
	}

	var userID *string
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		userID = &id.User.ID
	}
	recordEvent(r.Context(), h.events, "post.delete", "warn", fmt.Sprintf("Post %s was deleted.", postID), userID)

	respond.JSON(w, r, http.StatusOK, map[string]any{"success": true, "data": map[string]any{}})
}

// viewerID is the authenticated caller's ID, or "" for anonymous requests.
func viewerID(r *http.Request) string {
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		return id.User.ID
	}
	return ""
}
