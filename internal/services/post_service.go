package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/blog-be/internal/models"
)

// PostInput carries the client-editable fields of a post.
type PostInput struct {
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Excerpt     string  `json:"excerpt"`
	CategoryID  *string `json:"categoryId"`
	IsPublished bool    `json:"isPublished"`
}

func (in PostInput) validate() (PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	if in.Title == "" {
		return in, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(in.Content) == "" {
		return in, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if in.CategoryID != nil && *in.CategoryID == "" {
		in.CategoryID = nil
	}
	return in, nil
}

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	CreatePost(ctx context.Context, authorID string, in PostInput) (models.Post, error)
	GetVisiblePosts(ctx context.Context, viewerID, categoryID string) ([]models.Post, error)
	GetVisiblePost(ctx context.Context, id, viewerID string) (models.Post, error)
	GetPostByID(ctx context.Context, id string) (models.Post, error)
	UpdatePost(ctx context.Context, id, editorID string, in PostInput) (models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// PostService provides business logic for post management.
type PostService struct {
	db *sql.DB
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB) *PostService {
	return &PostService{db: db}
}

const postColumns = "id, title, content, excerpt, author_id, category_id, is_published, created_at, updated_at"

// CreatePost stores a new post written by authorID.
func (s *PostService) CreatePost(ctx context.Context, authorID string, in PostInput) (models.Post, error) {
	in, err := in.validate()
	if err != nil {
		return models.Post{}, err
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		AuthorID:    authorID,
		CategoryID:  in.CategoryID,
		IsPublished: in.IsPublished,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Title, post.Content, post.Excerpt, post.AuthorID, post.CategoryID, post.IsPublished, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		if isConstraintViolation(err) {
			return models.Post{}, fmt.Errorf("%w: unknown category", ErrValidation)
		}
		return models.Post{}, err
	}
	return post, nil
}

// GetVisiblePosts lists published posts plus viewerID's own drafts, newest
// first, optionally limited to one category. An empty viewerID sees only
// published posts.
func (s *PostService) GetVisiblePosts(ctx context.Context, viewerID, categoryID string) ([]models.Post, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE (is_published = TRUE OR author_id = ?)"
	args := []any{viewerID}
	if categoryID != "" {
		query += " AND category_id = ?"
		args = append(args, categoryID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// GetPostByID retrieves a single post regardless of its published state.
func (s *PostService) GetPostByID(ctx context.Context, id string) (models.Post, error) {
	return scanPost(s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id))
}

// GetVisiblePost retrieves a post that viewerID may read. Other authors'
// drafts are reported as ErrNotFound.
func (s *PostService) GetVisiblePost(ctx context.Context, id, viewerID string) (models.Post, error) {
	post, err := s.GetPostByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if !post.IsPublished && (viewerID == "" || post.AuthorID != viewerID) {
		return models.Post{}, ErrNotFound
	}
	return post, nil
}

// UpdatePost replaces the editable fields of a post. Only its author may edit it.
func (s *PostService) UpdatePost(ctx context.Context, id, editorID string, in PostInput) (models.Post, error) {
	in, err := in.validate()
	if err != nil {
		return models.Post{}, err
	}

	existing, err := s.GetPostByID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if existing.AuthorID != editorID {
		return models.Post{}, ErrNotAuthor
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, content = ?, excerpt = ?, category_id = ?, is_published = ?, updated_at = ?
		WHERE id = ?`,
		in.Title, in.Content, in.Excerpt, in.CategoryID, in.IsPublished, time.Now().UTC(), id)
	if err != nil {
		if isConstraintViolation(err) {
			return models.Post{}, fmt.Errorf("%w: unknown category", ErrValidation)
		}
		return models.Post{}, err
	}
	return s.GetPostByID(ctx, id)
}

// DeletePost removes a post from the database.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanPost is a helper function to scan a single row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (models.Post, error) {
	var post models.Post
	err := scanner.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Excerpt,
		&post.AuthorID,
		&post.CategoryID,
		&post.IsPublished,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}
	return post, nil
}
