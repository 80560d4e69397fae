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

// CategoryServiceProvider defines the interface for category services.
type CategoryServiceProvider interface {
	CreateCategory(ctx context.Context, name, description string) (models.Category, error)
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id string) (models.Category, error)
	UpdateCategory(ctx context.Context, id string, in CategoryUpdate) (models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// CategoryUpdate holds the fields to change. Nil fields are left as they are.
type CategoryUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CategoryService provides business logic for category management.
type CategoryService struct {
	db *sql.DB
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CreateCategory creates a category with a unique (case-insensitive) name.
func (s *CategoryService) CreateCategory(ctx context.Context, name, description string) (models.Category, error) {
	category := models.Category{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}
	if category.Name == "" {
		return models.Category{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, description, created_at) VALUES (?, ?, ?, ?)",
		category.ID, category.Name, category.Description, category.CreatedAt)
	if err != nil {
		if isConstraintViolation(err) {
			return models.Category{}, ErrDuplicateCategory
		}
		return models.Category{}, err
	}
	return category, nil
}

// GetAllCategories lists categories ordered by name.
func (s *CategoryService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByID retrieves a single category.
func (s *CategoryService) GetCategoryByID(ctx context.Context, id string) (models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx, "SELECT id, name, description, created_at FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, ErrNotFound
		}
		return models.Category{}, err
	}
	return c, nil
}

// UpdateCategory applies a partial update to a category.
func (s *CategoryService) UpdateCategory(ctx context.Context, id string, in CategoryUpdate) (models.Category, error) {
	category, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		return models.Category{}, err
	}

	if in.Name != nil {
		category.Name = strings.TrimSpace(*in.Name)
		if category.Name == "" {
			return models.Category{}, fmt.Errorf("%w: name is required", ErrValidation)
		}
	}
	if in.Description != nil {
		category.Description = strings.TrimSpace(*in.Description)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, description = ? WHERE id = ?",
		category.Name, category.Description, id)
	if err != nil {
		if isConstraintViolation(err) {
			return models.Category{}, ErrDuplicateCategory
		}
		return models.Category{}, err
	}
	return category, nil
}

// DeleteCategory removes a category. Categories that still have posts are kept.
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists, inUse bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?),
		       EXISTS(SELECT 1 FROM posts WHERE category_id = ?)`, id, id).Scan(&exists, &inUse)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if inUse {
		return ErrCategoryInUse
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}
