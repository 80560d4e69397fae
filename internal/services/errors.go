package services

import "errors"

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation error")
	// ErrDuplicateEmail is returned when registering an email that already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is returned by login for an unknown email and a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when no user matches a lookup.
	ErrUserNotFound = errors.New("user not found")

	ErrNotFound          = errors.New("not found")
	ErrDuplicateCategory = errors.New("category already exists")
	// ErrCategoryInUse is returned when deleting a category that still has posts.
	ErrCategoryInUse = errors.New("category has associated posts")
)

// ErrNotAuthor is returned when a user edits a post they did not write.
var ErrNotAuthor = errors.New("not the author of this post")
