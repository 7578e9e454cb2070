package domain

import "errors"

// Sentinel errors returned by services and repositories. Handlers map
// these to HTTP status codes at the request boundary.
var (
	// ErrNotFound indicates a missing article, comment, or user.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied indicates the actor may not perform the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDepthExceeded indicates a reply would nest past the allowed limit.
	ErrDepthExceeded = errors.New("reply depth exceeded")

	// ErrCrossArticleParent indicates a reply's parent belongs to a
	// different article.
	ErrCrossArticleParent = errors.New("parent comment belongs to another article")

	// ErrDuplicateTitle indicates another article already uses the title.
	ErrDuplicateTitle = errors.New("duplicate title")

	// ErrDuplicateUsername indicates another user already uses the username.
	ErrDuplicateUsername = errors.New("duplicate username")

	// ErrNotPublished indicates the article is not publicly visible.
	ErrNotPublished = errors.New("article not published")
)
