// Package handler contains the Gin HTTP handlers for the API.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"driftblog/internal/domain"
	"driftblog/internal/logger"
	"driftblog/internal/media"
	"driftblog/internal/middleware"
	"driftblog/internal/validator"
)

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondError maps service errors to HTTP status codes. Unexpected errors
// are logged with the request id and reported as a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case validator.IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Fields: validator.FieldErrors(err),
		})
	case errors.Is(err, media.ErrImageTooLarge), errors.Is(err, media.ErrUnsupportedImageType):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "permission denied"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrDuplicateTitle):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "an article with this title already exists"})
	case errors.Is(err, domain.ErrDuplicateUsername):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "this username is already taken"})
	case errors.Is(err, domain.ErrDepthExceeded):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "maximum reply depth reached"})
	case errors.Is(err, domain.ErrCrossArticleParent):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "parent comment belongs to another article"})
	case errors.Is(err, domain.ErrNotPublished):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "article is not published"})
	default:
		logger.Error("request failed",
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// requireActor returns the resolved actor or writes a 401 and reports false.
func requireActor(c *gin.Context) (*domain.User, bool) {
	actor := middleware.GetActor(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return nil, false
	}
	return actor, true
}
