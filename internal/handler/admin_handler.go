package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"driftblog/internal/domain"
	"driftblog/internal/logger"
	"driftblog/internal/middleware"
	"driftblog/internal/service"
)

// AdminHandler handles staff-only operations: bulk publication changes and
// streaming exports.
type AdminHandler struct {
	articles *service.ArticleService
	exports  *service.ExportService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(articles *service.ArticleService, exports *service.ExportService) *AdminHandler {
	return &AdminHandler{articles: articles, exports: exports}
}

type setPublishedRequest struct {
	IDs       []string `json:"ids"`
	Published *bool    `json:"is_published"`
}

// SetPublished handles POST /api/v1/admin/articles/published.
func (h *AdminHandler) SetPublished(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req setPublishedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Published == nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "ids and is_published are required"})
		return
	}

	updated, err := h.articles.SetPublished(c.Request.Context(), actor, req.IDs, *req.Published)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// Export handles GET /api/v1/admin/exports. Streams all rows of the
// requested resource as CSV or NDJSON directly to the response.
func (h *AdminHandler) Export(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if !actor.IsStaff() {
		respondError(c, domain.ErrPermissionDenied)
		return
	}

	resource := c.DefaultQuery("resource", "articles")
	if !service.IsValidExportResource(resource) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid resource: %s", resource)})
		return
	}

	format := c.DefaultQuery("format", "csv")
	if !service.IsValidExportFormat(format) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid format: %s", format)})
		return
	}

	contentType := "text/csv"
	if format == "ndjson" {
		contentType = "application/x-ndjson"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", resource, format))

	count, err := h.exports.Stream(c.Request.Context(), c.Writer, resource, format)
	if err != nil {
		// Headers are already sent; the most we can do is log and cut the
		// stream short.
		logger.Error("export stream failed",
			slog.String("request_id", middleware.GetRequestID(c)),
			slog.String("resource", resource),
			slog.String("format", format),
			slog.String("error", err.Error()))
		c.Abort()
		return
	}

	logger.Info("export completed",
		slog.String("actor_id", actor.ID),
		slog.String("resource", resource),
		slog.String("format", format),
		slog.Int("records", count))
}
