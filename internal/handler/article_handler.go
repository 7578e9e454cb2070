package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"driftblog/internal/domain"
	"driftblog/internal/middleware"
	"driftblog/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ArticleHandler handles article CRUD, listings, and image uploads.
type ArticleHandler struct {
	articles *service.ArticleService
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(articles *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

// ArticleResponse is an article with its derived display fields.
type ArticleResponse struct {
	domain.Article
	ReadingTime string `json:"reading_time"`
	Excerpt     string `json:"excerpt"`
}

func newArticleResponse(a *domain.Article) ArticleResponse {
	return ArticleResponse{
		Article:     *a,
		ReadingTime: a.ReadingTime(),
		Excerpt:     a.Excerpt(),
	}
}

func newArticleResponses(articles []domain.Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(articles))
	for i := range articles {
		out = append(out, newArticleResponse(&articles[i]))
	}
	return out
}

type createArticleRequest struct {
	Title           string `json:"title"`
	Body            string `json:"body"`
	MetaDescription string `json:"meta_description"`
	Published       *bool  `json:"is_published"`
}

// Create handles POST /api/v1/articles.
func (h *ArticleHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	article, err := h.articles.Create(c.Request.Context(), actor, service.CreateArticleInput{
		Title:           req.Title,
		Body:            req.Body,
		MetaDescription: req.MetaDescription,
		Published:       req.Published,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newArticleResponse(article))
}

// List handles GET /api/v1/articles. Supports q (search), author, limit,
// and offset query parameters.
func (h *ArticleHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	articles, err := h.articles.List(c.Request.Context(), c.Query("q"), c.Query("author"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": newArticleResponses(articles),
		"count":    len(articles),
	})
}

// Get handles GET /api/v1/articles/:id. Views by anyone other than the
// author are counted.
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.articles.GetPublished(c.Request.Context(), c.Param("id"), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newArticleResponse(article))
}

type updateArticleRequest struct {
	Title           *string `json:"title"`
	Body            *string `json:"body"`
	MetaDescription *string `json:"meta_description"`
	Published       *bool   `json:"is_published"`
}

// Update handles PUT /api/v1/articles/:id. Omitted fields are unchanged.
func (h *ArticleHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req updateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	article, err := h.articles.Update(c.Request.Context(), c.Param("id"), actor, service.UpdateArticleInput{
		Title:           req.Title,
		Body:            req.Body,
		MetaDescription: req.MetaDescription,
		Published:       req.Published,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newArticleResponse(article))
}

// Delete handles DELETE /api/v1/articles/:id.
func (h *ArticleHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.articles.Delete(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AttachImage handles POST /api/v1/articles/:id/image. Expects a multipart
// form with an "image" file field.
func (h *ArticleHandler) AttachImage(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image file required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	article, err := h.articles.AttachImage(c.Request.Context(), c.Param("id"), actor,
		fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newArticleResponse(article))
}

// ListByAuthor handles GET /api/v1/authors/:username/articles.
func (h *ArticleHandler) ListByAuthor(c *gin.Context) {
	limit, offset := pagination(c)

	articles, err := h.articles.ListByAuthor(c.Request.Context(), c.Param("username"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": newArticleResponses(articles),
		"count":    len(articles),
	})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
