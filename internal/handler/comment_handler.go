package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"driftblog/internal/service"
)

// CommentHandler handles the comment tree endpoints.
type CommentHandler struct {
	comments *service.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentRequest struct {
	Content string `json:"content"`
}

// ListByArticle handles GET /api/v1/articles/:id/comments. Returns root
// comments newest first, each with its replies oldest first.
func (h *CommentHandler) ListByArticle(c *gin.Context) {
	tree, err := h.comments.ListByArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": tree})
}

// Create handles POST /api/v1/articles/:id/comments.
func (h *CommentHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	comment, err := h.comments.CreateRootComment(c.Request.Context(), c.Param("id"), actor, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Reply handles POST /api/v1/articles/:id/comments/:commentID/replies.
func (h *CommentHandler) Reply(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	comment, err := h.comments.CreateReply(c.Request.Context(), c.Param("id"), actor, c.Param("commentID"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Edit handles PUT /api/v1/articles/:id/comments/:commentID.
func (h *CommentHandler) Edit(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	comment, err := h.comments.EditComment(c.Request.Context(), c.Param("commentID"), actor, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /api/v1/articles/:id/comments/:commentID. A
// comment with replies is soft-deleted; a leaf is removed outright.
func (h *CommentHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.comments.DeleteComment(c.Request.Context(), c.Param("commentID"), actor); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Mine handles GET /api/v1/comments/mine.
func (h *CommentHandler) Mine(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	comments, err := h.comments.ListByAuthor(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// Moderation handles GET /api/v1/moderation/comments: comments left on any
// of the actor's articles.
func (h *CommentHandler) Moderation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	comments, err := h.comments.ListForModeration(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}
