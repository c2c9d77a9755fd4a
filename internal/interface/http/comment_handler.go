package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javiercm/go-blog-api/internal/application"
	"github.com/javiercm/go-blog-api/internal/interface/middleware"
	"github.com/javiercm/go-blog-api/pkg/response"
	"github.com/javiercm/go-blog-api/pkg/validation"
)

type CommentHandler struct {
	Svc    *application.CommentService
	Logger *logrus.Logger
}

func NewCommentHandler(svc *application.CommentService, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{Svc: svc, Logger: logger}
}

type createCommentRequest struct {
	Post    int64  `json:"post" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create POST /api/comment
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	actorID := c.GetString(middleware.CtxUserIDKey)
	cm, err := h.Svc.Create(c.Request.Context(), actorID, application.CommentInput{PostID: req.Post, Content: req.Content})
	if err != nil {
		writeServiceError(c, err, "Comment not found", "You are not the owner of this comment")
		return
	}
	response.Success(c, http.StatusCreated, toCommentResponse(*cm), "Comment created successfully", nil)
}

// Update PUT /api/comment/:id
func (h *CommentHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Comment not found", nil)
		return
	}
	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	actorID := c.GetString(middleware.CtxUserIDKey)
	cm, err := h.Svc.Update(c.Request.Context(), id, actorID, req.Content)
	if err != nil {
		writeServiceError(c, err, "Comment not found", "You are not the owner of this comment")
		return
	}
	response.Success(c, http.StatusOK, toCommentResponse(*cm), "Comment updated successfully", nil)
}

// Delete DELETE /api/comment/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Comment not found", nil)
		return
	}
	actorID := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Delete(c.Request.Context(), id, actorID); err != nil {
		writeServiceError(c, err, "Comment not found", "You are not the owner of this comment")
		return
	}
	c.Status(http.StatusNoContent)
}
