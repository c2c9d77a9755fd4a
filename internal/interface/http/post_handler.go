package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javiercm/go-blog-api/internal/application"
	"github.com/javiercm/go-blog-api/internal/interface/middleware"
	"github.com/javiercm/go-blog-api/pkg/response"
	"github.com/javiercm/go-blog-api/pkg/validation"
)

type PostHandler struct {
	Svc    *application.PostService
	Logger *logrus.Logger
}

func NewPostHandler(svc *application.PostService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger}
}

type postRequest struct {
	Title   string `json:"title" binding:"required,max=100"`
	Content string `json:"content" binding:"required"`
}

// Create POST /api/post
func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	actorID := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.Create(c.Request.Context(), actorID, application.PostInput{Title: req.Title, Content: req.Content})
	if err != nil {
		writeServiceError(c, err, "Post not found", "You are not the owner of this post")
		return
	}
	response.Success(c, http.StatusCreated, toPostResponse(p, true), "Post created successfully", nil)
}

// Get GET /api/post/:id
func (h *PostHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Post not found", nil)
		return
	}
	p, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err, "Post not found", "You are not the owner of this post")
		return
	}
	response.Success(c, http.StatusOK, toPostResponse(p, true), "post", nil)
}

// List GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	posts, total, err := h.Svc.List(c.Request.Context(), application.ListPostsInput{
		Page:     page,
		PageSize: pageSize,
		Author:   c.Query("author"),
		Search:   c.Query("search"),
	})
	if err != nil {
		writeServiceError(c, err, "Post not found", "You are not the owner of this post")
		return
	}
	out := make([]postResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPostResponse(&posts[i], true))
	}
	response.Success(c, http.StatusOK, out, "posts", gin.H{
		"page":  normalizedPage(page),
		"count": len(out),
		"total": total,
	})
}

// Update PUT /api/post/:id
func (h *PostHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Post not found", nil)
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid data", validation.ToDetails(err))
		return
	}
	actorID := c.GetString(middleware.CtxUserIDKey)
	p, err := h.Svc.Update(c.Request.Context(), id, actorID, application.PostInput{Title: req.Title, Content: req.Content})
	if err != nil {
		writeServiceError(c, err, "Post not found", "You are not the owner of this post")
		return
	}
	response.Success(c, http.StatusOK, toPostResponse(p, false), "Post updated successfully", nil)
}

// Delete DELETE /api/post/:id
func (h *PostHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, http.StatusNotFound, "Post not found", nil)
		return
	}
	actorID := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Delete(c.Request.Context(), id, actorID); err != nil {
		writeServiceError(c, err, "Post not found", "You are not the owner of this post")
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func normalizedPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
