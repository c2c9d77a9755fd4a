package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javiercm/go-blog-api/internal/application"
	"github.com/javiercm/go-blog-api/internal/domain/entity"
	"github.com/javiercm/go-blog-api/pkg/response"
	"github.com/javiercm/go-blog-api/pkg/validation"
)

// postResponse is the wire shape for a post; Comments is omitted on list-free
// endpoints like update.
type postResponse struct {
	ID             int64             `json:"id"`
	Title          string            `json:"title"`
	Content        string            `json:"content"`
	AuthorUsername string            `json:"author_username"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Comments       []commentResponse `json:"comments,omitempty"`
}

type commentResponse struct {
	ID             int64     `json:"id"`
	Post           int64     `json:"post"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toCommentResponse(c entity.Comment) commentResponse {
	return commentResponse{
		ID:             c.ID,
		Post:           c.PostID,
		AuthorUsername: c.AuthorUsername,
		Content:        c.Content,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toPostResponse(p *entity.Post, withComments bool) postResponse {
	out := postResponse{
		ID:             p.ID,
		Title:          p.Title,
		Content:        p.Content,
		AuthorUsername: p.AuthorUsername,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if withComments {
		out.Comments = make([]commentResponse, 0, len(p.Comments))
		for _, c := range p.Comments {
			out.Comments = append(out.Comments, toCommentResponse(c))
		}
	}
	return out
}

// writeServiceError maps application-layer errors onto the HTTP taxonomy.
// notFoundMsg and forbiddenMsg let handlers keep entity-specific wording.
func writeServiceError(c *gin.Context, err error, notFoundMsg, forbiddenMsg string) {
	var fieldErrs validation.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		response.Error(c, http.StatusBadRequest, "invalid data", fieldErrs)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrNotFound):
		response.Error(c, http.StatusNotFound, notFoundMsg, nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error(c, http.StatusForbidden, forbiddenMsg, nil)
	case errors.Is(err, application.ErrWrongPassword):
		response.Error(c, http.StatusBadRequest, "incorrect old password", nil)
	default:
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
