package repository

import (
	"context"

	"github.com/javiercm/go-blog-api/internal/domain/entity"
)

// CommentRepository defines the interface for comment-related database
// operations. Create returns ErrPostMissing when the referenced post does
// not exist at insert time.
type CommentRepository interface {
	Create(ctx context.Context, c *entity.Comment) error
	GetByID(ctx context.Context, id int64) (*entity.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]entity.Comment, error)
	ListByPosts(ctx context.Context, postIDs []int64) (map[int64][]entity.Comment, error)
	Update(ctx context.Context, c *entity.Comment) error
	Delete(ctx context.Context, id int64) error
}
