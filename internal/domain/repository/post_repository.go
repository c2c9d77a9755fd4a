package repository

import (
	"context"

	"github.com/javiercm/go-blog-api/internal/domain/entity"
)

// PostFilter narrows and pages a post listing.
type PostFilter struct {
	Author   string  // exact author username
	Search   string  // free text over author username, title and content
	IDs      []int64 // restrict to these ids (used by external search)
	Page     int
	PageSize int
}

// PostRepository defines the interface for post-related database operations.
// Create and Update fill in generated columns (id, timestamps) and the
// author's username on the passed entity.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id int64) (*entity.Post, error)
	List(ctx context.Context, f PostFilter) ([]entity.Post, int, error)
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id int64) error
}
