package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/javiercm/go-blog-api/internal/domain/entity"
	repo "github.com/javiercm/go-blog-api/internal/domain/repository"
	"github.com/javiercm/go-blog-api/pkg/validation"
)

// CommentService implements comment CRUD. The referenced post and the author
// are fixed at creation; only content is mutable, and only by the author.
type CommentService struct {
	Comments repo.CommentRepository
	Logger   *logrus.Logger
}

func NewCommentService(comments repo.CommentRepository, logger *logrus.Logger) *CommentService {
	return &CommentService{Comments: comments, Logger: logger}
}

type CommentInput struct {
	PostID  int64
	Content string
}

// Create persists a comment on an existing post. The post foreign key is the
// authoritative existence check, so a post deleted between validation and
// insert still yields the same field error.
func (s *CommentService) Create(ctx context.Context, actorID string, in CommentInput) (*entity.Comment, error) {
	c := &entity.Comment{
		PostID:   in.PostID,
		AuthorID: actorID,
		Content:  in.Content,
	}
	if err := s.Comments.Create(ctx, c); err != nil {
		if errors.Is(err, repo.ErrPostMissing) {
			return nil, validation.FieldErrors{"post": {MsgPostMissing}}
		}
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, id int64, actorID string, content string) (*entity.Comment, error) {
	c, err := s.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.AuthorID != actorID {
		return nil, ErrForbidden
	}
	c.Content = content
	if err := s.Comments.Update(ctx, c); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, id int64, actorID string) error {
	c, err := s.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if c.AuthorID != actorID {
		return ErrForbidden
	}
	if err := s.Comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
