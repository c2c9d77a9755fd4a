package repository

import (
	"context"

	"github.com/javiercm/go-blog-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
}
