package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/javiercm/go-blog-api/internal/domain/entity"
	"github.com/javiercm/go-blog-api/internal/domain/repository"
)

// poolIface is the subset of pgxpool.Pool the repositories need; pgxmock
// satisfies it in tests.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	pool poolIface
}

func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, first_name, last_name, is_superuser, permissions, date_joined, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, is_superuser, permissions)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, date_joined, updated_at
	`, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsSuperuser, u.Permissions)

	if err := row.Scan(&u.ID, &u.DateJoined, &u.UpdatedAt); err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsSuperuser, &u.Permissions, &u.DateJoined, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *UserRepository) exists(ctx context.Context, column, value string) (bool, error) {
	var found bool
	row := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE `+column+` = $1)`, value)
	if err := row.Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, updated_at = $4
		WHERE id = $5
	`, u.Email, u.FirstName, u.LastName, u.UpdatedAt, u.ID)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, hash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// mapUniqueViolation translates a unique-constraint violation into the
// matching field-level sentinel. The constraint is the authoritative
// uniqueness check; any pre-check only exists for friendlier messages.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "username"):
			return repository.ErrUsernameTaken
		case strings.Contains(pgErr.ConstraintName, "email"):
			return repository.ErrEmailTaken
		}
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
