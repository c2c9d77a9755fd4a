package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/javiercm/go-blog-api/internal/domain/entity"
	"github.com/javiercm/go-blog-api/internal/domain/repository"
)

type CommentRepository struct {
	pool poolIface
}

func NewCommentRepository(pool poolIface) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	row := r.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO comments (post_id, author_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, author_id, created_at, updated_at
		)
		SELECT ins.id, ins.created_at, ins.updated_at, u.username
		FROM ins JOIN users u ON u.id = ins.author_id
	`, c.PostID, c.AuthorID, c.Content)

	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.AuthorUsername); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return repository.ErrPostMissing
		}
		return err
	}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*entity.Comment, error) {
	c := &entity.Comment{}
	row := r.pool.QueryRow(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`, id)

	if err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorUsername, &c.Content,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int64) ([]entity.Comment, error) {
	return r.list(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id
	`, postID)
}

func (r *CommentRepository) ListByPosts(ctx context.Context, postIDs []int64) (map[int64][]entity.Comment, error) {
	out := make(map[int64][]entity.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	comments, err := r.list(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.created_at, c.updated_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at, c.id
	`, postIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		out[c.PostID] = append(out[c.PostID], c)
	}
	return out, nil
}

func (r *CommentRepository) list(ctx context.Context, sql string, arg any) ([]entity.Comment, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []entity.Comment
	for rows.Next() {
		var c entity.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorUsername, &c.Content,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) Update(ctx context.Context, c *entity.Comment) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE comments SET content = $1, updated_at = now()
		WHERE id = $2
		RETURNING updated_at
	`, c.Content, c.ID)
	if err := row.Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.CommentRepository = (*CommentRepository)(nil)
