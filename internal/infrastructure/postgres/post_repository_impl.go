package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/javiercm/go-blog-api/internal/domain/entity"
	"github.com/javiercm/go-blog-api/internal/domain/repository"
)

type PostRepository struct {
	pool poolIface
}

func NewPostRepository(pool poolIface) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	row := r.pool.QueryRow(ctx, `
		WITH ins AS (
			INSERT INTO posts (title, content, author_id)
			VALUES ($1, $2, $3)
			RETURNING id, author_id, created_at, updated_at
		)
		SELECT ins.id, ins.created_at, ins.updated_at, u.username
		FROM ins JOIN users u ON u.id = ins.author_id
	`, p.Title, p.Content, p.AuthorID)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.AuthorUsername)
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*entity.Post, error) {
	p := &entity.Post{}
	row := r.pool.QueryRow(ctx, `
		SELECT p.id, p.title, p.content, p.author_id, u.username, p.created_at, p.updated_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`, id)

	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorUsername,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) List(ctx context.Context, f repository.PostFilter) ([]entity.Post, int, error) {
	where, args := buildPostFilter(f)

	var total int
	countSQL := `SELECT count(*) FROM posts p JOIN users u ON u.id = p.author_id` + where
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.PageSize
	offset := (f.Page - 1) * f.PageSize
	listSQL := fmt.Sprintf(`
		SELECT p.id, p.title, p.content, p.author_id, u.username, p.created_at, p.updated_at
		FROM posts p
		JOIN users u ON u.id = p.author_id%s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, listSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts := make([]entity.Post, 0, limit)
	for rows.Next() {
		var p entity.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.AuthorUsername,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func buildPostFilter(f repository.PostFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Author != "" {
		args = append(args, f.Author)
		conds = append(conds, fmt.Sprintf("u.username = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(u.username ILIKE $%d OR p.title ILIKE $%d OR p.content ILIKE $%d)", n, n, n))
	}
	if len(f.IDs) > 0 {
		args = append(args, f.IDs)
		conds = append(conds, fmt.Sprintf("p.id = ANY($%d)", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE posts SET title = $1, content = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`, p.Title, p.Content, p.ID)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
