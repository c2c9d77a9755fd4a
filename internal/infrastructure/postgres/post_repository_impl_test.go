package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiercm/go-blog-api/internal/domain/entity"
	"github.com/javiercm/go-blog-api/internal/domain/repository"
)

func newPostMock(t *testing.T) (pgxmock.PgxPoolIface, *PostRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostRepository(mock)
}

func postRows(ids ...int64) *pgxmock.Rows {
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "title", "content", "author_id", "username", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, "title", "content", "author-1", "alice123", now, now)
	}
	return rows
}

func TestPostRepository_Create(t *testing.T) {
	mock, repo := newPostMock(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs("Hello", "First post", "author-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at", "username"}).
			AddRow(int64(1), now, now, "alice123"))

	p := &entity.Post{Title: "Hello", Content: "First post", AuthorID: "author-1"}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "alice123", p.AuthorUsername)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetByID(t *testing.T) {
	mock, repo := newPostMock(t)
	mock.ExpectQuery(`SELECT .+ FROM posts p`).
		WithArgs(int64(1)).
		WillReturnRows(postRows(1))

	p, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "alice123", p.AuthorUsername)
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	mock, repo := newPostMock(t)
	mock.ExpectQuery(`SELECT .+ FROM posts p`).
		WithArgs(int64(42)).
		WillReturnRows(postRows())

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostRepository_List(t *testing.T) {
	mock, repo := newPostMock(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM posts p`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT .+ FROM posts p .+ ORDER BY p.created_at DESC`).
		WithArgs(10, 0).
		WillReturnRows(postRows(2, 1))

	posts, total, err := repo.List(context.Background(), repository.PostFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(2), posts[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List_AuthorFilter(t *testing.T) {
	mock, repo := newPostMock(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM posts p .+ WHERE u.username = \$1`).
		WithArgs("alice123").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM posts p .+ WHERE u.username = \$1`).
		WithArgs("alice123", 10, 0).
		WillReturnRows(postRows(1))

	posts, total, err := repo.List(context.Background(), repository.PostFilter{Author: "alice123", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, posts, 1)
}

func TestPostRepository_List_SearchFilter(t *testing.T) {
	mock, repo := newPostMock(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM posts p .+ ILIKE`).
		WithArgs("%gopher%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM posts p .+ ILIKE`).
		WithArgs("%gopher%", 10, 0).
		WillReturnRows(postRows(1))

	_, total, err := repo.List(context.Background(), repository.PostFilter{Search: "gopher", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestPostRepository_Update(t *testing.T) {
	mock, repo := newPostMock(t)
	now := time.Now()
	mock.ExpectQuery(`UPDATE posts SET`).
		WithArgs("new title", "new content", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	p := &entity.Post{ID: 1, Title: "new title", Content: "new content"}
	require.NoError(t, repo.Update(context.Background(), p))
	assert.Equal(t, now, p.UpdatedAt)
}

func TestPostRepository_Update_NotFound(t *testing.T) {
	mock, repo := newPostMock(t)
	mock.ExpectQuery(`UPDATE posts SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}))

	p := &entity.Post{ID: 42, Title: "x", Content: "y"}
	err := repo.Update(context.Background(), p)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostRepository_Delete(t *testing.T) {
	mock, repo := newPostMock(t)
	mock.ExpectExec(`DELETE FROM posts`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), 1))
}

func TestPostRepository_Delete_NotFound(t *testing.T) {
	mock, repo := newPostMock(t)
	mock.ExpectExec(`DELETE FROM posts`).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
