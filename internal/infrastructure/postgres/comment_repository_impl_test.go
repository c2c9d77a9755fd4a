package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiercm/go-blog-api/internal/domain/entity"
	"github.com/javiercm/go-blog-api/internal/domain/repository"
)

func newCommentMock(t *testing.T) (pgxmock.PgxPoolIface, *CommentRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewCommentRepository(mock)
}

func commentRows(ids ...int64) *pgxmock.Rows {
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "post_id", "author_id", "username", "content", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, int64(1), "author-1", "alice123", "a comment", now, now)
	}
	return rows
}

func TestCommentRepository_Create(t *testing.T) {
	mock, repo := newCommentMock(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(int64(1), "author-1", "Nice one").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at", "username"}).
			AddRow(int64(7), now, now, "alice123"))

	c := &entity.Comment{PostID: 1, AuthorID: "author-1", Content: "Nice one"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, "alice123", c.AuthorUsername)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Create_PostMissing(t *testing.T) {
	mock, repo := newCommentMock(t)
	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "comments_post_id_fkey"})

	c := &entity.Comment{PostID: 42, AuthorID: "author-1", Content: "into the void"}
	err := repo.Create(context.Background(), c)
	assert.ErrorIs(t, err, repository.ErrPostMissing)
}

func TestCommentRepository_ListByPost(t *testing.T) {
	mock, repo := newCommentMock(t)
	mock.ExpectQuery(`SELECT .+ FROM comments c .+ WHERE c.post_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(commentRows(1, 2))

	comments, err := repo.ListByPost(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestCommentRepository_ListByPosts(t *testing.T) {
	mock, repo := newCommentMock(t)
	mock.ExpectQuery(`SELECT .+ FROM comments c .+ WHERE c.post_id = ANY\(\$1\)`).
		WithArgs([]int64{1}).
		WillReturnRows(commentRows(1, 2))

	byPost, err := repo.ListByPosts(context.Background(), []int64{1})
	require.NoError(t, err)
	assert.Len(t, byPost[1], 2)
}

func TestCommentRepository_ListByPosts_Empty(t *testing.T) {
	_, repo := newCommentMock(t)

	byPost, err := repo.ListByPosts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, byPost)
}

func TestCommentRepository_Update_NotFound(t *testing.T) {
	mock, repo := newCommentMock(t)
	mock.ExpectQuery(`UPDATE comments SET`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}))

	c := &entity.Comment{ID: 42, Content: "edited"}
	err := repo.Update(context.Background(), c)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCommentRepository_Delete(t *testing.T) {
	mock, repo := newCommentMock(t)
	mock.ExpectExec(`DELETE FROM comments`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), 7))
}

func TestCommentRepository_Delete_NotFound(t *testing.T) {
	mock, repo := newCommentMock(t)
	mock.ExpectExec(`DELETE FROM comments`).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
