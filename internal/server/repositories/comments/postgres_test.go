package comments

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commentCols = []string{"id", "review_id", "author_id", "username", "text", "pub_date"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestListAndGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)^SELECT c\.id.*WHERE c\.review_id = \$1 ORDER BY`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(commentCols).AddRow(int64(1), int64(3), "u-1", "alice", "agree", now))
	mock.ExpectQuery(`(?s)^SELECT c\.id.*WHERE c\.review_id = \$1 AND c\.id = \$2$`).
		WithArgs(int64(3), int64(2)).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.List(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Author)

	_, err = repo.Get(context.Background(), 3, 2)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+comments\s*\(review_id,\s*author_id,\s*text\).*RETURNING\s+id,\s*pub_date$`
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q).
		WithArgs(int64(3), "u-1", "agree").
		WillReturnRows(sqlmock.NewRows([]string{"id", "pub_date"}).AddRow(int64(7), now))
	mock.ExpectQuery(q).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	c, err := repo.Create(context.Background(), &models.Comment{ReviewID: 3, AuthorID: "u-1", Text: "agree"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.ID)

	_, err = repo.Create(context.Background(), &models.Comment{ReviewID: 4, AuthorID: "u-1", Text: "x"})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^UPDATE comments SET text = \$3 WHERE review_id = \$1 AND id = \$2$`).
		WithArgs(int64(3), int64(7), "edited").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`^DELETE FROM comments WHERE review_id = \$1 AND id = \$2$`).
		WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.ErrorIs(t, repo.Update(context.Background(), &models.Comment{ID: 7, ReviewID: 3, Text: "edited"}), common.ErrorNotFound)
	require.NoError(t, repo.Delete(context.Background(), 3, 7))
}
