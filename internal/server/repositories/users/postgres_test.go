package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "6f1c7b8e-4f0a-4b8e-9a55-2d6d8c3e0b11"

var userCols = []string{"id", "username", "email", "role", "bio", "first_name", "last_name",
	"is_staff", "is_superuser", "password_hash", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRow(rows *sqlmock.Rows, id, username, email string) *sqlmock.Rows {
	return rows.AddRow(id, username, email, "user", "", "", "", false, false, nil, time.Unix(0, 0))
}

func uniqueErr(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

const (
	insertOrNothingQ = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email\).*ON\s+CONFLICT\s+DO\s+NOTHING\s+RETURNING\s+id,`
	lookupQ          = `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s+OR\s+email\s*=\s*\$2`
)

func TestGetOrCreate_Inserted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertOrNothingQ).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(userRow(sqlmock.NewRows(userCols), testUserID, "alice", "alice@example.com"))

	u, created, err := repo.GetOrCreate(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, testUserID, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreate_ExistingPair(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertOrNothingQ).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectQuery(lookupQ).
		WithArgs("alice", "alice@example.com").
		WillReturnRows(userRow(sqlmock.NewRows(userCols), testUserID, "alice", "alice@example.com"))

	u, created, err := repo.GetOrCreate(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, testUserID, u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreate_Conflicts(t *testing.T) {
	tests := []struct {
		name      string
		rows      func() *sqlmock.Rows
		wantField string
	}{
		{
			name: "username bound to other email",
			rows: func() *sqlmock.Rows {
				return userRow(sqlmock.NewRows(userCols), testUserID, "alice", "other@example.com")
			},
			wantField: "username",
		},
		{
			name: "email bound to other username",
			rows: func() *sqlmock.Rows {
				return userRow(sqlmock.NewRows(userCols), testUserID, "bob", "alice@example.com")
			},
			wantField: "email",
		},
		{
			name: "both taken by different users",
			rows: func() *sqlmock.Rows {
				r := userRow(sqlmock.NewRows(userCols), testUserID, "bob", "alice@example.com")
				return userRow(r, "u-2", "alice", "x@example.com")
			},
			wantField: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(insertOrNothingQ).WillReturnRows(sqlmock.NewRows(userCols))
			mock.ExpectQuery(lookupQ).WillReturnRows(tt.rows())

			_, _, err := repo.GetOrCreate(context.Background(), "alice", "alice@example.com")
			require.ErrorIs(t, err, common.ErrConflict)

			var fe *common.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.wantField, fe.Field)
			assert.NotEmpty(t, fe.Message)
		})
	}
}

func TestGetOrCreate_RowVanished(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertOrNothingQ).WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectQuery(lookupQ).WillReturnRows(sqlmock.NewRows(userCols))

	_, _, err := repo.GetOrCreate(context.Background(), "alice", "alice@example.com")
	require.ErrorIs(t, err, common.ErrConflict)

	var fe *common.FieldError
	assert.False(t, errors.As(err, &fe))
}

func TestGetOrCreate_UniqueViolationTranslated(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertOrNothingQ).WillReturnError(uniqueErr(emailConstraint))

	_, _, err := repo.GetOrCreate(context.Background(), "alice", "alice@example.com")
	require.ErrorIs(t, err, common.ErrConflict)

	var fe *common.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "email", fe.Field)

	var pgErr *pgconn.PgError
	assert.False(t, errors.As(err, &pgErr), "driver error must not leak")
}

func TestGetOrCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertOrNothingQ).WillReturnError(errors.New("db down"))

	_, _, err := repo.GetOrCreate(context.Background(), "alice", "alice@example.com")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*role,.*password_hash\).*RETURNING\s+id,\s*created_at\s*$`

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(q).
		WithArgs("root", "root@example.com", "admin", "", "", "", true, true, []byte("hash")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(testUserID, created))

	u := &models.User{UserName: "root", Email: "root@example.com", Role: models.RoleAdmin,
		IsStaff: true, IsSuperuser: true, PasswordHash: []byte("hash")}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, testUserID, got.ID)
	assert.Equal(t, created, got.CreatedAt)
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+users`).WillReturnError(uniqueErr(usernameConstraint))

	_, err := repo.Create(context.Background(), &models.User{UserName: "root", Email: "r@example.com", Role: models.RoleAdmin})
	require.ErrorIs(t, err, common.ErrConflict)

	var fe *common.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "username", fe.Field)
}

func TestGetUserByLogin_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).
		WithArgs("alice").
		WillReturnRows(userRow(sqlmock.NewRows(userCols), testUserID, "alice", "alice@example.com"))

	got, err := repo.GetUserByLogin(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)
	assert.Nil(t, got.PasswordHash)
}

func TestGetUserByLogin_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*WHERE\s+username\s*=\s*\$1`).
		WithArgs("bob").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByLogin(context.Background(), "bob")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetUserByEmail_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*WHERE\s+email\s*=\s*\$1`).
		WithArgs("a@example.com").
		WillReturnError(errors.New("boom"))

	_, err := repo.GetUserByEmail(context.Background(), "a@example.com")
	if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*WHERE\s+id\s*=\s*\$1`).
		WithArgs(testUserID).
		WillReturnRows(userRow(sqlmock.NewRows(userCols), testUserID, "alice", "alice@example.com"))

	got, err := repo.GetUserByID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, testUserID, got.ID)

	// Not a UUID: no query is issued.
	_, err = repo.GetUserByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := userRow(sqlmock.NewRows(userCols), testUserID, "alice", "alice@example.com")
	rows = userRow(rows, "u-2", "bob", "bob@example.com")
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+ORDER\s+BY\s+username`).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[1].UserName)
}

func TestUpdate(t *testing.T) {
	q := `(?s)^UPDATE\s+users\s+SET\s+username\s*=\s*\$2.*WHERE\s+id\s*=\s*\$1`
	u := &models.User{ID: testUserID, UserName: "alice", Email: "alice@example.com", Role: models.RoleModerator}

	t.Run("ok", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).
			WithArgs(testUserID, "alice", "alice@example.com", "moderator", "", "", "", false, false, []byte(nil)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Update(context.Background(), u))
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))
		require.ErrorIs(t, repo.Update(context.Background(), u), common.ErrorNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()
		mock.ExpectExec(q).WillReturnError(uniqueErr(emailConstraint))
		err := repo.Update(context.Background(), u)
		var fe *common.FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "email", fe.Field)
	})
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1`
	mock.ExpectExec(q).WithArgs(testUserID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs(testUserID).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), testUserID))
	require.ErrorIs(t, repo.Delete(context.Background(), testUserID), common.ErrorNotFound)
}
