package codecache

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var pgNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newPostgresWithMock(t *testing.T) (*Postgres, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgres(db, func() time.Time { return pgNow }), mock, db
}

func TestPostgresPut_Upserts(t *testing.T) {
	c, mock, db := newPostgresWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+verification_codes\b.*ON\s+CONFLICT\s+\(cache_key\)\s+DO\s+UPDATE`
	mock.ExpectExec(q).
		WithArgs("alice", "CODE", pgNow.Add(15*time.Minute)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := c.Put(context.Background(), "alice", "CODE", 15*time.Minute); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresPut_DBError(t *testing.T) {
	c, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+verification_codes`).
		WillReturnError(errors.New("db down"))

	err := c.Put(context.Background(), "alice", "CODE", time.Minute)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresGet_Found(t *testing.T) {
	c, mock, db := newPostgresWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+value\s+FROM\s+verification_codes\s+WHERE\s+cache_key\s*=\s*\$1\s+AND\s+expires_at\s*>\s*\$2\s*$`
	mock.ExpectQuery(q).
		WithArgs("alice", pgNow).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("CODE"))

	v, ok, err := c.Get(context.Background(), "alice")
	if err != nil || !ok || v != "CODE" {
		t.Fatalf("unexpected result: %q %v %v", v, ok, err)
	}
}

func TestPostgresGet_MissOrExpired(t *testing.T) {
	c, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+value\s+FROM\s+verification_codes`).
		WithArgs("ghost", pgNow).
		WillReturnError(sql.ErrNoRows)

	_, ok, err := c.Get(context.Background(), "ghost")
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestPostgresGet_DBError(t *testing.T) {
	c, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+value\s+FROM\s+verification_codes`).
		WillReturnError(errors.New("db err"))

	_, _, err := c.Get(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresPurgeExpired(t *testing.T) {
	c, mock, db := newPostgresWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*DELETE\s+FROM\s+verification_codes\s+WHERE\s+expires_at\s*<=\s*\$1\s*$`).
		WithArgs(pgNow).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := c.PurgeExpired(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("unexpected result: %d %v", n, err)
	}
}
