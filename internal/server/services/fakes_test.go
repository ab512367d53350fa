package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/yamdb/internal/dbx"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testRepoManager is the in-memory manager with injectable user lookup
// failures.
type testRepoManager struct {
	*repomanager.InMemoryRepositoryManager
	usersErr error
}

func newTestRepoManager() *testRepoManager {
	return &testRepoManager{InMemoryRepositoryManager: repomanager.NewInMemoryRepositoryManager(nil)}
}

func (m *testRepoManager) Users(db dbx.DBTX) users.Repository {
	r := m.InMemoryRepositoryManager.Users(db)
	if m.usersErr != nil {
		return failingUsers{Repository: r, err: m.usersErr}
	}
	return r
}

func (m *testRepoManager) add(t *testing.T, u models.User) *models.User {
	t.Helper()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	created, err := m.InMemoryRepositoryManager.Users(nil).Create(context.Background(), &u)
	if err != nil {
		t.Fatalf("seed user %q: %v", u.UserName, err)
	}
	return created
}

type failingUsers struct {
	users.Repository
	err error
}

func (f failingUsers) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func (f failingUsers) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func (f failingUsers) GetUserByID(context.Context, string) (*models.User, error) {
	return nil, f.err
}

func modelsUser(name string) models.User {
	return models.User{UserName: name, Email: name + "@example.com", Role: models.RoleUser}
}
