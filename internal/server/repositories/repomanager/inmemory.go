package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/yamdb/internal/dbx"
	"github.com/dmitrijs2005/yamdb/internal/server/codecache"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/catalog"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/comments"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/reviews"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/users"
	"github.com/dmitrijs2005/yamdb/internal/timex"
)

// InMemoryRepositoryManager keeps all data in process memory. The DBTX
// handles passed to its factories are ignored, so transactions do not
// roll back in-memory writes.
type InMemoryRepositoryManager struct {
	users    *users.MemoryRepository
	catalog  *catalog.MemoryRepository
	reviews  *reviews.MemoryRepository
	comments *comments.MemoryRepository
	codes    *codecache.Memory
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Catalog(dbx.DBTX) catalog.Repository {
	return m.catalog
}

func (m *InMemoryRepositoryManager) Reviews(dbx.DBTX) reviews.Repository {
	return m.reviews
}

func (m *InMemoryRepositoryManager) Comments(dbx.DBTX) comments.Repository {
	return m.comments
}

func (m *InMemoryRepositoryManager) CodeCache(dbx.DBTX) codecache.Cache {
	return m.codes
}

// NewInMemoryRepositoryManager builds empty stores. Title ratings are
// computed from the review store, and deletes cascade the way the
// foreign keys of the PostgreSQL schema do.
func NewInMemoryRepositoryManager(clock timex.Clock) *InMemoryRepositoryManager {
	rv := reviews.NewMemoryRepository()
	m := &InMemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		catalog:  catalog.NewMemoryRepository(rv.AverageScore),
		reviews:  rv,
		comments: comments.NewMemoryRepository(),
		codes:    codecache.NewMemory(clock),
	}

	m.reviews.OnDelete(m.comments.DeleteByReview)
	m.catalog.OnTitleDelete(m.reviews.DeleteByTitle)
	m.users.OnDelete(func(userID string) {
		m.reviews.DeleteByAuthor(userID)
		m.comments.DeleteByAuthor(userID)
	})
	return m
}
