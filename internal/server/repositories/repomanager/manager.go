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
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Catalog(db dbx.DBTX) catalog.Repository
	Reviews(db dbx.DBTX) reviews.Repository
	Comments(db dbx.DBTX) comments.Repository
	CodeCache(db dbx.DBTX) codecache.Cache
}
