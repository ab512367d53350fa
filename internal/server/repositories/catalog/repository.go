// Package catalog stores categories, genres and titles.
package catalog

import (
	"context"

	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

type Repository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, c models.Category) error
	DeleteCategory(ctx context.Context, slug string) error

	ListGenres(ctx context.Context) ([]models.Genre, error)
	CreateGenre(ctx context.Context, g models.Genre) error
	DeleteGenre(ctx context.Context, slug string) error

	ListTitles(ctx context.Context) ([]*models.Title, error)
	GetTitle(ctx context.Context, id int64) (*models.Title, error)
	// CreateTitle inserts the title row and sets t.ID. Genres are attached
	// separately with SetTitleGenres.
	CreateTitle(ctx context.Context, t *models.Title) error
	UpdateTitle(ctx context.Context, t *models.Title) error
	// SetTitleGenres replaces the genres of title id with slugs.
	SetTitleGenres(ctx context.Context, id int64, slugs []string) error
	DeleteTitle(ctx context.Context, id int64) error
}
