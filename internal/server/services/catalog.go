package services

import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/dbx"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/yamdb/internal/timex"
)

// TitleInput is the full set of writable title fields.
type TitleInput struct {
	Name        string
	Year        int
	Description string
	Category    string
	Genres      []string
}

// TitlePatch is a partial title update. Nil fields are left alone.
type TitlePatch struct {
	Name        *string
	Year        *int
	Description *string
	Category    *string
	Genres      *[]string
}

// CatalogService manages categories, genres and titles.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	clock       timex.Clock
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, clock timex.Clock) *CatalogService {
	return &CatalogService{db: db, repomanager: m, clock: clock}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	out, err := s.repomanager.Catalog(s.db).ListCategories(ctx)
	if err != nil {
		return nil, repoError("list categories", err)
	}
	return out, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	if err := validateNamed(c.Name, c.Slug); err != nil {
		return c, err
	}
	if err := s.repomanager.Catalog(s.db).CreateCategory(ctx, c); err != nil {
		return c, repoError("create category", err)
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	if err := s.repomanager.Catalog(s.db).DeleteCategory(ctx, slug); err != nil {
		return repoError("delete category", err)
	}
	return nil
}

func (s *CatalogService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	out, err := s.repomanager.Catalog(s.db).ListGenres(ctx)
	if err != nil {
		return nil, repoError("list genres", err)
	}
	return out, nil
}

func (s *CatalogService) CreateGenre(ctx context.Context, g models.Genre) (models.Genre, error) {
	if err := validateNamed(g.Name, g.Slug); err != nil {
		return g, err
	}
	if err := s.repomanager.Catalog(s.db).CreateGenre(ctx, g); err != nil {
		return g, repoError("create genre", err)
	}
	return g, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, slug string) error {
	if err := s.repomanager.Catalog(s.db).DeleteGenre(ctx, slug); err != nil {
		return repoError("delete genre", err)
	}
	return nil
}

func (s *CatalogService) ListTitles(ctx context.Context) ([]*models.Title, error) {
	out, err := s.repomanager.Catalog(s.db).ListTitles(ctx)
	if err != nil {
		return nil, repoError("list titles", err)
	}
	return out, nil
}

func (s *CatalogService) GetTitle(ctx context.Context, id int64) (*models.Title, error) {
	t, err := s.repomanager.Catalog(s.db).GetTitle(ctx, id)
	if err != nil {
		return nil, repoError("get title", err)
	}
	return t, nil
}

// CreateTitle stores the title and its genres in one transaction.
func (s *CatalogService) CreateTitle(ctx context.Context, in TitleInput) (*models.Title, error) {
	t := &models.Title{Name: in.Name, Year: in.Year, Description: in.Description}
	if in.Category != "" {
		t.Category = &models.Category{Slug: in.Category}
	}
	if err := s.validateTitle(t); err != nil {
		return nil, err
	}

	var created *models.Title
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Catalog(tx)
		if err := repo.CreateTitle(ctx, t); err != nil {
			return err
		}
		if err := repo.SetTitleGenres(ctx, t.ID, in.Genres); err != nil {
			return err
		}
		var err error
		created, err = repo.GetTitle(ctx, t.ID)
		return err
	})
	if err != nil {
		return nil, repoError("create title", err)
	}
	return created, nil
}

// UpdateTitle applies patch to title id in one transaction.
func (s *CatalogService) UpdateTitle(ctx context.Context, id int64, patch TitlePatch) (*models.Title, error) {
	var updated *models.Title
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Catalog(tx)
		t, err := repo.GetTitle(ctx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Year != nil {
			t.Year = *patch.Year
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Category != nil {
			t.Category = nil
			if *patch.Category != "" {
				t.Category = &models.Category{Slug: *patch.Category}
			}
		}
		if err := s.validateTitle(t); err != nil {
			return err
		}

		if err := repo.UpdateTitle(ctx, t); err != nil {
			return err
		}
		if patch.Genres != nil {
			if err := repo.SetTitleGenres(ctx, id, *patch.Genres); err != nil {
				return err
			}
		}
		updated, err = repo.GetTitle(ctx, id)
		return err
	})
	if err != nil {
		return nil, repoError("update title", err)
	}
	return updated, nil
}

func (s *CatalogService) DeleteTitle(ctx context.Context, id int64) error {
	if err := s.repomanager.Catalog(s.db).DeleteTitle(ctx, id); err != nil {
		return repoError("delete title", err)
	}
	return nil
}

func (s *CatalogService) validateTitle(t *models.Title) error {
	switch {
	case t.Name == "":
		return common.NewFieldError("name", msgRequired, common.ErrorValidation)
	case utf8.RuneCountInString(t.Name) > maxNameLength:
		return common.NewFieldError("name", tooLong(maxNameLength), common.ErrorValidation)
	case t.Year > s.clock.Now().Year():
		return common.NewFieldError("year", fmt.Sprintf("Year cannot be later than %d.", s.clock.Now().Year()), common.ErrorValidation)
	}
	return nil
}
