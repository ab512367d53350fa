package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/dbx"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

const (
	categoriesTable = "categories"
	genresTable     = "genres"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// slug tables

func (r *PostgresRepository) listSlugged(ctx context.Context, table string, add func(name, slug string)) error {
	rows, err := r.db.QueryContext(ctx, `SELECT name, slug FROM `+table+` ORDER BY name`)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, slug string
		if err := rows.Scan(&name, &slug); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		add(name, slug)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) createSlugged(ctx context.Context, table, name, slug string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO `+table+` (name, slug) VALUES ($1, $2)`, name, slug)
	if err != nil {
		if dbx.IsUniqueViolation(err, "") {
			return common.NewFieldError("slug", "this slug is already in use", common.ErrorAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) deleteSlugged(ctx context.Context, table, slug string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := r.listSlugged(ctx, categoriesTable, func(name, slug string) {
		out = append(out, models.Category{Name: name, Slug: slug})
	})
	return out, err
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, c models.Category) error {
	return r.createSlugged(ctx, categoriesTable, c.Name, c.Slug)
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, slug string) error {
	return r.deleteSlugged(ctx, categoriesTable, slug)
}

func (r *PostgresRepository) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var out []models.Genre
	err := r.listSlugged(ctx, genresTable, func(name, slug string) {
		out = append(out, models.Genre{Name: name, Slug: slug})
	})
	return out, err
}

func (r *PostgresRepository) CreateGenre(ctx context.Context, g models.Genre) error {
	return r.createSlugged(ctx, genresTable, g.Name, g.Slug)
}

func (r *PostgresRepository) DeleteGenre(ctx context.Context, slug string) error {
	return r.deleteSlugged(ctx, genresTable, slug)
}

// titles

const titleSelect = `SELECT t.id, t.name, t.year, t.description, c.slug, c.name,
       (SELECT AVG(rv.score)::float8 FROM reviews rv WHERE rv.title_id = t.id) AS rating
FROM titles t
LEFT JOIN categories c ON c.slug = t.category`

const genreSelect = `SELECT gt.title_id, g.name, g.slug
FROM genre_title gt
JOIN genres g ON g.slug = gt.genre`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTitle(s rowScanner) (*models.Title, error) {
	t := &models.Title{}
	var catSlug, catName sql.NullString
	var rating sql.NullFloat64
	if err := s.Scan(&t.ID, &t.Name, &t.Year, &t.Description, &catSlug, &catName, &rating); err != nil {
		return nil, err
	}
	if catSlug.Valid {
		t.Category = &models.Category{Slug: catSlug.String, Name: catName.String}
	}
	if rating.Valid {
		v := rating.Float64
		t.Rating = &v
	}
	t.Genres = []models.Genre{}
	return t, nil
}

func (r *PostgresRepository) attachGenres(ctx context.Context, byID map[int64]*models.Title, query string, args ...any) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var g models.Genre
		if err := rows.Scan(&id, &g.Name, &g.Slug); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if t, ok := byID[id]; ok {
			t.Genres = append(t.Genres, g)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListTitles(ctx context.Context) ([]*models.Title, error) {
	rows, err := r.db.QueryContext(ctx, titleSelect+` ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Title
	byID := map[int64]*models.Title{}
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	if err := r.attachGenres(ctx, byID, genreSelect+` ORDER BY gt.title_id, g.slug`); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) GetTitle(ctx context.Context, id int64) (*models.Title, error) {
	t, err := scanTitle(r.db.QueryRowContext(ctx, titleSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	byID := map[int64]*models.Title{t.ID: t}
	if err := r.attachGenres(ctx, byID, genreSelect+` WHERE gt.title_id = $1 ORDER BY g.slug`, id); err != nil {
		return nil, err
	}
	return t, nil
}

func categorySlug(t *models.Title) sql.NullString {
	if t.Category == nil || t.Category.Slug == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Category.Slug, Valid: true}
}

func unknownCategory(err error) error {
	if dbx.IsForeignKeyViolation(err, "") {
		return common.NewFieldError("category", "unknown category slug", common.ErrorValidation)
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) CreateTitle(ctx context.Context, t *models.Title) error {
	query :=
		`INSERT INTO titles (name, year, description, category)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query, t.Name, t.Year, t.Description, categorySlug(t)).Scan(&t.ID)
	if err != nil {
		return unknownCategory(err)
	}
	return nil
}

func (r *PostgresRepository) UpdateTitle(ctx context.Context, t *models.Title) error {
	query :=
		`UPDATE titles
		 SET name = $2, year = $3, description = $4, category = $5
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, t.ID, t.Name, t.Year, t.Description, categorySlug(t))
	if err != nil {
		return unknownCategory(err)
	}
	return affectedOne(res)
}

func (r *PostgresRepository) SetTitleGenres(ctx context.Context, id int64, slugs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM genre_title WHERE title_id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	for _, slug := range slugs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO genre_title (title_id, genre) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, slug)
		if err != nil {
			if dbx.IsForeignKeyViolation(err, "") {
				return common.NewFieldError("genre", fmt.Sprintf("unknown genre slug %q", slug), common.ErrorValidation)
			}
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) DeleteTitle(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
