package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/dbx"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

const authorTitleConstraint = "reviews_author_title_key"

const reviewSelect = `SELECT r.id, r.title_id, r.author_id, u.username, r.text, r.score, r.pub_date
FROM reviews r
JOIN users u ON u.id = r.author_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(s rowScanner) (*models.Review, error) {
	r := &models.Review{}
	if err := s.Scan(&r.ID, &r.TitleID, &r.AuthorID, &r.Author, &r.Text, &r.Score, &r.PubDate); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *PostgresRepository) List(ctx context.Context, titleID int64) ([]*models.Review, error) {
	rows, err := p.db.QueryContext(ctx, reviewSelect+` WHERE r.title_id = $1 ORDER BY r.pub_date, r.id`, titleID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (p *PostgresRepository) Get(ctx context.Context, titleID, id int64) (*models.Review, error) {
	r, err := scanReview(p.db.QueryRowContext(ctx, reviewSelect+` WHERE r.title_id = $1 AND r.id = $2`, titleID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r, nil
}

func (p *PostgresRepository) Create(ctx context.Context, r *models.Review) (*models.Review, error) {
	query :=
		`INSERT INTO reviews (title_id, author_id, text, score)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, pub_date`

	err := p.db.QueryRowContext(ctx, query, r.TitleID, r.AuthorID, r.Text, r.Score).Scan(&r.ID, &r.PubDate)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err, authorTitleConstraint):
			return nil, common.NewFieldError("non_field_errors", "you have already reviewed this title", common.ErrorAlreadyExists)
		case dbx.IsForeignKeyViolation(err, ""):
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r, nil
}

func (p *PostgresRepository) Update(ctx context.Context, r *models.Review) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE reviews SET text = $3, score = $4 WHERE title_id = $1 AND id = $2`,
		r.TitleID, r.ID, r.Text, r.Score)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func (p *PostgresRepository) Delete(ctx context.Context, titleID, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM reviews WHERE title_id = $1 AND id = $2`, titleID, id)
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
