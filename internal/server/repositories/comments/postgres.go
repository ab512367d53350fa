package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/dbx"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

const commentSelect = `SELECT c.id, c.review_id, c.author_id, u.username, c.text, c.pub_date
FROM comments c
JOIN users u ON u.id = c.author_id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(s rowScanner) (*models.Comment, error) {
	c := &models.Comment{}
	if err := s.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author, &c.Text, &c.PubDate); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *PostgresRepository) List(ctx context.Context, reviewID int64) ([]*models.Comment, error) {
	rows, err := p.db.QueryContext(ctx, commentSelect+` WHERE c.review_id = $1 ORDER BY c.pub_date, c.id`, reviewID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (p *PostgresRepository) Get(ctx context.Context, reviewID, id int64) (*models.Comment, error) {
	c, err := scanComment(p.db.QueryRowContext(ctx, commentSelect+` WHERE c.review_id = $1 AND c.id = $2`, reviewID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (p *PostgresRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	query :=
		`INSERT INTO comments (review_id, author_id, text)
		 VALUES ($1, $2, $3)
		 RETURNING id, pub_date`

	err := p.db.QueryRowContext(ctx, query, c.ReviewID, c.AuthorID, c.Text).Scan(&c.ID, &c.PubDate)
	if err != nil {
		if dbx.IsForeignKeyViolation(err, "") {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (p *PostgresRepository) Update(ctx context.Context, c *models.Comment) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE comments SET text = $3 WHERE review_id = $1 AND id = $2`, c.ReviewID, c.ID, c.Text)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return affectedOne(res)
}

func (p *PostgresRepository) Delete(ctx context.Context, reviewID, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM comments WHERE review_id = $1 AND id = $2`, reviewID, id)
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
