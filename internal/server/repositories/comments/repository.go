// Package comments stores comments attached to reviews.
package comments

import (
	"context"

	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, reviewID int64) ([]*models.Comment, error)
	Get(ctx context.Context, reviewID, id int64) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, reviewID, id int64) error
}
