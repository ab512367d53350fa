// Package reviews stores title reviews.
package reviews

import (
	"context"

	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, titleID int64) ([]*models.Review, error)
	Get(ctx context.Context, titleID, id int64) (*models.Review, error)
	// Create fails with common.ErrorAlreadyExists when the author already
	// reviewed the title.
	Create(ctx context.Context, r *models.Review) (*models.Review, error)
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, titleID, id int64) error
}
