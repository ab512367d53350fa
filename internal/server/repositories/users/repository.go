// Package users is the identity store: user records keyed by unique
// username and unique e-mail.
package users

import (
	"context"

	"github.com/dmitrijs2005/yamdb/internal/server/models"
)

type Repository interface {
	// GetOrCreate returns the user bound to exactly (username, email),
	// creating it when neither value is taken. created reports whether a row
	// was inserted. A username or e-mail bound to another user yields a
	// *common.FieldError wrapping common.ErrConflict.
	GetOrCreate(ctx context.Context, username, email string) (user *models.User, created bool, err error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}
