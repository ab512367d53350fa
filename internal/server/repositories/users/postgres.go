package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/dbx"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/google/uuid"
)

const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"

	usernameTakenMessage = "a user with this username already exists"
	emailTakenMessage    = "a user with this email already exists"
)

const userColumns = `id, username, email, role, bio, first_name, last_name, is_staff, is_superuser, password_hash, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*models.User, error) {
	u := &models.User{}
	var role string
	if err := s.Scan(&u.ID, &u.UserName, &u.Email, &role, &u.Bio, &u.FirstName, &u.LastName,
		&u.IsStaff, &u.IsSuperuser, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return u, nil
}

// conflictError maps a unique violation to the field that collided.
func conflictError(err error) error {
	switch {
	case dbx.IsUniqueViolation(err, usernameConstraint):
		return common.NewFieldError("username", usernameTakenMessage, common.ErrConflict)
	case dbx.IsUniqueViolation(err, emailConstraint):
		return common.NewFieldError("email", emailTakenMessage, common.ErrConflict)
	case dbx.IsUniqueViolation(err, ""):
		return fmt.Errorf("%w: %v", common.ErrConflict, err)
	default:
		return nil
	}
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, username, email string) (*models.User, bool, error) {
	insert :=
		`INSERT INTO users (username, email)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, insert, username, email))
	if err == nil {
		return u, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		if cerr := conflictError(err); cerr != nil {
			return nil, false, cerr
		}
		return nil, false, fmt.Errorf("db error: %w", err)
	}

	// Nothing inserted: at least one of the values is taken.
	lookup :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE username = $1 OR email = $2`

	rows, err := r.db.QueryContext(ctx, lookup, username, email)
	if err != nil {
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var usernameTaken, emailTaken bool
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, false, fmt.Errorf("db error: %w", err)
		}
		if u.UserName == username && u.Email == email {
			return u, false, nil
		}
		usernameTaken = usernameTaken || u.UserName == username
		emailTaken = emailTaken || u.Email == email
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("db error: %w", err)
	}

	switch {
	case usernameTaken:
		return nil, false, common.NewFieldError("username", usernameTakenMessage, common.ErrConflict)
	case emailTaken:
		return nil, false, common.NewFieldError("email", emailTakenMessage, common.ErrConflict)
	default:
		// The colliding row vanished between the two statements.
		return nil, false, fmt.Errorf("%w: concurrent user modification", common.ErrConflict)
	}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, role, bio, first_name, last_name, is_staff, is_superuser, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, string(user.Role), user.Bio, user.FirstName, user.LastName,
		user.IsStaff, user.IsSuperuser, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if cerr := conflictError(err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, column, value string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	return r.getOne(ctx, "username", userName)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email", email)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, "id", id)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users
		 SET username = $2, email = $3, role = $4, bio = $5, first_name = $6, last_name = $7,
		     is_staff = $8, is_superuser = $9, password_hash = $10
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, user.ID,
		user.UserName, user.Email, string(user.Role), user.Bio, user.FirstName, user.LastName,
		user.IsStaff, user.IsSuperuser, user.PasswordHash)
	if err != nil {
		if cerr := conflictError(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
