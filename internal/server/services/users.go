package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	msgPasswordShort  = "This password is too short. It must contain at least 8 characters."
	msgPasswordLong   = "This password is too long."
)

// UserPatch lists the fields a partial user update may change. Nil fields
// are left alone.
type UserPatch struct {
	UserName  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

// UserService manages user records for administrators and the
// self-service "me" endpoint.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager) *UserService {
	return &UserService{db: db, repomanager: m}
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", common.ErrorInternal, err)
	}
	return users, nil
}

// Create adds a user on behalf of an administrator. Role defaults to user.
func (s *UserService) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if err := validateUserName(u.UserName); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(u.Email)
	if err != nil {
		return nil, err
	}
	u.Email = email

	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if _, err := models.ParseRole(string(u.Role)); err != nil {
		return nil, common.NewFieldError("role", err.Error(), common.ErrorValidation)
	}
	if err := validateProfile(u); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Users(s.db).Create(ctx, u)
	if err != nil {
		return nil, repoError("create user", err)
	}
	return created, nil
}

func (s *UserService) Get(ctx context.Context, userName string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		return nil, repoError("get user", err)
	}
	return u, nil
}

// GetByEmail looks a user up by e-mail address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		return nil, repoError("get user", err)
	}
	return u, nil
}

// Update applies patch to the user named userName.
func (s *UserService) Update(ctx context.Context, userName string, patch UserPatch) (*models.User, error) {
	u, err := s.Get(ctx, userName)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, u, patch, true)
}

// UpdateMe applies patch to the caller's own record. The role cannot be
// changed this way.
func (s *UserService) UpdateMe(ctx context.Context, me *models.User, patch UserPatch) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetUserByID(ctx, me.ID)
	if err != nil {
		return nil, repoError("get user", err)
	}
	return s.apply(ctx, u, patch, false)
}

func (s *UserService) Delete(ctx context.Context, userName string) error {
	u, err := s.Get(ctx, userName)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).Delete(ctx, u.ID); err != nil {
		return repoError("delete user", err)
	}
	return nil
}

func (s *UserService) apply(ctx context.Context, u *models.User, patch UserPatch, roleEditable bool) (*models.User, error) {
	if patch.UserName != nil {
		if err := validateUserName(*patch.UserName); err != nil {
			return nil, err
		}
		u.UserName = *patch.UserName
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.Role != nil && roleEditable {
		role, err := models.ParseRole(*patch.Role)
		if err != nil {
			return nil, common.NewFieldError("role", err.Error(), common.ErrorValidation)
		}
		u.Role = role
	}
	if err := validateProfile(u); err != nil {
		return nil, err
	}

	if err := s.repomanager.Users(s.db).Update(ctx, u); err != nil {
		return nil, repoError("update user", err)
	}
	return u, nil
}

func validateProfile(u *models.User) error {
	if utf8.RuneCountInString(u.FirstName) > maxUserNameLength {
		return common.NewFieldError("first_name", tooLong(maxUserNameLength), common.ErrorValidation)
	}
	if utf8.RuneCountInString(u.LastName) > maxUserNameLength {
		return common.NewFieldError("last_name", tooLong(maxUserNameLength), common.ErrorValidation)
	}
	return nil
}

// repoError passes through the errors callers act on and hides the rest
// behind ErrorInternal.
func repoError(op string, err error) error {
	for _, known := range []error{
		common.ErrorNotFound, common.ErrConflict, common.ErrorAlreadyExists, common.ErrorValidation,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}

// CreateSuperuser adds an operator account with the admin role, the staff
// and superuser flags and a bcrypt hash of password.
func (s *UserService) CreateSuperuser(ctx context.Context, userName, email string, password []byte) (*models.User, error) {
	if len(password) < minPasswordLength {
		return nil, common.NewFieldError("password", msgPasswordShort, common.ErrorValidation)
	}
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, common.NewFieldError("password", msgPasswordLong, common.ErrorValidation)
		}
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	return s.Create(ctx, &models.User{
		UserName:     userName,
		Email:        email,
		Role:         models.RoleAdmin,
		IsStaff:      true,
		IsSuperuser:  true,
		PasswordHash: hash,
	})
}

// SetRole changes the role of the user named userName.
func (s *UserService) SetRole(ctx context.Context, userName, role string) (*models.User, error) {
	return s.Update(ctx, userName, UserPatch{Role: &role})
}
