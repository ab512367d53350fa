// Package services contains server-side business logic. This file implements
// AuthService: passwordless signup with e-mailed one-time codes and access
// token issuance once a code is confirmed.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/common"
	"github.com/dmitrijs2005/yamdb/internal/logging"
	"github.com/dmitrijs2005/yamdb/internal/server/auth"
	"github.com/dmitrijs2005/yamdb/internal/server/codecache"
	"github.com/dmitrijs2005/yamdb/internal/server/config"
	"github.com/dmitrijs2005/yamdb/internal/server/mailer"
	"github.com/dmitrijs2005/yamdb/internal/server/models"
	"github.com/dmitrijs2005/yamdb/internal/server/repositories/repomanager"
)

// AuthService provides the signup flow:
//   - RequestSignup: get-or-create the identity and mail a fresh code
//   - ConfirmSignup: check the code and mint an access token
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       codecache.Cache
	sender      mailer.Sender
	issuer      *auth.Issuer
	codeLength  int
	codeTTL     time.Duration
	logger      logging.Logger
}

// NewAuthService constructs an AuthService. Code length and lifetime come
// from cfg.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cache codecache.Cache, sender mailer.Sender,
	issuer *auth.Issuer, cfg *config.Config, l logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		cache:       cache,
		sender:      sender,
		issuer:      issuer,
		codeLength:  cfg.ConfirmationCodeLength,
		codeTTL:     cfg.ConfirmationCodeTTL,
		logger:      l.With("module", "auth"),
	}
}

// RequestSignup registers (username, email) if neither is taken, or
// recognises the exact pair if it already exists, and sends a new code.
// Any earlier code for the username stops working.
//
// Mail delivery is best effort: a failed send is logged and the identity
// and code stay in place so the caller can simply retry.
func (s *AuthService) RequestSignup(ctx context.Context, userName, email string) (*models.User, error) {
	if err := validateUserName(userName); err != nil {
		return nil, err
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, created, err := s.repomanager.Users(s.db).GetOrCreate(ctx, userName, email)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get or create user: %v", common.ErrorInternal, err)
	}
	if created {
		s.logger.Info(ctx, "user registered", "username", user.UserName)
	}

	code, err := common.MakeRandString(s.codeLength, common.AlphaNumeric)
	if err != nil {
		return nil, fmt.Errorf("%w: generate code: %v", common.ErrorInternal, err)
	}
	if err := s.cache.Put(ctx, user.UserName, code, s.codeTTL); err != nil {
		return nil, fmt.Errorf("%w: store code: %v", common.ErrorInternal, err)
	}

	if err := s.sender.SendCode(ctx, user.Email, code); err != nil {
		s.logger.Warn(ctx, "confirmation code delivery failed", "username", user.UserName, "error", err)
	}
	return user, nil
}

// ConfirmSignup exchanges a valid confirmation code for an access token.
// The username is resolved first (ErrorNotFound), then the code shape is
// checked without touching the cache, then the cached code is compared in
// constant time.
func (s *AuthService) ConfirmSignup(ctx context.Context, userName, code string) (*auth.Credential, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: load user: %v", common.ErrorInternal, err)
	}

	if len(code) != s.codeLength {
		return nil, common.ErrInvalidCode
	}

	stored, ok, err := s.cache.Get(ctx, user.UserName)
	if err != nil {
		return nil, fmt.Errorf("%w: read code: %v", common.ErrorInternal, err)
	}
	if !ok || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return nil, common.ErrInvalidCode
	}

	cred, err := s.issuer.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", common.ErrorInternal, err)
	}
	s.logger.Info(ctx, "access token issued", "username", user.UserName)
	return cred, nil
}

// Authenticate resolves an access token to its user. Tokens of deleted
// users are rejected like forged ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: load user: %v", common.ErrorInternal, err)
	}
	return user, nil
}
