// Package services contains server-side business logic. This file implements
// AuthService: registration, credential checks, binding the resulting
// identity to a session and API token handling.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/logging"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/dmitrijs2005/gophnotes/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// SessionBinder holds the identity bound to one client session. The web
// layer implements it over a cookie session.
type SessionBinder interface {
	Bind(identity *models.Identity) error
	Clear() error
}

type AuthService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	logger                      logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
	// compared against when the user does not exist, so both failure
	// paths cost one bcrypt comparison
	dummyHash []byte
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword(common.GenerateRandByteArray(16), cost)

	return &AuthService{
		db:                          db,
		repomanager:                 m,
		logger:                      l.With("module", "auth_service"),
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cost,
		dummyHash:                   dummy,
	}
}

// Register stores a new account and returns its id. The username is kept
// exactly as given. A taken username yields common.ErrDuplicateUsername.
func (s *AuthService) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return 0, fmt.Errorf("%w: password is too long", common.ErrValidation)
		}
		return 0, fmt.Errorf("error hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{Username: username, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return 0, common.ErrDuplicateUsername
		}
		return 0, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u.ID, nil
}

// Authenticate checks the credentials. Unknown usernames and wrong passwords
// both yield common.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Identity, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	return &models.Identity{UserID: user.ID, Username: user.Username}, nil
}

// Login authenticates and binds the identity to the caller's session.
func (s *AuthService) Login(ctx context.Context, binder SessionBinder, username, password string) (*models.Identity, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := binder.Bind(identity); err != nil {
		return nil, fmt.Errorf("error binding session: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "user_id", identity.UserID)
	return identity, nil
}

// Logout clears whatever identity the session holds. Clearing an empty
// session is not an error.
func (s *AuthService) Logout(ctx context.Context, binder SessionBinder) error {
	if err := binder.Clear(); err != nil {
		return fmt.Errorf("error clearing session: %w", err)
	}
	return nil
}

// IssueToken mints an API access token for identity.
func (s *AuthService) IssueToken(identity *models.Identity) (string, error) {
	if identity == nil {
		return "", common.ErrUnauthenticated
	}
	return auth.GenerateToken(*identity, s.jwtSecret, s.accessTokenValidityDuration)
}

// IdentityFromToken resolves an access token. Any unusable token yields
// common.ErrUnauthenticated.
func (s *AuthService) IdentityFromToken(token string) (*models.Identity, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	identity, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnauthenticated, err)
	}
	return identity, nil
}
