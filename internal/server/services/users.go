package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/companyhub/internal/common"
	"github.com/dmitrijs2005/companyhub/internal/dbx"
	"github.com/dmitrijs2005/companyhub/internal/server/auth"
	"github.com/dmitrijs2005/companyhub/internal/server/config"
	"github.com/dmitrijs2005/companyhub/internal/server/models"
	"github.com/dmitrijs2005/companyhub/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// Identity is the authenticated caller, derived from a validated bearer token.
type Identity struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// AccessToken is a freshly issued bearer token. ExpiresIn is in seconds.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresIn int64
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
	now                         func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
		now:                         time.Now,
	}
}

// Register creates an account and issues its first token. An email that is
// already taken, in any letter case, yields common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, *AccessToken, error) {

	if len(password) > MaxPasswordBytes {
		return nil, nil, common.ErrPasswordTooLong
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, nil, common.ErrAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable: both return common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*AccessToken, error) {

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !s.checkPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	return s.issue(user.ID)
}

func (s *UserService) checkPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

func (s *UserService) issue(userID string) (*AccessToken, error) {
	token, _, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	return &AccessToken{
		Token:     token,
		TokenType: common.TokenType,
		ExpiresIn: int64(s.accessTokenValidityDuration / time.Second),
	}, nil
}

// Authenticate validates a bearer token and checks it against the revocation
// list. It returns common.ErrInvalidToken, common.ErrTokenExpired or
// common.ErrTokenRevoked for rejected tokens; any other error is a storage
// failure.
func (s *UserService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	revoked, err := s.repomanager.RevokedTokens(s.db).Exists(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking revocation: %w", err)
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}

	return &Identity{
		UserID:    claims.UserID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the token identified by id and purges revocation entries
// that have outlived their tokens. Other tokens of the same user stay valid.
func (s *UserService) Logout(ctx context.Context, id Identity) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RevokedTokens(tx)

		err := repo.Create(ctx, &models.RevokedToken{
			JTI:       id.TokenID,
			UserID:    id.UserID,
			ExpiresAt: id.ExpiresAt,
		})
		if err != nil {
			return fmt.Errorf("error revoking token: %w", err)
		}

		if _, err := repo.DeleteExpired(ctx, s.now()); err != nil {
			return fmt.Errorf("error purging revoked tokens: %w", err)
		}
		return nil
	})
}

// Me returns the account of the authenticated user.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}
