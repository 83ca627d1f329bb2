package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/jewelryoclock/storefront-backend/pkg/auth"
	"github.com/jewelryoclock/storefront-backend/pkg/config"
	"github.com/jewelryoclock/storefront-backend/pkg/db"
	"github.com/jewelryoclock/storefront-backend/pkg/db/models"
	"github.com/jewelryoclock/storefront-backend/pkg/enums"
	pkgerrors "github.com/jewelryoclock/storefront-backend/pkg/errors"
	"github.com/jewelryoclock/storefront-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service exposes registration, login and profile reads.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
}

// RegisterInput holds the validated signup payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// service implements the identity gate.
type service struct {
	repo        *Repository
	dbClient    *db.Client
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	adminEmail  string
}

// NewService constructs an identity service instance.
func NewService(repo *Repository, dbClient *db.Client, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, adminEmail string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if strings.TrimSpace(adminEmail) == "" {
		return nil, fmt.Errorf("admin email required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		adminEmail:  strings.ToLower(strings.TrimSpace(adminEmail)),
	}, nil
}

// Register creates the account and signs the user in.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	passwordHash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lookup email")
		}
		if _, err := txRepo.CreateUser(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert user")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register user")
	}

	return s.issueToken(user, time.Now().UTC())
}

// Login verifies the credentials and mints a token whose role claim is
// derived from the configured admin email. Every failure mode returns
// the same message.
func (s *service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.repo.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record login")
	}
	user.LastLoginAt = &now

	return s.issueToken(user, now)
}

// Me returns the profile with its derived role.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	dto := NewUserDTO(user, s.roleFor(user.Email))
	return &dto, nil
}

func (s *service) issueToken(user *models.User, now time.Time) (*AuthResponse, error) {
	role := s.roleFor(user.Email)
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &AuthResponse{
		AccessToken: token,
		User:        NewUserDTO(user, role),
	}, nil
}

func (s *service) roleFor(email string) enums.UserRole {
	if strings.EqualFold(email, s.adminEmail) {
		return enums.UserRoleAdmin
	}
	return enums.UserRoleCustomer
}
