package services

import (
	"context"
	"strings"
	"unicode"

	"github.com/ratehub/ratehub-backend/internal/apperr"
	"github.com/ratehub/ratehub-backend/internal/auth"
	"github.com/ratehub/ratehub-backend/internal/models"
	repo "github.com/ratehub/ratehub-backend/internal/repository"
)

type UserService struct {
	users repo.Users
}

func NewUserService(r repo.Users) *UserService { return &UserService{users: r} }

// Register creates a normal-role user from a public signup.
func (s *UserService) Register(ctx context.Context, name, email, password string, address *string) (models.User, error) {
	return s.create(ctx, name, email, password, address, models.RoleUser)
}

// AdminCreate creates a user with any role on behalf of an administrator.
func (s *UserService) AdminCreate(ctx context.Context, name, email, password string, address *string, role models.Role) (models.User, error) {
	if !models.ValidRole(role) {
		return models.User{}, apperr.Newf(apperr.KindInvalidArgument, "unknown role %q", role)
	}
	return s.create(ctx, name, email, password, address, role)
}

func (s *UserService) create(ctx context.Context, name, email, password string, address *string, role models.Role) (models.User, error) {
	if err := checkPassword(password); err != nil {
		return models.User{}, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.users.Create(ctx, models.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Address:      address,
		Role:         role,
	})
}

// Login verifies credentials and returns the user. A missing user and a bad
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return models.User{}, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}
	return u, nil
}

// ChangePassword rotates the caller's own credential after verifying the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(current, u.PasswordHash); err != nil {
		return apperr.New(apperr.KindUnauthorized, "current password is incorrect")
	}
	if err := checkPassword(next); err != nil {
		return err
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// checkPassword enforces the credential contract: 8-64 characters with at
// least one uppercase letter and one special character.
func checkPassword(p string) error {
	if len(p) < 8 || len(p) > 64 {
		return apperr.New(apperr.KindInvalidArgument, "password must be 8-64 characters")
	}
	var upper, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !upper || !special {
		return apperr.New(apperr.KindInvalidArgument, "password needs an uppercase letter and a special character")
	}
	return nil
}
