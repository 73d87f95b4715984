package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
	"github.com/seojin-dev/goboard/internal/jwt"
	"github.com/seojin-dev/goboard/internal/logger"
)

type AuthService interface {
	Register(ctx context.Context, username domain.Username, email domain.Email, password domain.Password) (*domain.User, error)
	Login(ctx context.Context, username domain.Username, password domain.Password) (string, *domain.User, error)
}

type AuthStorage interface {
	CreateUser(ctx context.Context, data domain.UserCreationData) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username domain.Username) (*domain.User, error)
}

type Auth struct {
	storage AuthStorage
	jwt     jwt.JwtService
}

func NewAuth(storage AuthStorage, jwtService jwt.JwtService) AuthService {
	return &Auth{storage, jwtService}
}

// Register creates the account. Duplicate username/email surfaces as 409 from
// the storage's uniqueness constraints, so there is no check-then-insert race.
func (a *Auth) Register(ctx context.Context, username domain.Username, email domain.Email, password domain.Password) (*domain.User, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return nil, err
	}

	return a.storage.CreateUser(ctx, domain.UserCreationData{
		Username: username,
		Email:    email,
		PassHash: string(passHash),
	})
}

// Login deliberately returns the same message for a missing user and a wrong
// password.
func (a *Auth) Login(ctx context.Context, username domain.Username, password domain.Password) (string, *domain.User, error) {
	user, err := a.storage.GetUserByUsername(ctx, username)
	if err != nil {
		if internal_errors.IsStatus(err, 404) {
			return "", nil, internal_errors.Unauthorized("Invalid username or password")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)); err != nil {
		return "", nil, internal_errors.Unauthorized("Invalid username or password")
	}

	token, err := a.jwt.NewToken(*user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
