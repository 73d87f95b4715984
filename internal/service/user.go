package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
)

type UserService interface {
	GetUser(ctx context.Context, id domain.UserId) (*domain.User, error)
	UpdateProfile(ctx context.Context, id domain.UserId, nickname, password *string) (*domain.User, error)
}

type UserStorage interface {
	GetUser(ctx context.Context, id domain.UserId) (*domain.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id domain.UserId, data domain.ProfileUpdateData) (*domain.User, error)
}

type User struct {
	storage UserStorage
}

func NewUser(storage UserStorage) UserService {
	return &User{storage}
}

func (u *User) GetUser(ctx context.Context, id domain.UserId) (*domain.User, error) {
	return u.storage.GetUser(ctx, id)
}

func (u *User) UpdateProfile(ctx context.Context, id domain.UserId, nickname, password *string) (*domain.User, error) {
	data := domain.ProfileUpdateData{}

	if nickname != nil && *nickname != "" {
		existing, err := u.storage.GetUserByNickname(ctx, *nickname)
		if err != nil && !internal_errors.IsStatus(err, 404) {
			return nil, err
		}
		if existing != nil && existing.Id != id {
			return nil, internal_errors.Conflict("Nickname already taken")
		}
		data.Nickname = nickname
	}

	if password != nil && *password != "" {
		passHash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hash := string(passHash)
		data.PassHash = &hash
	}

	return u.storage.UpdateProfile(ctx, id, data)
}
