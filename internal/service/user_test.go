package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
)

// MockUserStorage mocks the UserStorage interface.
type MockUserStorage struct {
	getUserFunc           func(id domain.UserId) (*domain.User, error)
	getUserByNicknameFunc func(nickname string) (*domain.User, error)
	updateProfileFunc     func(id domain.UserId, data domain.ProfileUpdateData) (*domain.User, error)

	updateCalls int
}

func (m *MockUserStorage) GetUser(_ context.Context, id domain.UserId) (*domain.User, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(id)
	}
	return &domain.User{Id: id}, nil
}

func (m *MockUserStorage) GetUserByNickname(_ context.Context, nickname string) (*domain.User, error) {
	if m.getUserByNicknameFunc != nil {
		return m.getUserByNicknameFunc(nickname)
	}
	return nil, internal_errors.NotFound("User not found")
}

func (m *MockUserStorage) UpdateProfile(_ context.Context, id domain.UserId, data domain.ProfileUpdateData) (*domain.User, error) {
	m.updateCalls++
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(id, data)
	}
	u := &domain.User{Id: id}
	if data.Nickname != nil {
		u.Nickname = *data.Nickname
	}
	return u, nil
}

func strPtr(s string) *string { return &s }

func TestUpdateProfile_Nickname(t *testing.T) {
	var captured domain.ProfileUpdateData
	storage := &MockUserStorage{
		updateProfileFunc: func(id domain.UserId, data domain.ProfileUpdateData) (*domain.User, error) {
			captured = data
			return &domain.User{Id: id, Nickname: *data.Nickname}, nil
		},
	}
	s := NewUser(storage)

	user, err := s.UpdateProfile(context.Background(), 1, strPtr("gopher"), nil)
	require.NoError(t, err)
	assert.Equal(t, "gopher", user.Nickname)
	require.NotNil(t, captured.Nickname)
	assert.Nil(t, captured.PassHash, "password untouched when not supplied")
}

func TestUpdateProfile_NicknameTakenByAnotherUser(t *testing.T) {
	storage := &MockUserStorage{
		getUserByNicknameFunc: func(nickname string) (*domain.User, error) {
			return &domain.User{Id: 2, Nickname: nickname}, nil
		},
	}
	s := NewUser(storage)

	_, err := s.UpdateProfile(context.Background(), 1, strPtr("gopher"), nil)
	require.Error(t, err)
	assert.True(t, internal_errors.IsStatus(err, 409))
	assert.Equal(t, 0, storage.updateCalls)
}

func TestUpdateProfile_KeepingOwnNicknameIsNotAConflict(t *testing.T) {
	storage := &MockUserStorage{
		getUserByNicknameFunc: func(nickname string) (*domain.User, error) {
			return &domain.User{Id: 1, Nickname: nickname}, nil
		},
	}
	s := NewUser(storage)

	_, err := s.UpdateProfile(context.Background(), 1, strPtr("gopher"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, storage.updateCalls)
}

func TestUpdateProfile_RehashesPassword(t *testing.T) {
	var captured domain.ProfileUpdateData
	storage := &MockUserStorage{
		updateProfileFunc: func(id domain.UserId, data domain.ProfileUpdateData) (*domain.User, error) {
			captured = data
			return &domain.User{Id: id}, nil
		},
	}
	s := NewUser(storage)

	_, err := s.UpdateProfile(context.Background(), 1, nil, strPtr("newpass99"))
	require.NoError(t, err)
	require.NotNil(t, captured.PassHash)
	assert.NotEqual(t, "newpass99", *captured.PassHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*captured.PassHash), []byte("newpass99")))
}

func TestUpdateProfile_EmptyFieldsLeaveProfileUnchanged(t *testing.T) {
	var captured domain.ProfileUpdateData
	storage := &MockUserStorage{
		updateProfileFunc: func(id domain.UserId, data domain.ProfileUpdateData) (*domain.User, error) {
			captured = data
			return &domain.User{Id: id}, nil
		},
	}
	s := NewUser(storage)

	_, err := s.UpdateProfile(context.Background(), 1, strPtr(""), strPtr(""))
	require.NoError(t, err)
	assert.Nil(t, captured.Nickname)
	assert.Nil(t, captured.PassHash)
}
