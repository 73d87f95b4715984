package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

const userColumns = ` id, username, email, nickname, pass_hash, created_at`

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.Id, &u.Username, &u.Email, &u.Nickname, &u.PassHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Storage) CreateUser(ctx context.Context, data domain.UserCreationData) (*domain.User, error) {
	var id domain.UserId
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO users(username, email, pass_hash)
	VALUES($1, $2, $3)
	RETURNING id`, data.Username, data.Email, data.PassHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, internal_errors.Conflict("Username or email already taken")
		}
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *Storage) GetUser(ctx context.Context, id domain.UserId) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username domain.Username) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// GetUserByNickname backs the nickname-uniqueness check on profile updates.
func (s *Storage) GetUserByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+userColumns+` FROM users WHERE nickname = $1`, nickname)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *Storage) UpdateProfile(ctx context.Context, id domain.UserId, data domain.ProfileUpdateData) (*domain.User, error) {
	result, err := s.db.ExecContext(ctx, `
	UPDATE users SET
		nickname = COALESCE($2, nickname),
		pass_hash = COALESCE($3, pass_hash)
	WHERE id = $1`, id, data.Nickname, data.PassHash)
	if err != nil {
		return nil, err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if updated == 0 {
		return nil, internal_errors.NotFound("User not found")
	}
	return s.GetUser(ctx, id)
}
