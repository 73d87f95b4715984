package pg

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
)

const commentColumns = `
	c.id, c.post_id, c.author_id, c.content, c.created_at, c.updated_at,
	u.id, u.username, u.email, u.nickname, u.created_at`

const commentFrom = ` FROM comments c JOIN users u ON u.id = c.author_id`

func scanComment(row rowScanner) (*domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(
		&c.Id, &c.PostId, &c.AuthorId, &c.Content, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.Id, &c.Author.Username, &c.Author.Email, &c.Author.Nickname, &c.Author.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Storage) CreateComment(ctx context.Context, postId domain.PostId, content string, authorId domain.UserId) (*domain.Comment, error) {
	var id domain.CommentId
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO comments(post_id, author_id, content)
	VALUES($1, $2, $3)
	RETURNING id`, postId, authorId, content).Scan(&id)
	if err != nil {
		return nil, err
	}
	return s.GetComment(ctx, id)
}

func (s *Storage) GetComment(ctx context.Context, id domain.CommentId) (*domain.Comment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+commentColumns+commentFrom+` WHERE c.id = $1`, id)
	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("Comment not found")
		}
		return nil, err
	}
	return comment, nil
}

func (s *Storage) GetCommentsPage(ctx context.Context, postId domain.PostId, skip, take int) ([]domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT`+commentColumns+commentFrom+`
	WHERE c.post_id = $1
	ORDER BY c.created_at DESC
	LIMIT $2 OFFSET $3`, postId, take, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

func (s *Storage) CountComments(ctx context.Context, postId domain.PostId) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postId).Scan(&total)
	return total, err
}

func (s *Storage) UpdateComment(ctx context.Context, id domain.CommentId, content string) (*domain.Comment, error) {
	result, err := s.db.ExecContext(ctx, `
	UPDATE comments SET
		content = $2,
		updated_at = now()
	WHERE id = $1`, id, content)
	if err != nil {
		return nil, err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if updated == 0 {
		return nil, internal_errors.NotFound("Comment not found")
	}
	return s.GetComment(ctx, id)
}

func (s *Storage) DeleteComment(ctx context.Context, id domain.CommentId) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return internal_errors.NotFound("Comment not found")
	}
	return nil
}
