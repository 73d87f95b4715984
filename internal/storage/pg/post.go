package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
)

const postColumns = `
	p.id, p.title, p.content, p.author_id, p.view_count, p.created_at, p.updated_at,
	u.id, u.username, u.email, u.nickname, u.created_at`

const postFrom = ` FROM posts p JOIN users u ON u.id = p.author_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(
		&p.Id, &p.Title, &p.Content, &p.AuthorId, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.Id, &p.Author.Username, &p.Author.Email, &p.Author.Nickname, &p.Author.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// postFilterClause renders the WHERE clause for a filter and appends its
// arguments. Blank queries produce no clause so listings stay unfiltered.
func postFilterClause(filter *domain.PostFilter, args *[]any) string {
	if filter == nil || filter.Query == "" {
		return ""
	}
	*args = append(*args, filter.Query)
	n := len(*args)
	switch filter.Type {
	case domain.SearchByContent:
		return fmt.Sprintf(" WHERE p.content ILIKE '%%' || $%d || '%%'", n)
	case domain.SearchByAuthor:
		return fmt.Sprintf(" WHERE u.username ILIKE '%%' || $%d || '%%'", n)
	default: // title
		return fmt.Sprintf(" WHERE p.title ILIKE '%%' || $%d || '%%'", n)
	}
}

func (s *Storage) CreatePost(ctx context.Context, data domain.PostCreationData, authorId domain.UserId) (*domain.Post, error) {
	var id domain.PostId
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO posts(title, content, author_id)
	VALUES($1, $2, $3)
	RETURNING id`, data.Title, data.Content, authorId).Scan(&id)
	if err != nil {
		return nil, err
	}
	return s.GetPost(ctx, id)
}

func (s *Storage) GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+postColumns+postFrom+` WHERE p.id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("Post not found")
		}
		return nil, err
	}
	return post, nil
}

// GetPosts returns every post, newest first, with the author joined.
func (s *Storage) GetPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT`+postColumns+postFrom+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func (s *Storage) GetPostsPage(ctx context.Context, filter *domain.PostFilter, skip, take int) ([]domain.Post, error) {
	args := []any{}
	where := postFilterClause(filter, &args)
	args = append(args, take, skip)
	query := fmt.Sprintf(`SELECT%s%s%s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		postColumns, postFrom, where, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func (s *Storage) CountPosts(ctx context.Context, filter *domain.PostFilter) (int64, error) {
	args := []any{}
	where := postFilterClause(filter, &args)

	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+postFrom+where, args...).Scan(&total)
	return total, err
}

func (s *Storage) UpdatePost(ctx context.Context, id domain.PostId, data domain.PostUpdateData) (*domain.Post, error) {
	result, err := s.db.ExecContext(ctx, `
	UPDATE posts SET
		title = COALESCE($2, title),
		content = COALESCE($3, content),
		updated_at = now()
	WHERE id = $1`, id, data.Title, data.Content)
	if err != nil {
		return nil, err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if updated == 0 {
		return nil, internal_errors.NotFound("Post not found")
	}
	return s.GetPost(ctx, id)
}

func (s *Storage) DeletePost(ctx context.Context, id domain.PostId) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return internal_errors.NotFound("Post not found")
	}
	return nil
}

// IncrementPostViewCount bumps the counter atomically on the row itself, so
// concurrent views never lose increments.
func (s *Storage) IncrementPostViewCount(ctx context.Context, id domain.PostId) error {
	result, err := s.db.ExecContext(ctx, `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return internal_errors.NotFound("Post not found")
	}
	return nil
}
