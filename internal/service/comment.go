package service

import (
	"context"
	"encoding/json"
	"net/http"
	"unicode/utf8"

	"github.com/seojin-dev/goboard/internal/cache"
	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
	"github.com/seojin-dev/goboard/internal/logger"
)

// invalidatedCommentPages bounds how many cached comment pages a mutation
// clears. The cache has no pattern delete, so keys are enumerated: pages past
// this bound, and pages cached under a non-default limit, stay stale until
// their TTL runs out.
const invalidatedCommentPages = 5

type CommentService interface {
	GetComments(ctx context.Context, postId domain.PostId, page, limit int) (domain.Paginated[domain.Comment], error)
	CreateComment(ctx context.Context, postId domain.PostId, content string, authorId domain.UserId) (*domain.Comment, error)
	UpdateComment(ctx context.Context, id domain.CommentId, content string, authorId domain.UserId) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id domain.CommentId, authorId domain.UserId) error
}

type CommentStorage interface {
	CreateComment(ctx context.Context, postId domain.PostId, content string, authorId domain.UserId) (*domain.Comment, error)
	GetComment(ctx context.Context, id domain.CommentId) (*domain.Comment, error)
	GetCommentsPage(ctx context.Context, postId domain.PostId, skip, take int) ([]domain.Comment, error)
	CountComments(ctx context.Context, postId domain.PostId) (int64, error)
	UpdateComment(ctx context.Context, id domain.CommentId, content string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id domain.CommentId) error
}

type Comment struct {
	storage      CommentStorage
	cache        cache.Cache
	sanitizer    Sanitizer
	defaultLimit int // page size the frontend uses; invalidation enumerates keys at this limit
}

func NewComment(storage CommentStorage, c cache.Cache, sanitizer Sanitizer, defaultLimit int) CommentService {
	return &Comment{storage, c, sanitizer, defaultLimit}
}

type commentPage = domain.Paginated[domain.Comment]

func (c *Comment) GetComments(ctx context.Context, postId domain.PostId, page, limit int) (commentPage, error) {
	var zero commentPage
	if err := validatePage(page, limit); err != nil {
		return zero, err
	}

	key := cache.CommentPageKey(postId, page, limit)
	if data, ok := cacheGet(ctx, c.cache, key); ok {
		var cached commentPage
		if err := json.Unmarshal(data, &cached); err == nil {
			observeCache("comment_page", true)
			return cached, nil
		}
		logger.FromContext(ctx).Warn("dropping undecodable cache entry", "key", key)
	}
	observeCache("comment_page", false)

	skip := (page - 1) * limit
	var (
		comments    []domain.Comment
		commentsErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		comments, commentsErr = c.storage.GetCommentsPage(ctx, postId, skip, limit)
	}()
	total, countErr := c.storage.CountComments(ctx, postId)
	<-done

	if commentsErr != nil {
		return zero, commentsErr
	}
	if countErr != nil {
		return zero, countErr
	}

	result := domain.NewPaginated(comments, total, page, limit)
	cacheSet(ctx, c.cache, key, result, cache.CommentPageTTL)
	return result, nil
}

func (c *Comment) CreateComment(ctx context.Context, postId domain.PostId, content string, authorId domain.UserId) (*domain.Comment, error) {
	content = c.sanitizer.Sanitize(content)
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	if err := c.invalidatePages(ctx, postId); err != nil {
		return nil, err
	}
	return c.storage.CreateComment(ctx, postId, content, authorId)
}

func (c *Comment) UpdateComment(ctx context.Context, id domain.CommentId, content string, authorId domain.UserId) (*domain.Comment, error) {
	comment, err := c.storage.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorId != authorId {
		return nil, internal_errors.Forbidden("Only the author can edit this comment")
	}

	content = c.sanitizer.Sanitize(content)
	if err := validateCommentContent(content); err != nil {
		return nil, err
	}

	if err := c.invalidatePages(ctx, comment.PostId); err != nil {
		return nil, err
	}
	return c.storage.UpdateComment(ctx, id, content)
}

func (c *Comment) DeleteComment(ctx context.Context, id domain.CommentId, authorId domain.UserId) error {
	comment, err := c.storage.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if comment.AuthorId != authorId {
		return internal_errors.Forbidden("Only the author can delete this comment")
	}

	if err := c.invalidatePages(ctx, comment.PostId); err != nil {
		return err
	}
	return c.storage.DeleteComment(ctx, id)
}

// invalidatePages clears the first invalidatedCommentPages pages at the
// default limit for a post. Sequenced before the mutation; a failure aborts it.
func (c *Comment) invalidatePages(ctx context.Context, postId domain.PostId) error {
	keys := make([]string, 0, invalidatedCommentPages)
	for page := 1; page <= invalidatedCommentPages; page++ {
		keys = append(keys, cache.CommentPageKey(postId, page, c.defaultLimit))
	}
	if err := c.cache.Del(ctx, keys...); err != nil {
		logger.FromContext(ctx).Error("cache invalidation failed, aborting mutation", "post_id", postId, "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Cache unavailable", StatusCode: http.StatusServiceUnavailable}
	}
	return nil
}

func validateCommentContent(content string) error {
	if content == "" {
		return &internal_errors.ValidationError{Message: "comment must not be empty"}
	}
	// the limit is characters, not bytes: multibyte scripts must get the
	// full 1000
	if utf8.RuneCountInString(content) > domain.MaxCommentLen {
		return &internal_errors.ValidationError{Message: "comment exceeds 1000 characters"}
	}
	return nil
}
