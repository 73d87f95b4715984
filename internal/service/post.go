package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/seojin-dev/goboard/internal/cache"
	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
	"github.com/seojin-dev/goboard/internal/logger"
)

// to mock service in tests
type PostService interface {
	GetPostList(ctx context.Context) ([]domain.Post, error)
	GetPaginatedPosts(ctx context.Context, page, limit int) (domain.Paginated[domain.Post], error)
	GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error)
	SearchPosts(ctx context.Context, query, searchType string, page, limit int) (domain.Paginated[domain.Post], error)
	CreatePost(ctx context.Context, input domain.PostCreationData, authorId domain.UserId) (*domain.Post, error)
	UpdatePost(ctx context.Context, id domain.PostId, input domain.PostUpdateData, authorId domain.UserId) (*domain.Post, error)
	DeletePost(ctx context.Context, id domain.PostId, authorId domain.UserId) error
}

type PostStorage interface {
	CreatePost(ctx context.Context, data domain.PostCreationData, authorId domain.UserId) (*domain.Post, error)
	GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error)
	GetPosts(ctx context.Context) ([]domain.Post, error)
	GetPostsPage(ctx context.Context, filter *domain.PostFilter, skip, take int) ([]domain.Post, error)
	CountPosts(ctx context.Context, filter *domain.PostFilter) (int64, error)
	UpdatePost(ctx context.Context, id domain.PostId, data domain.PostUpdateData) (*domain.Post, error)
	DeletePost(ctx context.Context, id domain.PostId) error
}

type Sanitizer interface {
	Sanitize(html string) string
}

// Post serves post reads through the cache and keeps the cache coherent with
// writes. Reads survive a cache outage (fall back to storage); population
// failures only cost freshness and are swallowed. Invalidation failures abort
// the mutation instead, otherwise a stale entry would outlive the write.
type Post struct {
	storage          PostStorage
	cache            cache.Cache
	titleSanitizer   Sanitizer
	contentSanitizer Sanitizer
}

func NewPost(storage PostStorage, c cache.Cache, titleSanitizer, contentSanitizer Sanitizer) PostService {
	return &Post{storage, c, titleSanitizer, contentSanitizer}
}

func (p *Post) GetPostList(ctx context.Context) ([]domain.Post, error) {
	if data, ok := cacheGet(ctx, p.cache, cache.PostListKey); ok {
		var posts []domain.Post
		if err := json.Unmarshal(data, &posts); err == nil {
			observeCache("post_list", true)
			return posts, nil
		}
		logger.FromContext(ctx).Warn("dropping undecodable cache entry", "key", cache.PostListKey)
	}
	observeCache("post_list", false)

	posts, err := p.storage.GetPosts(ctx)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, p.cache, cache.PostListKey, posts, cache.PostListTTL)
	return posts, nil
}

// GetPaginatedPosts is never cached: page/limit combinations are too many to
// invalidate, and the query itself is cheap. Rows and total are fetched
// concurrently.
func (p *Post) GetPaginatedPosts(ctx context.Context, page, limit int) (domain.Paginated[domain.Post], error) {
	return p.paginate(ctx, nil, page, limit)
}

func (p *Post) paginate(ctx context.Context, filter *domain.PostFilter, page, limit int) (domain.Paginated[domain.Post], error) {
	var zero domain.Paginated[domain.Post]
	if err := validatePage(page, limit); err != nil {
		return zero, err
	}
	skip := (page - 1) * limit

	var (
		posts    []domain.Post
		postsErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		posts, postsErr = p.storage.GetPostsPage(ctx, filter, skip, limit)
	}()
	total, countErr := p.storage.CountPosts(ctx, filter)
	<-done

	if postsErr != nil {
		return zero, postsErr
	}
	if countErr != nil {
		return zero, countErr
	}
	return domain.NewPaginated(posts, total, page, limit), nil
}

func (p *Post) GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	key := cache.PostKey(id)
	if data, ok := cacheGet(ctx, p.cache, key); ok {
		var post domain.Post
		if err := json.Unmarshal(data, &post); err == nil {
			observeCache("post", true)
			return &post, nil
		}
		logger.FromContext(ctx).Warn("dropping undecodable cache entry", "key", key)
	}
	observeCache("post", false)

	post, err := p.storage.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, p.cache, key, post, cache.PostTTL)
	return post, nil
}

// SearchPosts is not cached. A blank query degrades to the unfiltered listing
// rather than erroring on empty search input.
func (p *Post) SearchPosts(ctx context.Context, query, searchType string, page, limit int) (domain.Paginated[domain.Post], error) {
	var filter *domain.PostFilter
	if q := strings.TrimSpace(query); q != "" {
		filter = &domain.PostFilter{Query: q, Type: searchType}
	}
	return p.paginate(ctx, filter, page, limit)
}

func (p *Post) CreatePost(ctx context.Context, input domain.PostCreationData, authorId domain.UserId) (*domain.Post, error) {
	input.Title = p.titleSanitizer.Sanitize(input.Title)
	input.Content = p.contentSanitizer.Sanitize(input.Content)

	// invalidate before the write commits so a concurrent reader can't cache
	// a list snapshot that predates this post
	if err := p.invalidate(ctx, cache.PostListKey); err != nil {
		return nil, err
	}
	return p.storage.CreatePost(ctx, input, authorId)
}

func (p *Post) UpdatePost(ctx context.Context, id domain.PostId, input domain.PostUpdateData, authorId domain.UserId) (*domain.Post, error) {
	post, err := p.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorId != authorId {
		return nil, internal_errors.Forbidden("Only the author can edit this post")
	}

	if input.Title != nil {
		sanitized := p.titleSanitizer.Sanitize(*input.Title)
		input.Title = &sanitized
	}
	if input.Content != nil {
		sanitized := p.contentSanitizer.Sanitize(*input.Content)
		input.Content = &sanitized
	}

	if err := p.invalidate(ctx, cache.PostListKey, cache.PostKey(id)); err != nil {
		return nil, err
	}
	return p.storage.UpdatePost(ctx, id, input)
}

func (p *Post) DeletePost(ctx context.Context, id domain.PostId, authorId domain.UserId) error {
	post, err := p.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorId != authorId {
		return internal_errors.Forbidden("Only the author can delete this post")
	}

	if err := p.invalidate(ctx, cache.PostListKey, cache.PostKey(id)); err != nil {
		return err
	}
	return p.storage.DeletePost(ctx, id)
}

// invalidate removes cache keys ahead of a mutation. Unlike population, a
// failure here must abort the caller: proceeding would leave a stale entry
// alive for its whole TTL.
func (p *Post) invalidate(ctx context.Context, keys ...string) error {
	if err := p.cache.Del(ctx, keys...); err != nil {
		logger.FromContext(ctx).Error("cache invalidation failed, aborting mutation", "keys", keys, "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Cache unavailable", StatusCode: http.StatusServiceUnavailable}
	}
	return nil
}

func validatePage(page, limit int) error {
	if page < 1 || limit < 1 {
		return &internal_errors.ErrorWithStatusCode{
			Message:    fmt.Sprintf("page and limit must be positive, got page=%d limit=%d", page, limit),
			StatusCode: http.StatusBadRequest,
		}
	}
	return nil
}

// cacheGet hides cache transport failures from read paths: an error is logged
// and reported as a miss so the request falls through to storage.
func cacheGet(ctx context.Context, c cache.Cache, key string) ([]byte, bool) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		logger.FromContext(ctx).Warn("cache read failed, falling back to storage", "key", key, "error", err)
		cacheRequestsTotal.WithLabelValues(keyClass(key), "error").Inc()
		return nil, false
	}
	return data, ok
}

// cacheSet populates a key best-effort. Losing the write only costs
// freshness: the next read misses and repopulates.
func cacheSet(ctx context.Context, c cache.Cache, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.FromContext(ctx).Warn("cache payload marshal failed", "key", key, "error", err)
		return
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		logger.FromContext(ctx).Warn("cache write failed", "key", key, "error", err)
	}
}
