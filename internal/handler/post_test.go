package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seojin-dev/goboard/internal/cache/memory"
	"github.com/seojin-dev/goboard/internal/config"
	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
	"github.com/seojin-dev/goboard/internal/jwt"
	"github.com/seojin-dev/goboard/internal/middleware"
	"github.com/seojin-dev/goboard/internal/service"
)

type MockPostService struct {
	MockGetPostList       func(ctx context.Context) ([]domain.Post, error)
	MockGetPaginatedPosts func(ctx context.Context, page, limit int) (domain.Paginated[domain.Post], error)
	MockGetPost           func(ctx context.Context, id domain.PostId) (*domain.Post, error)
	MockSearchPosts       func(ctx context.Context, query, searchType string, page, limit int) (domain.Paginated[domain.Post], error)
	MockCreatePost        func(ctx context.Context, input domain.PostCreationData, authorId domain.UserId) (*domain.Post, error)
	MockUpdatePost        func(ctx context.Context, id domain.PostId, input domain.PostUpdateData, authorId domain.UserId) (*domain.Post, error)
	MockDeletePost        func(ctx context.Context, id domain.PostId, authorId domain.UserId) error
}

func (m *MockPostService) GetPostList(ctx context.Context) ([]domain.Post, error) {
	if m.MockGetPostList != nil {
		return m.MockGetPostList(ctx)
	}
	return []domain.Post{}, nil
}

func (m *MockPostService) GetPaginatedPosts(ctx context.Context, page, limit int) (domain.Paginated[domain.Post], error) {
	if m.MockGetPaginatedPosts != nil {
		return m.MockGetPaginatedPosts(ctx, page, limit)
	}
	return domain.Paginated[domain.Post]{}, nil
}

func (m *MockPostService) GetPost(ctx context.Context, id domain.PostId) (*domain.Post, error) {
	if m.MockGetPost != nil {
		return m.MockGetPost(ctx, id)
	}
	return &domain.Post{Id: id}, nil
}

func (m *MockPostService) SearchPosts(ctx context.Context, query, searchType string, page, limit int) (domain.Paginated[domain.Post], error) {
	if m.MockSearchPosts != nil {
		return m.MockSearchPosts(ctx, query, searchType, page, limit)
	}
	return domain.Paginated[domain.Post]{}, nil
}

func (m *MockPostService) CreatePost(ctx context.Context, input domain.PostCreationData, authorId domain.UserId) (*domain.Post, error) {
	if m.MockCreatePost != nil {
		return m.MockCreatePost(ctx, input, authorId)
	}
	return &domain.Post{Title: input.Title, Content: input.Content, AuthorId: authorId}, nil
}

func (m *MockPostService) UpdatePost(ctx context.Context, id domain.PostId, input domain.PostUpdateData, authorId domain.UserId) (*domain.Post, error) {
	if m.MockUpdatePost != nil {
		return m.MockUpdatePost(ctx, id, input, authorId)
	}
	return &domain.Post{Id: id}, nil
}

func (m *MockPostService) DeletePost(ctx context.Context, id domain.PostId, authorId domain.UserId) error {
	if m.MockDeletePost != nil {
		return m.MockDeletePost(ctx, id, authorId)
	}
	return nil
}

type stubViewStorage struct {
	increments int
}

func (s *stubViewStorage) IncrementPostViewCount(_ context.Context, _ domain.PostId) error {
	s.increments++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{Public: config.Public{PostsPerPage: 10, JwtTTL: time.Hour}}
}

func newTestHandler(post service.PostService) (*Handler, *stubViewStorage) {
	views := &stubViewStorage{}
	tracker := service.NewViewTracker(views, memory.New(), nil)
	h := New(nil, nil, post, nil, tracker, nil, testConfig())
	return h, views
}

func newPostRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/v1/posts", h.GetPosts)
	r.Get("/v1/posts/search", h.SearchPosts)
	r.Get("/v1/posts/{post}", h.GetPost)
	r.Post("/v1/posts/{post}/view", h.RegisterView)
	r.Post("/v1/posts", h.CreatePost)
	return r
}

// withClaims emulates what the auth middleware puts into the context.
func withClaims(r *http.Request, uid domain.UserId) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserClaimsKey, &jwt.Claims{Uid: uid, Username: "alice"})
	return r.WithContext(ctx)
}

func TestGetPostHandler(t *testing.T) {
	t.Run("successful read registers a view", func(t *testing.T) {
		mockService := &MockPostService{
			MockGetPost: func(ctx context.Context, id domain.PostId) (*domain.Post, error) {
				return &domain.Post{Id: id, Title: "Hello", ViewCount: 3}, nil
			},
		}
		h, views := newTestHandler(mockService)
		router := newPostRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/v1/posts/7", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		req.Header.Set("User-Agent", "test-agent")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, views.increments)

		var post domain.Post
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &post))
		assert.EqualValues(t, 4, post.ViewCount, "response reflects the increment")
	})

	t.Run("repeat read within the window is not counted again", func(t *testing.T) {
		h, views := newTestHandler(&MockPostService{})
		router := newPostRouter(h)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodGet, "/v1/posts/7", nil)
			req.RemoteAddr = "203.0.113.7:1234"
			req.Header.Set("User-Agent", "test-agent")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			require.Equal(t, http.StatusOK, rr.Code)
		}

		assert.Equal(t, 1, views.increments)
	})

	t.Run("not found", func(t *testing.T) {
		mockService := &MockPostService{
			MockGetPost: func(ctx context.Context, id domain.PostId) (*domain.Post, error) {
				return nil, internal_errors.NotFound("Post not found")
			},
		}
		h, views := newTestHandler(mockService)
		router := newPostRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/v1/posts/404", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, 0, views.increments, "missing posts never count views")
	})

	t.Run("non-numeric id", func(t *testing.T) {
		h, _ := newTestHandler(&MockPostService{})
		router := newPostRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/v1/posts/abc", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetPostsHandler(t *testing.T) {
	t.Run("plain listing", func(t *testing.T) {
		mockService := &MockPostService{
			MockGetPostList: func(ctx context.Context) ([]domain.Post, error) {
				return []domain.Post{{Id: 1}, {Id: 2}}, nil
			},
		}
		h, _ := newTestHandler(mockService)
		router := newPostRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var posts []domain.Post
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &posts))
		assert.Len(t, posts, 2)
	})

	t.Run("page param routes to pagination with configured limit", func(t *testing.T) {
		var gotPage, gotLimit int
		mockService := &MockPostService{
			MockGetPaginatedPosts: func(ctx context.Context, page, limit int) (domain.Paginated[domain.Post], error) {
				gotPage, gotLimit = page, limit
				return domain.NewPaginated([]domain.Post{}, 0, page, limit), nil
			},
		}
		h, _ := newTestHandler(mockService)
		router := newPostRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/v1/posts?page=3", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 3, gotPage)
		assert.Equal(t, 10, gotLimit)
	})

	t.Run("search params route to search", func(t *testing.T) {
		var gotQuery, gotType string
		mockService := &MockPostService{
			MockSearchPosts: func(ctx context.Context, query, searchType string, page, limit int) (domain.Paginated[domain.Post], error) {
				gotQuery, gotType = query, searchType
				return domain.Paginated[domain.Post]{}, nil
			},
		}
		h, _ := newTestHandler(mockService)
		router := newPostRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/v1/posts?q=golang&type=title", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "golang", gotQuery)
		assert.Equal(t, "title", gotType)
	})

	t.Run("invalid page param", func(t *testing.T) {
		h, _ := newTestHandler(&MockPostService{})
		router := newPostRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/v1/posts?page=x", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRegisterViewHandler(t *testing.T) {
	t.Run("first view counted, repeat deduplicated", func(t *testing.T) {
		h, views := newTestHandler(&MockPostService{})
		router := newPostRouter(h)

		expected := []bool{true, false}
		for _, want := range expected {
			req := httptest.NewRequest(http.MethodPost, "/v1/posts/7/view", nil)
			req.RemoteAddr = "203.0.113.7:1234"
			req.Header.Set("User-Agent", "test-agent")
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			var resp map[string]bool
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, want, resp["counted"])
		}
		assert.Equal(t, 1, views.increments)
	})

}

func TestSearchPostsHandler(t *testing.T) {
	t.Run("blank query falls back to listing", func(t *testing.T) {
		var gotQuery string
		called := false
		mockService := &MockPostService{
			MockSearchPosts: func(ctx context.Context, query, searchType string, page, limit int) (domain.Paginated[domain.Post], error) {
				called = true
				gotQuery = query
				return domain.Paginated[domain.Post]{}, nil
			},
		}
		h, _ := newTestHandler(mockService)
		router := newPostRouter(h)

		req := httptest.NewRequest(http.MethodGet, "/v1/posts/search", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, called)
		assert.Empty(t, gotQuery)
	})
}

func TestCreatePostHandler(t *testing.T) {
	requestBody := []byte(`{"title": "Hello", "content": "World"}`)

	t.Run("successful request", func(t *testing.T) {
		var gotAuthor domain.UserId
		mockService := &MockPostService{
			MockCreatePost: func(ctx context.Context, input domain.PostCreationData, authorId domain.UserId) (*domain.Post, error) {
				gotAuthor = authorId
				return &domain.Post{Id: 1, Title: input.Title, Content: input.Content, AuthorId: authorId}, nil
			},
		}
		h, _ := newTestHandler(mockService)
		router := newPostRouter(h)

		req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/posts", bytes.NewBuffer(requestBody)), 42)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.EqualValues(t, 42, gotAuthor)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		h, _ := newTestHandler(&MockPostService{})
		router := newPostRouter(h)

		req := httptest.NewRequest(http.MethodPost, "/v1/posts", bytes.NewBuffer(requestBody))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("invalid request body", func(t *testing.T) {
		h, _ := newTestHandler(&MockPostService{})
		router := newPostRouter(h)

		req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/posts", bytes.NewBuffer([]byte(`{invalid json::}`))), 42)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		h, _ := newTestHandler(&MockPostService{})
		router := newPostRouter(h)

		req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/posts", bytes.NewBuffer([]byte(`{"content": "no title"}`))), 42)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
