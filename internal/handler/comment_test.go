package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
)

type MockCommentService struct {
	MockGetComments   func(ctx context.Context, postId domain.PostId, page, limit int) (domain.Paginated[domain.Comment], error)
	MockCreateComment func(ctx context.Context, postId domain.PostId, content string, authorId domain.UserId) (*domain.Comment, error)
	MockUpdateComment func(ctx context.Context, id domain.CommentId, content string, authorId domain.UserId) (*domain.Comment, error)
	MockDeleteComment func(ctx context.Context, id domain.CommentId, authorId domain.UserId) error
}

func (m *MockCommentService) GetComments(ctx context.Context, postId domain.PostId, page, limit int) (domain.Paginated[domain.Comment], error) {
	if m.MockGetComments != nil {
		return m.MockGetComments(ctx, postId, page, limit)
	}
	return domain.Paginated[domain.Comment]{}, nil
}

func (m *MockCommentService) CreateComment(ctx context.Context, postId domain.PostId, content string, authorId domain.UserId) (*domain.Comment, error) {
	if m.MockCreateComment != nil {
		return m.MockCreateComment(ctx, postId, content, authorId)
	}
	return &domain.Comment{PostId: postId, Content: content, AuthorId: authorId}, nil
}

func (m *MockCommentService) UpdateComment(ctx context.Context, id domain.CommentId, content string, authorId domain.UserId) (*domain.Comment, error) {
	if m.MockUpdateComment != nil {
		return m.MockUpdateComment(ctx, id, content, authorId)
	}
	return &domain.Comment{Id: id, Content: content}, nil
}

func (m *MockCommentService) DeleteComment(ctx context.Context, id domain.CommentId, authorId domain.UserId) error {
	if m.MockDeleteComment != nil {
		return m.MockDeleteComment(ctx, id, authorId)
	}
	return nil
}

func newCommentRouter(comment *MockCommentService) *chi.Mux {
	h := New(nil, nil, nil, comment, nil, nil, testConfig())
	r := chi.NewRouter()
	r.Get("/v1/posts/{post}/comments", h.GetComments)
	r.Post("/v1/posts/{post}/comments", h.CreateComment)
	r.Patch("/v1/comments/{comment}", h.UpdateComment)
	r.Delete("/v1/comments/{comment}", h.DeleteComment)
	return r
}

func TestGetCommentsHandler(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		var gotPage, gotLimit int
		router := newCommentRouter(&MockCommentService{
			MockGetComments: func(ctx context.Context, postId domain.PostId, page, limit int) (domain.Paginated[domain.Comment], error) {
				gotPage, gotLimit = page, limit
				return domain.NewPaginated([]domain.Comment{}, 0, page, limit), nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/v1/posts/9/comments", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, gotPage)
		assert.Equal(t, 10, gotLimit)
	})

	t.Run("explicit page and limit", func(t *testing.T) {
		var gotPage, gotLimit int
		router := newCommentRouter(&MockCommentService{
			MockGetComments: func(ctx context.Context, postId domain.PostId, page, limit int) (domain.Paginated[domain.Comment], error) {
				gotPage, gotLimit = page, limit
				return domain.NewPaginated([]domain.Comment{}, 0, page, limit), nil
			},
		})

		req := httptest.NewRequest(http.MethodGet, "/v1/posts/9/comments?page=2&limit=25", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, gotPage)
		assert.Equal(t, 25, gotLimit)
	})
}

func TestCreateCommentHandler(t *testing.T) {
	requestBody := []byte(`{"content": "nice post"}`)

	t.Run("successful request", func(t *testing.T) {
		router := newCommentRouter(&MockCommentService{})

		req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/posts/9/comments", bytes.NewBuffer(requestBody)), 42)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		router := newCommentRouter(&MockCommentService{})

		req := httptest.NewRequest(http.MethodPost, "/v1/posts/9/comments", bytes.NewBuffer(requestBody))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("validation error from service", func(t *testing.T) {
		router := newCommentRouter(&MockCommentService{
			MockCreateComment: func(ctx context.Context, postId domain.PostId, content string, authorId domain.UserId) (*domain.Comment, error) {
				return nil, &internal_errors.ValidationError{Message: "comment exceeds 1000 characters"}
			},
		})

		req := withClaims(httptest.NewRequest(http.MethodPost, "/v1/posts/9/comments", bytes.NewBuffer(requestBody)), 42)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestDeleteCommentHandler_Forbidden(t *testing.T) {
	router := newCommentRouter(&MockCommentService{
		MockDeleteComment: func(ctx context.Context, id domain.CommentId, authorId domain.UserId) error {
			return internal_errors.Forbidden("Only the author can delete this comment")
		},
	})

	req := withClaims(httptest.NewRequest(http.MethodDelete, "/v1/comments/5", nil), 42)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}
