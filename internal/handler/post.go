package handler

import (
	"net/http"

	"github.com/seojin-dev/goboard/internal/domain"
	internal_errors "github.com/seojin-dev/goboard/internal/errors"
	"github.com/seojin-dev/goboard/internal/logger"
	"github.com/seojin-dev/goboard/internal/middleware"
)

type createPostRequest struct {
	Title   string `validate:"required,max=200" json:"title"`
	Content string `validate:"required" json:"content"`
}

type updatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// GetPosts serves three shapes from one route: full listing, paginated
// listing (?page) and search (?q).
func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if q := query.Get("q"); q != "" {
		page, limit, err := h.pageParams(r)
		if err != nil {
			writeErrorAndStatusCode(w, err)
			return
		}
		result, err := h.post.SearchPosts(r.Context(), q, query.Get("type"), page, limit)
		if err != nil {
			writeErrorAndStatusCode(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	if query.Get("page") != "" || query.Get("limit") != "" {
		page, limit, err := h.pageParams(r)
		if err != nil {
			writeErrorAndStatusCode(w, err)
			return
		}
		result, err := h.post.GetPaginatedPosts(r.Context(), page, limit)
		if err != nil {
			writeErrorAndStatusCode(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	posts, err := h.post.GetPostList(r.Context())
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// SearchPosts serves the dedicated search route. A blank query degrades to
// the unfiltered paginated listing.
func (h *Handler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	page, limit, err := h.pageParams(r)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	query := r.URL.Query()
	result, err := h.post.SearchPosts(r.Context(), query.Get("q"), query.Get("type"), page, limit)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RegisterView counts the view explicitly. Deduplication makes it safe to
// call alongside GetPost's implicit registration.
func (h *Handler) RegisterView(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamId(r, "post")
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	ip, err := getIP(r)
	if err != nil {
		writeErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{Message: "Cannot resolve client address", StatusCode: http.StatusBadRequest})
		return
	}

	counted, err := h.views.RegisterView(r.Context(), id, ip, r.UserAgent())
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"counted": counted})
}

// GetPost fetches one post and registers the view. A failed view registration
// never fails the read.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamId(r, "post")
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	post, err := h.post.GetPost(r.Context(), id)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	if ip, ipErr := getIP(r); ipErr == nil {
		counted, viewErr := h.views.RegisterView(r.Context(), id, ip, r.UserAgent())
		if viewErr != nil {
			logger.FromContext(r.Context()).Warn("failed to register view", "post_id", id, "error", viewErr)
		} else if counted {
			// keep the response coherent with the increment that just landed
			post.ViewCount++
		}
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r)
	if claims == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	var body createPostRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	post, err := h.post.CreatePost(r.Context(), domain.PostCreationData{Title: body.Title, Content: body.Content}, claims.Uid)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r)
	if claims == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	id, err := urlParamId(r, "post")
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	var body updatePostRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	post, err := h.post.UpdatePost(r.Context(), id, domain.PostUpdateData{Title: body.Title, Content: body.Content}, claims.Uid)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r)
	if claims == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	id, err := urlParamId(r, "post")
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	if err := h.post.DeletePost(r.Context(), id, claims.Uid); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
