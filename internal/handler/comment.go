package handler

import (
	"net/http"

	"github.com/seojin-dev/goboard/internal/middleware"
)

type commentRequest struct {
	Content string `validate:"required" json:"content"`
}

func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	postId, err := urlParamId(r, "post")
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}
	page, limit, err := h.pageParams(r)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	comments, err := h.comment.GetComments(r.Context(), postId, page, limit)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r)
	if claims == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	postId, err := urlParamId(r, "post")
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	var body commentRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	comment, err := h.comment.CreateComment(r.Context(), postId, body.Content, claims.Uid)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r)
	if claims == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	id, err := urlParamId(r, "comment")
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	var body commentRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	comment, err := h.comment.UpdateComment(r.Context(), id, body.Content, claims.Uid)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r)
	if claims == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	id, err := urlParamId(r, "comment")
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	if err := h.comment.DeleteComment(r.Context(), id, claims.Uid); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
