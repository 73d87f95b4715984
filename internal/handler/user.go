package handler

import (
	"net/http"

	"github.com/seojin-dev/goboard/internal/middleware"
)

type updateProfileRequest struct {
	Nickname *string `validate:"omitempty,max=32" json:"nickname"`
	Password *string `validate:"omitempty,min=8" json:"password"`
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamId(r, "user")
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	user, err := h.user.GetUser(r.Context(), id)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile edits the authenticated user's own profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r)
	if claims == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	var body updateProfileRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	user, err := h.user.UpdateProfile(r.Context(), claims.Uid, body.Nickname, body.Password)
	if err != nil {
		writeErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
