package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/seojin-dev/goboard/internal/config"
	"github.com/seojin-dev/goboard/internal/logger"
	"github.com/seojin-dev/goboard/internal/service"
)

type Handler struct {
	auth    service.AuthService
	user    service.UserService
	post    service.PostService
	comment service.CommentService
	views   *service.ViewTracker
	health  Pinger
	cfg     *config.Config
}

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func New(auth service.AuthService, user service.UserService, post service.PostService, comment service.CommentService, views *service.ViewTracker, health Pinger, cfg *config.Config) *Handler {
	return &Handler{auth, user, post, comment, views, health, cfg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}
