package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seojin-dev/goboard/internal/middleware"
	"github.com/seojin-dev/goboard/internal/middleware/metrics"
	"github.com/seojin-dev/goboard/internal/setup"
)

// New wires all routes. Reads are public; everything that writes goes through
// the auth middleware.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestId)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.With(authMw.NeedAuth()).Get("/me", h.Me)
		})

		r.Get("/posts", h.GetPosts)
		r.Get("/posts/search", h.SearchPosts)
		r.Get("/posts/{post}", h.GetPost)
		r.Post("/posts/{post}/view", h.RegisterView)
		r.Get("/posts/{post}/comments", h.GetComments)
		r.Get("/users/{user}", h.GetUser)

		r.Group(func(r chi.Router) {
			r.Use(authMw.NeedAuth())

			r.Post("/posts", h.CreatePost)
			r.Patch("/posts/{post}", h.UpdatePost)
			r.Delete("/posts/{post}", h.DeletePost)

			r.Post("/posts/{post}/comments", h.CreateComment)
			r.Patch("/comments/{comment}", h.UpdateComment)
			r.Delete("/comments/{comment}", h.DeleteComment)

			r.Patch("/profile", h.UpdateProfile)
		})
	})

	return r
}
