package handlers

import (
	"net/http"

	"social-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig wires handlers and middleware into the HTTP router
type RouterConfig struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Posts         *PostHandler
	Notifications *NotificationHandler

	// Guard protects every route that needs a session
	Guard          func(http.Handler) http.Handler
	AllowedOrigins []string
}

// NewRouter builds the API router
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", cfg.Auth.Signup)
		r.Post("/auth/login", cfg.Auth.Login)
		r.Post("/auth/logout", cfg.Auth.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.Guard)

			r.Get("/auth/me", cfg.Auth.Me)

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile/{username}", cfg.Users.GetProfile)
				r.Get("/suggested", cfg.Users.Suggested)
				r.Post("/follow/{id}", cfg.Users.Follow)
				r.Post("/update", cfg.Users.Update)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/all", cfg.Posts.All)
				r.Get("/following", cfg.Posts.Following)
				r.Get("/likes/{id}", cfg.Posts.Liked)
				r.Get("/user/{username}", cfg.Posts.ByUser)
				r.Post("/create", cfg.Posts.Create)
				r.Post("/like/{id}", cfg.Posts.Like)
				r.Post("/comment/{id}", cfg.Posts.Comment)
				r.Delete("/{id}", cfg.Posts.Delete)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", cfg.Notifications.List)
				r.Delete("/", cfg.Notifications.DeleteAll)
				r.Delete("/{id}", cfg.Notifications.DeleteOne)
			})
		})
	})

	return r
}
