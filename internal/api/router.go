package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/blog-be/internal/api/handlers"
	"github.com/isdelr/blog-be/internal/auth"
	"github.com/isdelr/blog-be/internal/logger"
	"github.com/isdelr/blog-be/internal/models"
	"github.com/isdelr/blog-be/internal/services"
)

// Services bundles what the router needs to build its handlers.
type Services struct {
	Users      services.UserServiceProvider
	Posts      services.PostServiceProvider
	Categories services.CategoryServiceProvider
	Events     services.EventServiceProvider
	Tokens     handlers.TokenIssuer
	Auth       *auth.Authenticator
}

// NewRouter creates and configures a new Chi router.
func NewRouter(allowedOrigins []string, svc Services) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Tokens, svc.Events)
	postHandler := handlers.NewPostHandler(svc.Posts, svc.Events)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	eventHandler := handlers.NewEventHandler(svc.Events)

	adminOnly := auth.RequireRole(models.RoleAdmin)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.With(svc.Auth.Middleware).Get("/me", authHandler.Me)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.GetAll)
			r.Get("/{id}", categoryHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(svc.Auth.Middleware, adminOnly)
				r.Post("/", categoryHandler.Create)
				r.Put("/{id}", categoryHandler.Update)
				r.Delete("/{id}", categoryHandler.Delete)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.With(svc.Auth.Optional).Get("/", postHandler.GetAll)
			r.With(svc.Auth.Optional).Get("/{id}", postHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(svc.Auth.Middleware)
				r.Post("/", postHandler.Create)
				r.Put("/{id}", postHandler.Update)
				r.With(adminOnly).Delete("/{id}", postHandler.Delete)
			})
		})

		r.With(svc.Auth.Middleware, adminOnly).Get("/events", eventHandler.GetRecent)
	})

	return r
}
