package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lvidal/tasklist-be/internal/api/handlers"
	"github.com/lvidal/tasklist-be/internal/auth"
	"github.com/lvidal/tasklist-be/internal/monitoring"
	"github.com/lvidal/tasklist-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	authSvc *auth.Service,
	userService services.UserServiceProvider,
	todoService services.TodoServiceProvider,
	stats *monitoring.StatReporter,
	frontendOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for the browser frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc, userService)
	todoHandler := handlers.NewTodoHandler(todoService)
	healthHandler := handlers.NewHealthHandler(stats)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", healthHandler.Get)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.With(authSvc.Middleware).Get("/me", authHandler.GetMe)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Use(authSvc.Middleware)
			r.Get("/", todoHandler.List)
			r.Post("/", todoHandler.Create)
			r.Post("/{id}/toggle", todoHandler.Toggle)
			r.Delete("/{id}", todoHandler.Delete)
		})
	})

	return r
}
