package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/employee-management/api"
	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/internal/transport/middleware"
	"github.com/frahmantamala/employee-management/internal/transport/swagger"
)

type RouterConfig struct {
	AuthHandler     *AuthHandler
	EmployeeHandler *EmployeeHandler
	HealthHandler   *HealthHandler

	Tokens         middleware.TokenValidator
	Sessions       middleware.SessionAuthorizer
	AllowedOrigins string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, cfg RouterConfig) {
	base := transport.NewBaseHandler(cfg.Logger)

	// Apply global middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(base.Logger))
	router.Use(middleware.RecoveryMiddleware(base.Logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get(swagger.DocURL, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec())
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match the OpenAPI server url
	router.Route("/api/v1", func(r chi.Router) {
		if cfg.HealthHandler != nil {
			r.Get("/health", cfg.HealthHandler.healthCheckHandler)
			r.Get("/ping", cfg.HealthHandler.pingHandler)
		}

		requireSession := middleware.RequireSession(cfg.Tokens, cfg.Sessions, base)

		if cfg.AuthHandler != nil {
			r.Route("/auth", func(ar chi.Router) {
				ar.Post("/login", cfg.AuthHandler.Login)
				ar.Get("/session", cfg.AuthHandler.GetSession)
				ar.With(requireSession).Post("/logout", cfg.AuthHandler.Logout)
			})
		}

		if cfg.EmployeeHandler != nil {
			r.Group(func(pr chi.Router) {
				pr.Use(requireSession)

				pr.Route("/employees", func(er chi.Router) {
					er.Get("/", cfg.EmployeeHandler.ListEmployees)
					er.Post("/", cfg.EmployeeHandler.CreateEmployee)
					er.Get("/next-code", cfg.EmployeeHandler.NextEmployeeCode)
					er.Get("/stats", cfg.EmployeeHandler.GetStats)
					er.Get("/{id}", cfg.EmployeeHandler.GetEmployee)
					er.Put("/{id}", cfg.EmployeeHandler.UpdateEmployee)
					er.Delete("/{id}", cfg.EmployeeHandler.DeleteEmployee)
				})
			})
		}
	})
}
