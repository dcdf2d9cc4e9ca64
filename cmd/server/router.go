package main

import (
	"net/http"

	"asistencia-backend/internal/config"
	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/handlers"
	"asistencia-backend/internal/middleware"
	"asistencia-backend/internal/sheets"
	"asistencia-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func newRouter(cfg *config.Config, svc *dashboard.Service, wsHub *websocket.Hub, auth *sheets.Authorizer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health(svc))

	// Read-only views
	r.Get("/", handlers.Index(svc, cfg.AuthEnabled()))
	r.Get("/datos", handlers.GetDatos(svc))
	r.Get("/exportar", handlers.ExportReport(svc))
	if cfg.AuthEnabled() {
		r.With(middleware.OptionalAuth(cfg.JWTSecret)).Get("/ws", websocket.HandleWebSocket(wsHub))
	} else {
		r.Get("/ws", websocket.HandleWebSocket(wsHub))
	}

	if auth != nil {
		r.Get("/auth/google", handlers.GoogleAuth(auth))
		r.Get("/auth/google/callback", handlers.GoogleCallback(auth, svc))
	}

	// Mutations; protected when supervisor accounts are configured
	r.Group(func(r chi.Router) {
		if cfg.AuthEnabled() {
			r.Post("/api/auth/login", handlers.Login(cfg.Supervisors, cfg.JWTSecret))
			r.Post("/api/auth/logout", handlers.Logout)
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWTSecret))
				mountActions(r, svc)
			})
			return
		}
		mountActions(r, svc)
	})

	return r
}

func mountActions(r chi.Router, svc *dashboard.Service) {
	r.Post("/entrada", handlers.MarkEntry(svc))
	r.Post("/salida", handlers.MarkExit(svc))
	r.Post("/editar", handlers.EditTime(svc))
	r.Post("/eliminar", handlers.DeleteRecord(svc))
}
