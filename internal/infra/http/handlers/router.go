package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/xavierca1/visa-leads/internal/infra/http/middleware"
)

type RouterConfig struct {
	Leads      *LeadHandler
	Validation *ValidationHandler
	Health     *HealthHandler
	// Auth and Authenticator are nil when admin auth is disabled.
	Auth           *AuthHandler
	Authenticator  middleware.Authenticator
	AllowedOrigins []string
	Log            zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	if cfg.Auth != nil {
		r.Post("/auth/login", cfg.Auth.HandleLogin)
	}

	r.Route("/leads", func(r chi.Router) {
		r.Post("/", cfg.Leads.HandleCreate)
		r.Post("/validate", cfg.Validation.Handle)

		r.Group(func(r chi.Router) {
			if cfg.Authenticator != nil {
				r.Use(middleware.RequireAdmin(cfg.Authenticator))
			}
			r.Get("/", cfg.Leads.HandleList)
			r.Get("/view", cfg.Leads.HandleView)
			r.Get("/{id}", cfg.Leads.HandleGet)
			r.Patch("/{id}", cfg.Leads.HandleUpdateStatus)
		})
	})

	return r
}
