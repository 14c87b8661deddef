// Package handler wires the HTTP surface: template listing and generation,
// GitHub repository creation, and the OAuth login flow.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"template-api/internal/auth"
	"template-api/internal/config"
	"template-api/internal/ratelimit"
	"template-api/internal/registry"
)

// Handler holds the long-lived dependencies shared by all endpoints.
type Handler struct {
	cfg      *config.Config
	registry *registry.Registry
	auth     *auth.Manager
	limiter  *ratelimit.Limiter
}

func New(cfg *config.Config, reg *registry.Registry, am *auth.Manager) *Handler {
	return &Handler{
		cfg:      cfg,
		registry: reg,
		auth:     am,
		limiter:  ratelimit.New(cfg.RateLimitPerHour),
	}
}

// Routes builds the router with middleware and all endpoints mounted.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", h.Root)
	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/{name}/config", h.TemplateConfig)

	r.Group(func(r chi.Router) {
		r.Use(h.limiter.Middleware)
		r.Get("/generate", h.GenerateQuery)
		r.Post("/generate", h.GenerateJSON)
		r.Post("/templates/{name}/github", h.GenerateToGitHub)
	})

	r.Post("/gh-repo-create", h.CreateRepo)

	r.Get("/auth/github/login", h.Login)
	r.Get("/auth/github/callback", h.Callback)
	r.Get("/auth/github/me", h.Me)
	r.Post("/auth/logout", h.Logout)

	return r
}

// Root serves service metadata so clients can discover the API.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    h.cfg.AppName,
		"version": h.cfg.AppVersion,
		"status":  "ok",
		"endpoints": map[string]string{
			"templates":       "/templates",
			"template_config": "/templates/{name}/config",
			"generate":        "/generate",
			"github_generate": "/templates/{name}/github",
			"github_repo":     "/gh-repo-create",
			"login":           "/auth/github/login",
			"me":              "/auth/github/me",
		},
	})
}
