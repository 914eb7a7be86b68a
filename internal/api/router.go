package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/octavio/octavio/internal/postservice"
)

// RouterConfig controls authentication, rate limiting and the event stream.
type RouterConfig struct {
	AuthEnabled bool
	Token       string
	// RPS and Burst configure per-client rate limiting; RPS <= 0 disables it.
	RPS   float64
	Burst int
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *postservice.Service, cfg RouterConfig) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(RateLimitMiddleware(cfg.RPS, cfg.Burst))
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	// Posts.
	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)
	r.Get("/posts/{slug}/related", h.RelatedPosts)
	r.Get("/categories", h.Categories)

	// Search.
	r.Get("/search", h.Search)

	// Dialect preview.
	r.Post("/render", h.Render)

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
