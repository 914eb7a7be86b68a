package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/octavio/octavio/internal/apperr"
)

// Handler serves the HTML pages.
type Handler struct {
	pages  *Pages
	assets *AssetHandler
}

// NewHandler creates a Handler. assets may be nil.
func NewHandler(pages *Pages, assets *AssetHandler) *Handler {
	return &Handler{pages: pages, assets: assets}
}

// Mount registers the page routes on r and installs the 404 page.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/blog/{slug}", h.Post)
	r.Get("/blog/{slug}/", h.Post)
	if h.assets != nil {
		r.Get("/assets/{filename}", h.assets.ServeFile)
	}
	r.NotFound(h.NotFound)
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.pages.Home(r.Context(), &buf); err != nil {
		slog.Error("render home failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// Post handles GET /blog/{slug}.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var buf bytes.Buffer
	if err := h.pages.Post(r.Context(), &buf, slug); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			h.NotFound(w, r)
			return
		}
		slog.Error("render post failed", slog.String("slug", slug), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// NotFound writes the 404 page with status 404.
func (h *Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := h.pages.NotFound(&buf); err != nil {
		slog.Error("render 404 failed", slog.String("error", err.Error()))
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeHTML(w, http.StatusNotFound, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
