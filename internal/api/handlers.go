package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/octavio/octavio/internal/apperr"
	"github.com/octavio/octavio/internal/index"
	"github.com/octavio/octavio/internal/markup"
	"github.com/octavio/octavio/internal/models"
	"github.com/octavio/octavio/internal/postservice"
)

const maxRenderBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts, newest first
//	@Tags			posts
//	@Produce		json
//	@Param			category	query		string	false	"Filter by category (case-insensitive)"
//	@Success		200			{object}	PostListResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListPosts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		internalError(w, r, "list posts failed", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: items, Total: len(items)})
}

// GetPost handles GET /api/posts/{slug}.
//
//	@Summary		Get a post with its converted body
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Success		200		{object}	PostDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{slug} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.svc.GetPost(r.Context(), slug)
	if err != nil {
		writeLookupError(w, r, "get post failed", slug, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// RelatedPosts handles GET /api/posts/{slug}/related.
//
//	@Summary		List posts related to a post
//	@Tags			posts
//	@Produce		json
//	@Param			slug	path		string	true	"Post slug"
//	@Param			limit	query		int		false	"Max results (default 3)"
//	@Success		200		{object}	RelatedResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{slug}/related [get]
func (h *Handler) RelatedPosts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.svc.Related(r.Context(), slug, limit)
	if err != nil {
		writeLookupError(w, r, "related posts failed", slug, err)
		return
	}
	if items == nil {
		items = []models.PostSummary{}
	}
	writeJSON(w, http.StatusOK, RelatedResponse{Posts: items})
}

// Categories handles GET /api/categories.
//
//	@Summary		List categories with post counts
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	CategoryListResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		internalError(w, r, "categories failed", err)
		return
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: cats})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		internalError(w, r, "search failed", err, slog.String("query", q))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Render handles POST /api/render.
//
//	@Summary		Convert dialect text to blocks and HTML
//	@Tags			render
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenderRequest	true	"Text to convert"
//	@Success		200		{object}	RenderResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRenderBytes)
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	profile := h.svc.Profile()
	if req.Profile != "" {
		p, err := markup.ParseProfile(req.Profile)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("profile must be 'full' or 'basic'"))
			return
		}
		profile = p
	}
	out, err := h.svc.Render(req.Content, profile)
	if err != nil {
		internalError(w, r, "render failed", err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{Profile: profile.String(), Blocks: out.Blocks, HTML: string(out.HTML)})
}

func writeLookupError(w http.ResponseWriter, r *http.Request, op, slug string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	internalError(w, r, op, err, slog.String("slug", slug))
}
