package api

import (
	"github.com/octavio/octavio/internal/index"
	"github.com/octavio/octavio/internal/markup"
	"github.com/octavio/octavio/internal/models"
	"github.com/octavio/octavio/internal/postservice"
)

// PostDetail is the full post response type (aliased from the service layer).
type PostDetail = postservice.PostDetail

// PostListResponse wraps post listings.
type PostListResponse struct {
	Posts []models.PostSummary `json:"posts"`
	Total int                  `json:"total"`
}

// RelatedResponse wraps related post listings.
type RelatedResponse struct {
	Posts []models.PostSummary `json:"posts"`
}

// CategoryListResponse wraps the category list.
type CategoryListResponse struct {
	Categories []models.Category `json:"categories"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// RenderRequest is the request body for previewing dialect text.
type RenderRequest struct {
	Content string `json:"content"`
	Profile string `json:"profile,omitempty"`
}

// RenderResponse is the converted preview.
type RenderResponse struct {
	Profile string         `json:"profile"`
	Blocks  []markup.Block `json:"blocks"`
	HTML    string         `json:"html"`
}
