package domain

import (
	"fmt"
	"strings"
	"time"
)

// Publication is an admin-managed publication record.
type Publication struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Path        string     `json:"path"`
	Summary     string     `json:"summary,omitempty"`
	Authors     []string   `json:"authors,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PublicationInput is the writable subset of a Publication.
type PublicationInput struct {
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Path        string     `json:"path"`
	Summary     string     `json:"summary,omitempty"`
	Authors     []string   `json:"authors,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Validate requires title, category and path.
func (in *PublicationInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(in.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(in.Path) == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidRequest)
	}
	return nil
}

// SearchResult is one filename match from the publication archive.
type SearchResult struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Path     string `json:"path"`
}
