package models

import (
	"time"

	"redirly/internal/entities"
)

// LinkResponse represents a link returned to its owner
type LinkResponse struct {
	*entities.Link
	ShortURL string `json:"short_url"` // Full short URL (base URL + slug)
}

// Destination is where a slug currently resolves to
type Destination struct {
	URL      string `json:"url"`
	Platform string `json:"platform"` // "android", "ios" or "default"
}

// LinkStatusResponse reports whether a link is currently followable
type LinkStatusResponse struct {
	Slug      string     `json:"slug"`
	Active    bool       `json:"active"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}
