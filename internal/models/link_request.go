package models

import "time"

// LinkRequest represents the request body for creating or replacing a link
type LinkRequest struct {
	URL       string           `json:"url" binding:"required" validate:"required,http_url,max=2048"`
	Slug      *string          `json:"slug,omitempty"` // Optional custom slug, generated when empty
	Meta      *LinkMetaRequest `json:"meta,omitempty"`
	StartDate *time.Time       `json:"start_date,omitempty"`
	EndDate   *time.Time       `json:"end_date,omitempty"`
}

// LinkMetaRequest holds optional per-platform destinations
type LinkMetaRequest struct {
	AndroidURL string `json:"android_url,omitempty" validate:"omitempty,http_url,max=2048"`
	IOSURL     string `json:"ios_url,omitempty" validate:"omitempty,http_url,max=2048"`
}
