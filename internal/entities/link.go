package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Link represents a redirect link owned by a user
type Link struct {
	ID         string     `json:"id"`      // UUID
	UserID     string     `json:"user_id"` // UUID of the owner in the auth provider
	URL        string     `json:"url"`
	Slug       string     `json:"slug"`
	Meta       *LinkMeta  `json:"meta,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"` // nil means active immediately
	EndDate    *time.Time `json:"end_date,omitempty"`   // nil means never expires
	UpdatedAt  time.Time  `json:"updated_at"`
	InsertedAt time.Time  `json:"inserted_at"`
}

// LinkMeta holds per-platform destinations
type LinkMeta struct {
	AndroidURL string `json:"android_url,omitempty"`
	IOSURL     string `json:"ios_url,omitempty"`
}

// ActiveAt reports whether the link may be followed at t.
// The window is [StartDate, EndDate).
func (l *Link) ActiveAt(t time.Time) bool {
	if l.StartDate != nil && t.Before(*l.StartDate) {
		return false
	}
	if l.EndDate != nil && !t.Before(*l.EndDate) {
		return false
	}
	return true
}

// Value stores LinkMeta as JSONB. The JSON is returned as a string since
// lib/pq sends []byte parameters as bytea.
func (m *LinkMeta) Value() (driver.Value, error) {
	if m == nil || (m.AndroidURL == "" && m.IOSURL == "") {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal link meta: %w", err)
	}
	return string(data), nil
}

// Scan reads LinkMeta from a JSONB column
func (m *LinkMeta) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = LinkMeta{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported link meta type %T", src)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("failed to unmarshal link meta: %w", err)
	}
	return nil
}
