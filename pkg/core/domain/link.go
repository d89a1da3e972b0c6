package domain

import "time"

// DefaultValidityMinutes is applied when a link is created without a positive validity
const DefaultValidityMinutes = 30

// ShortenedLink represents a shortened URL
type ShortenedLink struct {
	ID              string    `json:"id"`
	OriginalURL     string    `json:"original_url"`
	ShortCode       string    `json:"short_code"`
	CreatedAt       time.Time `json:"created_at"`
	ValidityMinutes int       `json:"validity_minutes"`
}

// ExpiresAt is derived from CreatedAt and ValidityMinutes, it is never stored
func (l ShortenedLink) ExpiresAt() time.Time {
	return ExpiryOf(l.CreatedAt, l.ValidityMinutes)
}

// IsExpired reports whether the link is past its expiry instant at now
func (l ShortenedLink) IsExpired(now time.Time) bool {
	return IsExpired(l.CreatedAt, l.ValidityMinutes, now)
}

// CreateLinkInput is what a caller submits to the registry.
// Empty CustomCode means "generate one"; non-positive ValidityMinutes means default.
type CreateLinkInput struct {
	OriginalURL     string
	CustomCode      string
	ValidityMinutes int
}

// Dashboard holds the aggregate counters shown on the statistics page
type Dashboard struct {
	TotalLinks     int `json:"total_links"`
	ActiveLinks    int `json:"active_links"`
	ExpiredLinks   int `json:"expired_links"`
	TotalClicks    int `json:"total_clicks"`
	MaxActiveLinks int `json:"max_active_links"`
}
