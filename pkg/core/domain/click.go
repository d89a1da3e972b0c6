package domain

import "time"

const (
	// DirectSource is recorded when a visit carries no referrer
	DirectSource = "Direct"
	// UnknownLocation is recorded when no location could be determined
	UnknownLocation = "Unknown"
)

// ClickRecord represents one resolved visit to a short link
type ClickRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Location  string    `json:"location"`
	UserAgent string    `json:"user_agent"`
}

// StatisticsEntry is the ordered click log of a single short code
type StatisticsEntry struct {
	Clicks []ClickRecord `json:"clicks"`
}

// ClickSummary is derived from a StatisticsEntry, never stored
type ClickSummary struct {
	ShortCode   string     `json:"short_code"`
	TotalClicks int        `json:"total_clicks"`
	FirstClick  *time.Time `json:"first_click,omitempty"`
	LastClick   *time.Time `json:"last_click,omitempty"`
}

// Visit carries what the caller knows about the request being resolved
type Visit struct {
	Referrer   string
	UserAgent  string
	RemoteAddr string
	Headers    map[string]string
}
