package domain

// MaxActiveLinks is how many non-expired links may exist at creation time
const MaxActiveLinks = 5

// Snapshot is the full application state as exported or persisted
type Snapshot struct {
	Links      []ShortenedLink            `json:"urls"`
	Statistics map[string]StatisticsEntry `json:"statistics"`
}
