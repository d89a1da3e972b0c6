package ports

import (
	"context"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
)

// Keys under which the whole application state is persisted
const (
	KeyLinks      = "urls"
	KeyStatistics = "statistics"
)

// KeyValueStore is the string-valued persistence collaborator.
// Get returns ok=false when the key was never written.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Telemetry receives log events. Record must not block and must not fail the caller.
type Telemetry interface {
	Record(event domain.LogEvent)
}

// Locator is an optional best-effort geolocation capability used when recording clicks
type Locator interface {
	Locate(ctx context.Context, visit domain.Visit) (string, error)
}

// CodeGenerator mints a short code absent from existing
type CodeGenerator interface {
	Generate(existing map[string]struct{}) (string, error)
}

// LinkService defines the application operations exposed to adapters
type LinkService interface {
	Shorten(ctx context.Context, in domain.CreateLinkInput) (*domain.ShortenedLink, error)
	DeleteLink(ctx context.Context, id string) bool
	ListLinks(ctx context.Context) []domain.ShortenedLink
	Resolve(ctx context.Context, shortCode string, visit domain.Visit) domain.Resolution

	// Stats
	GetLinkStats(ctx context.Context, shortCode string) ([]domain.ClickRecord, domain.ClickSummary)
	GetDashboard(ctx context.Context) domain.Dashboard
	IsExpired(link domain.ShortenedLink) bool
}
