package services

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

// DefaultResolveGrace is how long a resolution waits for the initial store load
const DefaultResolveGrace = time.Second

// LinkLookup is the read side of the registry the resolver needs
type LinkLookup interface {
	FindByShortCode(code string) (domain.ShortenedLink, bool)
	Ready() <-chan struct{}
	Loaded() bool
}

// ClickRecorder receives the click of a successful resolution
type ClickRecorder interface {
	RecordClick(code string, click domain.ClickRecord)
}

// Resolver turns a short code into a redirect, a not-found or an expired outcome.
type Resolver struct {
	links     LinkLookup
	clicks    ClickRecorder
	locator   ports.Locator
	now       domain.Clock
	telemetry ports.Telemetry
	grace     time.Duration
}

func NewResolver(links LinkLookup, clicks ClickRecorder, now domain.Clock, telemetry ports.Telemetry) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		links:     links,
		clicks:    clicks,
		now:       now,
		telemetry: telemetry,
		grace:     DefaultResolveGrace,
	}
}

// WithLocator sets the optional geolocation capability
func (r *Resolver) WithLocator(l ports.Locator) *Resolver {
	r.locator = l
	return r
}

// WithGrace sets how long to wait for hydration before concluding not-found
func (r *Resolver) WithGrace(d time.Duration) *Resolver {
	if d >= 0 {
		r.grace = d
	}
	return r
}

// Resolve classifies code. On an active link the click is handed to the recorder
// before the redirecting outcome is returned.
func (r *Resolver) Resolve(ctx context.Context, code string, visit domain.Visit) domain.Resolution {
	res := domain.Resolution{ShortCode: code, State: domain.StateLookingUp}

	if !r.links.Loaded() {
		r.awaitLoad(ctx)
	}

	link, ok := r.links.FindByShortCode(code)
	if !ok {
		res.State = domain.StateNotFound
		emit(r.telemetry, domain.LevelWarn, domain.CategoryService, "short URL not found: %s", code)
		return res
	}
	res.Link = &link

	if domain.IsExpired(link.CreatedAt, link.ValidityMinutes, r.now()) {
		res.State = domain.StateFoundExpired
		emit(r.telemetry, domain.LevelWarn, domain.CategoryService, "attempted to access expired short URL %s, expired %s",
			code, link.ExpiresAt().Format(time.RFC3339))
		return res
	}
	res.State = domain.StateFoundActive
	emit(r.telemetry, domain.LevelInfo, domain.CategoryService, "resolved short URL %s", code)

	click := domain.ClickRecord{
		Timestamp: r.now(),
		Source:    visit.Referrer,
		Location:  r.locate(ctx, visit),
		UserAgent: visit.UserAgent,
	}
	if click.Source == "" {
		click.Source = domain.DirectSource
	}

	res.State = domain.StateRecording
	r.clicks.RecordClick(code, click)
	res.Click = &click
	emit(r.telemetry, domain.LevelInfo, domain.CategoryService, "click recorded for %s from %s", code, click.Source)

	res.State = domain.StateRedirecting
	res.Target = link.OriginalURL
	return res
}

func (r *Resolver) awaitLoad(ctx context.Context) {
	if r.grace <= 0 {
		return
	}
	timer := time.NewTimer(r.grace)
	defer timer.Stop()

	select {
	case <-r.links.Ready():
	case <-timer.C:
		emit(r.telemetry, domain.LevelWarn, domain.CategoryService, "link store not loaded after %s", r.grace)
	case <-ctx.Done():
	}
}

func (r *Resolver) locate(ctx context.Context, visit domain.Visit) string {
	if r.locator == nil {
		return domain.UnknownLocation
	}
	loc, err := r.locator.Locate(ctx, visit)
	if err != nil || loc == "" {
		return domain.UnknownLocation
	}
	return loc
}
