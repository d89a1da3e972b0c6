package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wadjakorntonsri/tinylink/pkg/core/codegen"
	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
	"github.com/wadjakorntonsri/tinylink/pkg/core/validation"
	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

// Options wires the collaborators of a LinkService. Only Store is required.
type Options struct {
	Store           ports.KeyValueStore
	Telemetry       ports.Telemetry
	Locator         ports.Locator
	Generator       ports.CodeGenerator
	Clock           domain.Clock
	Logger          *slog.Logger
	MaxActiveLinks  int
	DefaultValidity int
	ResolveGrace    time.Duration
}

// LinkService is the application layer: it enforces the active-link cap,
// serializes mutations and mirrors the in-memory state to the store.
type LinkService struct {
	mu        sync.Mutex
	registry  *LinkRegistry
	stats     *StatisticsRecorder
	resolver  *Resolver
	store     ports.KeyValueStore
	telemetry ports.Telemetry
	logger    *slog.Logger
	now       domain.Clock
	maxActive int
}

func NewLinkService(opts Options) *LinkService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Telemetry == nil {
		opts.Telemetry = NopTelemetry{}
	}
	if opts.Generator == nil {
		tel := opts.Telemetry
		opts.Generator = codegen.New(codegen.WithAttemptHook(func(attempt int, code string) {
			emit(tel, domain.LevelDebug, domain.CategoryDomain, "generation attempt %d: %s", attempt, code)
		}))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxActiveLinks <= 0 {
		opts.MaxActiveLinks = domain.MaxActiveLinks
	}

	registry := NewLinkRegistry(opts.Generator, opts.Clock, opts.Telemetry)
	registry.SetDefaultValidity(opts.DefaultValidity)

	s := &LinkService{
		registry:  registry,
		stats:     NewStatisticsRecorder(),
		store:     opts.Store,
		telemetry: opts.Telemetry,
		logger:    opts.Logger,
		now:       opts.Clock,
		maxActive: opts.MaxActiveLinks,
	}

	grace := opts.ResolveGrace
	if grace == 0 {
		grace = DefaultResolveGrace
	}
	s.resolver = NewResolver(registry, clickSink{s}, opts.Clock, opts.Telemetry).
		WithLocator(opts.Locator).
		WithGrace(grace)
	return s
}

// Load hydrates the state from the store. Missing or unparsable keys leave the
// corresponding state empty; the service is marked loaded in every case.
func (s *LinkService) Load(ctx context.Context) {
	defer s.registry.MarkLoaded()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return
	}

	var links []domain.ShortenedLink
	if raw, ok, err := s.store.Get(ctx, ports.KeyLinks); err != nil {
		s.loadFailed(ports.KeyLinks, err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &links); err != nil {
			s.loadFailed(ports.KeyLinks, err)
			links = nil
		}
	}

	var stats map[string]domain.StatisticsEntry
	if raw, ok, err := s.store.Get(ctx, ports.KeyStatistics); err != nil {
		s.loadFailed(ports.KeyStatistics, err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &stats); err != nil {
			s.loadFailed(ports.KeyStatistics, err)
			stats = nil
		}
	}

	s.registry.Restore(links)
	s.stats.Restore(stats)

	s.logger.Info("state loaded", slog.Int("links", len(links)), slog.Int("statistics", len(stats)))
	emit(s.telemetry, domain.LevelInfo, domain.CategoryRepository, "loaded %d links and %d statistics entries", len(links), len(stats))
}

// Ready is closed once Load has completed
func (s *LinkService) Ready() <-chan struct{} {
	return s.registry.Ready()
}

// Shorten creates a link, refusing when the active-link cap is already reached.
func (s *LinkService) Shorten(ctx context.Context, in domain.CreateLinkInput) (*domain.ShortenedLink, error) {
	if err := s.awaitLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if active := s.registry.ActiveCount(s.now()); active >= s.maxActive {
		emit(s.telemetry, domain.LevelWarn, domain.CategoryService, "link creation refused: %d of %d active links in use", active, s.maxActive)
		return nil, fmt.Errorf("%w: limit is %d", domain.ErrActiveLinkLimitExceeded, s.maxActive)
	}

	link, err := s.registry.Create(in)
	if err != nil {
		emit(s.telemetry, domain.LevelError, domain.CategoryService, "failed to create shortened URL: %v", err)
		return nil, err
	}

	s.save(ctx)
	emit(s.telemetry, domain.LevelInfo, domain.CategoryService, "URL successfully shortened: %s", link.ShortCode)
	return &link, nil
}

// DeleteLink removes a link by id. Its statistics entry is kept.
func (s *LinkService) DeleteLink(ctx context.Context, id string) bool {
	if err := s.awaitLoaded(ctx); err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.registry.Delete(id) {
		return false
	}
	s.save(ctx)
	emit(s.telemetry, domain.LevelInfo, domain.CategoryService, "URL deleted: %s", id)
	return true
}

func (s *LinkService) ListLinks(_ context.Context) []domain.ShortenedLink {
	return s.registry.List()
}

// Resolve runs the resolver; see Resolver.Resolve
func (s *LinkService) Resolve(ctx context.Context, shortCode string, visit domain.Visit) domain.Resolution {
	return s.resolver.Resolve(ctx, shortCode, visit)
}

func (s *LinkService) GetLinkStats(_ context.Context, shortCode string) ([]domain.ClickRecord, domain.ClickSummary) {
	clicks := s.stats.Get(shortCode)
	return clicks, summarize(shortCode, clicks)
}

// GetDashboard counts links by state and the clicks of links that still exist
func (s *LinkService) GetDashboard(_ context.Context) domain.Dashboard {
	now := s.now()
	links := s.registry.List()

	d := domain.Dashboard{TotalLinks: len(links), MaxActiveLinks: s.maxActive}
	codes := make([]string, 0, len(links))
	for _, l := range links {
		if l.IsExpired(now) {
			d.ExpiredLinks++
		} else {
			d.ActiveLinks++
		}
		codes = append(codes, l.ShortCode)
	}
	d.TotalClicks = s.stats.TotalClicks(codes)
	return d
}

// IsExpired applies the shared expiry rule with the service clock
func (s *LinkService) IsExpired(link domain.ShortenedLink) bool {
	return link.IsExpired(s.now())
}

// Export returns the full state in insertion order
func (s *LinkService) Export(_ context.Context) domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Snapshot{
		Links:      s.registry.List(),
		Statistics: s.stats.Snapshot(),
	}
}

// Import merges a snapshot. Links that fail validation or whose id or code
// already exist are skipped, as are statistics for codes that already have a log.
func (s *LinkService) Import(ctx context.Context, snap domain.Snapshot) (imported, skipped int, err error) {
	if err := s.awaitLoaded(ctx); err != nil {
		return 0, 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range snap.Links {
		if !importable(l) {
			emit(s.telemetry, domain.LevelWarn, domain.CategoryService, "import skipped invalid link %q", l.ShortCode)
			skipped++
			continue
		}
		if s.registry.Append(l) {
			imported++
		} else {
			skipped++
		}
	}
	for code, entry := range snap.Statistics {
		if s.stats.Has(code) {
			continue
		}
		for _, c := range entry.Clicks {
			s.stats.RecordClick(code, c)
		}
	}

	s.save(ctx)
	return imported, skipped, nil
}

func importable(l domain.ShortenedLink) bool {
	return l.ID != "" &&
		l.ShortCode != "" &&
		l.ValidityMinutes > 0 &&
		validation.IsValidShortCode(l.ShortCode) &&
		validation.IsValidURL(l.OriginalURL)
}

func (s *LinkService) recordClick(code string, click domain.ClickRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.RecordClick(code, click)
	s.save(context.Background())
}

// save overwrites both keys with the full state. Callers hold s.mu.
// Failures are logged; the service keeps running in memory.
func (s *LinkService) save(ctx context.Context) {
	if s.store == nil {
		return
	}

	links, err := json.Marshal(s.registry.List())
	if err != nil {
		s.saveFailed(ports.KeyLinks, err)
		return
	}
	stats, err := json.Marshal(s.stats.Snapshot())
	if err != nil {
		s.saveFailed(ports.KeyStatistics, err)
		return
	}

	if err := s.store.Set(ctx, ports.KeyLinks, string(links)); err != nil {
		s.saveFailed(ports.KeyLinks, err)
	}
	if err := s.store.Set(ctx, ports.KeyStatistics, string(stats)); err != nil {
		s.saveFailed(ports.KeyStatistics, err)
	}
}

func (s *LinkService) awaitLoaded(ctx context.Context) error {
	select {
	case <-s.registry.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *LinkService) loadFailed(key string, err error) {
	s.logger.Error("failed to load state", slog.String("key", key), slog.String("error", err.Error()))
	emit(s.telemetry, domain.LevelError, domain.CategoryRepository, "failed to load %s: %v", key, err)
}

func (s *LinkService) saveFailed(key string, err error) {
	s.logger.Error("failed to save state", slog.String("key", key), slog.String("error", err.Error()))
	emit(s.telemetry, domain.LevelError, domain.CategoryRepository, "failed to save %s: %v", key, err)
}

// clickSink routes resolver clicks through the service so they are persisted
type clickSink struct{ s *LinkService }

func (c clickSink) RecordClick(code string, click domain.ClickRecord) {
	c.s.recordClick(code, click)
}
