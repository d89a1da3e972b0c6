package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
	"github.com/wadjakorntonsri/tinylink/pkg/core/validation"
	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

// LinkRegistry owns the ordered collection of shortened links.
// Insertion order is display order.
type LinkRegistry struct {
	mu              sync.RWMutex
	links           []domain.ShortenedLink
	generator       ports.CodeGenerator
	now             domain.Clock
	telemetry       ports.Telemetry
	newID           func() string
	defaultValidity int

	ready     chan struct{}
	readyOnce sync.Once
}

func NewLinkRegistry(generator ports.CodeGenerator, now domain.Clock, telemetry ports.Telemetry) *LinkRegistry {
	if now == nil {
		now = time.Now
	}
	return &LinkRegistry{
		generator:       generator,
		now:             now,
		telemetry:       telemetry,
		newID:           uuid.NewString,
		defaultValidity: domain.DefaultValidityMinutes,
		ready:           make(chan struct{}),
	}
}

// SetDefaultValidity changes the validity applied when none is given. Non-positive values are ignored.
func (r *LinkRegistry) SetDefaultValidity(minutes int) {
	if minutes > 0 {
		r.mu.Lock()
		r.defaultValidity = minutes
		r.mu.Unlock()
	}
}

// Create validates the input, resolves the final code and validity and appends the new link.
func (r *LinkRegistry) Create(in domain.CreateLinkInput) (domain.ShortenedLink, error) {
	if !validation.IsValidURL(in.OriginalURL) {
		emit(r.telemetry, domain.LevelError, domain.CategoryDomain, "link creation failed: invalid URL %q", in.OriginalURL)
		return domain.ShortenedLink{}, domain.ErrInvalidURL
	}
	if in.CustomCode != "" && !validation.IsValidShortCode(in.CustomCode) {
		emit(r.telemetry, domain.LevelError, domain.CategoryDomain, "link creation failed: invalid short code %q", in.CustomCode)
		return domain.ShortenedLink{}, domain.ErrInvalidShortCode
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := make(map[string]struct{}, len(r.links))
	for _, l := range r.links {
		existing[l.ShortCode] = struct{}{}
	}

	code := in.CustomCode
	if code != "" {
		if _, taken := existing[code]; taken {
			emit(r.telemetry, domain.LevelWarn, domain.CategoryDomain, "link creation failed: short code %q already exists", code)
			return domain.ShortenedLink{}, domain.ErrDuplicateShortCode
		}
	} else {
		emit(r.telemetry, domain.LevelDebug, domain.CategoryDomain, "generating short code, avoiding %d existing codes", len(existing))
		generated, err := r.generator.Generate(existing)
		if err != nil {
			emit(r.telemetry, domain.LevelFatal, domain.CategoryDomain, "short code generation failed: %v", err)
			return domain.ShortenedLink{}, fmt.Errorf("generate short code: %w", err)
		}
		emit(r.telemetry, domain.LevelDebug, domain.CategoryDomain, "generated short code %s", generated)
		code = generated
	}

	validity := in.ValidityMinutes
	if validity <= 0 {
		validity = r.defaultValidity
	}

	link := domain.ShortenedLink{
		ID:              r.newID(),
		OriginalURL:     in.OriginalURL,
		ShortCode:       code,
		CreatedAt:       r.now(),
		ValidityMinutes: validity,
	}
	r.links = append(r.links, link)

	emit(r.telemetry, domain.LevelInfo, domain.CategoryDomain, "created short code %s for %s, expires %s",
		link.ShortCode, link.OriginalURL, link.ExpiresAt().Format(time.RFC3339))
	return link, nil
}

// Delete removes the link with the given id. Deleting an unknown id is a no-op.
func (r *LinkRegistry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, l := range r.links {
		if l.ID == id {
			r.links = append(r.links[:i:i], r.links[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the links in insertion order
func (r *LinkRegistry) List() []domain.ShortenedLink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ShortenedLink, len(r.links))
	copy(out, r.links)
	return out
}

// FindByShortCode does an exact, case-sensitive lookup
func (r *LinkRegistry) FindByShortCode(code string) (domain.ShortenedLink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.links {
		if l.ShortCode == code {
			return l, true
		}
	}
	return domain.ShortenedLink{}, false
}

// ActiveCount counts links that are not expired at now
func (r *LinkRegistry) ActiveCount(now time.Time) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, l := range r.links {
		if !l.IsExpired(now) {
			n++
		}
	}
	return n
}

// Append adds an already built link, as loaded from an export. It reports false
// when the id or the short code is already present.
func (r *LinkRegistry) Append(link domain.ShortenedLink) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.links {
		if l.ID == link.ID || l.ShortCode == link.ShortCode {
			return false
		}
	}
	r.links = append(r.links, link)
	return true
}

// Restore replaces the whole collection, used when hydrating from the store
func (r *LinkRegistry) Restore(links []domain.ShortenedLink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.links = make([]domain.ShortenedLink, len(links))
	copy(r.links, links)
}

// MarkLoaded signals that the initial hydration finished, successfully or not
func (r *LinkRegistry) MarkLoaded() {
	r.readyOnce.Do(func() { close(r.ready) })
}

// Ready is closed once MarkLoaded has been called
func (r *LinkRegistry) Ready() <-chan struct{} {
	return r.ready
}

func (r *LinkRegistry) Loaded() bool {
	select {
	case <-r.ready:
		return true
	default:
		return false
	}
}
