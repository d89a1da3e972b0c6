package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
)

type clickLog struct {
	mu     sync.Mutex
	codes  []string
	clicks []domain.ClickRecord
}

func (c *clickLog) RecordClick(code string, click domain.ClickRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes = append(c.codes, code)
	c.clicks = append(c.clicks, click)
}

func (c *clickLog) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clicks)
}

func loadedRegistry(clock *fakeClock, links ...domain.ShortenedLink) *LinkRegistry {
	reg := NewLinkRegistry(&sequenceGenerator{}, clock.Now, nil)
	reg.Restore(links)
	reg.MarkLoaded()
	return reg
}

func TestResolver_ActiveLinkRecordsOneClick(t *testing.T) {
	clock := newFakeClock()
	reg := loadedRegistry(clock, domain.ShortenedLink{
		ID: "1", ShortCode: "abc", OriginalURL: "https://example.com", CreatedAt: clock.Now(), ValidityMinutes: 30,
	})
	clicks := &clickLog{}
	r := NewResolver(reg, clicks, clock.Now, nil).WithLocator(staticLocator{location: "TH"})

	res := r.Resolve(context.Background(), "abc", domain.Visit{UserAgent: "curl/8"})

	assert.Equal(t, domain.StateRedirecting, res.State)
	assert.True(t, res.Redirect())
	assert.Equal(t, "https://example.com", res.Target)
	require.NotNil(t, res.Click)
	assert.Equal(t, domain.DirectSource, res.Click.Source)
	assert.Equal(t, "TH", res.Click.Location)
	assert.Equal(t, "curl/8", res.Click.UserAgent)
	assert.Equal(t, clock.Now(), res.Click.Timestamp)

	require.Equal(t, 1, clicks.count())
	assert.Equal(t, "abc", clicks.codes[0])
}

func TestResolver_ReferrerAndLocatorFallback(t *testing.T) {
	clock := newFakeClock()
	reg := loadedRegistry(clock, domain.ShortenedLink{
		ID: "1", ShortCode: "abc", OriginalURL: "https://example.com", CreatedAt: clock.Now(), ValidityMinutes: 30,
	})

	tests := []struct {
		name    string
		locator *staticLocator
	}{
		{"no locator", nil},
		{"locator error", &staticLocator{err: errors.New("lookup failed")}},
		{"empty location", &staticLocator{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(reg, &clickLog{}, clock.Now, nil)
			if tt.locator != nil {
				r.WithLocator(*tt.locator)
			}
			res := r.Resolve(context.Background(), "abc", domain.Visit{Referrer: "https://news.example"})
			require.NotNil(t, res.Click)
			assert.Equal(t, "https://news.example", res.Click.Source)
			assert.Equal(t, domain.UnknownLocation, res.Click.Location)
		})
	}
}

func TestResolver_ExpiredLinkRecordsNothing(t *testing.T) {
	clock := newFakeClock()
	reg := loadedRegistry(clock, domain.ShortenedLink{
		ID: "1", ShortCode: "old", OriginalURL: "https://example.com", CreatedAt: clock.Now(), ValidityMinutes: 1,
	})
	clicks := &clickLog{}
	r := NewResolver(reg, clicks, clock.Now, nil)

	clock.Advance(time.Minute)
	res := r.Resolve(context.Background(), "old", domain.Visit{})
	assert.Equal(t, domain.StateRedirecting, res.State, "expiry instant is still active")

	clock.Advance(time.Millisecond)
	res = r.Resolve(context.Background(), "old", domain.Visit{})
	assert.Equal(t, domain.StateFoundExpired, res.State)
	assert.False(t, res.Redirect())
	assert.Nil(t, res.Click)
	assert.NotNil(t, res.Link)
	assert.Equal(t, 1, clicks.count())
}

func TestResolver_NotFoundIsCaseSensitive(t *testing.T) {
	clock := newFakeClock()
	reg := loadedRegistry(clock, domain.ShortenedLink{
		ID: "1", ShortCode: "abc", OriginalURL: "https://example.com", CreatedAt: clock.Now(), ValidityMinutes: 30,
	})
	clicks := &clickLog{}
	tel := &recordingTelemetry{}
	r := NewResolver(reg, clicks, clock.Now, tel)

	res := r.Resolve(context.Background(), "ABC", domain.Visit{})
	assert.Equal(t, domain.StateNotFound, res.State)
	assert.Nil(t, res.Link)
	assert.Zero(t, clicks.count())
	assert.Equal(t, []domain.Level{domain.LevelWarn}, tel.levels())
}

func TestResolver_WaitsForLoadWithinGrace(t *testing.T) {
	clock := newFakeClock()
	reg := NewLinkRegistry(&sequenceGenerator{}, clock.Now, nil)
	r := NewResolver(reg, &clickLog{}, clock.Now, nil).WithGrace(2 * time.Second)

	go func() {
		time.Sleep(20 * time.Millisecond)
		reg.Restore([]domain.ShortenedLink{{
			ID: "1", ShortCode: "late", OriginalURL: "https://example.com", CreatedAt: clock.Now(), ValidityMinutes: 30,
		}})
		reg.MarkLoaded()
	}()

	res := r.Resolve(context.Background(), "late", domain.Visit{})
	assert.Equal(t, domain.StateRedirecting, res.State)
}

func TestResolver_GraceElapsesToNotFound(t *testing.T) {
	clock := newFakeClock()
	reg := NewLinkRegistry(&sequenceGenerator{}, clock.Now, nil)
	tel := &recordingTelemetry{}
	r := NewResolver(reg, &clickLog{}, clock.Now, tel).WithGrace(30 * time.Millisecond)

	start := time.Now()
	res := r.Resolve(context.Background(), "abc", domain.Visit{})

	assert.Equal(t, domain.StateNotFound, res.State)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, []domain.Level{domain.LevelWarn, domain.LevelWarn}, tel.levels())
}

func TestResolver_ContextCancelStopsWaiting(t *testing.T) {
	clock := newFakeClock()
	reg := NewLinkRegistry(&sequenceGenerator{}, clock.Now, nil)
	r := NewResolver(reg, &clickLog{}, clock.Now, nil).WithGrace(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := r.Resolve(ctx, "abc", domain.Visit{})
	assert.Equal(t, domain.StateNotFound, res.State)
}
