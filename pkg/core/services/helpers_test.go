package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	sets   int
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memStore) Close() error { return nil }

type recordingTelemetry struct {
	mu     sync.Mutex
	events []domain.LogEvent
}

func (r *recordingTelemetry) Record(e domain.LogEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingTelemetry) levels() []domain.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Level, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Level)
	}
	return out
}

// sequenceGenerator hands out codes in order
type sequenceGenerator struct {
	codes []string
	calls int
}

func (g *sequenceGenerator) Generate(existing map[string]struct{}) (string, error) {
	if g.calls >= len(g.codes) {
		return "", domain.ErrGenerationExhausted
	}
	code := g.codes[g.calls]
	g.calls++
	return code, nil
}

type staticLocator struct {
	location string
	err      error
}

func (l staticLocator) Locate(context.Context, domain.Visit) (string, error) {
	return l.location, l.err
}

var errStore = errors.New("store unavailable")
