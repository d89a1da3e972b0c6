// Package codegen mints random short codes that do not collide with codes already in use.
package codegen

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
)

const (
	// Charset is the 62-character alphabet codes are drawn from
	Charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// CodeLength is the length of every generated code
	CodeLength = 6
	// MaxAttempts bounds the retries before generation gives up
	MaxAttempts = 100
)

// Generator draws codes from a random source. The zero value is not usable, use New.
type Generator struct {
	rand        io.Reader
	length      int
	maxAttempts int
	onAttempt   func(attempt int, code string)
}

// Option configures a Generator
type Option func(*Generator)

// WithRandom replaces crypto/rand as the entropy source
func WithRandom(r io.Reader) Option {
	return func(g *Generator) { g.rand = r }
}

// WithAttemptHook is called after every candidate is drawn
func WithAttemptHook(fn func(attempt int, code string)) Option {
	return func(g *Generator) { g.onAttempt = fn }
}

func New(opts ...Option) *Generator {
	g := &Generator{
		rand:        rand.Reader,
		length:      CodeLength,
		maxAttempts: MaxAttempts,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a code that is not a key of existing.
// It fails with domain.ErrGenerationExhausted after MaxAttempts collisions.
func (g *Generator) Generate(existing map[string]struct{}) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		code, err := g.draw()
		if err != nil {
			return "", fmt.Errorf("read random source: %w", err)
		}
		if g.onAttempt != nil {
			g.onAttempt(attempt, code)
		}
		if _, taken := existing[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", domain.ErrGenerationExhausted, g.maxAttempts)
}

// draw rejects masked bytes past the alphabet so every symbol stays equally likely.
func (g *Generator) draw() (string, error) {
	b := make([]byte, g.length)
	var buf [1]byte
	for i := 0; i < len(b); {
		if _, err := io.ReadFull(g.rand, buf[:]); err != nil {
			return "", err
		}
		idx := int(buf[0] & 0x3f)
		if idx >= len(Charset) {
			continue
		}
		b[i] = Charset[idx]
		i++
	}
	return string(b), nil
}
