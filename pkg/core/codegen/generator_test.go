package codegen_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/tinylink/pkg/core/codegen"
	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
)

// zeroReader always yields zero bytes, so every draw is "aaaaaa".
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy unavailable")
}

func TestGenerate(t *testing.T) {
	code, err := codegen.New().Generate(nil)
	require.NoError(t, err)
	assert.Len(t, code, codegen.CodeLength)
	assert.Regexp(t, "^[a-zA-Z0-9]{6}$", code)
}

func TestGenerateAvoidsExistingCodes(t *testing.T) {
	g := codegen.New()
	existing := make(map[string]struct{})

	for i := 0; i < 1000; i++ {
		code, err := g.Generate(existing)
		require.NoError(t, err)
		_, dup := existing[code]
		require.False(t, dup, "generated duplicate code: %s", code)
		existing[code] = struct{}{}
	}
	assert.Len(t, existing, 1000)
}

func TestGenerateDeterministicSource(t *testing.T) {
	code, err := codegen.New(codegen.WithRandom(zeroReader{})).Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, "aaaaaa", code)
}

func TestGenerateIsCaseSensitive(t *testing.T) {
	existing := map[string]struct{}{"AAAAAA": {}}
	code, err := codegen.New(codegen.WithRandom(zeroReader{})).Generate(existing)
	require.NoError(t, err)
	assert.Equal(t, "aaaaaa", code)
}

func TestGenerateExhausted(t *testing.T) {
	attempts := 0
	g := codegen.New(
		codegen.WithRandom(zeroReader{}),
		codegen.WithAttemptHook(func(int, string) { attempts++ }),
	)

	_, err := g.Generate(map[string]struct{}{"aaaaaa": {}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationExhausted)
	assert.Equal(t, codegen.MaxAttempts, attempts)
}

func TestGenerateRandomSourceError(t *testing.T) {
	_, err := codegen.New(codegen.WithRandom(failingReader{})).Generate(nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrGenerationExhausted)
}

func TestGenerateCharacterDistribution(t *testing.T) {
	g := codegen.New()
	seen := make(map[rune]int)
	for i := 0; i < 2000; i++ {
		code, err := g.Generate(nil)
		require.NoError(t, err)
		for _, ch := range code {
			seen[ch]++
		}
	}
	assert.GreaterOrEqual(t, len(seen), 50, "got %d distinct characters", len(seen))
}

func TestGenerateUsesWholeAlphabet(t *testing.T) {
	// 0x3d masks to 61, the last alphabet index.
	src := bytes.NewReader(bytes.Repeat([]byte{0x3d}, codegen.CodeLength))
	code, err := codegen.New(codegen.WithRandom(src)).Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, "999999", code)
}
