package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
	"github.com/wadjakorntonsri/tinylink/pkg/core/services"
)

func newLoadedService(t *testing.T) *services.LinkService {
	t.Helper()
	svc := services.NewLinkService(services.Options{})
	svc.Load(context.Background())
	return svc
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newLoadedService(t)
	_, err := src.Shorten(ctx, domain.CreateLinkInput{OriginalURL: "https://example.com", CustomCode: "cli01"})
	require.NoError(t, err)
	src.Resolve(ctx, "cli01", domain.Visit{})

	var dump bytes.Buffer
	require.NoError(t, run(ctx, src, []string{"export"}, &dump))
	assert.Contains(t, dump.String(), `"urls"`)
	assert.Contains(t, dump.String(), `"statistics"`)

	path := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, os.WriteFile(path, dump.Bytes(), 0o600))

	dst := newLoadedService(t)
	var out bytes.Buffer
	require.NoError(t, run(ctx, dst, []string{"import", "-file", path}, &out))
	assert.Equal(t, "Imported 1 links, skipped 0\n", out.String())

	out.Reset()
	require.NoError(t, run(ctx, dst, []string{"list"}, &out))
	assert.Contains(t, out.String(), "cli01")
	assert.Contains(t, out.String(), "active")

	out.Reset()
	require.NoError(t, run(ctx, dst, []string{"stats", "-code", "cli01"}, &out))
	assert.Contains(t, out.String(), "cli01: 1 clicks")
	assert.Contains(t, out.String(), domain.DirectSource)
}

func TestRunErrors(t *testing.T) {
	svc := newLoadedService(t)
	ctx := context.Background()

	assert.Error(t, run(ctx, svc, []string{"bogus"}, &bytes.Buffer{}))
	assert.Error(t, run(ctx, svc, []string{"import"}, &bytes.Buffer{}))
	assert.Error(t, run(ctx, svc, []string{"stats"}, &bytes.Buffer{}))
	assert.Error(t, run(ctx, svc, []string{"import", "-file", filepath.Join(t.TempDir(), "missing.json")}, &bytes.Buffer{}))
}

func TestRealMainExitCodes(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(t.TempDir(), "cli.sqlite"))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, realMain(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), usage)

	stderr.Reset()
	assert.Equal(t, 1, realMain([]string{"bogus"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "command failed")

	stdout.Reset()
	assert.Equal(t, 0, realMain([]string{"list"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "CODE")

	t.Setenv("STORE_DRIVER", "mongo")
	stderr.Reset()
	assert.Equal(t, 1, realMain([]string{"list"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Failed to load config")
}
