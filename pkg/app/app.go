// Package app assembles the adapters selected by configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wadjakorntonsri/tinylink/pkg/adapters/handler"
	"github.com/wadjakorntonsri/tinylink/pkg/adapters/repository/redis"
	"github.com/wadjakorntonsri/tinylink/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/tinylink/pkg/adapters/telemetry"
	"github.com/wadjakorntonsri/tinylink/pkg/config"
	"github.com/wadjakorntonsri/tinylink/pkg/core/services"
	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

// NewLogger builds the process logger: JSON in production, text elsewhere.
// When LOG_FILE is set output is also written to a rotating file.
func NewLogger(cfg *config.Config, stdout io.Writer) (*slog.Logger, io.Closer) {
	var w io.Writer = stdout
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		}
		w = io.MultiWriter(stdout, rotator)
		closer = rotator
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts)), closer
	}
	return slog.New(slog.NewTextHandler(w, opts)), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OpenStore connects the key-value store named by STORE_DRIVER
func OpenStore(ctx context.Context, cfg *config.Config) (ports.KeyValueStore, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		return redis.NewRedisRepository(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case config.StoreSQLite:
		return sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// Telemetry mirrors events into logger and, when an endpoint is configured,
// ships them to the remote collector. The returned close function flushes the queue.
func NewTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.Telemetry, func(context.Context) error, error) {
	local := telemetry.NewSlogSink(logger)
	if cfg.Telemetry.Endpoint == "" {
		return local, func(context.Context) error { return nil }, nil
	}

	remote, err := telemetry.NewHTTPClient(ctx, telemetry.Options{
		Endpoint:  cfg.Telemetry.Endpoint,
		QueueSize: cfg.Telemetry.QueueSize,
		Timeout:   cfg.Telemetry.Timeout,
		Logger:    logger,
		Auth: telemetry.AuthOptions{
			ClientID:      cfg.Telemetry.ClientID,
			ClientSecret:  cfg.Telemetry.ClientSecret,
			TokenURL:      cfg.Telemetry.TokenURL,
			SigningSecret: cfg.Telemetry.SigningSecret,
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return telemetry.Multi{local, remote}, remote.Close, nil
}

// NewLinkService wires the core service with the configured limits
func NewLinkService(cfg *config.Config, store ports.KeyValueStore, tel ports.Telemetry, logger *slog.Logger) *services.LinkService {
	return services.NewLinkService(services.Options{
		Store:           store,
		Telemetry:       tel,
		Locator:         handler.HeaderLocator{},
		Logger:          logger,
		MaxActiveLinks:  cfg.MaxActiveLinks,
		DefaultValidity: cfg.DefaultValidityMinutes,
		ResolveGrace:    cfg.ResolveGrace,
	})
}

// Environment is a fully wired application
type Environment struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   ports.KeyValueStore
	Service *services.LinkService

	closeTelemetry func(context.Context) error
	closeLog       io.Closer
}

// Build opens every adapter and starts loading the persisted state in the background
func Build(ctx context.Context, cfg *config.Config) (*Environment, error) {
	logger, closeLog := NewLogger(cfg, os.Stdout)

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		_ = closeLog.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	tel, closeTelemetry, err := NewTelemetry(ctx, cfg, logger)
	if err != nil {
		_ = store.Close()
		_ = closeLog.Close()
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	svc := NewLinkService(cfg, store, tel, logger)
	go svc.Load(context.WithoutCancel(ctx))

	return &Environment{
		Config:         cfg,
		Logger:         logger,
		Store:          store,
		Service:        svc,
		closeTelemetry: closeTelemetry,
		closeLog:       closeLog,
	}, nil
}

// Handler returns the HTTP router for the environment
func (e *Environment) Handler() http.Handler {
	return handler.NewRouter(e.Config, e.Service, e.Logger)
}

// Close flushes telemetry and releases the store
func (e *Environment) Close(ctx context.Context) error {
	var errs []error
	if err := e.closeTelemetry(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush telemetry: %w", err))
	}
	if err := e.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	if err := e.closeLog.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
