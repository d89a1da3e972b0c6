package telemetry

import (
	"context"
	"log/slog"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

// SlogSink mirrors log events into a local structured logger
type SlogSink struct {
	logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Record(e domain.LogEvent) {
	s.logger.LogAttrs(context.Background(), slogLevel(e.Level), e.Message,
		slog.String("stack", string(e.Stack)),
		slog.String("package", string(e.Category)),
	)
}

func slogLevel(l domain.Level) slog.Level {
	switch l {
	case domain.LevelDebug:
		return slog.LevelDebug
	case domain.LevelWarn:
		return slog.LevelWarn
	case domain.LevelError, domain.LevelFatal:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Multi fans every event out to each sink in order
type Multi []ports.Telemetry

func (m Multi) Record(e domain.LogEvent) {
	for _, t := range m {
		if t != nil {
			t.Record(e)
		}
	}
}
