package services

import (
	"fmt"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

// NopTelemetry discards every event
type NopTelemetry struct{}

func (NopTelemetry) Record(domain.LogEvent) {}

func emit(t ports.Telemetry, level domain.Level, category domain.Category, format string, args ...any) {
	if t == nil {
		return
	}
	t.Record(domain.LogEvent{
		Stack:    domain.StackBackend,
		Level:    level,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	})
}
