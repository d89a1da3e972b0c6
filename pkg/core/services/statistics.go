package services

import (
	"sync"

	"github.com/wadjakorntonsri/tinylink/pkg/core/domain"
)

// StatisticsRecorder owns the per-code click logs.
// Entries are keyed by short code only, so they outlive the link they describe.
type StatisticsRecorder struct {
	mu      sync.RWMutex
	entries map[string][]domain.ClickRecord
}

func NewStatisticsRecorder() *StatisticsRecorder {
	return &StatisticsRecorder{entries: make(map[string][]domain.ClickRecord)}
}

// RecordClick appends click to the log of code, creating the log on first use
func (s *StatisticsRecorder) RecordClick(code string, click domain.ClickRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[code] = append(s.entries[code], click)
}

// Get returns a copy of the clicks for code, empty when none were recorded
func (s *StatisticsRecorder) Get(code string) []domain.ClickRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clicks := s.entries[code]
	out := make([]domain.ClickRecord, len(clicks))
	copy(out, clicks)
	return out
}

func (s *StatisticsRecorder) Summary(code string) domain.ClickSummary {
	return summarize(code, s.Get(code))
}

// TotalClicks sums the clicks of the given codes
func (s *StatisticsRecorder) TotalClicks(codes []string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, code := range codes {
		total += len(s.entries[code])
	}
	return total
}

func (s *StatisticsRecorder) Has(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[code]
	return ok
}

// Snapshot returns a deep copy in the persisted shape
func (s *StatisticsRecorder) Snapshot() map[string]domain.StatisticsEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.StatisticsEntry, len(s.entries))
	for code, clicks := range s.entries {
		cp := make([]domain.ClickRecord, len(clicks))
		copy(cp, clicks)
		out[code] = domain.StatisticsEntry{Clicks: cp}
	}
	return out
}

// Restore replaces every log with the given entries
func (s *StatisticsRecorder) Restore(entries map[string]domain.StatisticsEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string][]domain.ClickRecord, len(entries))
	for code, entry := range entries {
		cp := make([]domain.ClickRecord, len(entry.Clicks))
		copy(cp, entry.Clicks)
		s.entries[code] = cp
	}
}

func summarize(code string, clicks []domain.ClickRecord) domain.ClickSummary {
	summary := domain.ClickSummary{ShortCode: code, TotalClicks: len(clicks)}
	if len(clicks) == 0 {
		return summary
	}
	first := clicks[0].Timestamp
	last := clicks[len(clicks)-1].Timestamp
	summary.FirstClick = &first
	summary.LastClick = &last
	return summary
}
