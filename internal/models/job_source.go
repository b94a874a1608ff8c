package models

import (
	"time"

	"github.com/google/uuid"
)

// SourceKind selects which Scraper Adapter backend serves a JobSource.
type SourceKind string

const (
	SourceKindHTML     SourceKind = "HTML"
	SourceKindRSS      SourceKind = "RSS"
	SourceKindHeadless SourceKind = "HEADLESS"
)

// CircuitState tracks whether a source has been temporarily suspended
// after repeated fetch failures.
type CircuitState string

const (
	CircuitClosed   CircuitState = "CLOSED"
	CircuitOpen     CircuitState = "OPEN"
	CircuitHalfOpen CircuitState = "HALF_OPEN"
)

// JobSource is a configured scrape target (careers page, RSS feed, board
// listing endpoint) polled on a schedule.
type JobSource struct {
	ID   string `badgerhold:"key"`
	Name string
	URL  string `badgerholdIndex:"URL"`
	Kind SourceKind

	PollIntervalSeconds int
	Enabled             bool

	CircuitState      CircuitState `badgerholdIndex:"CircuitState"`
	ConsecutiveFails  int
	CircuitOpenedAt   *time.Time
	CircuitRetryAfter *time.Time

	LastFetchedAt  *time.Time
	LastSuccessAt  *time.Time
	LastItemCount  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewJobSource builds an enabled, closed-circuit JobSource.
func NewJobSource(name, url string, kind SourceKind, pollIntervalSeconds int) *JobSource {
	now := time.Now()
	return &JobSource{
		ID:                  "js_" + uuid.New().String(),
		Name:                name,
		URL:                 url,
		Kind:                kind,
		PollIntervalSeconds: pollIntervalSeconds,
		Enabled:             true,
		CircuitState:        CircuitClosed,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// RecordSuccess closes the circuit and resets the failure streak.
func (s *JobSource) RecordSuccess(itemCount int) {
	now := time.Now()
	s.LastFetchedAt = &now
	s.LastSuccessAt = &now
	s.LastItemCount = itemCount
	s.ConsecutiveFails = 0
	s.CircuitState = CircuitClosed
	s.CircuitOpenedAt = nil
	s.CircuitRetryAfter = nil
	s.UpdatedAt = now
}

// RecordFailure bumps the failure streak and opens the circuit once
// threshold consecutive failures have accumulated, scheduling a
// half-open retry after cooldown.
func (s *JobSource) RecordFailure(threshold int, cooldown time.Duration) {
	now := time.Now()
	s.LastFetchedAt = &now
	s.ConsecutiveFails++
	s.UpdatedAt = now
	if s.ConsecutiveFails >= threshold && s.CircuitState == CircuitClosed {
		s.CircuitState = CircuitOpen
		s.CircuitOpenedAt = &now
		retryAt := now.Add(cooldown)
		s.CircuitRetryAfter = &retryAt
	}
}

// ReadyForHalfOpenProbe reports whether an OPEN circuit's cooldown has
// elapsed and a single trial fetch should be allowed through.
func (s *JobSource) ReadyForHalfOpenProbe(now time.Time) bool {
	if s.CircuitState != CircuitOpen || s.CircuitRetryAfter == nil {
		return false
	}
	return !now.Before(*s.CircuitRetryAfter)
}
