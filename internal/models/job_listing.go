package models

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatus tracks a JobListing's progress through the JOB lane,
// independent of the owning QueueItem's own lifecycle (a listing
// persists after its QueueItem reaches a terminal state).
type ListingStatus string

const (
	ListingPending   ListingStatus = "PENDING"
	ListingFiltered  ListingStatus = "FILTERED"
	ListingAnalyzing ListingStatus = "ANALYZING"
	ListingAnalyzed  ListingStatus = "ANALYZED"
	ListingSkipped   ListingStatus = "SKIPPED"
)

// JobListing is a scraped job posting prior to (or independent of) AI
// match analysis. One JobListing exists per de-duplicated URL.
type JobListing struct {
	ID        string `badgerhold:"key"`
	SourceID  string `badgerholdIndex:"SourceID"`
	CompanyID string `badgerholdIndex:"CompanyID"`

	URL       string `badgerholdIndex:"URL"`
	DedupKey  string `badgerholdIndex:"DedupKey"`

	Status ListingStatus `badgerholdIndex:"Status"`

	Title       string
	CompanyName string
	Location    string
	Remote      bool
	SalaryMin   *float64
	SalaryMax   *float64
	SalaryCurrency string
	PostedAt    *time.Time
	Description string // normalized markdown body

	RawHTML string `json:"-"` // not indexed, kept for re-extraction debugging only

	FirstSeenAt time.Time
	LastSeenAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewJobListing builds a JobListing with a fresh prefixed ID and both
// FirstSeenAt/LastSeenAt set to now.
func NewJobListing(sourceID, url string) *JobListing {
	now := time.Now()
	return &JobListing{
		ID:          "jl_" + uuid.New().String(),
		SourceID:    sourceID,
		URL:         url,
		Status:      ListingPending,
		FirstSeenAt: now,
		LastSeenAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch refreshes LastSeenAt on a re-scrape of an already-known listing.
func (j *JobListing) Touch() {
	j.LastSeenAt = time.Now()
	j.UpdatedAt = j.LastSeenAt
}
