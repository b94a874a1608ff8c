package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemType classifies the work a QueueItem represents.
type ItemType string

const (
	ItemTypeJob               ItemType = "JOB"
	ItemTypeCompany           ItemType = "COMPANY"
	ItemTypeScrapeSource      ItemType = "SCRAPE_SOURCE"
	ItemTypeSourceDiscovery   ItemType = "SOURCE_DISCOVERY"
	ItemTypeCompanyDiscovery  ItemType = "COMPANY_DISCOVERY"
)

// ItemStatus is the lifecycle state of a QueueItem.
type ItemStatus string

const (
	StatusPending    ItemStatus = "PENDING"
	StatusClaimed    ItemStatus = "CLAIMED"
	StatusProcessing ItemStatus = "PROCESSING"
	StatusSuccess    ItemStatus = "SUCCESS"
	StatusFailed     ItemStatus = "FAILED"
	StatusSkipped    ItemStatus = "SKIPPED"
	StatusFiltered   ItemStatus = "FILTERED"
	StatusBlocked    ItemStatus = "BLOCKED"
)

// IsTerminal reports whether status never transitions further.
func (s ItemStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusSkipped, StatusFiltered, StatusBlocked:
		return true
	default:
		return false
	}
}

// ItemSource records who originated a QueueItem.
type ItemSource string

const (
	SourceUserSubmission ItemSource = "USER_SUBMISSION"
	SourceAutomatedScan  ItemSource = "AUTOMATED_SCAN"
	SourceScheduled      ItemSource = "SCHEDULED"
	SourceFanOut         ItemSource = "FAN_OUT"
)

// SubType is a granular step within a lane's state machine. Monolithic
// items (no sub-step split yet) leave this empty.
type SubType string

const (
	SubTypeFetch    SubType = "FETCH"
	SubTypeExtract  SubType = "EXTRACT"
	SubTypeFilter   SubType = "FILTER"
	SubTypeAnalyze  SubType = "ANALYZE"
	SubTypeSave     SubType = "SAVE"
	SubTypeEnrich   SubType = "ENRICH"
	SubTypeDiscover SubType = "DISCOVER_SOURCES"
	SubTypeIntake   SubType = "INTAKE"
	SubTypeStats    SubType = "UPDATE_SOURCE_STATS"
	SubTypeFetchPage SubType = "FETCH_PAGE"
)

// ErrorDetails captures the last failure recorded against a QueueItem, kept
// for operator triage of terminal FAILED/BLOCKED items.
type ErrorDetails struct {
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	Attempt   int       `json:"attempt"`
	Timestamp time.Time `json:"timestamp"`
}

// QueueItem is the durable unit of work driven by the Queue Manager and
// Scheduler. Payload is opaque to everything but the owning processor lane.
type QueueItem struct {
	ID       string   `badgerhold:"key"`
	Type     ItemType `badgerholdIndex:"Type"`
	SubType  SubType
	Status   ItemStatus `badgerholdIndex:"Status"`
	URL      string     `badgerholdIndex:"URL"`
	Payload  map[string]interface{}

	ParentID *string `badgerholdIndex:"ParentID"`
	RootID   string  `badgerholdIndex:"RootID"`
	Depth    int

	Attempts      int
	MaxAttempts   int
	NextAttemptAt time.Time `badgerholdIndex:"NextAttemptAt"`

	ClaimedBy *string
	ClaimedAt *time.Time

	CreatedAt time.Time `badgerholdIndex:"CreatedAt"`
	UpdatedAt time.Time

	Source        ItemSource
	ErrorDetails  *ErrorDetails
	IdempotencyKey string `badgerholdIndex:"IdempotencyKey"`
}

// NewRootQueueItem creates a new root-lineage item (parentId=nil,
// depth=0, rootId=self).
func NewRootQueueItem(itemType ItemType, subType SubType, url string, payload map[string]interface{}, source ItemSource, maxAttempts int) *QueueItem {
	now := time.Now()
	id := "qi_" + uuid.New().String()
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return &QueueItem{
		ID:            id,
		Type:          itemType,
		SubType:       subType,
		Status:        StatusPending,
		URL:           url,
		Payload:       payload,
		ParentID:      nil,
		RootID:        id,
		Depth:         0,
		Attempts:      0,
		MaxAttempts:   maxAttempts,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
		Source:        source,
	}
}

// NewChildQueueItem creates a fan-out item whose lineage is rooted at
// parent.RootID, one depth deeper than parent.
func NewChildQueueItem(parent *QueueItem, itemType ItemType, subType SubType, url string, payload map[string]interface{}, maxAttempts int) *QueueItem {
	now := time.Now()
	id := "qi_" + uuid.New().String()
	if payload == nil {
		payload = make(map[string]interface{})
	}
	parentID := parent.ID
	return &QueueItem{
		ID:            id,
		Type:          itemType,
		SubType:       subType,
		Status:        StatusPending,
		URL:           url,
		Payload:       payload,
		ParentID:      &parentID,
		RootID:        parent.RootID,
		Depth:         parent.Depth + 1,
		Attempts:      0,
		MaxAttempts:   maxAttempts,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
		Source:        SourceFanOut,
	}
}

// IsRoot reports whether this item has no parent.
func (q *QueueItem) IsRoot() bool {
	return q.ParentID == nil
}

// GetPayloadString reads a string field out of the opaque payload blob.
func (q *QueueItem) GetPayloadString(key string) (string, bool) {
	v, ok := q.Payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetPayloadInt reads an int field out of the opaque payload blob, handling
// the float64 representation JSON decoding produces.
func (q *QueueItem) GetPayloadInt(key string) (int, bool) {
	v, ok := q.Payload[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
