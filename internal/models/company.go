package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company is a deduplicated employer entity, fanned out for enrichment
// independently of any single JobListing.
type Company struct {
	ID       string `badgerhold:"key"`
	DedupKey string `badgerholdIndex:"DedupKey"`

	Name        string
	Domain      string
	Description string
	Industry    string
	SizeRange   string
	Locations   []string

	Enriched   bool
	EnrichedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCompany builds a Company with a fresh prefixed ID and a canonical
// dedup key derived from name.
func NewCompany(name string) *Company {
	now := time.Now()
	return &Company{
		ID:        "co_" + uuid.New().String(),
		DedupKey:  CanonicalCompanyKey(name),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

var (
	legalSuffixPattern = regexp.MustCompile(`(?i)\b(inc|incorporated|corp|corporation|llc|ltd|limited|co|company|gmbh|plc|llp|lp)\.?\s*$`)
	punctuationPattern = regexp.MustCompile(`[^a-z0-9]+`)
	repeatSpacePattern = regexp.MustCompile(`\s+`)
)

// CanonicalCompanyKey lowercases, strips legal suffixes (Inc, LLC, Corp,
// ...) and punctuation, and collapses whitespace so that "Acme, Inc."
// and "ACME LLC" dedup to the same Company.
func CanonicalCompanyKey(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for {
		stripped := legalSuffixPattern.ReplaceAllString(s, "")
		stripped = strings.TrimSpace(stripped)
		if stripped == s {
			break
		}
		s = stripped
	}
	s = punctuationPattern.ReplaceAllString(s, " ")
	s = repeatSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
