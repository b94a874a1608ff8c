package interfaces

import (
	"context"

	"github.com/ternarybob/jobpipeline/internal/models"
)

// FetchedListing is a single job posting URL plus whatever metadata the
// source's listing index already carries, before the posting page itself
// has been fetched.
type FetchedListing struct {
	URL         string
	Title       string
	CompanyName string
	PostedAt    string
}

// FetchedPage is a single posting's fetched and normalized content.
type FetchedPage struct {
	URL             string
	Title           string
	MarkdownContent string
	RawHTML         string
}

// ScraperAdapter abstracts the three backends (HTML, RSS, headless
// browser) behind one capability surface the processor graph calls
// without knowing which kind of models.JobSource it is fetching.
type ScraperAdapter interface {
	// FetchSource retrieves the index/listing page of source and returns
	// the individual postings it references.
	FetchSource(ctx context.Context, source *models.JobSource) ([]FetchedListing, error)
	// FetchListing retrieves and normalizes a single posting page.
	FetchListing(ctx context.Context, url string) (*FetchedPage, error)
	Kind() models.SourceKind
}

// ScraperRegistry looks up the ScraperAdapter for a JobSource's kind.
type ScraperRegistry interface {
	Register(kind models.SourceKind, adapter ScraperAdapter)
	Get(kind models.SourceKind) (ScraperAdapter, bool)
}
