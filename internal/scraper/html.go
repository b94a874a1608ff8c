package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// contextAwareTransport wraps an http.RoundTripper so an in-flight
// request is cancelled as soon as ctx is done, not just at dial time.
// Lifted from services/crawler.HTMLScraper's transport wrapper.
type contextAwareTransport struct {
	base http.RoundTripper
	ctx  context.Context
}

func (t *contextAwareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	select {
	case <-t.ctx.Done():
		return nil, t.ctx.Err()
	default:
	}
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// HTMLAdapter fetches a source's listing page and individual posting
// pages over plain HTTP, extracting links with goquery and converting
// posting bodies to markdown. Grounded on services/crawler.HTMLScraper,
// simplified since this pipeline crawls single pages rather than
// following an arbitrary link graph (colly's depth-limited crawl has no
// equivalent here — a JobSource's listing page names its own postings).
type HTMLAdapter struct {
	config  common.CrawlerConfig
	limiter *hostRateLimiter
	logger  arbor.ILogger
	conv    *md.Converter
}

// NewHTMLAdapter constructs an HTMLAdapter.
func NewHTMLAdapter(config common.CrawlerConfig, logger arbor.ILogger) *HTMLAdapter {
	return &HTMLAdapter{
		config:  config,
		limiter: newHostRateLimiter(config.RequestsPerSecond),
		logger:  logger,
		conv:    md.NewConverter("", true, nil),
	}
}

func (a *HTMLAdapter) Kind() models.SourceKind { return models.SourceKindHTML }

func (a *HTMLAdapter) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, models.Classify(models.ErrorKindValidation, fmt.Errorf("building request for %s: %w", rawURL, err), 0)
	}
	req.Header.Set("User-Agent", a.config.UserAgent)

	client := &http.Client{
		Timeout:   a.config.RequestTimeout,
		Transport: &contextAwareTransport{base: http.DefaultTransport, ctx: ctx},
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, models.Classify(models.ErrorKindTransient, fmt.Errorf("fetching %s: %w", rawURL, err), 0)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, models.Classify(models.ErrorKindNotFound, fmt.Errorf("%s returned 404", rawURL), 0)
	case resp.StatusCode == http.StatusGone:
		return nil, models.Classify(models.ErrorKindGone, fmt.Errorf("%s returned 410", rawURL), 0)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, models.Classify(models.ErrorKindRateLimited, fmt.Errorf("%s returned 429", rawURL), retryAfterSeconds(resp))
	case resp.StatusCode == http.StatusForbidden:
		return nil, models.Classify(models.ErrorKindBlocked, fmt.Errorf("%s returned 403", rawURL), 0)
	case resp.StatusCode >= 500:
		return nil, models.Classify(models.ErrorKindTransient, fmt.Errorf("%s returned %d", rawURL, resp.StatusCode), 0)
	case resp.StatusCode >= 400:
		return nil, models.Classify(models.ErrorKindParseError, fmt.Errorf("%s returned %d", rawURL, resp.StatusCode), 0)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(a.config.MaxBodySize)))
	if err != nil {
		return nil, models.Classify(models.ErrorKindTransient, fmt.Errorf("reading body of %s: %w", rawURL, err), 0)
	}
	return body, nil
}

func retryAfterSeconds(resp *http.Response) int {
	if v := resp.Header.Get("Retry-After"); v != "" {
		var seconds int
		if _, err := fmt.Sscanf(v, "%d", &seconds); err == nil {
			return seconds
		}
	}
	return 0
}

// FetchSource retrieves source's listing page and extracts every anchor
// that looks like a posting link: same host, non-empty text.
func (a *HTMLAdapter) FetchSource(ctx context.Context, source *models.JobSource) ([]interfaces.FetchedListing, error) {
	body, err := a.fetch(ctx, source.URL)
	if err != nil {
		return nil, err
	}
	return extractListingsFromHTML(string(body), source.URL)
}

// extractListingsFromHTML parses html and returns every same-host anchor
// with non-empty text as a candidate posting link. Shared by HTMLAdapter
// and HeadlessAdapter, since a rendered page's listing markup is parsed
// the same way as a plain-fetched one.
func extractListingsFromHTML(html, pageURL string) ([]interfaces.FetchedListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, models.Classify(models.ErrorKindParseError, fmt.Errorf("parsing listing page %s: %w", pageURL, err), 0)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, models.Classify(models.ErrorKindValidation, fmt.Errorf("invalid source URL %s: %w", pageURL, err), 0)
	}

	seen := make(map[string]bool)
	var listings []interfaces.FetchedListing

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		text := strings.TrimSpace(sel.Text())
		if href == "" || text == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil || resolved.Host != base.Host {
			return
		}
		absURL := resolved.String()
		if seen[absURL] {
			return
		}
		seen[absURL] = true
		listings = append(listings, interfaces.FetchedListing{URL: absURL, Title: text})
	})

	return listings, nil
}

// FetchListing retrieves a single posting page and converts its body to
// markdown for downstream extraction.
func (a *HTMLAdapter) FetchListing(ctx context.Context, rawURL string) (*interfaces.FetchedPage, error) {
	body, err := a.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, models.Classify(models.ErrorKindParseError, fmt.Errorf("parsing posting page %s: %w", rawURL, err), 0)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find("meta[property='og:title']").Attr("content")
	}

	markdown, err := a.conv.ConvertString(string(body))
	if err != nil {
		return nil, models.Classify(models.ErrorKindParseError, fmt.Errorf("converting %s to markdown: %w", rawURL, err), 0)
	}

	return &interfaces.FetchedPage{
		URL:             rawURL,
		Title:           title,
		MarkdownContent: markdown,
		RawHTML:         string(body),
	}, nil
}
