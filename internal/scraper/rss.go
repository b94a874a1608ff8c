package scraper

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// rssFeed mirrors just the RSS 2.0 (and Atom-via-RSS-aliasing feeds
// frequently emit) fields this pipeline needs. No third-party RSS
// parser appears anywhere in the retrieval pack, so this is built on
// stdlib encoding/xml rather than inventing a dependency the corpus
// never reached for.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Content     string `xml:"encoded"` // content:encoded, many job boards' RSS feeds carry the full posting here
}

// RSSAdapter fetches a source's RSS/Atom feed and treats each <item> as
// a listing. Since feeds commonly embed the full posting body in
// content:encoded, FetchListing re-parses the cached feed rather than
// issuing a second HTTP request per item when possible; when the item
// isn't cached (e.g. called standalone) it falls back to a plain HTTP
// GET treated as HTML.
type RSSAdapter struct {
	config  common.CrawlerConfig
	limiter *hostRateLimiter
	logger  arbor.ILogger
	conv    *md.Converter

	cacheMu sync.Mutex
	cache   map[string]rssItem
}

func NewRSSAdapter(config common.CrawlerConfig, logger arbor.ILogger) *RSSAdapter {
	return &RSSAdapter{
		config:  config,
		limiter: newHostRateLimiter(config.RequestsPerSecond),
		logger:  logger,
		conv:    md.NewConverter("", true, nil),
		cache:   make(map[string]rssItem),
	}
}

func (a *RSSAdapter) Kind() models.SourceKind { return models.SourceKindRSS }

func (a *RSSAdapter) fetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, models.Classify(models.ErrorKindValidation, err, 0)
	}
	req.Header.Set("User-Agent", a.config.UserAgent)

	client := &http.Client{Timeout: a.config.RequestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, models.Classify(models.ErrorKindTransient, fmt.Errorf("fetching feed %s: %w", rawURL, err), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.Classify(models.ErrorKindNotFound, fmt.Errorf("feed %s returned 404", rawURL), 0)
	}
	if resp.StatusCode >= 400 {
		return nil, models.Classify(models.ErrorKindTransient, fmt.Errorf("feed %s returned %d", rawURL, resp.StatusCode), 0)
	}

	buf := make([]byte, 0, 64*1024)
	chunk := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if len(buf) > a.config.MaxBodySize {
				break
			}
		}
		if readErr != nil {
			break
		}
	}
	return buf, nil
}

func (a *RSSAdapter) FetchSource(ctx context.Context, source *models.JobSource) ([]interfaces.FetchedListing, error) {
	raw, err := a.fetchRaw(ctx, source.URL)
	if err != nil {
		return nil, err
	}

	var feed rssFeed
	if err := xml.Unmarshal(raw, &feed); err != nil {
		return nil, models.Classify(models.ErrorKindParseError, fmt.Errorf("parsing feed %s: %w", source.URL, err), 0)
	}

	listings := make([]interfaces.FetchedListing, 0, len(feed.Channel.Items))
	a.cacheMu.Lock()
	for _, item := range feed.Channel.Items {
		if item.Link == "" {
			continue
		}
		a.cache[item.Link] = item
		listings = append(listings, interfaces.FetchedListing{
			URL:      item.Link,
			Title:    strings.TrimSpace(item.Title),
			PostedAt: item.PubDate,
		})
	}
	a.cacheMu.Unlock()

	return listings, nil
}

func (a *RSSAdapter) FetchListing(ctx context.Context, rawURL string) (*interfaces.FetchedPage, error) {
	a.cacheMu.Lock()
	item, cached := a.cache[rawURL]
	a.cacheMu.Unlock()

	if cached {
		body := item.Content
		if body == "" {
			body = item.Description
		}
		markdown, err := a.conv.ConvertString(body)
		if err != nil {
			return nil, models.Classify(models.ErrorKindParseError, fmt.Errorf("converting feed item %s: %w", rawURL, err), 0)
		}
		return &interfaces.FetchedPage{
			URL:             rawURL,
			Title:           item.Title,
			MarkdownContent: markdown,
			RawHTML:         body,
		}, nil
	}

	raw, err := a.fetchRaw(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	markdown, err := a.conv.ConvertString(string(raw))
	if err != nil {
		return nil, models.Classify(models.ErrorKindParseError, fmt.Errorf("converting %s to markdown: %w", rawURL, err), 0)
	}
	return &interfaces.FetchedPage{URL: rawURL, MarkdownContent: markdown, RawHTML: string(raw)}, nil
}
