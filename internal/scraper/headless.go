package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// browserPool is a fixed-size, round-robin pool of pre-warmed chromedp
// browser contexts, adapted from services/crawler.ChromeDPPool. One
// pool is shared by every HeadlessAdapter call rather than spinning up
// a browser per request, since Chrome startup dominates latency
// otherwise.
type browserPool struct {
	mu               sync.Mutex
	browsers         []context.Context
	browserCancels   []context.CancelFunc
	allocatorCancels []context.CancelFunc
	currentIndex     int
	userAgent        string
	logger           arbor.ILogger
}

func newBrowserPool(size int, userAgent string, logger arbor.ILogger) (*browserPool, error) {
	if size <= 0 {
		size = 1
	}
	p := &browserPool{userAgent: userAgent, logger: logger}

	for i := 0; i < size; i++ {
		if err := p.addInstance(); err != nil {
			if len(p.browsers) == 0 {
				p.shutdown()
				return nil, fmt.Errorf("failed to start any headless browser instance: %w", err)
			}
			logger.Warn().Err(err).Int("index", i).Msg("failed to start headless browser instance, continuing with fewer")
			continue
		}
	}
	return p, nil
}

func (p *browserPool) addInstance() error {
	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(p.userAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), allocatorOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	testCtx, testCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer testCancel()
	if err := chromedp.Run(testCtx, chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return err
	}

	p.browsers = append(p.browsers, browserCtx)
	p.browserCancels = append(p.browserCancels, browserCancel)
	p.allocatorCancels = append(p.allocatorCancels, allocatorCancel)
	return nil
}

func (p *browserPool) acquire() (context.Context, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.browsers) == 0 {
		return nil, fmt.Errorf("headless browser pool has no instances")
	}
	ctx := p.browsers[p.currentIndex%len(p.browsers)]
	p.currentIndex++
	return ctx, nil
}

func (p *browserPool) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cancel := range p.browserCancels {
		cancel()
	}
	for _, cancel := range p.allocatorCancels {
		cancel()
	}
	p.browsers = nil
	p.browserCancels = nil
	p.allocatorCancels = nil
}

// HeadlessAdapter renders a page with a pooled headless Chrome instance
// before extracting content, for sources that require JavaScript
// execution to populate their listing or posting DOM.
type HeadlessAdapter struct {
	config  common.CrawlerConfig
	limiter *hostRateLimiter
	pool    *browserPool
	logger  arbor.ILogger
	conv    *md.Converter
}

// NewHeadlessAdapter constructs a HeadlessAdapter and starts its browser
// pool. Returns an error if no browser instance could be started.
func NewHeadlessAdapter(config common.CrawlerConfig, logger arbor.ILogger) (*HeadlessAdapter, error) {
	pool, err := newBrowserPool(config.HeadlessPoolSize, config.UserAgent, logger)
	if err != nil {
		return nil, err
	}
	return &HeadlessAdapter{
		config:  config,
		limiter: newHostRateLimiter(config.RequestsPerSecond),
		pool:    pool,
		logger:  logger,
		conv:    md.NewConverter("", true, nil),
	}, nil
}

func (a *HeadlessAdapter) Kind() models.SourceKind { return models.SourceKindHeadless }

// Close shuts down every pooled browser instance.
func (a *HeadlessAdapter) Close() error {
	a.pool.shutdown()
	return nil
}

func (a *HeadlessAdapter) render(ctx context.Context, rawURL string) (string, string, error) {
	if err := a.limiter.Wait(ctx, rawURL); err != nil {
		return "", "", err
	}

	browserCtx, err := a.pool.acquire()
	if err != nil {
		return "", "", models.Classify(models.ErrorKindTransient, err, 0)
	}

	tabCtx, cancel := chromedp.NewContext(browserCtx)
	defer cancel()

	timeout := a.config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, runCancel := context.WithTimeout(tabCtx, timeout)
	defer runCancel()

	var html, title string
	attempts := a.config.HeadlessMaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = chromedp.Run(runCtx,
			chromedp.Navigate(rawURL),
			chromedp.Sleep(a.config.HeadlessWaitTime),
			chromedp.Title(&title),
			chromedp.OuterHTML("html", &html),
		)
		if lastErr == nil {
			return html, title, nil
		}
	}
	return "", "", models.Classify(models.ErrorKindTransient, fmt.Errorf("headless render of %s failed after %d attempts: %w", rawURL, attempts, lastErr), 0)
}

func (a *HeadlessAdapter) FetchSource(ctx context.Context, source *models.JobSource) ([]interfaces.FetchedListing, error) {
	html, _, err := a.render(ctx, source.URL)
	if err != nil {
		return nil, err
	}
	return extractListingsFromHTML(html, source.URL)
}

func (a *HeadlessAdapter) FetchListing(ctx context.Context, rawURL string) (*interfaces.FetchedPage, error) {
	html, title, err := a.render(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	markdown, err := a.conv.ConvertString(html)
	if err != nil {
		return nil, models.Classify(models.ErrorKindParseError, fmt.Errorf("converting rendered %s to markdown: %w", rawURL, err), 0)
	}

	return &interfaces.FetchedPage{
		URL:             rawURL,
		Title:           strings.TrimSpace(title),
		MarkdownContent: markdown,
		RawHTML:         html,
	}, nil
}
