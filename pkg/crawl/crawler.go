package crawl

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PageType distinguishes HTML pages from PDF documents in crawl results.
type PageType string

const (
	PageHTML PageType = "page"
	PagePDF  PageType = "pdf"
)

// Record is one crawled document with its extracted content.
type Record struct {
	URL   string
	Type  PageType
	Depth int
	Page  *Page
}

// Result is the outcome of a crawl run.
type Result struct {
	Records []Record
	Success int
	Errors  int
}

// Crawler walks a single origin depth-first, bounded by depth, with a
// polite delay between sequential fetches. A run is not resumable;
// re-running repopulates from scratch.
type Crawler struct {
	fetcher      *Fetcher
	maxDepth     int
	delay        time.Duration
	allowedHosts map[string]struct{}
	logger       *zap.Logger
}

// Config holds crawler construction parameters.
type Config struct {
	MaxDepth     int
	Delay        time.Duration
	AllowedHosts []string
}

// NewCrawler creates a Crawler around the given fetcher.
func NewCrawler(fetcher *Fetcher, cfg Config, logger *zap.Logger) *Crawler {
	hosts := make(map[string]struct{}, len(cfg.AllowedHosts)+1)
	for _, h := range cfg.AllowedHosts {
		hosts[strings.ToLower(h)] = struct{}{}
	}
	hosts[""] = struct{}{} // relative URLs resolve inside the origin

	return &Crawler{
		fetcher:      fetcher,
		maxDepth:     cfg.MaxDepth,
		delay:        cfg.Delay,
		allowedHosts: hosts,
		logger:       logger.Named("crawler"),
	}
}

// run tracks the mutable state of one crawl.
type run struct {
	visited map[string]struct{}
	result  *Result
}

// Run crawls from seed and returns every extracted record. Per-URL
// failures advance the error counter and never abort the run. Termination
// is guaranteed by the visited set and the depth bound.
func (c *Crawler) Run(ctx context.Context, seed string) (*Result, error) {
	r := &run{
		visited: make(map[string]struct{}),
		result:  &Result{},
	}

	c.logger.Info("Starting crawl",
		zap.String("seed", seed),
		zap.Int("max_depth", c.maxDepth))

	if err := c.crawlPage(ctx, r, seed, 0); err != nil {
		// Only context cancellation propagates.
		return r.result, err
	}

	c.logger.Info("Crawl finished",
		zap.Int("pages", len(r.result.Records)),
		zap.Int("success", r.result.Success),
		zap.Int("errors", r.result.Errors))

	return r.result, nil
}

func (c *Crawler) crawlPage(ctx context.Context, r *run, pageURL string, depth int) error {
	if depth > c.maxDepth {
		return nil
	}
	if _, seen := r.visited[pageURL]; seen {
		return nil
	}
	if !c.isAllowedURL(pageURL) {
		return nil
	}
	r.visited[pageURL] = struct{}{}

	res := c.fetcher.Fetch(ctx, pageURL)
	if err := c.pause(ctx); err != nil {
		return err
	}
	if res.Outcome != FetchOK {
		r.result.Errors++
		return nil
	}

	page := ExtractHTML(res.Body, pageURL)
	r.result.Records = append(r.result.Records, Record{
		URL:   pageURL,
		Type:  PageHTML,
		Depth: depth,
		Page:  page,
	})
	r.result.Success++

	c.logger.Debug("Crawled page",
		zap.String("url", pageURL),
		zap.Int("depth", depth),
		zap.Int("links", len(page.Links)))

	for _, link := range page.Links {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if link.Type == LinkPDF {
			if err := c.crawlPDF(ctx, r, link.URL, depth+1); err != nil {
				return err
			}
			continue
		}
		if depth < c.maxDepth {
			if err := c.crawlPage(ctx, r, link.URL, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Crawler) crawlPDF(ctx context.Context, r *run, pdfURL string, depth int) error {
	if _, seen := r.visited[pdfURL]; seen {
		return nil
	}
	if !c.isAllowedURL(pdfURL) {
		return nil
	}
	r.visited[pdfURL] = struct{}{}

	res := c.fetcher.FetchPDF(ctx, pdfURL)
	if err := c.pause(ctx); err != nil {
		return err
	}
	if res.Outcome != FetchOK {
		r.result.Errors++
		return nil
	}

	content, err := ExtractPDF(res.Body)
	if err != nil || content == "" {
		c.logger.Debug("PDF yielded no text", zap.String("url", pdfURL), zap.Error(err))
		r.result.Errors++
		return nil
	}

	title := pdfTitle(pdfURL)
	r.result.Records = append(r.result.Records, Record{
		URL:   pdfURL,
		Type:  PagePDF,
		Depth: depth,
		Page:  &Page{Title: title, Content: content},
	})
	r.result.Success++
	return nil
}

// isAllowedURL accepts http/https URLs whose host is on the allow-list.
// Bare fragments and other schemes are invalid.
func (c *Crawler) isAllowedURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Scheme == "" && u.Host == "" && u.Path == "" {
		return false // fragment-only reference
	}
	_, ok := c.allowedHosts[strings.ToLower(u.Host)]
	return ok
}

// pause sleeps the polite delay, or returns early on cancellation.
func (c *Crawler) pause(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(c.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pdfTitle derives a readable title from the last path segment of a PDF URL.
func pdfTitle(pdfURL string) string {
	u, err := url.Parse(pdfURL)
	if err != nil {
		return pdfURL
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	name := segments[len(segments)-1]
	name = strings.TrimSuffix(name, ".pdf")
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return pdfURL
	}
	return name
}
