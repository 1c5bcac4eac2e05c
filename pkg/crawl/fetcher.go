// Package crawl implements the polite site crawler that feeds the campus
// knowledge base: fetching, HTML/PDF extraction, and content chunking.
package crawl

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// desktopUserAgent is sent with every fetch so the origin serves the same
// markup it serves a regular browser.
const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// FetchOutcome classifies a fetch attempt.
type FetchOutcome string

const (
	// FetchOK means a 2xx response with a readable body.
	FetchOK FetchOutcome = "ok"
	// FetchSkip means the URL was refused or answered with a client/server
	// error status; the crawl counts it and moves on.
	FetchSkip FetchOutcome = "skip"
	// FetchError means a transport-level failure (network, timeout).
	FetchError FetchOutcome = "error"
)

// FetchResult is the classified outcome of a single GET.
type FetchResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
	Outcome     FetchOutcome
}

// blockedSchemes are URL schemes the fetcher never follows.
var blockedSchemes = []string{"mailto:", "tel:", "javascript:", "data:"}

// Fetcher performs polite HTTP GETs with a desktop user-agent.
type Fetcher struct {
	client    *http.Client
	pdfClient *http.Client
	logger    *zap.Logger
}

// NewFetcher creates a Fetcher with separate timeouts for HTML pages and
// PDF downloads.
func NewFetcher(timeout, pdfTimeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		pdfClient: &http.Client{Timeout: pdfTimeout},
		logger:    logger.Named("fetcher"),
	}
}

// Fetch performs a GET against url with the page timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string) *FetchResult {
	return f.fetch(ctx, url, f.client)
}

// FetchPDF performs a GET against url with the longer PDF timeout.
func (f *Fetcher) FetchPDF(ctx context.Context, url string) *FetchResult {
	return f.fetch(ctx, url, f.pdfClient)
}

func (f *Fetcher) fetch(ctx context.Context, url string, client *http.Client) *FetchResult {
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(strings.ToLower(url), scheme) {
			f.logger.Debug("Refusing blocked scheme", zap.String("url", url))
			return &FetchResult{Outcome: FetchSkip}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logger.Debug("Invalid request URL", zap.String("url", url), zap.Error(err))
		return &FetchResult{Outcome: FetchError}
	}
	req.Header.Set("User-Agent", desktopUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		f.logger.Warn("Fetch failed", zap.String("url", url), zap.Error(err))
		return &FetchResult{Outcome: FetchError}
	}
	defer resp.Body.Close()

	result := &FetchResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			f.logger.Warn("Failed to read response body",
				zap.String("url", url), zap.Error(err))
			result.Outcome = FetchError
			return result
		}
		result.Body = body
		result.Outcome = FetchOK
	default:
		// 403/404 and every other non-2xx status: counted and skipped.
		f.logger.Debug("Skipping non-2xx response",
			zap.String("url", url), zap.Int("status", resp.StatusCode))
		result.Outcome = FetchSkip
	}

	return result
}
