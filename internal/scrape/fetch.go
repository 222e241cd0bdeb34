// Package scrape fetches business websites and extracts contact details from them.
package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultFetchTimeout = 10 * time.Second
	defaultMaxBodyBytes = 2 * 1024 * 1024
	defaultUserAgent    = "Mozilla/5.0 (compatible; LeadgenBot/1.0)"
)

// Page is a fetched web page.
type Page struct {
	URL        string
	StatusCode int
	HTML       []byte
}

// Fetcher retrieves a single web page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// FetchOptions configures a PageFetcher. Zero values take defaults.
type FetchOptions struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	HTTPClient   *http.Client
}

// PageFetcher fetches HTML via net/http with a hard per-request timeout.
// The body of any response is returned, whatever its status code: error
// pages are still scanned for contact details.
type PageFetcher struct {
	client *http.Client
	opts   FetchOptions
}

// NewPageFetcher creates a PageFetcher with sensible defaults.
func NewPageFetcher(opts FetchOptions) *PageFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: opts.Timeout,
				}).DialContext,
				TLSHandshakeTimeout: opts.Timeout,
			},
		}
	}

	return &PageFetcher{client: client, opts: opts}
}

// Fetch downloads targetURL and returns its (size-capped) body.
func (f *PageFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: read body")
	}

	return &Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       body,
	}, nil
}
