// Package fmp is a thin client for the Financial Modeling Prep v3 REST API.
package fmp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/daniellim27/leadgen-scraper/internal/resilience"
)

const defaultBaseURL = "https://financialmodelingprep.com/api/v3"

// Record is a single provider object. FMP schemas are wide and change
// without versioning, so fields are kept as decoded JSON.
type Record map[string]any

// String returns the string value of key, or "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Client performs Financial Modeling Prep API operations.
type Client interface {
	Search(ctx context.Context, query string, limit int) ([]Record, error)
	Profile(ctx context.Context, ticker string) ([]Record, error)
	RatiosTTM(ctx context.Context, ticker string) ([]Record, error)
	IncomeStatement(ctx context.Context, ticker, period string, limit int) ([]Record, error)
	BalanceSheet(ctx context.Context, ticker, period string, limit int) ([]Record, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an FMP API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	params := url.Values{}
	params.Set("query", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.get(ctx, "/search", params)
}

func (c *httpClient) Profile(ctx context.Context, ticker string) ([]Record, error) {
	return c.get(ctx, "/profile/"+url.PathEscape(ticker), nil)
}

func (c *httpClient) RatiosTTM(ctx context.Context, ticker string) ([]Record, error) {
	return c.get(ctx, "/ratios-ttm/"+url.PathEscape(ticker), nil)
}

func (c *httpClient) IncomeStatement(ctx context.Context, ticker, period string, limit int) ([]Record, error) {
	return c.get(ctx, "/income-statement/"+url.PathEscape(ticker), statementParams(period, limit))
}

func (c *httpClient) BalanceSheet(ctx context.Context, ticker, period string, limit int) ([]Record, error) {
	return c.get(ctx, "/balance-sheet-statement/"+url.PathEscape(ticker), statementParams(period, limit))
}

func statementParams(period string, limit int) url.Values {
	params := url.Values{}
	if period != "" {
		params.Set("period", period)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return params
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values) ([]Record, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "fmp: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// The request URL carries the API key; keep it out of the error text.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, eris.Wrap(err, "fmp: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "fmp: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("fmp: unexpected status %d: %s", resp.StatusCode, truncate(string(body), 300))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	return decodeRecords(body)
}

// decodeRecords accepts the usual JSON array, a single object, or the
// {"Error Message": ...} object FMP sends with a 200 for plan/key problems.
func decodeRecords(body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []Record{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if trimmed[0] == '{' {
		var obj Record
		if err := dec.Decode(&obj); err != nil {
			return nil, eris.Wrap(err, "fmp: decode response")
		}
		if msg := obj.String("Error Message"); msg != "" {
			return nil, eris.Errorf("fmp: %s", msg)
		}
		return []Record{obj}, nil
	}

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, eris.Wrap(err, "fmp: decode response")
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
