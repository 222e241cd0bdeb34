// Package leads implements business discovery: query normalization, the
// tiered places search, and detail resolution with contact extraction.
package leads

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/daniellim27/leadgen-scraper/internal/model"
	"github.com/daniellim27/leadgen-scraper/internal/resilience"
)

// wellKnownBrands maps folded domain names to the display names the places
// index uses for them.
var wellKnownBrands = map[string]string{
	"walmart": "Walmart",
	"target":  "Target",
	"amazon":  "Amazon",
	"costco":  "Costco",
	"bestbuy": "Best Buy",
}

var folder = cases.Fold()

// BrandName returns the canonical display name for a well-known brand key,
// compared case-insensitively.
func BrandName(name string) (string, bool) {
	display, ok := wellKnownBrands[folder.String(name)]
	return display, ok
}

// IsWellKnownBrand reports whether name (a domain key or a display name)
// belongs to the well-known brand set.
func IsWellKnownBrand(name string) bool {
	if _, ok := BrandName(name); ok {
		return true
	}
	for _, display := range wellKnownBrands {
		if strings.EqualFold(display, name) {
			return true
		}
	}
	return false
}

func hasScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func stripScheme(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "https://", ""), "http://", "")
}

// ExtractDomain returns the host of a URL without scheme or leading "www.".
// Malformed input degrades to the text before the first slash.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	withScheme := rawURL
	if !hasScheme(withScheme) {
		withScheme = "https://" + withScheme
	}

	u, err := url.Parse(withScheme)
	if err != nil || u.Host == "" {
		zap.L().Debug("leads: could not parse host, using text before first slash",
			zap.String("url", rawURL),
		)
		cleaned := stripScheme(withScheme)
		domain, _, _ := strings.Cut(cleaned, "/")
		return domain
	}

	return strings.TrimPrefix(u.Host, "www.")
}

// Normalize turns a raw user query into a SearchQuery. It fails only when
// the query is empty; malformed URLs degrade to a best-effort string. The
// caller's raw string is carried unchanged in SearchQuery.Raw.
func Normalize(raw string) (model.SearchQuery, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.SearchQuery{}, resilience.NewConfigError("search query cannot be empty")
	}

	q := model.SearchQuery{Raw: raw, Query: trimmed}
	if !hasScheme(trimmed) && !strings.Contains(trimmed, ".") {
		return q, nil
	}

	q.IsDomainSearch = true
	q.Domain = ExtractDomain(trimmed)

	name, _, _ := strings.Cut(q.Domain, ".")
	if name == "" {
		zap.L().Warn("leads: no company name in domain, using query as is",
			zap.String("query", trimmed),
		)
		return q, nil
	}

	if display, ok := BrandName(name); ok {
		zap.L().Debug("leads: recognized well-known brand",
			zap.String("domain", q.Domain),
			zap.String("name", display),
		)
		name = display
	}
	q.Query = name

	return q, nil
}
