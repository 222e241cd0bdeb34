package leads

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/daniellim27/leadgen-scraper/internal/config"
	"github.com/daniellim27/leadgen-scraper/internal/model"
	"github.com/daniellim27/leadgen-scraper/internal/resilience"
	"github.com/daniellim27/leadgen-scraper/pkg/google"
)

const (
	defaultLocation   = "United States"
	defaultMaxResults = 20
)

// Searcher runs the tiered business search against the places provider.
type Searcher struct {
	cfg    *config.Config
	places google.Client
}

// NewSearcher creates a Searcher. The places key is checked on every call so
// that a missing key surfaces as a configuration error, not a startup failure.
func NewSearcher(cfg *config.Config, places google.Client) *Searcher {
	return &Searcher{cfg: cfg, places: places}
}

// PrimaryQuery returns the first text query sent for q. Domain searches use
// the bare company name so large brands are not narrowed by location.
func PrimaryQuery(q model.SearchQuery, location string) string {
	if q.IsDomainSearch {
		return q.Query
	}
	return q.Query + " in " + location
}

// FallbackQueries returns the ordered rewrites tried when the primary query
// finds nothing. locationSupplied is false when location is the default.
func FallbackQueries(q model.SearchQuery, location string, locationSupplied bool) []string {
	if q.IsDomainSearch {
		alts := []string{
			q.Query + " business",
			q.Query + " store",
			q.Query + " company",
		}
		if IsWellKnownBrand(q.Query) {
			alts = append(alts, q.Query)
		}
		return alts
	}

	alts := []string{q.Query}
	if locationSupplied {
		alts = append(alts, q.Query+" "+location)
	}
	return alts
}

// Search finds businesses matching raw. An empty result is not an error.
// A failure of the primary request is returned; failures of fallback
// requests are logged and the next fallback is tried.
//
// maxResults outside 1..20 becomes 20: the default, and also the most a
// single Places Text Search page returns.
func (s *Searcher) Search(ctx context.Context, raw, location string, maxResults int) ([]model.BusinessSummary, error) {
	if s.cfg.Places.Key == "" {
		return nil, resilience.NewConfigError("Google Maps API key is not configured")
	}

	q, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	locationSupplied := strings.TrimSpace(location) != ""
	if !locationSupplied {
		location = s.defaultLocation()
	}
	if maxResults <= 0 || maxResults > defaultMaxResults {
		maxResults = defaultMaxResults
	}

	log := zap.L().With(
		zap.String("query", q.Query),
		zap.Bool("domain_search", q.IsDomainSearch),
		zap.String("location", location),
	)

	primary := PrimaryQuery(q, location)
	log.Info("leads: searching businesses", zap.String("text_query", primary))

	results, err := s.textSearch(ctx, primary, maxResults)
	if err != nil {
		log.Error("leads: primary search failed",
			zap.String("text_query", primary),
			zap.String("kind", resilience.Kind(err)),
			zap.Error(err),
		)
		return nil, eris.Wrap(err, "leads: primary search")
	}
	if len(results) > 0 {
		log.Info("leads: search complete", zap.Int("results", len(results)))
		return results, nil
	}

	log.Info("leads: no results for primary query, trying fallbacks", zap.String("text_query", primary))

	for _, alt := range FallbackQueries(q, location, locationSupplied) {
		results, err := s.textSearch(ctx, alt, maxResults)
		if err != nil {
			log.Warn("leads: fallback search failed",
				zap.String("text_query", alt),
				zap.Error(err),
			)
			continue
		}
		log.Debug("leads: fallback search", zap.String("text_query", alt), zap.Int("results", len(results)))
		if len(results) > 0 {
			log.Info("leads: search complete via fallback",
				zap.String("text_query", alt),
				zap.Int("results", len(results)),
			)
			return results, nil
		}
	}

	log.Info("leads: no businesses found")
	return []model.BusinessSummary{}, nil
}

func (s *Searcher) defaultLocation() string {
	if s.cfg.Search.DefaultLocation != "" {
		return s.cfg.Search.DefaultLocation
	}
	return defaultLocation
}

func (s *Searcher) textSearch(ctx context.Context, text string, maxResults int) ([]model.BusinessSummary, error) {
	resp, err := s.places.TextSearch(ctx, google.TextSearchRequest{
		TextQuery:      text,
		LanguageCode:   s.languageCode(),
		MaxResultCount: maxResults,
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.BusinessSummary, 0, len(resp.Places))
	for _, p := range resp.Places {
		out = append(out, toSummary(p))
	}
	return out, nil
}

func (s *Searcher) languageCode() string {
	if s.cfg.Places.LanguageCode != "" {
		return s.cfg.Places.LanguageCode
	}
	return "en"
}

func toSummary(p google.Place) model.BusinessSummary {
	return model.BusinessSummary{
		PlaceID:      p.ID,
		Name:         p.DisplayName.Text,
		Address:      p.FormattedAddress,
		Rating:       model.NewRating(p.Rating),
		TotalRatings: p.UserRatingCount,
		Location:     toLatLng(p.Location),
	}
}

func toLatLng(l *google.LatLng) model.LatLng {
	if l == nil {
		return model.LatLng{}
	}
	lat, lng := l.Latitude, l.Longitude
	return model.LatLng{Lat: &lat, Lng: &lng}
}
