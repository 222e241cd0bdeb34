package main

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/daniellim27/leadgen-scraper/internal/config"
	"github.com/daniellim27/leadgen-scraper/internal/export"
	"github.com/daniellim27/leadgen-scraper/internal/finance"
	"github.com/daniellim27/leadgen-scraper/internal/insight"
	"github.com/daniellim27/leadgen-scraper/internal/leads"
	"github.com/daniellim27/leadgen-scraper/internal/scrape"
	"github.com/daniellim27/leadgen-scraper/internal/server"
	"github.com/daniellim27/leadgen-scraper/pkg/anthropic"
	"github.com/daniellim27/leadgen-scraper/pkg/fmp"
	"github.com/daniellim27/leadgen-scraper/pkg/google"
)

// appEnv holds the services shared by the serve and CLI commands.
type appEnv struct {
	Searcher *leads.Searcher
	Detailer *leads.Detailer
	Finance  *finance.Service
	Insights *insight.Generator
	Exporter *export.Exporter
}

// Deps returns the services as HTTP handler dependencies.
func (e *appEnv) Deps() server.Deps {
	return server.Deps{
		Searcher: e.Searcher,
		Detailer: e.Detailer,
		Finance:  e.Finance,
		Insights: e.Insights,
		Exporter: e.Exporter,
	}
}

// initApp builds every client and service from c. Missing provider keys
// are not an error here; each service reports them when called.
func initApp(c *config.Config, mode string) (*appEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	places := google.NewClient(c.Places.Key, placesOptions(c.Places)...)

	extractor := scrape.NewContactExtractor(
		scrape.NewPageFetcher(scrape.FetchOptions{
			Timeout:      c.Scrape.Timeout(),
			UserAgent:    c.Scrape.UserAgent,
			MaxBodyBytes: c.Scrape.MaxBodyBytes,
		}),
		scrape.WithMaxSecondaryLinks(c.Scrape.MaxSecondaryLinks),
	)

	fmpOpts := []fmp.Option{
		fmp.WithHTTPClient(&http.Client{Timeout: seconds(c.FMP.TimeoutSecs, 15)}),
	}
	if c.FMP.BaseURL != "" {
		fmpOpts = append(fmpOpts, fmp.WithBaseURL(c.FMP.BaseURL))
	}

	var aiOpts []anthropic.Option
	if c.Anthropic.BaseURL != "" {
		aiOpts = append(aiOpts, anthropic.WithBaseURL(c.Anthropic.BaseURL))
	}

	return &appEnv{
		Searcher: leads.NewSearcher(c, places),
		Detailer: leads.NewDetailer(c, places, extractor),
		Finance:  finance.NewService(c, fmp.NewClient(c.FMP.Key, fmpOpts...)),
		Insights: insight.NewGenerator(c, anthropic.NewClient(c.Anthropic.Key, aiOpts...)),
		Exporter: export.NewExporter(c.Export.TempDir),
	}, nil
}

func placesOptions(pc config.PlacesConfig) []google.Option {
	opts := []google.Option{
		google.WithHTTPClient(&http.Client{Timeout: seconds(pc.TimeoutSecs, 10)}),
	}
	if pc.BaseURL != "" {
		opts = append(opts, google.WithBaseURL(pc.BaseURL))
	}
	if pc.Referer != "" {
		opts = append(opts, google.WithReferer(pc.Referer))
	}
	if pc.RateQPS > 0 {
		opts = append(opts, google.WithLimiter(rate.NewLimiter(rate.Limit(pc.RateQPS), 1)))
	}
	return opts
}

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}
