// Package server exposes the lead generation operations over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daniellim27/leadgen-scraper/internal/config"
	"github.com/daniellim27/leadgen-scraper/internal/export"
	"github.com/daniellim27/leadgen-scraper/internal/finance"
	"github.com/daniellim27/leadgen-scraper/internal/insight"
	"github.com/daniellim27/leadgen-scraper/internal/model"
	"github.com/daniellim27/leadgen-scraper/pkg/fmp"
)

// Searcher runs a tiered business search.
type Searcher interface {
	Search(ctx context.Context, raw, location string, maxResults int) ([]model.BusinessSummary, error)
}

// Detailer resolves a place ID to a business with contact details.
type Detailer interface {
	Details(ctx context.Context, placeID string) (*model.BusinessDetail, error)
}

// Finance provides public-company financial lookups.
type Finance interface {
	SearchCompany(ctx context.Context, name string) finance.Result[[]fmp.Record]
	Profile(ctx context.Context, ticker string) finance.Result[fmp.Record]
	Ratios(ctx context.Context, ticker string) finance.Result[fmp.Record]
	Income(ctx context.Context, ticker, period string, limit int) finance.Result[[]fmp.Record]
	Balance(ctx context.Context, ticker, period string, limit int) finance.Result[[]fmp.Record]
	Summary(ctx context.Context, ticker string) finance.Result[finance.Summary]
	ForBusiness(ctx context.Context, name string) *finance.Financials
}

// InsightGenerator produces an investment assessment for a business.
type InsightGenerator interface {
	Generate(ctx context.Context, in insight.BusinessInput) (model.Insights, error)
}

// Exporter renders business records into a downloadable file.
type Exporter interface {
	Write(records []byte, format export.Format) (*export.File, error)
}

// Deps are the collaborators behind the HTTP routes.
type Deps struct {
	Searcher Searcher
	Detailer Detailer
	Finance  Finance
	Insights InsightGenerator
	Exporter Exporter
}

// Server holds the route handlers.
type Server struct {
	cfg  *config.Config
	deps Deps
}

// New creates a Server.
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{cfg: cfg, deps: deps}
}

const requestIDHeader = "X-Request-Id"

// Routes returns the router with all endpoints and middleware mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	r.Route("/search", func(r chi.Router) {
		r.Post("/", s.handleSearch)
		r.Get("/business/{placeID}", s.handleBusinessDetails)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/export", s.handleExport)
	})

	r.Route("/financial", func(r chi.Router) {
		r.Get("/search", s.handleFinancialSearchInfo)
		r.Post("/search", s.handleFinancialSearch)
		r.Get("/company/{ticker}", s.handleCompany)
		r.Get("/profile/{ticker}", s.handleProfile)
		r.Get("/ratios/{ticker}", s.handleRatios)
		r.Get("/income/{ticker}", s.handleIncome)
		r.Get("/balance/{ticker}", s.handleBalance)
	})

	return r
}

// requestID tags every request with a UUID, reusing one the client sent.
// The ID is stored where middleware.GetReqID finds it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// logger returns the global logger tagged with the request ID.
func logger(r *http.Request) *zap.Logger {
	return zap.L().With(zap.String("request_id", middleware.GetReqID(r.Context())))
}
