package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/daniellim27/leadgen-scraper/internal/export"
	"github.com/daniellim27/leadgen-scraper/internal/insight"
	"github.com/daniellim27/leadgen-scraper/internal/resilience"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	p, err := readParams(w, r)
	if err != nil {
		writeError(w, err.Error())
		return
	}

	query := strings.TrimSpace(p.String("query"))
	location := strings.TrimSpace(p.String("location"))

	log := logger(r).With(zap.String("query", query), zap.String("location", location))
	log.Info("server: search request received")

	if query == "" {
		log.Warn("server: empty query")
		writeError(w, "Please enter a business URL")
		return
	}

	businesses, err := s.deps.Searcher.Search(r.Context(), query, location, s.cfg.Search.MaxResults)
	if err != nil {
		log.Error("server: search failed", zap.String("kind", resilience.Kind(err)), zap.Error(err))
		if resilience.IsConfig(err) {
			writeError(w, err.Error())
			return
		}
		writeError(w, "An error occurred while searching: "+err.Error())
		return
	}

	log.Info("server: search complete", zap.Int("businesses", len(businesses)))
	writeJSON(w, map[string]any{"success": true, "businesses": businesses})
}

func (s *Server) handleBusinessDetails(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")
	log := logger(r).With(zap.String("place_id", placeID))
	log.Info("server: business details requested")

	details, err := s.deps.Detailer.Details(r.Context(), placeID)
	if err != nil {
		log.Error("server: business details failed", zap.Error(err))
		writeError(w, err.Error())
		return
	}

	var financials any
	if details.Name != "" {
		if fin := s.deps.Finance.ForBusiness(r.Context(), details.Name); fin != nil {
			financials = fin
		}
	}

	writeJSON(w, map[string]any{
		"success":        true,
		"details":        details,
		"financial_data": financials,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BusinessData insight.BusinessInput `json:"business_data"`
	}
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, "invalid request body: "+err.Error())
		return
	}

	insights, err := s.deps.Insights.Generate(r.Context(), req.BusinessData)
	if err != nil {
		logger(r).Error("server: generating insights failed", zap.Error(err))
		writeError(w, err.Error())
		return
	}
	writeJSON(w, map[string]any{"success": true, "insights": insights})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p, err := readParams(w, r)
	if err != nil {
		writeError(w, err.Error())
		return
	}

	format := export.ParseFormat(p.String("format"))
	records := p.Raw("businesses")

	log := logger(r).With(zap.String("format", string(format)), zap.Int("bytes", len(records)))
	log.Info("server: export request received")

	if !p.isJSON && len(records) > 0 && !json.Valid(records) {
		log.Error("server: invalid businesses json")
		writeError(w, "Invalid JSON data provided")
		return
	}
	if len(records) == 0 || bytes.Equal(bytes.TrimSpace(records), []byte("null")) {
		records = []byte("[]")
	}

	file, err := s.deps.Exporter.Write(records, format)
	if err != nil {
		log.Error("server: export failed", zap.Error(err))
		if resilience.IsConfig(err) {
			writeError(w, err.Error())
			return
		}
		writeError(w, "Error exporting data: "+err.Error())
		return
	}

	f, err := os.Open(file.Path)
	if err != nil {
		log.Error("server: open export", zap.Error(err))
		writeError(w, "Error exporting data: "+err.Error())
		return
	}
	defer f.Close() //nolint:errcheck

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.DownloadName}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		log.Warn("server: send export", zap.Error(err))
	}
}
