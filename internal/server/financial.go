package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/daniellim27/leadgen-scraper/internal/finance"
)

func (s *Server) handleFinancialSearchInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"success": true, "message": "Use POST to search for companies"})
}

func (s *Server) handleFinancialSearch(w http.ResponseWriter, r *http.Request) {
	p, err := readParams(w, r)
	if err != nil {
		writeError(w, err.Error())
		return
	}

	name := strings.TrimSpace(p.String("company_name"))
	logger(r).Info("server: financial search request received", zap.String("company_name", name))

	if name == "" {
		writeError(w, "Please provide a company name")
		return
	}
	writeResult(w, "companies", s.deps.Finance.SearchCompany(r.Context(), name))
}

func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	writeResult(w, "data", s.deps.Finance.Summary(r.Context(), chi.URLParam(r, "ticker")))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeResult(w, "profile", s.deps.Finance.Profile(r.Context(), chi.URLParam(r, "ticker")))
}

func (s *Server) handleRatios(w http.ResponseWriter, r *http.Request) {
	writeResult(w, "ratios", s.deps.Finance.Ratios(r.Context(), chi.URLParam(r, "ticker")))
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	period, limit, ok := statementParams(w, r)
	if !ok {
		return
	}
	writeResult(w, "income_statement", s.deps.Finance.Income(r.Context(), chi.URLParam(r, "ticker"), period, limit))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	period, limit, ok := statementParams(w, r)
	if !ok {
		return
	}
	writeResult(w, "balance_sheet", s.deps.Finance.Balance(r.Context(), chi.URLParam(r, "ticker"), period, limit))
}

// statementParams reads ?period= and ?limit=, writing an error response and
// returning ok=false when limit is not an integer.
func statementParams(w http.ResponseWriter, r *http.Request) (period string, limit int, ok bool) {
	q := r.URL.Query()
	period = q.Get("period")
	if period == "" {
		period = finance.DefaultPeriod
	}
	limit = finance.DefaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, "limit must be an integer")
			return "", 0, false
		}
		limit = n
	}
	return period, limit, true
}

// resulter is satisfied by every finance.Result instantiation.
type resulter interface {
	IsOK() bool
	Message() string
}

func writeResult(w http.ResponseWriter, key string, res resulter) {
	if !res.IsOK() {
		writeError(w, res.Message())
		return
	}
	writeJSON(w, map[string]any{"success": true, key: res})
}
