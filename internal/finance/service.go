// Package finance enriches businesses with public-company financials from
// Financial Modeling Prep. Every lookup returns a Result; provider problems
// never surface as Go errors.
package finance

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daniellim27/leadgen-scraper/internal/config"
	"github.com/daniellim27/leadgen-scraper/pkg/fmp"
)

// Statement defaults, used when the caller leaves period or limit unset.
const (
	DefaultPeriod = "annual"
	DefaultLimit  = 1
)

const msgNoKey = "API key not configured"

// Summary combines the latest profile, TTM ratios and statements for a
// ticker. Sections other than the profile may individually fail.
type Summary struct {
	Profile         fmp.Record         `json:"profile"`
	FinancialRatios Result[fmp.Record] `json:"financial_ratios"`
	IncomeStatement Result[fmp.Record] `json:"income_statement"`
	BalanceSheet    Result[fmp.Record] `json:"balance_sheet"`
}

// Financials is the summary attached to a business detail, labelled with
// the ticker and company it was resolved to.
type Financials struct {
	Ticker      string
	CompanyName string
	Summary     Result[Summary]
}

func (f Financials) MarshalJSON() ([]byte, error) {
	out := struct {
		*Summary
		Error       string `json:"error,omitempty"`
		Ticker      string `json:"ticker"`
		CompanyName string `json:"company_name"`
	}{
		Ticker:      f.Ticker,
		CompanyName: f.CompanyName,
	}
	if f.Summary.IsOK() {
		s := f.Summary.Value()
		out.Summary = &s
	} else {
		out.Error = f.Summary.Message()
	}
	return json.Marshal(out)
}

// Service wraps an fmp.Client with the lookups the application exposes.
type Service struct {
	cfg    *config.Config
	client fmp.Client
}

// NewService creates a Service.
func NewService(cfg *config.Config, client fmp.Client) *Service {
	return &Service{cfg: cfg, client: client}
}

func (s *Service) configured() bool {
	if s.cfg.FMP.Key == "" {
		zap.L().Error("finance: FMP API key is missing")
		return false
	}
	return true
}

// SearchCompany looks up companies whose name matches name. No matches is
// a successful, empty result.
func (s *Service) SearchCompany(ctx context.Context, name string) Result[[]fmp.Record] {
	if !s.configured() {
		return Fail[[]fmp.Record](msgNoKey)
	}

	zap.L().Info("finance: searching company", zap.String("name", name))

	companies, err := s.client.Search(ctx, name, s.cfg.FMP.SearchLimit)
	if err != nil {
		zap.L().Error("finance: company search failed", zap.String("name", name), zap.Error(err))
		return Fail[[]fmp.Record](err.Error())
	}

	zap.L().Info("finance: companies found", zap.String("name", name), zap.Int("count", len(companies)))
	return Ok(companies)
}

// Profile returns the first profile record for ticker.
func (s *Service) Profile(ctx context.Context, ticker string) Result[fmp.Record] {
	return s.first(ctx, "profile", ticker, "Company not found", s.client.Profile)
}

// Ratios returns the trailing-twelve-month ratios for ticker.
func (s *Service) Ratios(ctx context.Context, ticker string) Result[fmp.Record] {
	return s.first(ctx, "ratios", ticker, "Financial ratios not found", s.client.RatiosTTM)
}

// Income returns up to limit income statements for ticker.
func (s *Service) Income(ctx context.Context, ticker, period string, limit int) Result[[]fmp.Record] {
	return s.statements(ctx, "income statement", ticker, period, limit, "Income statement not found", s.client.IncomeStatement)
}

// Balance returns up to limit balance sheets for ticker.
func (s *Service) Balance(ctx context.Context, ticker, period string, limit int) Result[[]fmp.Record] {
	return s.statements(ctx, "balance sheet", ticker, period, limit, "Balance sheet not found", s.client.BalanceSheet)
}

// Summary fetches the profile and, when it exists, the ratios and latest
// annual statements concurrently. A missing profile fails the summary.
func (s *Service) Summary(ctx context.Context, ticker string) Result[Summary] {
	log := zap.L().With(zap.String("ticker", ticker))
	log.Info("finance: building summary")

	profile := s.Profile(ctx, ticker)
	if !profile.IsOK() {
		return Fail[Summary](profile.Message())
	}

	sum := Summary{Profile: profile.Value()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum.FinancialRatios = s.Ratios(gctx, ticker)
		return nil
	})
	g.Go(func() error {
		sum.IncomeStatement = latest(s.Income(gctx, ticker, DefaultPeriod, DefaultLimit))
		return nil
	})
	g.Go(func() error {
		sum.BalanceSheet = latest(s.Balance(gctx, ticker, DefaultPeriod, DefaultLimit))
		return nil
	})
	_ = g.Wait()

	log.Info("finance: summary complete",
		zap.Bool("ratios", sum.FinancialRatios.IsOK()),
		zap.Bool("income", sum.IncomeStatement.IsOK()),
		zap.Bool("balance", sum.BalanceSheet.IsOK()),
	)
	return Ok(sum)
}

// ForBusiness resolves a business name to the first matching ticker and
// returns its summary. It returns nil when no ticker can be resolved.
// The first search hit is taken as-is, so common names may resolve to an
// unrelated listed company.
func (s *Service) ForBusiness(ctx context.Context, name string) *Financials {
	if name == "" {
		return nil
	}
	log := zap.L().With(zap.String("business", name))

	companies := s.SearchCompany(ctx, name)
	if !companies.IsOK() || len(companies.Value()) == 0 {
		log.Info("finance: no listed company found")
		return nil
	}

	first := companies.Value()[0]
	ticker := first.String("symbol")
	if ticker == "" {
		log.Warn("finance: first match has no ticker")
		return nil
	}

	companyName := first.String("name")
	if companyName == "" {
		companyName = name
	}

	log.Info("finance: resolved ticker", zap.String("ticker", ticker))
	return &Financials{
		Ticker:      ticker,
		CompanyName: companyName,
		Summary:     s.Summary(ctx, ticker),
	}
}

func (s *Service) first(
	ctx context.Context,
	what, ticker, notFound string,
	fetch func(context.Context, string) ([]fmp.Record, error),
) Result[fmp.Record] {
	if !s.configured() {
		return Fail[fmp.Record](msgNoKey)
	}

	zap.L().Info("finance: fetching "+what, zap.String("ticker", ticker))

	records, err := fetch(ctx, ticker)
	if err != nil {
		zap.L().Error("finance: "+what+" failed", zap.String("ticker", ticker), zap.Error(err))
		return Fail[fmp.Record](err.Error())
	}
	if len(records) == 0 {
		zap.L().Warn("finance: no "+what+" found", zap.String("ticker", ticker))
		return Fail[fmp.Record](notFound)
	}
	return Ok(records[0])
}

func (s *Service) statements(
	ctx context.Context,
	what, ticker, period string,
	limit int,
	notFound string,
	fetch func(context.Context, string, string, int) ([]fmp.Record, error),
) Result[[]fmp.Record] {
	if !s.configured() {
		return Fail[[]fmp.Record](msgNoKey)
	}
	if period == "" {
		period = DefaultPeriod
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	zap.L().Info("finance: fetching "+what,
		zap.String("ticker", ticker),
		zap.String("period", period),
		zap.Int("limit", limit),
	)

	records, err := fetch(ctx, ticker, period, limit)
	if err != nil {
		zap.L().Error("finance: "+what+" failed", zap.String("ticker", ticker), zap.Error(err))
		return Fail[[]fmp.Record](err.Error())
	}
	if len(records) == 0 {
		zap.L().Warn("finance: no "+what+" found", zap.String("ticker", ticker))
		return Fail[[]fmp.Record](notFound)
	}
	return Ok(records)
}

func latest(r Result[[]fmp.Record]) Result[fmp.Record] {
	if !r.IsOK() {
		return Fail[fmp.Record](r.Message())
	}
	return Ok(r.Value()[0])
}
