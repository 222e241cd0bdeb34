package finance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellim27/leadgen-scraper/internal/config"
	"github.com/daniellim27/leadgen-scraper/pkg/fmp"
)

// fmpServer answers FMP paths from a fixed table. Unknown paths get "[]".
type fmpServer struct {
	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
	hits   []string
}

func (f *fmpServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits = append(f.hits, r.URL.Path)
	f.mu.Unlock()

	if code, ok := f.status[r.URL.Path]; ok {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"message":"upstream"}`))
		return
	}
	body, ok := f.bodies[r.URL.Path]
	if !ok {
		body = "[]"
	}
	_, _ = w.Write([]byte(body))
}

func (f *fmpServer) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.hits...)
}

func newService(t *testing.T, f *fmpServer) *Service {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.FMP.Key = "k"
	cfg.FMP.SearchLimit = 10
	return NewService(cfg, fmp.NewClient(cfg.FMP.Key, fmp.WithBaseURL(srv.URL)))
}

var acmeBodies = map[string]string{
	"/search":                       `[{"symbol":"ACME","name":"Acme Corporation"},{"symbol":"ACM","name":"Acme Mining"}]`,
	"/profile/ACME":                 `[{"symbol":"ACME","companyName":"Acme Corporation","mktCap":5000000000}]`,
	"/ratios-ttm/ACME":              `[{"peRatioTTM":18.2}]`,
	"/income-statement/ACME":        `[{"date":"2024-12-31","revenue":900000000},{"date":"2023-12-31","revenue":800000000}]`,
	"/balance-sheet-statement/ACME": `[{"date":"2024-12-31","totalAssets":1200000000}]`,
}

func TestSummary_Complete(t *testing.T) {
	s := newService(t, &fmpServer{bodies: acmeBodies})

	res := s.Summary(context.Background(), "ACME")
	require.True(t, res.IsOK(), res.Message())

	sum := res.Value()
	assert.Equal(t, "Acme Corporation", sum.Profile.String("companyName"))
	require.True(t, sum.FinancialRatios.IsOK())
	require.True(t, sum.IncomeStatement.IsOK())
	assert.Equal(t, "2024-12-31", sum.IncomeStatement.Value().String("date"))
	require.True(t, sum.BalanceSheet.IsOK())

	out, err := json.Marshal(sum)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"profile": {"symbol":"ACME","companyName":"Acme Corporation","mktCap":5000000000},
		"financial_ratios": {"peRatioTTM":18.2},
		"income_statement": {"date":"2024-12-31","revenue":900000000},
		"balance_sheet": {"date":"2024-12-31","totalAssets":1200000000}
	}`, string(out))
}

func TestSummary_MissingProfileShortCircuits(t *testing.T) {
	f := &fmpServer{bodies: map[string]string{}}
	s := newService(t, f)

	res := s.Summary(context.Background(), "NOPE")
	assert.False(t, res.IsOK())
	assert.Equal(t, "Company not found", res.Message())
	assert.Equal(t, []string{"/profile/NOPE"}, f.requested())
}

func TestSummary_PartialSections(t *testing.T) {
	f := &fmpServer{
		bodies: map[string]string{"/profile/ACME": acmeBodies["/profile/ACME"]},
		status: map[string]int{"/ratios-ttm/ACME": http.StatusForbidden},
	}
	s := newService(t, f)

	res := s.Summary(context.Background(), "ACME")
	require.True(t, res.IsOK())

	sum := res.Value()
	assert.False(t, sum.FinancialRatios.IsOK())
	assert.Contains(t, sum.FinancialRatios.Message(), "403")
	assert.Equal(t, "Income statement not found", sum.IncomeStatement.Message())
	assert.Equal(t, "Balance sheet not found", sum.BalanceSheet.Message())

	out, err := json.Marshal(sum)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"income_statement":{"error":"Income statement not found"}`)
}

func TestMissingKey(t *testing.T) {
	f := &fmpServer{bodies: acmeBodies}
	s := newService(t, f)
	s.cfg.FMP.Key = ""

	ctx := context.Background()
	assert.Equal(t, "API key not configured", s.SearchCompany(ctx, "Acme").Message())
	assert.Equal(t, "API key not configured", s.Profile(ctx, "ACME").Message())
	assert.Equal(t, "API key not configured", s.Ratios(ctx, "ACME").Message())
	assert.Equal(t, "API key not configured", s.Income(ctx, "ACME", "", 0).Message())
	assert.Equal(t, "API key not configured", s.Balance(ctx, "ACME", "", 0).Message())
	assert.Equal(t, "API key not configured", s.Summary(ctx, "ACME").Message())
	assert.Nil(t, s.ForBusiness(ctx, "Acme"))
	assert.Empty(t, f.requested())
}

func TestSearchCompany_EmptyIsSuccess(t *testing.T) {
	s := newService(t, &fmpServer{bodies: map[string]string{"/search": "[]"}})

	res := s.SearchCompany(context.Background(), "Nobody Inc")
	require.True(t, res.IsOK())
	assert.Empty(t, res.Value())

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestStatementsDefaults(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("period")+"/"+r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"date":"2024"}]`))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.FMP.Key = "k"
	s := NewService(cfg, fmp.NewClient("k", fmp.WithBaseURL(srv.URL)))

	require.True(t, s.Income(context.Background(), "ACME", "", 0).IsOK())
	require.True(t, s.Balance(context.Background(), "ACME", "quarter", 3).IsOK())
	assert.Equal(t, []string{"annual/1", "quarter/3"}, queries)
}

func TestForBusiness_FirstHit(t *testing.T) {
	s := newService(t, &fmpServer{bodies: acmeBodies})

	fin := s.ForBusiness(context.Background(), "Acme Plumbing")
	require.NotNil(t, fin)
	assert.Equal(t, "ACME", fin.Ticker)
	assert.Equal(t, "Acme Corporation", fin.CompanyName)
	require.True(t, fin.Summary.IsOK())

	out, err := json.Marshal(fin)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "ACME", m["ticker"])
	assert.Equal(t, "Acme Corporation", m["company_name"])
	assert.Contains(t, m, "profile")
	assert.Contains(t, m, "financial_ratios")
	assert.NotContains(t, m, "error")
}

func TestForBusiness_SummaryFailureKeepsLabels(t *testing.T) {
	s := newService(t, &fmpServer{bodies: map[string]string{
		"/search": `[{"symbol":"GONE"}]`,
	}})

	fin := s.ForBusiness(context.Background(), "Gone Corp")
	require.NotNil(t, fin)
	assert.Equal(t, "Gone Corp", fin.CompanyName)

	out, err := json.Marshal(fin)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Company not found","ticker":"GONE","company_name":"Gone Corp"}`, string(out))
}

func TestForBusiness_NoTicker(t *testing.T) {
	tests := map[string]string{
		"no matches":  `[]`,
		"no symbol":   `[{"name":"Private Co"}]`,
		"search fail": `{"Error Message":"Limit Reach"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			s := newService(t, &fmpServer{bodies: map[string]string{"/search": body}})
			assert.Nil(t, s.ForBusiness(context.Background(), "Private Co"))
		})
	}

	s := newService(t, &fmpServer{})
	assert.Nil(t, s.ForBusiness(context.Background(), ""))
}

func TestResultJSON(t *testing.T) {
	t.Parallel()

	ok, err := json.Marshal(Ok(map[string]int{"a": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(ok))

	fail, err := json.Marshal(Fail[int]("boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"boom"}`, string(fail))

	r := Fail[string]("x")
	assert.False(t, r.IsOK())
	assert.Equal(t, "", r.Value())
	assert.True(t, strings.EqualFold("X", r.Message()))
}
