package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniellim27/leadgen-scraper/internal/resilience"
)

func TestNormalize_WellKnownBrands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"walmart.com", "Walmart"},
		{"target.com", "Target"},
		{"amazon.com", "Amazon"},
		{"costco.com", "Costco"},
		{"bestbuy.com", "Best Buy"},
		{"https://www.Walmart.com/store", "Walmart"},
		{"BESTBUY.com", "Best Buy"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			q, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.True(t, q.IsDomainSearch)
			assert.Equal(t, tt.want, q.Query)
		})
	}
}

func TestNormalize_DomainInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		query  string
		domain string
	}{
		{"acmeplumbing.com", "acmeplumbing", "acmeplumbing.com"},
		{"www.acmeplumbing.com", "acmeplumbing", "acmeplumbing.com"},
		{"http://shop.example.co.uk/path?q=1", "shop", "shop.example.co.uk"},
		{"https://www.joes-diner.net", "joes-diner", "joes-diner.net"},
		{"  acme.io  ", "acme", "acme.io"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			q, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.True(t, q.IsDomainSearch)
			assert.Equal(t, tt.query, q.Query)
			assert.Equal(t, tt.domain, q.Domain)
			assert.Equal(t, tt.in, q.Raw)
		})
	}
}

func TestNormalize_SchemeWithoutDot(t *testing.T) {
	t.Parallel()

	q, err := Normalize("http://localhost")
	require.NoError(t, err)
	assert.True(t, q.IsDomainSearch)
	assert.Equal(t, "localhost", q.Query)
}

func TestNormalize_FreeText(t *testing.T) {
	t.Parallel()

	q, err := Normalize("  coffee shops ")
	require.NoError(t, err)
	assert.False(t, q.IsDomainSearch)
	assert.Equal(t, "coffee shops", q.Query)
	assert.Equal(t, "  coffee shops ", q.Raw)
	assert.Empty(t, q.Domain)
}

func TestNormalize_AnyDotIsDomainSearch(t *testing.T) {
	t.Parallel()

	for _, in := range []string{".", "a.b", "St. Louis bakeries", "/x.y", "http://[::1", "1.2.3.4", "..."} {
		q, err := Normalize(in)
		require.NoError(t, err, in)
		assert.True(t, q.IsDomainSearch, in)
		assert.NotEmpty(t, q.Query, in)
	}
}

func TestNormalize_Empty(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := Normalize(in)
		require.Error(t, err)
		assert.True(t, resilience.IsConfig(err))
	}
}

func TestExtractDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"example.com", "example.com"},
		{"https://www.example.com/about", "example.com"},
		{"http://example.com:8080/x", "example.com:8080"},
		// Unparseable host falls back to the text before the first slash.
		{"http://[bad/path", "[bad"},
		{"/relative/path.html", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractDomain(tt.in))
		})
	}
}

func TestBrandName(t *testing.T) {
	t.Parallel()

	name, ok := BrandName("WalMart")
	assert.True(t, ok)
	assert.Equal(t, "Walmart", name)

	_, ok = BrandName("kroger")
	assert.False(t, ok)

	assert.True(t, IsWellKnownBrand("Best Buy"))
	assert.True(t, IsWellKnownBrand("costco"))
	assert.False(t, IsWellKnownBrand("acme"))
}
