package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// site serves fixed HTML per path and records which paths were requested.
type site struct {
	mu    sync.Mutex
	pages map[string]string
	hits  []string
}

func (s *site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits = append(s.hits, r.URL.Path)
	s.mu.Unlock()

	body, ok := s.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(body))
}

func (s *site) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.hits...)
}

func newSite(t *testing.T, pages map[string]string) (*site, *httptest.Server) {
	t.Helper()
	s := &site{pages: pages}
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, srv
}

func newExtractor(opts ...ContactOption) *ContactExtractor {
	return NewContactExtractor(NewPageFetcher(FetchOptions{Timeout: 2 * time.Second}), opts...)
}

func TestExtract_MainPage(t *testing.T) {
	_, srv := newSite(t, map[string]string{
		"/": `<html><body>
<h1>Acme Plumbing</h1>
<p>Our Founder: Jane A. Doe is a third-generation plumber.</p>
<p>Write to info@acme.example today.</p>
</body></html>`,
	})

	got := newExtractor().Extract(context.Background(), srv.URL+"/")
	assert.Equal(t, "info@acme.example", got.Email)
	assert.Equal(t, "Jane A. Doe", got.CEOName)
}

func TestExtract_NoReplyFiltered(t *testing.T) {
	_, srv := newSite(t, map[string]string{
		"/": `<html><body><p>Contact noreply@example.com or no-reply@example.com</p></body></html>`,
	})

	got := newExtractor().Extract(context.Background(), srv.URL+"/")
	assert.Equal(t, "", got.Email)
	assert.Equal(t, "", got.CEOName)
}

func TestExtract_FirstUsableEmail(t *testing.T) {
	_, srv := newSite(t, map[string]string{
		"/": `<p>noreply@acme.example</p><p>sales@acme.example</p><p>help@acme.example</p>`,
	})

	got := newExtractor().Extract(context.Background(), srv.URL+"/")
	assert.Equal(t, "sales@acme.example", got.Email)
}

func TestExtract_IgnoresScripts(t *testing.T) {
	_, srv := newSite(t, map[string]string{
		"/": `<html><head><script>var CEO = "Hidden Name"; var x = "js@tracker.example";</script>
<style>.CEO{}</style></head><body><p>Nothing to see.</p></body></html>`,
	})

	got := newExtractor(WithMaxSecondaryLinks(0)).Extract(context.Background(), srv.URL+"/")
	assert.Equal(t, "", got.Email)
	assert.Equal(t, "", got.CEOName)
}

func TestExtract_TitlePriority(t *testing.T) {
	_, srv := newSite(t, map[string]string{
		"/": `<p>Owner: Olive Owens</p><p>President: Pat Price</p><p>CEO: Casey Chen</p>`,
	})

	got := newExtractor().Extract(context.Background(), srv.URL+"/")
	assert.Equal(t, "Casey Chen", got.CEOName)
}

func TestExtract_SecondaryPages(t *testing.T) {
	s, srv := newSite(t, map[string]string{
		"/": `<html><body>
<a href="/contact">Contact</a>
<a href="/about-us">About Us</a>
<a href="/our-team">Meet the crew</a>
<a href="/leadership">Leadership</a>
<p>Email hello@acme.example</p>
</body></html>`,
		"/about-us":   `<p>Family owned since 1952.</p>`,
		"/our-team":   `<div>Chief Executive Officer</div><div>Morgan Lee</div>`,
		"/leadership": `<p>CEO: Should Not Be Visited</p>`,
	})

	got := newExtractor().Extract(context.Background(), srv.URL+"/")
	assert.Equal(t, "hello@acme.example", got.Email)
	assert.Equal(t, "Morgan Lee", got.CEOName)
	assert.Equal(t, []string{"/", "/about-us", "/our-team"}, s.requested())
}

func TestExtract_SecondaryPagesCapped(t *testing.T) {
	s, srv := newSite(t, map[string]string{
		"/":           `<a href="/about">About</a><a href="/team">Team</a><a href="/leadership">Leadership</a>`,
		"/about":      `<p>Nothing.</p>`,
		"/team":       `<p>Nothing.</p>`,
		"/leadership": `<p>President: Never Reached</p>`,
	})

	got := newExtractor().Extract(context.Background(), srv.URL+"/")
	assert.Equal(t, "", got.CEOName)
	assert.Equal(t, []string{"/", "/about", "/team"}, s.requested())
}

func TestExtract_SkipsSecondaryWhenNameFound(t *testing.T) {
	s, srv := newSite(t, map[string]string{
		"/":      `<p>Owner: Sam Smith</p><a href="/about">About</a>`,
		"/about": `<p>CEO: Other Person</p>`,
	})

	got := newExtractor().Extract(context.Background(), srv.URL+"/")
	assert.Equal(t, "Sam Smith", got.CEOName)
	assert.Equal(t, []string{"/"}, s.requested())
}

func TestExtract_SecondaryLinksFromSiteRoot(t *testing.T) {
	s, srv := newSite(t, map[string]string{
		"/locations/austin": `<a href="team">Our team</a>`,
		"/team":             `<p>CEO: José Álvarez</p>`,
	})

	got := newExtractor().Extract(context.Background(), srv.URL+"/locations/austin")
	assert.Equal(t, "José Álvarez", got.CEOName)
	assert.Equal(t, []string{"/locations/austin", "/team"}, s.requested())
}

func TestExtract_BrokenSecondaryIgnored(t *testing.T) {
	_, srv := newSite(t, map[string]string{
		"/":     `<a href="/missing-about">About</a><a href="/team">Team</a>`,
		"/team": `<p>Founder: Riley Park</p>`,
	})

	got := newExtractor().Extract(context.Background(), srv.URL+"/")
	assert.Equal(t, "Riley Park", got.CEOName)
}

func TestExtract_UnreachableSite(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	got := newExtractor().Extract(context.Background(), url)
	assert.Equal(t, "", got.Email)
	assert.Equal(t, "", got.CEOName)
}

func TestExtract_ErrorStatusStillParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`<p>Down for maintenance. Reach ops@acme.example</p>`))
	}))
	defer srv.Close()

	got := newExtractor().Extract(context.Background(), srv.URL)
	assert.Equal(t, "ops@acme.example", got.Email)
}

func TestExtract_CustomTitles(t *testing.T) {
	_, srv := newSite(t, map[string]string{
		"/": `<p>CEO: Casey Chen</p><p>Managing Director: Dana Fox</p>`,
	})

	got := newExtractor(WithExecutiveTitles([]string{"Managing Director", "CEO"})).
		Extract(context.Background(), srv.URL+"/")
	assert.Equal(t, "Dana Fox", got.CEOName)
}

func TestFindExecutive(t *testing.T) {
	t.Parallel()

	e := NewContactExtractor(nil)
	tests := []struct {
		text string
		want string
	}{
		{"Our Founder: Jane A. Doe is great", "Jane A. Doe"},
		{"CEO\nJordan Blake\nPhone", "Jordan Blake"},
		{"President:Alex Kim", "Alex Kim"},
		{"our ceo is friendly", ""},
		{"Chief Executive Officer: J. R. Smith", "J. R. Smith"},
		{"CEO: José Álvarez", "José Álvarez"},
		{"Founder: Zoë Müller leads the team", "Zoë Müller"},
		{"Chief Executive Officer: Łukasz Nowak", "Łukasz Nowak"},
		{"Owner: Jose\u0301 Ñúñez", "Jose\u0301 Ñúñez"},
		{"President: Γιώργος Παπαδόπουλος", "Γιώργος Παπαδόπουλος"},
		{"CEO - Иван Петров", ""},
		{"CEO: Иван Петров", "Иван Петров"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.FindExecutive(tt.text), tt.text)
	}
}

func TestFindEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.b+c@mail.example.org", FindEmail("write a.b+c@mail.example.org."))
	assert.Equal(t, "", FindEmail("NoReply@x.com and user@localhost"))
	assert.Equal(t, "", FindEmail(""))
}

func TestSecondaryLinks(t *testing.T) {
	t.Parallel()

	html := `
<a href="https://other.example/about">About them</a>
<a href="team.html">Our people</a>
<a href="mailto:team@acme.example">Email the team</a>
<a href="/About#history">History</a>
<a href="/about">About again</a>
<a href="/pricing">Pricing</a>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	got := SecondaryLinks(doc, "https://acme.example/home/", 10)
	assert.Equal(t, []string{
		"https://other.example/about",
		"https://acme.example/team.html",
		"https://acme.example/About",
		"https://acme.example/about",
	}, got)

	nested, err := goquery.NewDocumentFromReader(strings.NewReader(`<a href="team">Team</a><a href="../about-us">About</a>`))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://acme.com/team",
		"https://acme.com/about-us",
	}, SecondaryLinks(nested, "https://acme.com/locations/austin", 10))

	assert.Len(t, SecondaryLinks(doc, "https://acme.example/", 2), 2)
	assert.Nil(t, SecondaryLinks(doc, "https://acme.example/", 0))
}

func TestVisibleText(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<html><head><title>T</title><style>p{}</style></head><body><p>One   two</p><div>Three<span> four</span></div><script>x()</script></body></html>`))
	require.NoError(t, err)

	text := VisibleText(doc)
	assert.Contains(t, text, "One two\nThree four")
	assert.NotContains(t, text, "x()")
	assert.NotContains(t, text, "p{}")
}

func TestPageFetcher_UserAgentAndLimit(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = fmt.Fprint(w, strings.Repeat("a", 100))
	}))
	defer srv.Close()

	f := NewPageFetcher(FetchOptions{UserAgent: "TestBot/2", MaxBodyBytes: 10})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "TestBot/2", gotUA)
	assert.Len(t, page.HTML, 10)
	assert.Equal(t, http.StatusOK, page.StatusCode)
}

func TestPageFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := NewPageFetcher(FetchOptions{Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrape: fetch")
}

func TestPageFetcher_BadURL(t *testing.T) {
	_, err := NewPageFetcher(FetchOptions{}).Fetch(context.Background(), "://bad")
	require.Error(t, err)
}
