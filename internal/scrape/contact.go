package scrape

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/daniellim27/leadgen-scraper/internal/model"
)

// DefaultExecutiveTitles lists the titles scanned for an executive name,
// in priority order.
var DefaultExecutiveTitles = []string{
	"CEO",
	"Chief Executive Officer",
	"Founder",
	"President",
	"Owner",
}

const defaultMaxSecondaryLinks = 2

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// namePattern matches a run of capitalised words or initials on one line,
// e.g. "Jane A. Doe" or "José Álvarez". Letters are matched by Unicode class.
const namePattern = `(\p{Lu}[\p{L}\p{M}\p{N}_]*\.?(?:[ \t]+\p{Lu}[\p{L}\p{M}\p{N}_]*\.?)*)`

var secondaryKeywords = []string{"about", "team", "leadership"}

// blockTags are separated by line breaks when flattening a page to text.
const blockTags = "p,div,li,ul,ol,br,h1,h2,h3,h4,h5,h6,section,article,header,footer,nav,aside,table,tr,td,th,address,dd,dt,blockquote"

// ContactOption configures a ContactExtractor.
type ContactOption func(*ContactExtractor)

// WithExecutiveTitles replaces the ordered list of titles searched for an
// executive name. The first title that matches wins.
func WithExecutiveTitles(titles []string) ContactOption {
	return func(e *ContactExtractor) {
		e.titles = compileTitles(titles)
	}
}

// WithMaxSecondaryLinks caps how many about/team/leadership pages are
// visited when the main page names no executive.
func WithMaxSecondaryLinks(n int) ContactOption {
	return func(e *ContactExtractor) {
		if n >= 0 {
			e.maxLinks = n
		}
	}
}

// ContactExtractor scrapes a business website for a contact email and the
// name of its chief executive.
type ContactExtractor struct {
	fetcher  Fetcher
	titles   []*regexp.Regexp
	maxLinks int
}

// NewContactExtractor creates a ContactExtractor backed by fetcher.
func NewContactExtractor(fetcher Fetcher, opts ...ContactOption) *ContactExtractor {
	e := &ContactExtractor{
		fetcher:  fetcher,
		titles:   compileTitles(DefaultExecutiveTitles),
		maxLinks: defaultMaxSecondaryLinks,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func compileTitles(titles []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		res = append(res, regexp.MustCompile(regexp.QuoteMeta(t)+`[:\s]*`+namePattern))
	}
	return res
}

// Extract fetches websiteURL and returns whatever contact details it can
// find. It never fails: fetch and parse problems yield empty fields.
func (e *ContactExtractor) Extract(ctx context.Context, websiteURL string) model.Contact {
	log := zap.L().With(zap.String("website", websiteURL))

	doc, err := e.load(ctx, websiteURL)
	if err != nil {
		log.Warn("scrape: contact page unavailable", zap.Error(err))
		return model.Contact{}
	}

	text := VisibleText(doc)
	contact := model.Contact{
		Email:   FindEmail(text),
		CEOName: e.FindExecutive(text),
	}
	if contact.CEOName != "" {
		return contact
	}

	for _, link := range SecondaryLinks(doc, websiteURL, e.maxLinks) {
		sub, err := e.load(ctx, link)
		if err != nil {
			log.Debug("scrape: secondary page unavailable", zap.String("url", link), zap.Error(err))
			continue
		}
		if name := e.FindExecutive(VisibleText(sub)); name != "" {
			contact.CEOName = name
			break
		}
	}

	log.Debug("scrape: contact extracted",
		zap.Bool("email", contact.Email != ""),
		zap.Bool("ceo", contact.CEOName != ""),
	)
	return contact
}

func (e *ContactExtractor) load(ctx context.Context, target string) (*goquery.Document, error) {
	page, err := e.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(page.HTML))
}

// FindExecutive returns the first name following one of the configured
// titles, or "".
func (e *ContactExtractor) FindExecutive(text string) string {
	for _, re := range e.titles {
		if m := re.FindStringSubmatch(text); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

// FindEmail returns the first email address in text that is not a
// noreply mailbox, or "".
func FindEmail(text string) string {
	for _, addr := range emailPattern.FindAllString(text, -1) {
		lower := strings.ToLower(addr)
		if strings.Contains(lower, "noreply") || strings.Contains(lower, "no-reply") {
			continue
		}
		return addr
	}
	return ""
}

// VisibleText flattens a document to its human-visible text, one line per
// block element. Scripts and styles are dropped.
func VisibleText(doc *goquery.Document) string {
	doc.Find("script,style,noscript,template").Remove()
	doc.Find(blockTags).Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml("\n")
		s.AfterHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// SecondaryLinks returns up to limit distinct http(s) links whose text or
// href mentions about, team or leadership. Relative hrefs resolve against
// the site root of base, so "team" on /locations/austin is /team.
func SecondaryLinks(doc *goquery.Document, base string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}
	root := &url.URL{Scheme: baseURL.Scheme, Host: baseURL.Host, Path: "/"}

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !mentionsSecondary(strings.ToLower(a.Text())) && !mentionsSecondary(strings.ToLower(href)) {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := root.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return true
		}
		abs.Fragment = ""
		u := abs.String()
		if seen[u] {
			return true
		}
		seen[u] = true
		links = append(links, u)
		return len(links) < limit
	})
	return links
}

func mentionsSecondary(s string) bool {
	for _, kw := range secondaryKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
