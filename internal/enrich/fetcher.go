// Package enrich captures website text for each company: the homepage plus a
// handful of heuristically chosen internal pages, concatenated into one
// combined text field per company.
package enrich

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

const userAgent = "Mozilla/5.0 (compatible; DeeptechResearchBot/1.0)"

// Fetcher fetches a single page and extracts its visible text and internal
// links. One attempt per page; a one-shot research capture needs no backoff.
type Fetcher struct {
	client       *http.Client
	maxBodyBytes int64
	maxTextChars int
}

// NewFetcher creates a Fetcher with the given per-request timeout and size
// caps.
func NewFetcher(timeout time.Duration, maxBodyBytes int64, maxTextChars int) *Fetcher {
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	if maxBodyBytes == 0 {
		maxBodyBytes = 2_000_000
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		maxBodyBytes: maxBodyBytes,
		maxTextChars: maxTextChars,
	}
}

// Page is one fetched page with its extracted text and discovered links.
type Page struct {
	URL    string
	Status int
	Text   string
	Links  []string
}

// Fetch retrieves one URL and extracts visible text plus same-host links.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &Page{URL: pageURL, Status: resp.StatusCode},
			eris.Errorf("enrich: status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, f.maxBodyBytes)
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: parse html")
	}

	return &Page{
		URL:    pageURL,
		Status: resp.StatusCode,
		Text:   f.visibleText(doc),
		Links:  sameHostLinks(doc, pageURL),
	}, nil
}

var (
	spaceRe = regexp.MustCompile(`[ \t]+`)
	nlRe    = regexp.MustCompile(`\n{3,}`)
)

// visibleText strips non-content elements and collapses whitespace.
func (f *Fetcher) visibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, svg, nav, footer, iframe").Remove()

	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
	}
	text = strings.TrimSpace(nlRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))

	return truncate(text, f.maxTextChars)
}

// truncate caps s at max bytes, backing off to a rune boundary so the cut
// never produces invalid UTF-8.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// sameHostLinks extracts absolute same-host links from anchor tags.
func sameHostLinks(doc *goquery.Document, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !strings.EqualFold(abs.Host, base.Host) {
			return
		}
		abs.Fragment = ""
		key := abs.String()
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		links = append(links, key)
	})
	return links
}

// internalPageKeywords mark the pages most likely to describe positioning.
var internalPageKeywords = []string{
	"about", "product", "solution", "technology", "platform",
	"services", "company", "team", "use-case", "customers",
}

// selectInternalLinks ranks the discovered links by keyword match and returns
// up to max of them, preserving discovery order. The homepage itself is
// excluded.
func selectInternalLinks(links []string, homepage string, max int) []string {
	if max <= 0 {
		return nil
	}
	var picked []string
	for _, link := range links {
		if len(picked) >= max {
			break
		}
		if strings.TrimRight(link, "/") == strings.TrimRight(homepage, "/") {
			continue
		}
		lower := strings.ToLower(link)
		for _, kw := range internalPageKeywords {
			if strings.Contains(lower, kw) {
				picked = append(picked, link)
				break
			}
		}
	}
	return picked
}
