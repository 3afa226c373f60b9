// Package preview fetches a merchant page and extracts its Open Graph card
// for the admin offer form.
package preview

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
)

const (
	maxBodyBytes  = 2 << 20
	fallbackTitle = "Untitled"
	userAgent     = "Mozilla/5.0 (compatible; dealboard-preview/1.0)"
)

var ErrInvalidURL = errors.New("url must be an absolute http(s) URL")

type Preview struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SiteName    string `json:"site_name"`
	URL         string `json:"url"`
	Image       string `json:"image"`
}

type Fetcher struct {
	Client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Preview, error) {
	target, err := parseTarget(rawURL)
	if err != nil {
		return Preview{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Preview{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, br")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	res, err := client.Do(req)
	if err != nil {
		return Preview{}, fmt.Errorf("fetch page: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Preview{}, fmt.Errorf("fetch page: status %d", res.StatusCode)
	}

	body, err := decodedBody(res)
	if err != nil {
		return Preview{}, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return Preview{}, fmt.Errorf("parse html: %w", err)
	}

	// redirects change the base for relative image links
	base := target
	if res.Request != nil && res.Request.URL != nil {
		base = res.Request.URL
	}
	return extract(doc, base), nil
}

func parseTarget(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidURL
	}
	return u, nil
}

func decodedBody(res *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(res.Header.Get("Content-Encoding"))) {
	case "gzip":
		r, err := gzip.NewReader(res.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return r, nil
	case "br":
		return io.NopCloser(brotli.NewReader(res.Body)), nil
	default:
		return io.NopCloser(res.Body), nil
	}
}

func extract(doc *goquery.Document, base *url.URL) Preview {
	p := Preview{
		Title:       firstNonEmpty(meta(doc, "og:title"), meta(doc, "twitter:title"), doc.Find("title").First().Text()),
		Description: firstNonEmpty(meta(doc, "og:description"), meta(doc, "description")),
		SiteName:    firstNonEmpty(meta(doc, "og:site_name"), meta(doc, "twitter:site")),
		URL:         firstNonEmpty(meta(doc, "og:url"), base.String()),
		Image:       firstNonEmpty(meta(doc, "og:image"), meta(doc, "og:image:url"), meta(doc, "twitter:image")),
	}

	if p.Title == "" {
		p.Title = fallbackTitle
	}
	if p.Image != "" {
		if ref, err := url.Parse(p.Image); err == nil {
			p.Image = base.ResolveReference(ref).String()
		}
	}
	return p
}

// meta reads <meta property=name> or <meta name=name>.
func meta(doc *goquery.Document, name string) string {
	var out string
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		prop, _ := s.Attr("property")
		n, _ := s.Attr("name")
		if !strings.EqualFold(prop, name) && !strings.EqualFold(n, name) {
			return true
		}
		content, _ := s.Attr("content")
		out = strings.TrimSpace(content)
		return out == ""
	})
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
