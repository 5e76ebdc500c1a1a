// Package metadata extracts preview images from music platform pages.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moodmate/internal/observability"

	"github.com/PuerkitoBio/goquery"
)

const serviceName = "metadata"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultTimeout bounds one page fetch.
const DefaultTimeout = 5 * time.Second

// ErrNoImage reports a page without og:image or twitter:image.
var ErrNoImage = errors.New("no image found")

// StatusError reports a non-2xx response from the scraped page.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch page: %d", e.Code)
}

// Scraper fetches pages and reads their OpenGraph image.
type Scraper struct {
	client  *http.Client
	timeout time.Duration
}

// NewScraper creates a Scraper. A nil client gets a default one.
func NewScraper(client *http.Client, timeout time.Duration) *Scraper {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Scraper{client: client, timeout: timeout}
}

// FetchImage returns the absolute preview image URL of pageURL.
func (s *Scraper) FetchImage(ctx context.Context, pageURL string) (image string, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := observability.TraceUpstreamCall(ctx, serviceName, "fetch_page")
	start := time.Now()
	defer func() {
		// A page without an image is an answer, not an upstream failure.
		observed := err
		if errors.Is(err, ErrNoImage) {
			observed = nil
		}
		observability.ObserveUpstream(serviceName, start, observed)
		observability.EndSpan(span, observed)
	}()

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	return ExtractImage(io.LimitReader(resp.Body, 2<<20), base)
}

// ExtractImage reads HTML from r and returns og:image, falling back to
// twitter:image. Relative URLs are resolved against base when it is set.
func ExtractImage(r io.Reader, base *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	selectors := []string{
		`meta[property="og:image"]`,
		`meta[property="og:image:url"]`,
		`meta[name="twitter:image"]`,
		`meta[property="twitter:image"]`,
	}
	for _, sel := range selectors {
		content, ok := doc.Find(sel).First().Attr("content")
		content = strings.TrimSpace(content)
		if !ok || content == "" {
			continue
		}
		return resolve(base, content), nil
	}
	return "", ErrNoImage
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
