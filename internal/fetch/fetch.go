// =============================================================================
// COVID Trends - Page Fetcher and Link Scraper
// =============================================================================
//
// Reports pull their data over HTTP in one of two ways:
//
//   - Directly: the configured URL is the CSV file itself (Pillar 1).
//   - Via a landing page: the page is downloaded, the first link matching a
//     configured regular expression is taken as the data file URL, and that
//     file is downloaded (trust deaths, Pillar 2).
//
// There is no retry or backoff. A failed fetch is reported to the caller,
// which logs it and decides whether the report can continue.
//
// =============================================================================

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrUpstreamFetchFailed is returned when a page or file cannot be
// downloaded: transport errors, non-200 responses and empty bodies.
var ErrUpstreamFetchFailed = errors.New("upstream fetch failed")

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// Fetcher downloads the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// =============================================================================
// HTTP FETCHER
// =============================================================================

// HTTPFetcher is a Fetcher backed by net/http.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

// New returns an HTTPFetcher with its own client and the given timeout.
func New(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Fetch performs a GET request and returns the whole body.
//
// RETURNS:
//   - The response body
//   - An error wrapping ErrUpstreamFetchFailed when the request fails, the
//     status is not 200 or the body is empty
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", ErrUpstreamFetchFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s: %v", ErrUpstreamFetchFailed, url, err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUpstreamFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: status %s", ErrUpstreamFetchFailed, url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUpstreamFetchFailed, url, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: %s is an empty file", ErrUpstreamFetchFailed, url)
	}
	return body, nil
}

// =============================================================================
// LINK SCRAPER
// =============================================================================

// FindLink returns the first substring of page matching pattern, searching
// line by line. It returns "" when no line matches.
func FindLink(page, pattern string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid link pattern %q: %w", pattern, err)
	}
	for _, line := range strings.Split(page, "\n") {
		if m := re.FindString(line); m != "" {
			return m, nil
		}
	}
	return "", nil
}

// ResolveLink downloads the landing page at pageURL and returns the first
// link matching pattern.
func ResolveLink(ctx context.Context, f Fetcher, pageURL, pattern string) (string, error) {
	page, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	link, err := FindLink(string(page), pattern)
	if err != nil {
		return "", err
	}
	if link == "" {
		return "", fmt.Errorf("%w: no link matching %q on %s", ErrUpstreamFetchFailed, pattern, pageURL)
	}
	return link, nil
}
