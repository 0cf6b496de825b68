package data

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrUnsupportedLocator indicates a locator scheme the fetcher cannot read.
	ErrUnsupportedLocator = errors.New("data: unsupported locator")
	// ErrStatus indicates a non-2xx HTTP response.
	ErrStatus = errors.New("data: unexpected http status")
)

// Fetcher retrieves raw resources from http(s) URLs, file:// URLs or plain
// filesystem paths.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher whose HTTP requests time out after timeout.
// A zero timeout means no client-side deadline beyond the request context.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// NewFetcherWithClient wraps an existing client.
func NewFetcherWithClient(c *http.Client) *Fetcher {
	return &Fetcher{client: c}
}

// Fetch returns the full body of the resource at loc.
func (f *Fetcher) Fetch(ctx context.Context, loc string) ([]byte, error) {
	u, err := url.Parse(loc)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 { // "C:\..." parses with a one-letter scheme
		return f.readFile(ctx, loc)
	}
	switch u.Scheme {
	case "http", "https":
		return f.get(ctx, loc)
	case "file":
		p := u.Path
		if u.Host != "" && u.Host != "localhost" {
			p = filepath.Join(u.Host, p)
		}
		return f.readFile(ctx, p)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocator, u.Scheme)
	}
}

func (f *Fetcher) readFile(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("data: read %s: %w", p, err)
	}
	return b, nil
}

func (f *Fetcher) get(ctx context.Context, loc string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/csv, text/plain, */*")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("data: get %s: %w", loc, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("data: read body %s: %w", loc, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d from %s snippet=%q", ErrStatus, resp.StatusCode, loc, snippet(b))
	}
	return b, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 256 {
		s = s[:256]
	}
	return s
}

// FetchCityIncome fetches and parses the income CSV.
func (f *Fetcher) FetchCityIncome(ctx context.Context, loc string) (CityIncome, error) {
	b, err := f.Fetch(ctx, loc)
	if err != nil {
		return CityIncome{}, err
	}
	return ParseIncomeCSV(bytes.NewReader(b))
}

// FetchStateIncome fetches and parses the income-by-state JSON.
func (f *Fetcher) FetchStateIncome(ctx context.Context, loc string) ([]StateIncome, error) {
	b, err := f.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	return ParseStateIncome(bytes.NewReader(b))
}
