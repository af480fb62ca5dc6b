package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// maxListingBytes caps the size of a listing document.
const maxListingBytes = 8 << 20

// ErrTooLarge is returned for listing documents over the size cap.
var ErrTooLarge = errors.New("listing: document too large")

// Fetcher retrieves the raw listing document.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

type FetcherFunc func(ctx context.Context) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context) ([]byte, error) { return f(ctx) }

type HTTPFetcher struct {
	URL    string
	Client *http.Client
	// MaxBytes overrides the document size cap when positive.
	MaxBytes int64
}

func NewHTTPFetcher(rawURL string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{URL: rawURL, Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("listing: build request: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, text/yaml, text/plain")
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing: fetch %s: %w", f.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("listing: fetch %s: unexpected status %d", f.URL, resp.StatusCode)
	}
	return readCapped(resp.Body, f.MaxBytes)
}

// readCapped reads r fully, failing instead of truncating when it holds
// more than limit bytes.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = maxListingBytes
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("listing: read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, limit)
	}
	return body, nil
}

// FileFetcher reads the listing from disk; handy offline and in tests.
type FileFetcher struct {
	Path string
}

func (f FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("listing: read %s: %w", f.Path, err)
	}
	defer file.Close()
	return readCapped(file, 0)
}

// NewFetcher picks a fetcher for a listing location: http(s) URLs are
// downloaded, file:// URLs and plain paths are read from disk.
func NewFetcher(location string, timeout time.Duration) (Fetcher, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("listing: empty location")
	}
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("listing: parse location: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		return NewHTTPFetcher(location, timeout), nil
	case "file":
		return FileFetcher{Path: u.Path}, nil
	case "":
		return FileFetcher{Path: location}, nil
	default:
		return nil, fmt.Errorf("listing: unsupported scheme %q", u.Scheme)
	}
}
