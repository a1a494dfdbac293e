package web

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.Fetcher = (*Fetcher)(nil)

const (
	// DefaultMaxBytes bounds the downloaded body.
	DefaultMaxBytes = 10 << 20

	// DefaultTimeout bounds one fetch including redirects.
	DefaultTimeout = 30 * time.Second

	maxRedirects = 5
	userAgent    = "insight/1.0 (+document analysis)"
)

// Config holds fetcher settings.
type Config struct {
	// MaxBytes bounds the body size. Zero uses DefaultMaxBytes.
	MaxBytes int64

	// Timeout bounds each fetch. Zero uses DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the client, mainly for tests.
	HTTPClient *http.Client
}

// Fetcher downloads documents over HTTP.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if client.CheckRedirect == nil {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if !isHTTP(req.URL) {
				return fmt.Errorf("redirect to unsupported scheme %q", req.URL.Scheme)
			}
			return nil
		}
	}
	return &Fetcher{client: client, maxBytes: cfg.MaxBytes}
}

// Fetch downloads rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.RawDocument, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !isHTTP(u) || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an http(s) URL", domain.ErrInvalidInput, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, text/plain;q=0.9, text/markdown;q=0.9, */*;q=0.1")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetch %s: %w", u, domain.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("fetch %s: unexpected status %d", u, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", u, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, u, f.maxBytes)
	}

	mediaType := contentType(resp.Header.Get("Content-Type"), body)
	finalURL := u.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	logger.Debug("fetch: %s -> %s (%s, %d bytes) in %s",
		u, finalURL, mediaType, len(body), time.Since(start).Round(time.Millisecond))

	return &domain.RawDocument{
		URI:       finalURL,
		MIMEType:  mediaType,
		Content:   body,
		SourceURL: finalURL,
	}, nil
}

func contentType(header string, body []byte) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil {
			return mt
		}
	}
	if len(body) == 0 {
		return ""
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(body[:min(512, len(body))]))
	return mt
}

func isHTTP(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https")
}
