package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<p>hello</p>"))
	}))
	defer server.Close()

	f := NewFetcher(Config{})
	raw, err := f.Fetch(context.Background(), server.URL+"/page")
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/page", raw.URI)
	assert.Equal(t, server.URL+"/page", raw.SourceURL)
	assert.Equal(t, "text/html", raw.MIMEType)
	assert.Equal(t, "<p>hello</p>", string(raw.Content))
	assert.Empty(t, raw.FileName)
}

func TestFetch_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("moved"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	raw, err := NewFetcher(Config{}).Fetch(context.Background(), server.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/new", raw.SourceURL)
	assert.Equal(t, "text/plain", raw.MIMEType)
}

func TestFetch_SniffsContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>x</body></html>"))
	}))
	defer server.Close()

	raw, err := NewFetcher(Config{}).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "text/html", raw.MIMEType)
}

func TestFetch_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(strings.Repeat("a", 64)))
		}
	}))
	defer server.Close()

	f := NewFetcher(Config{MaxBytes: 16})
	ctx := context.Background()

	_, err := f.Fetch(ctx, server.URL+"/missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.Fetch(ctx, server.URL+"/boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	_, err = f.Fetch(ctx, server.URL+"/big")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFetch_InvalidURL(t *testing.T) {
	f := NewFetcher(Config{})
	for _, raw := range []string{"", "ftp://example.com/x", "file:///etc/passwd", "not a url", "https://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), raw)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestFetch_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(Config{}).Fetch(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
