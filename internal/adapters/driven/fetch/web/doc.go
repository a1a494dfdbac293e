// Package web implements driven.Fetcher over plain HTTP GET.
//
// Responses are size-limited and the media type is taken from the
// Content-Type header, falling back to content sniffing.
package web
