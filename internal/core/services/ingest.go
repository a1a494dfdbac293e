package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService reads local files or fetches URLs and normalises them.
type IngestService struct {
	registry driven.NormaliserRegistry
	fetcher  driven.Fetcher
	readFile func(string) ([]byte, error)
}

// NewIngestService creates an ingest service. fetcher may be nil, in which
// case LoadURL is unavailable.
func NewIngestService(registry driven.NormaliserRegistry, fetcher driven.Fetcher) *IngestService {
	return &IngestService{
		registry: registry,
		fetcher:  fetcher,
		readFile: os.ReadFile,
	}
}

// IsSupported reports whether path has an ingestible extension.
func (s *IngestService) IsSupported(path string) bool {
	return s.registry != nil && s.registry.IsSupported(filepath.Base(path))
}

// LoadFile reads and normalises a local file.
func (s *IngestService) LoadFile(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	if s.registry == nil {
		return nil, fmt.Errorf("%w: no normalisers registered", domain.ErrUnsupportedType)
	}
	name := filepath.Base(path)
	if !s.registry.IsSupported(name) {
		return nil, fmt.Errorf("%w: %s (supported: %v)", domain.ErrUnsupportedType, name, s.registry.SupportedExtensions())
	}

	content, err := s.readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := s.registry.Normalise(ctx, &domain.RawDocument{
		URI:      path,
		FileName: name,
		Content:  content,
	})
	if err != nil {
		return nil, err
	}
	doc.SourcePath = path
	if abs, err := filepath.Abs(path); err == nil {
		doc.SourcePath = abs
	}
	logger.Debug("ingest: %s as %s, %d words", name, doc.DocumentType, doc.WordCount)
	return doc, nil
}

// LoadURL fetches and normalises a remote document; SourceURL is set on the result.
func (s *IngestService) LoadURL(ctx context.Context, rawURL string) (*domain.ParsedDocument, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: URL ingestion is not configured", domain.ErrInvalidInput)
	}
	if s.registry == nil {
		return nil, fmt.Errorf("%w: no normalisers registered", domain.ErrUnsupportedType)
	}

	raw, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if raw.SourceURL == "" {
		raw.SourceURL = rawURL
	}

	doc, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}
	doc.SourceURL = raw.SourceURL
	logger.Debug("ingest: %s as %s, %d words", raw.SourceURL, doc.DocumentType, doc.WordCount)
	return doc, nil
}
