package normalisers

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/normalisers/docx"
	"github.com/custodia-labs/insight/internal/normalisers/html"
	"github.com/custodia-labs/insight/internal/normalisers/markdown"
	"github.com/custodia-labs/insight/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry holds normalisers and selects one per document.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry with all built-in normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterDefaults registers the built-in normalisers with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
}

// Register adds a normaliser. Registration order breaks priority ties.
func (r *Registry) Register(normaliser driven.Normaliser) {
	if normaliser == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, normaliser)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Normalise transforms raw using the best matching normaliser.
// Returns domain.ErrUnsupportedType when nothing matches.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.ParsedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	n := r.selectFor(raw)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, describe(raw))
	}
	return n.Normalise(ctx, raw)
}

// IsSupported reports whether fileName has a registered normaliser.
func (r *Registry) IsSupported(fileName string) bool {
	return r.byExtension(extensionOf(fileName)) != nil
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []string
	for _, n := range r.normalisers {
		for _, ext := range n.SupportedExtensions() {
			if _, ok := seen[ext]; ok {
				continue
			}
			seen[ext] = struct{}{}
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Registry) selectFor(raw *domain.RawDocument) driven.Normaliser {
	name := raw.FileName
	if name == "" {
		name = raw.URI
	}
	if n := r.byExtension(extensionOf(name)); n != nil {
		return n
	}
	return r.byMIMEType(raw.MIMEType)
}

func (r *Registry) byExtension(ext string) driven.Normaliser {
	if ext == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.normalisers {
		for _, e := range n.SupportedExtensions() {
			if e == ext {
				return n
			}
		}
	}
	return nil
}

func (r *Registry) byMIMEType(contentType string) driven.Normaliser {
	if contentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.normalisers {
		for _, m := range n.SupportedMIMETypes() {
			if m == mediaType {
				return n
			}
		}
	}
	return nil
}

// extensionOf returns the lower-case extension of a path or URL path.
func extensionOf(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 && strings.Contains(name, "://") {
		name = name[:i]
	}
	return strings.ToLower(filepath.Ext(name))
}

func describe(raw *domain.RawDocument) string {
	name := raw.FileName
	if name == "" {
		name = raw.URI
	}
	if raw.MIMEType != "" {
		return fmt.Sprintf("%s (%s)", name, raw.MIMEType)
	}
	return name
}
