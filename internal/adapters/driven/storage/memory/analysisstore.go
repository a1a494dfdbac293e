package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure AnalysisStore implements the interface.
var _ driven.AnalysisStore = (*AnalysisStore)(nil)

// AnalysisStore is an in-memory implementation of driven.AnalysisStore.
// Results are deep-copied in and out so callers never share state with it.
type AnalysisStore struct {
	mu       sync.RWMutex
	analyses map[string]domain.AnalysisResult
}

// NewAnalysisStore creates a new in-memory analysis store.
func NewAnalysisStore() *AnalysisStore {
	return &AnalysisStore{
		analyses: make(map[string]domain.AnalysisResult),
	}
}

// Save stores or replaces an analysis.
func (s *AnalysisStore) Save(_ context.Context, result *domain.AnalysisResult) error {
	if result == nil || result.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[result.ID] = copyResult(result)
	return nil
}

// Get retrieves an analysis by ID.
func (s *AnalysisStore) Get(_ context.Context, id string) (*domain.AnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.analyses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyResult(&r)
	return &out, nil
}

// List returns summaries ordered by AnalyzedAt, newest first.
func (s *AnalysisStore) List(_ context.Context) ([]domain.AnalysisSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.AnalysisSummary, 0, len(s.analyses))
	for i := range s.analyses {
		r := s.analyses[i]
		summaries = append(summaries, domain.AnalysisSummary{
			ID:           r.ID,
			DocumentName: r.DocumentName,
			DocumentType: r.DocumentType,
			AnalyzedAt:   r.AnalyzedAt,
			ModelUsed:    r.ModelUsed,
			WordCount:    copyInt(r.WordCount),
			ConceptCount: len(r.Concepts),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].AnalyzedAt.Equal(summaries[j].AnalyzedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].AnalyzedAt.After(summaries[j].AnalyzedAt)
	})
	return summaries, nil
}

// Delete removes an analysis and its concepts.
func (s *AnalysisStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.analyses[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.analyses, id)
	return nil
}

func copyResult(r *domain.AnalysisResult) domain.AnalysisResult {
	out := *r
	out.WordCount = copyInt(r.WordCount)
	out.SourceURL = copyString(r.SourceURL)
	if r.MentalModel != nil {
		mm := *r.MentalModel
		out.MentalModel = &mm
	}
	if r.Concepts == nil {
		return out
	}
	out.Concepts = make([]domain.Concept, len(r.Concepts))
	for i, c := range r.Concepts {
		c.ParentID = copyString(c.ParentID)
		if c.KeyPoints != nil {
			c.KeyPoints = append([]string{}, c.KeyPoints...)
		}
		if c.Excerpts != nil {
			excerpts := make([]domain.Excerpt, len(c.Excerpts))
			for j, e := range c.Excerpts {
				e.Context = copyString(e.Context)
				excerpts[j] = e
			}
			c.Excerpts = excerpts
		}
		out.Concepts[i] = c
	}
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
