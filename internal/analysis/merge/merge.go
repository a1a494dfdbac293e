// Package merge combines concept batches produced by separate completions.
//
// Deduplication is by exact title and keeps the first occurrence. Two
// concepts whose titles differ only slightly are not merged.
package merge

import (
	"strconv"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// qualifierSep separates the batch index from the model-supplied id.
const qualifierSep = ":"

// Qualify returns copies of concepts whose external and parent ids are
// prefixed with the batch index, making them unique across batches.
func Qualify(batch int, concepts []domain.RawConcept) []domain.RawConcept {
	prefix := strconv.Itoa(batch) + qualifierSep
	out := make([]domain.RawConcept, len(concepts))
	for i := range concepts {
		c := clone(concepts[i])
		c.ExternalID = prefix + c.ExternalID
		if c.ParentExternalID != nil {
			parent := prefix + *c.ParentExternalID
			c.ParentExternalID = &parent
		}
		out[i] = c
	}
	return out
}

// Merge drops concepts whose title was already seen, keeping the first
// occurrence in input order, and renumbers Order to 0..n-1.
//
// Parent references to a dropped duplicate are redirected to the concept
// that was kept in its place. The input is not modified.
func Merge(concepts []domain.RawConcept) []domain.RawConcept {
	keptByTitle := make(map[string]string, len(concepts))
	keptIDs := make(map[string]struct{}, len(concepts))
	aliases := make(map[string]string)
	unique := make([]domain.RawConcept, 0, len(concepts))

	for i := range concepts {
		c := concepts[i]
		if keptID, seen := keptByTitle[c.Title]; seen {
			if _, isKept := keptIDs[c.ExternalID]; !isKept {
				if _, mapped := aliases[c.ExternalID]; !mapped {
					aliases[c.ExternalID] = keptID
				}
			}
			continue
		}
		keptByTitle[c.Title] = c.ExternalID
		keptIDs[c.ExternalID] = struct{}{}
		unique = append(unique, clone(c))
	}

	for i := range unique {
		unique[i].Order = i
		if unique[i].ParentExternalID != nil {
			resolved := resolveAlias(aliases, *unique[i].ParentExternalID)
			unique[i].ParentExternalID = &resolved
		}
	}

	return unique
}

// resolveAlias follows alias links; chains are bounded by the table size.
func resolveAlias(aliases map[string]string, id string) string {
	for range len(aliases) + 1 {
		next, ok := aliases[id]
		if !ok || next == id {
			return id
		}
		id = next
	}
	return id
}

func clone(c domain.RawConcept) domain.RawConcept {
	if c.ParentExternalID != nil {
		parent := *c.ParentExternalID
		c.ParentExternalID = &parent
	}
	c.KeyPoints = append([]string{}, c.KeyPoints...)
	excerpts := make([]domain.RawExcerpt, len(c.Excerpts))
	for i, e := range c.Excerpts {
		if e.Context != nil {
			excerptContext := *e.Context
			e.Context = &excerptContext
		}
		excerpts[i] = e
	}
	c.Excerpts = excerpts
	return c
}
