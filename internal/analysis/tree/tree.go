// Package tree resolves flat concept records into an owned hierarchy.
//
// Model-supplied ids are only used as lookup keys while assembling. Every
// resulting Concept and Excerpt receives a freshly generated id, and every
// non-nil ParentID references a Concept in the same result.
package tree

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// IDFunc generates identifiers for concepts and excerpts.
type IDFunc func() string

// Result is the output of Assemble.
type Result struct {
	Concepts []domain.Concept

	// Demoted counts concepts whose parent reference could not be kept:
	// absent from the batch, pointing at themselves, or closing a cycle.
	Demoted int
}

// Assemble converts raw concepts into concepts with generated ids.
func Assemble(raw []domain.RawConcept) Result {
	return AssembleWithIDs(raw, uuid.NewString)
}

// AssembleWithIDs is Assemble with a caller-supplied id generator.
func AssembleWithIDs(raw []domain.RawConcept, newID IDFunc) Result {
	concepts := make([]domain.Concept, len(raw))
	byExternal := make(map[string]int, len(raw))

	// Pass 1: identities.
	for i := range raw {
		r := raw[i]
		concepts[i] = domain.Concept{
			ID:             newID(),
			Title:          r.Title,
			Order:          r.Order,
			OneLineSummary: r.OneLineSummary,
			WhatThisIs:     r.WhatThisIs,
			WhyItMatters:   r.WhyItMatters,
			KeyPoints:      append([]string{}, r.KeyPoints...),
			Excerpts:       convertExcerpts(r.Excerpts, newID),
		}
		if _, dup := byExternal[r.ExternalID]; !dup {
			byExternal[r.ExternalID] = i
		}
	}

	// Pass 2: parents.
	parents := make([]int, len(raw))
	demoted := 0
	for i := range raw {
		parents[i] = -1
		ref := raw[i].ParentExternalID
		if ref == nil {
			continue
		}
		p, ok := byExternal[*ref]
		if !ok || p == i {
			demoted++
			continue
		}
		parents[i] = p
	}

	demoted += breakCycles(parents)

	for i, p := range parents {
		if p >= 0 {
			id := concepts[p].ID
			concepts[i].ParentID = &id
		}
	}

	return Result{Concepts: concepts, Demoted: demoted}
}

// breakCycles clears the parent of the lowest-indexed member of every
// cycle and returns how many links were cleared.
func breakCycles(parents []int) int {
	cleared := 0
	for i := range parents {
		cur := parents[i]
		for steps := 0; cur >= 0 && steps < len(parents); steps++ {
			if cur == i {
				parents[i] = -1
				cleared++
				break
			}
			cur = parents[cur]
		}
	}
	return cleared
}

func convertExcerpts(raw []domain.RawExcerpt, newID IDFunc) []domain.Excerpt {
	out := make([]domain.Excerpt, len(raw))
	for i, e := range raw {
		out[i] = domain.Excerpt{
			ID:       newID(),
			Text:     e.Text,
			Location: e.Location,
		}
		if e.Context != nil {
			c := *e.Context
			out[i].Context = &c
		}
	}
	return out
}

// Validate checks that ids are unique, every parent resolves within
// concepts, and no cycles exist. Errors wrap domain.ErrIntegrity.
func Validate(concepts []domain.Concept) error {
	index := make(map[string]int, len(concepts))
	for i := range concepts {
		if _, dup := index[concepts[i].ID]; dup {
			return fmt.Errorf("%w: duplicate concept id %q", domain.ErrIntegrity, concepts[i].ID)
		}
		index[concepts[i].ID] = i
	}

	for i := range concepts {
		if concepts[i].ParentID == nil {
			continue
		}
		if _, ok := index[*concepts[i].ParentID]; !ok {
			return fmt.Errorf("%w: concept %q references missing parent %q",
				domain.ErrIntegrity, concepts[i].ID, *concepts[i].ParentID)
		}
	}

	for i := range concepts {
		cur := concepts[i].ParentID
		for steps := 0; cur != nil; steps++ {
			if *cur == concepts[i].ID || steps > len(concepts) {
				return fmt.Errorf("%w: concept %q has cyclic ancestry", domain.ErrIntegrity, concepts[i].ID)
			}
			cur = concepts[index[*cur]].ParentID
		}
	}
	return nil
}

// Node is a concept with its ordered children.
type Node struct {
	Concept  *domain.Concept
	Children []*Node
}

// Build nests concepts into a forest ordered by Order among siblings.
// Concepts whose parent is missing are returned as roots.
func Build(concepts []domain.Concept) []*Node {
	nodes := make(map[string]*Node, len(concepts))
	for i := range concepts {
		nodes[concepts[i].ID] = &Node{Concept: &concepts[i]}
	}

	var roots []*Node
	for i := range concepts {
		n := nodes[concepts[i].ID]
		if pid := concepts[i].ParentID; pid != nil {
			if parent, ok := nodes[*pid]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Concept.Order < nodes[j].Concept.Order
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// Walk visits nodes depth-first in sibling order.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int)) {
	for _, n := range nodes {
		fn(n, depth)
		walk(n.Children, depth+1, fn)
	}
}
