package tree

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/analysis/merge"
	"github.com/custodia-labs/insight/internal/core/domain"
)

func ptr(s string) *string { return &s }

func raw(id, title string, parent *string, order int) domain.RawConcept {
	return domain.RawConcept{ExternalID: id, Title: title, ParentExternalID: parent, Order: order}
}

func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestAssemble_ResolvesParents(t *testing.T) {
	res := AssembleWithIDs([]domain.RawConcept{
		raw("concept-001", "Root", nil, 0),
		raw("concept-002", "Child", ptr("concept-001"), 1),
	}, sequentialIDs())

	require.Len(t, res.Concepts, 2)
	assert.Zero(t, res.Demoted)
	assert.Nil(t, res.Concepts[0].ParentID)
	require.NotNil(t, res.Concepts[1].ParentID)
	assert.Equal(t, res.Concepts[0].ID, *res.Concepts[1].ParentID)
	assert.NotEqual(t, "concept-001", res.Concepts[0].ID, "model ids are never reused")
}

func TestAssemble_DanglingParentIsDemoted(t *testing.T) {
	res := Assemble([]domain.RawConcept{
		raw("concept-001", "First", nil, 0),
		raw("concept-002", "Second", ptr("ghost-999"), 1),
	})

	require.Len(t, res.Concepts, 2)
	assert.Nil(t, res.Concepts[0].ParentID)
	assert.Nil(t, res.Concepts[1].ParentID)
	assert.Equal(t, 1, res.Demoted)
	assert.NoError(t, Validate(res.Concepts))
}

func TestAssemble_SelfReferenceIsDemoted(t *testing.T) {
	res := Assemble([]domain.RawConcept{raw("a", "A", ptr("a"), 0)})
	assert.Nil(t, res.Concepts[0].ParentID)
	assert.Equal(t, 1, res.Demoted)
}

func TestAssemble_CycleIsBroken(t *testing.T) {
	res := AssembleWithIDs([]domain.RawConcept{
		raw("a", "A", ptr("c"), 0),
		raw("b", "B", ptr("a"), 1),
		raw("c", "C", ptr("b"), 2),
		raw("d", "D", ptr("c"), 3),
	}, sequentialIDs())

	assert.Equal(t, 1, res.Demoted)
	assert.Nil(t, res.Concepts[0].ParentID, "lowest index in the cycle becomes the root")
	assert.NoError(t, Validate(res.Concepts))
	assert.Len(t, Build(res.Concepts), 1)
	assert.Equal(t, 4, countNodes(Build(res.Concepts)))
}

func TestAssemble_CopiesFieldsAndExcerpts(t *testing.T) {
	r := raw("a", "A", nil, 4)
	r.OneLineSummary = "one"
	r.WhatThisIs = "what"
	r.WhyItMatters = "why"
	r.KeyPoints = []string{"k1", "k2"}
	r.Excerpts = []domain.RawExcerpt{
		{Text: "quote", Location: "para 1", Context: ptr("ctx")},
		{Text: "bare", Location: "para 2"},
	}

	res := AssembleWithIDs([]domain.RawConcept{r}, sequentialIDs())
	c := res.Concepts[0]
	assert.Equal(t, "A", c.Title)
	assert.Equal(t, 4, c.Order)
	assert.Equal(t, "one", c.OneLineSummary)
	assert.Equal(t, "what", c.WhatThisIs)
	assert.Equal(t, "why", c.WhyItMatters)
	assert.Equal(t, []string{"k1", "k2"}, c.KeyPoints)
	require.Len(t, c.Excerpts, 2)
	assert.Equal(t, "id-2", c.Excerpts[0].ID)
	assert.Equal(t, "ctx", *c.Excerpts[0].Context)
	assert.Nil(t, c.Excerpts[1].Context)

	*r.Excerpts[0].Context = "changed"
	r.KeyPoints[0] = "changed"
	assert.Equal(t, "ctx", *c.Excerpts[0].Context)
	assert.Equal(t, "k1", c.KeyPoints[0])
}

func TestAssemble_UniqueIDs(t *testing.T) {
	res := Assemble([]domain.RawConcept{raw("x", "A", nil, 0), raw("x", "B", nil, 1)})
	assert.NotEqual(t, res.Concepts[0].ID, res.Concepts[1].ID)
}

func TestAssemble_RandomGraphsKeepIntegrity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(12) + 1
		batch := make([]domain.RawConcept, n)
		for i := range batch {
			var parent *string
			switch rng.Intn(4) {
			case 0:
			case 1:
				parent = ptr("ghost")
			default:
				parent = ptr(fmt.Sprintf("c%d", rng.Intn(n)))
			}
			batch[i] = raw(fmt.Sprintf("c%d", i), fmt.Sprintf("T%d", i), parent, i)
		}

		res := Assemble(merge.Merge(batch))
		require.NoError(t, Validate(res.Concepts), "iteration %d", iter)
		assert.Equal(t, len(res.Concepts), countNodes(Build(res.Concepts)))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		concepts []domain.Concept
		wantErr  bool
	}{
		{"empty", nil, false},
		{"valid", []domain.Concept{{ID: "1"}, {ID: "2", ParentID: ptr("1")}}, false},
		{"dangling", []domain.Concept{{ID: "1", ParentID: ptr("2")}}, true},
		{"duplicate", []domain.Concept{{ID: "1"}, {ID: "1"}}, true},
		{"self", []domain.Concept{{ID: "1", ParentID: ptr("1")}}, true},
		{"cycle", []domain.Concept{{ID: "1", ParentID: ptr("2")}, {ID: "2", ParentID: ptr("1")}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.concepts)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrIntegrity)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuild_OrdersSiblings(t *testing.T) {
	concepts := []domain.Concept{
		{ID: "b", Order: 2},
		{ID: "a", Order: 1},
		{ID: "a2", ParentID: ptr("a"), Order: 5},
		{ID: "a1", ParentID: ptr("a"), Order: 3},
		{ID: "orphan", ParentID: ptr("missing"), Order: 0},
	}

	roots := Build(concepts)
	require.Len(t, roots, 3)
	assert.Equal(t, "orphan", roots[0].Concept.ID)
	assert.Equal(t, "a", roots[1].Concept.ID)
	assert.Equal(t, "b", roots[2].Concept.ID)
	require.Len(t, roots[1].Children, 2)
	assert.Equal(t, "a1", roots[1].Children[0].Concept.ID)

	var visited []string
	var depths []int
	Walk(roots, func(n *Node, depth int) {
		visited = append(visited, n.Concept.ID)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"orphan", "a", "a1", "a2", "b"}, visited)
	assert.Equal(t, []int{0, 0, 1, 1, 0}, depths)
}

func countNodes(nodes []*Node) int {
	total := 0
	Walk(nodes, func(*Node, int) { total++ })
	return total
}
