package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func ptr(s string) *string { return &s }

func concept(id, title string, parent *string, order int) domain.RawConcept {
	return domain.RawConcept{
		ExternalID:       id,
		Title:            title,
		ParentExternalID: parent,
		Order:            order,
		KeyPoints:        []string{"k"},
		Excerpts:         []domain.RawExcerpt{{Text: "t", Context: ptr("c")}},
	}
}

func titles(cs []domain.RawConcept) []string {
	out := make([]string, len(cs))
	for i := range cs {
		out[i] = cs[i].Title
	}
	return out
}

func TestQualify(t *testing.T) {
	in := []domain.RawConcept{
		concept("c1", "A", nil, 0),
		concept("c2", "B", ptr("c1"), 1),
	}

	out := Qualify(3, in)
	require.Len(t, out, 2)
	assert.Equal(t, "3:c1", out[0].ExternalID)
	assert.Nil(t, out[0].ParentExternalID)
	assert.Equal(t, "3:c2", out[1].ExternalID)
	assert.Equal(t, "3:c1", *out[1].ParentExternalID)

	// Input untouched.
	assert.Equal(t, "c1", in[0].ExternalID)
	assert.Equal(t, "c1", *in[1].ParentExternalID)
}

func TestMerge_KeepsFirstByTitle(t *testing.T) {
	in := append(
		Qualify(0, []domain.RawConcept{concept("c1", "Alpha", nil, 5), concept("c2", "Beta", nil, 9)}),
		Qualify(1, []domain.RawConcept{concept("c1", "Beta", nil, 0), concept("c2", "Gamma", nil, 1)})...,
	)

	out := Merge(in)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, titles(out))
	assert.Equal(t, "0:c2", out[1].ExternalID, "first occurrence wins")
	for i := range out {
		assert.Equal(t, i, out[i].Order)
	}
}

func TestMerge_Idempotence(t *testing.T) {
	list := Qualify(0, []domain.RawConcept{
		concept("a", "One", nil, 3),
		concept("b", "Two", ptr("a"), 0),
		concept("c", "Three", nil, 1),
	})

	once := Merge(list)
	twice := Merge(append(append([]domain.RawConcept{}, list...), list...))
	assert.Equal(t, once, twice)
	assert.Equal(t, once, Merge(once))
	for i := range twice {
		assert.Equal(t, i, twice[i].Order)
	}
}

func TestMerge_RedirectsChildrenOfDroppedDuplicate(t *testing.T) {
	in := append(
		Qualify(0, []domain.RawConcept{concept("x", "Shared", nil, 0)}),
		Qualify(1, []domain.RawConcept{
			concept("y", "Shared", nil, 0),
			concept("z", "Child", ptr("y"), 0),
		})...,
	)

	out := Merge(in)
	require.Len(t, out, 2)
	assert.Equal(t, "Child", out[1].Title)
	require.NotNil(t, out[1].ParentExternalID)
	assert.Equal(t, "0:x", *out[1].ParentExternalID)
}

func TestMerge_DifferentTitlesNotMerged(t *testing.T) {
	out := Merge([]domain.RawConcept{
		concept("a", "Machine Learning", nil, 0),
		concept("b", "Machine learning", nil, 0),
	})
	assert.Len(t, out, 2)
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	in := []domain.RawConcept{concept("a", "A", nil, 7), concept("b", "A", nil, 8), concept("c", "C", ptr("b"), 9)}
	out := Merge(in)

	assert.Equal(t, 7, in[0].Order)
	assert.Equal(t, "b", *in[2].ParentExternalID)
	out[0].KeyPoints[0] = "changed"
	assert.Equal(t, "k", in[0].KeyPoints[0])
	assert.Equal(t, "a", *out[1].ParentExternalID)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil))
}
