package resource_test

import (
	"testing"

	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelled(t *testing.T, id, nb string) *resource.Resource {
	t.Helper()

	r := newTopic(t, id)
	require.NoError(t, r.SetLabel(resource.FieldPrefLabel, "nb", resource.NewLabel(nb)))
	return r
}

func TestResources_Term(t *testing.T) {
	t.Parallel()

	a := labelled(t, "A", "Fornybar energi")
	b := labelled(t, "B", "Livssyklusanalyse")

	c, err := resource.NewConcept(resource.TypeCompoundHeading)
	require.NoError(t, err)
	require.NoError(t, c.Set(resource.FieldID, "C"))
	require.NoError(t, c.Add(resource.FieldComponent, "A", "B"))

	rs := resource.NewResources("nb")
	require.NoError(t, rs.Add(c, a, b))

	got, ok := rs.ByTerm("Fornybar energi : Livssyklusanalyse")
	require.True(t, ok)
	assert.Equal(t, "C", got.ID())

	term, ok := rs.Term("A")
	require.True(t, ok)
	assert.Equal(t, "Fornybar energi", term)

	_, ok = rs.ByTerm("Livssyklusanalyse : Fornybar energi")
	assert.False(t, ok)

	assert.Equal(t, []string{"C", "A", "B"}, rs.IDs())
}

func TestResources_Add(t *testing.T) {
	t.Parallel()

	rs := resource.NewResources("nb")
	require.NoError(t, rs.Add(labelled(t, "A", "Atlas")))

	assert.ErrorIs(t, rs.Add(labelled(t, "A", "Atlas")), resource.ErrDuplicateResource)

	blank, err := resource.NewConcept(resource.TypeTopic)
	require.NoError(t, err)
	assert.ErrorIs(t, rs.Add(blank), resource.ErrMissingID)

	assert.Equal(t, 1, rs.Len())
	assert.True(t, rs.Has("A"))
}

func TestResources_Duplicates(t *testing.T) {
	t.Parallel()

	rs := resource.NewResources("nb")
	require.NoError(t, rs.Add(labelled(t, "A", "Atlas"), labelled(t, "B", "Atlas"), labelled(t, "C", "Kart")))

	got, ok := rs.ByTerm("Atlas")
	require.True(t, ok)
	assert.Equal(t, "B", got.ID())
	assert.Equal(t, []string{"Atlas"}, rs.Duplicates())

	counts := rs.Counts()
	assert.Equal(t, 3, counts.Resources)
	assert.Equal(t, 3, counts.Concepts)
	assert.Equal(t, 2, counts.Terms)
	assert.Equal(t, 1, counts.Duplicates)
	assert.Equal(t, 3, counts.PerType[resource.TypeTopic])
}

func TestResources_SetLanguage(t *testing.T) {
	t.Parallel()

	a := labelled(t, "A", "Atlas")
	require.NoError(t, a.SetLabel(resource.FieldPrefLabel, "en", resource.NewLabel("Atlases")))

	rs := resource.NewResources("nb")
	require.NoError(t, rs.Add(a))

	_, ok := rs.ByTerm("Atlases")
	assert.False(t, ok)

	rs.SetLanguage("en")
	got, ok := rs.ByTerm("Atlases")
	require.True(t, ok)
	assert.Equal(t, "A", got.ID())
}
