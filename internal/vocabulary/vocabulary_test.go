package vocabulary_test

import (
	"testing"

	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabulary_URI(t *testing.T) {
	t.Parallel()

	v := vocabulary.New("nb")

	_, err := v.URI("REAL012345")
	assert.ErrorIs(t, err, vocabulary.ErrNoURIFormat)

	require.NoError(t, v.SetURIFormat("http://data.ub.uio.no/realfagstermer/c{id}"))
	v.IDPrefix = "REAL"

	uri, err := v.URI("REAL012345")
	require.NoError(t, err)
	assert.Equal(t, "http://data.ub.uio.no/realfagstermer/c012345", uri)

	id, ok := v.IDFromURI(uri)
	require.True(t, ok)
	assert.Equal(t, "REAL012345", id)

	_, ok = v.IDFromURI("http://data.ub.uio.no/humord/c012345")
	assert.False(t, ok)
	_, ok = v.IDFromURI("http://data.ub.uio.no/realfagstermer/c")
	assert.False(t, ok)

	assert.ErrorIs(t, v.SetURIFormat("http://example.org/"), vocabulary.ErrInvalidURIFormat)
}

func TestVocabulary_URI_SchemePrefix(t *testing.T) {
	t.Parallel()

	v := vocabulary.New("nb")
	require.NoError(t, v.SetURIFormat("http://data.ub.uio.no/realfagstermer/c{id}"))

	uri, err := v.URI("REAL012345")
	require.NoError(t, err)
	assert.Equal(t, "http://data.ub.uio.no/realfagstermer/c012345", uri)

	// ids without a scheme prefix are used as is
	uri, err = v.URI("12")
	require.NoError(t, err)
	assert.Equal(t, "http://data.ub.uio.no/realfagstermer/c12", uri)

	// the prefix is taken from the registry when mapping back
	assert.Equal(t, "", v.Prefix())
	r, err := resource.NewConcept(resource.TypeTopic)
	require.NoError(t, err)
	require.NoError(t, r.Set(resource.FieldID, "REAL012345"))
	require.NoError(t, v.Resources.Add(r))
	assert.Equal(t, "REAL", v.Prefix())

	id, ok := v.IDFromURI("http://data.ub.uio.no/realfagstermer/c012345")
	require.True(t, ok)
	assert.Equal(t, "REAL012345", id)
}

func TestSchemePrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want string
	}{
		{"REAL012345", "REAL"},
		{"HUME1", "HUME"},
		{"REAL", ""},
		{"12345", ""},
		{"K1", ""},
		{"RE4L012345", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, vocabulary.SchemePrefix(tt.id), tt.id)
	}
}

func TestVocabulary_DefaultLanguage(t *testing.T) {
	t.Parallel()

	v := vocabulary.New("")
	_, err := v.DefaultLanguage()
	assert.ErrorIs(t, err, vocabulary.ErrNoDefaultLanguage)

	require.NoError(t, v.SetLanguage("nb"))
	lang, err := v.DefaultLanguage()
	require.NoError(t, err)
	assert.Equal(t, vocabulary.Language{Alpha2: "nb", Terminology: "nob", Bibliographic: "nob"}, lang)
	assert.Equal(t, "nb", v.Resources.Language())

	assert.ErrorIs(t, v.SetLanguage("norsk"), vocabulary.ErrInvalidLanguage)
	assert.Equal(t, "nb", v.Language())
}

func TestVocabulary_SetLanguage_Reindexes(t *testing.T) {
	t.Parallel()

	r, err := resource.NewConcept(resource.TypeTopic)
	require.NoError(t, err)
	require.NoError(t, r.Set(resource.FieldID, "A"))
	require.NoError(t, r.SetLabel(resource.FieldPrefLabel, "en", resource.NewLabel("Atlases")))

	v := vocabulary.New("nb")
	require.NoError(t, v.Resources.Add(r))
	require.NoError(t, v.SetLanguage("en"))

	got, ok := v.Resources.ByTerm("Atlases")
	require.True(t, ok)
	assert.Equal(t, "A", got.ID())
}

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code          string
		bibliographic string
	}{
		{"nb", "nob"},
		{"nn", "nno"},
		{"en", "eng"},
		{"de", "ger"},
		{"fr", "fre"},
		{"la", "lat"},
	}
	for _, tt := range tests {
		lang, err := vocabulary.ParseLanguage(tt.code)
		require.NoError(t, err, tt.code)
		assert.Equal(t, tt.bibliographic, lang.Bibliographic, tt.code)
		assert.Equal(t, tt.code, lang.String())
	}

	_, err := vocabulary.ParseLanguage("")
	assert.ErrorIs(t, err, vocabulary.ErrInvalidLanguage)
}
