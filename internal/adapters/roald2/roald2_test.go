package roald2_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FAU-CDI/roald/internal/adapters/roald2"
	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cspell:words Verdensatlas Forente nasjoner Jern

func parse(t *testing.T, data string, typ resource.Type, lang string) []*resource.Resource {
	t.Helper()

	concepts, err := roald2.Parse(strings.NewReader(data), typ, lang, nil)
	require.NoError(t, err)
	return concepts
}

func TestParse_Record(t *testing.T) {
	t.Parallel()

	concepts := parse(t, `
        id= REAL030070
        te= Atlas
        bf= Verdensatlas
        tio= 2015-02-20T13:08:04Z
        `, resource.TypeGenreForm, "sv")

	require.Len(t, concepts, 1)
	c := concepts[0]

	assert.Equal(t, []resource.Type{resource.TypeGenreForm}, c.Types())
	assert.Equal(t, "REAL030070", c.ID())

	pref, ok := c.Label(resource.FieldPrefLabel, "sv")
	require.True(t, ok)
	assert.Equal(t, "Atlas", pref.Value)

	alt := c.LabelList(resource.FieldAltLabel, "sv")
	require.Len(t, alt, 1)
	assert.Equal(t, "Verdensatlas", alt[0].Value)

	created, _ := c.Get(resource.FieldCreated)
	assert.Equal(t, "2015-02-20T13:08:04Z", created)
}

func TestParse_Fields(t *testing.T) {
	t.Parallel()

	concepts := parse(t, `id= REAL1
te= Fysikk
en= Physics
en= Natural philosophy
ms= 70-XX
dw= 530
so= REAL2
ot= REAL3
de= Vitenskapen om materie og energi
no= Se også kjemi
tie= 2016-01-01

id= REAL4
da= REAL1
dx= REAL2
`, resource.TypeTopic, "nb")
	require.Len(t, concepts, 2)

	c := concepts[0]
	pref, _ := c.Label(resource.FieldPrefLabel, "en")
	assert.Equal(t, "Physics", pref.Value)
	assert.Equal(t, []resource.Label{{Value: "Natural philosophy"}}, c.LabelList(resource.FieldAltLabel, "en"))
	assert.Equal(t, []string{"70-XX"}, c.List(resource.FieldMSC))
	assert.Equal(t, []string{"530"}, c.List(resource.FieldDDC))
	assert.Equal(t, []string{"REAL2"}, c.List(resource.FieldRelated))
	assert.Equal(t, []string{"REAL3"}, c.List(resource.FieldBroader))

	definition, _ := c.Text(resource.FieldDefinition, "nb")
	assert.Equal(t, "Vitenskapen om materie og energi", definition)
	assert.Equal(t, []string{"Se også kjemi"}, c.TextList(resource.FieldScopeNote, "nb"))

	modified, _ := c.Get(resource.FieldModified)
	assert.Equal(t, "2016-01-01T00:00:00Z", modified)

	compound := concepts[1]
	assert.Equal(t, []string{"REAL1", "REAL2"}, compound.List(resource.FieldComponent))
	assert.Equal(t, []resource.Type{resource.TypeVirtualCompoundHeading}, compound.Types())
}

func TestParse_Acronyms(t *testing.T) {
	t.Parallel()

	concepts := parse(t, `id= A
te= Forente nasjoner
ak= FN

id= B
te= Jern
ak= Fe

id= C
te= Internasjonalt standardnummer
ak= ISSN

id= D
te= Alfa
en= Alpha
ak= XY

id= E
te= Laser
bf= Light amplification
ak= LA
`, resource.TypeTopic, "nb")
	require.Len(t, concepts, 5)

	// matching initials
	fn, _ := concepts[0].Label(resource.FieldPrefLabel, "nb")
	assert.Equal(t, resource.Label{Value: "Forente nasjoner", HasAcronym: "FN"}, fn)

	// element symbol
	symbol, _ := concepts[1].Get(resource.FieldElementSymbol)
	assert.Equal(t, "Fe", symbol)
	iron, _ := concepts[1].Label(resource.FieldPrefLabel, "nb")
	assert.Empty(t, iron.HasAcronym)

	// sole preferred label
	issn, _ := concepts[2].Label(resource.FieldPrefLabel, "nb")
	assert.Equal(t, "ISSN", issn.HasAcronym)

	// no match with several preferred labels
	assert.Equal(t, []resource.Label{{Value: "XY"}}, concepts[3].LabelList(resource.FieldAltLabel, "nb"))

	// alternative label
	assert.Equal(t, []resource.Label{{Value: "Light amplification", HasAcronym: "LA"}}, concepts[4].LabelList(resource.FieldAltLabel, "nb"))
	laser, _ := concepts[4].Label(resource.FieldPrefLabel, "nb")
	assert.Empty(t, laser.HasAcronym)
}

func TestMatchesAcronym(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		label, acronym string
		want           bool
	}{
		{"Forente nasjoner", "FN", true},
		{"Forente nasjoner", "F.N.", true},
		{"forente Nasjoner", "fn", true},
		{"Den norske kirke", "DnK", true},
		{"Forente nasjoner", "FNS", false},
		{"Forente", "FN", false},
		{"Forente nasjoner", "", false},
	} {
		assert.Equal(t, tt.want, roald2.MatchesAcronym(tt.label, tt.acronym), "%q %q", tt.label, tt.acronym)
	}
}

func TestParse_Warnings(t *testing.T) {
	t.Parallel()

	st := stats.NewStats(nil)
	concepts, err := roald2.Parse(strings.NewReader("id= A\nte= Alfa\nxx= unknown\n\nte= no id\n"), resource.TypeTopic, "nb", st)
	require.NoError(t, err)

	assert.Len(t, concepts, 1)
	assert.Equal(t, 2, st.Warnings())
}

func TestParse_DuplicateField(t *testing.T) {
	t.Parallel()

	_, err := roald2.Parse(strings.NewReader("id= A\nte= Alfa\nte= Beta\n"), resource.TypeTopic, "nb", nil)
	assert.ErrorIs(t, err, resource.ErrDuplicateField)
}

func TestImport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "idtermer.txt"), []byte("id= A\nte= Alfa\n\nid= B\nte= Beta\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "idsteder.txt"), []byte("id= C\nte= Oslo\n"), 0o600))

	voc := vocabulary.New("nb")
	require.NoError(t, roald2.Import(dir, voc, nil))

	assert.Equal(t, []string{"A", "B", "C"}, voc.Resources.IDs())
	c, _ := voc.Resources.Get("C")
	assert.Equal(t, resource.TypeGeographic, c.PrimaryType())

	b, ok := voc.Resources.ByTerm("Beta")
	require.True(t, ok)
	assert.Equal(t, "B", b.ID())
}

func TestImport_Empty(t *testing.T) {
	t.Parallel()

	err := roald2.Import(t.TempDir(), vocabulary.New("nb"), nil)
	assert.ErrorIs(t, err, roald2.ErrNoConcepts)

	err = roald2.Import(t.TempDir(), vocabulary.New(""), nil)
	assert.ErrorIs(t, err, vocabulary.ErrNoDefaultLanguage)
}
