package bibsys_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FAU-CDI/roald/internal/adapters/bibsys"
	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/sidetable"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cspell:words bibsys hovedemnefrase kvalifikator overordnetterm definisjon noter henvisning ogsa dato
// cspell:words poster Fysikk Mekanikk fysikk Kvantemekanikk Teori Generelt Vitenskap

const sample = "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" + `<poster>
<post><term-id>F1</term-id><hovedemnefrase>Fag</hovedemnefrase><type>F</type><dato>2014-01-02</dato></post>
<post>
	<term-id>T1</term-id>
	<hovedemnefrase>Fysikk</hovedemnefrase>
	<overordnetterm-id>F1</overordnetterm-id>
	<dato>2014-01-02</dato>
	<definisjon>Vitenskap</definisjon>
	<noter>Note</noter>
</post>
<post>
	<term-id>T2</term-id>
	<hovedemnefrase>Mekanikk</hovedemnefrase>
	<kvalifikator>fysikk</kvalifikator>
	<overordnetterm-id>T1</overordnetterm-id>
	<se-ogsa-id>T3</se-ogsa-id>
	<se-ogsa-id>F1</se-ogsa-id>
	<se-ogsa-id>X9</se-ogsa-id>
</post>
<post><term-id>T3</term-id><hovedemnefrase>Kvantemekanikk</hovedemnefrase><type>K</type><overordnetterm-id>F2</overordnetterm-id></post>
<post><term-id>F2</term-id><hovedemnefrase>Teori</hovedemnefrase><type>F</type><overordnetterm-id>T1</overordnetterm-id></post>
<post><term-id>S1</term-id><hovedemnefrase>Bl` + "\xe5" + `</hovedemnefrase><se-id>T1</se-id></post>
<post><term-id>G1</term-id><hovedemnefrase>Generelt</hovedemnefrase><gen-se-henvisning>x</gen-se-henvisning></post>
</poster>
`

func importString(t *testing.T, data string, st *stats.Stats) *vocabulary.Vocabulary {
	t.Helper()

	voc := vocabulary.New("nb")
	im, err := bibsys.NewImporter(voc, nil, st)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, im.Close())
	}()

	require.NoError(t, im.Scan(strings.NewReader(data)))
	require.NoError(t, im.Link(strings.NewReader(data)))
	return voc
}

func get(t *testing.T, voc *vocabulary.Vocabulary, id string) *resource.Resource {
	t.Helper()

	res, ok := voc.Resources.Get(id)
	require.True(t, ok, id)
	return res
}

func TestImporter(t *testing.T) {
	t.Parallel()

	st := stats.NewStats(nil)
	voc := importString(t, sample, st)

	assert.Equal(t, []string{"F1", "T1", "T2", "T3", "F2", "G1"}, voc.Resources.IDs())
	assert.Equal(t, 3, st.Warnings())

	f1 := get(t, voc, "F1")
	assert.True(t, f1.IsCollection())
	assert.Equal(t, []string{"T1"}, f1.List(resource.FieldMember))
	modified, _ := f1.Get(resource.FieldModified)
	assert.Equal(t, "2014-01-02T00:00:00Z", modified)

	t1 := get(t, voc, "T1")
	assert.Equal(t, resource.TypeTopic, t1.PrimaryType())
	assert.Empty(t, t1.List(resource.FieldBroader))
	definition, _ := t1.Text(resource.FieldDefinition, "nb")
	assert.Equal(t, "Vitenskap", definition)
	assert.Equal(t, []string{"Note"}, t1.List(resource.FieldEditorialNote))
	assert.Equal(t, []resource.Label{{Value: "Blå"}}, t1.LabelList(resource.FieldAltLabel, "nb"))

	t2 := get(t, voc, "T2")
	label, _ := t2.Label(resource.FieldPrefLabel, "nb")
	assert.Equal(t, "Mekanikk (fysikk)", label.Value)
	assert.Equal(t, []string{"T3"}, t2.List(resource.FieldRelated))
	assert.Equal(t, []string{"T1"}, t2.List(resource.FieldBroader))

	t3 := get(t, voc, "T3")
	assert.Equal(t, resource.TypeKnuteTerm, t3.PrimaryType())
	assert.Equal(t, []string{"T1"}, t3.List(resource.FieldBroader), "collections are transparent")

	f2 := get(t, voc, "F2")
	assert.Equal(t, []string{"T3"}, f2.List(resource.FieldMember))
	assert.Equal(t, []string{"T1"}, f2.List(resource.FieldSuperOrdinate))
}

func TestImporter_ParentCycle(t *testing.T) {
	t.Parallel()

	data := `<poster>
<post><term-id>A</term-id><hovedemnefrase>A</hovedemnefrase><type>F</type><overordnetterm-id>B</overordnetterm-id></post>
<post><term-id>B</term-id><hovedemnefrase>B</hovedemnefrase><type>F</type><overordnetterm-id>C</overordnetterm-id></post>
<post><term-id>C</term-id><hovedemnefrase>C</hovedemnefrase><type>F</type><overordnetterm-id>A</overordnetterm-id></post>
<post><term-id>D</term-id><hovedemnefrase>D</hovedemnefrase><overordnetterm-id>A</overordnetterm-id></post>
</poster>`

	st := stats.NewStats(nil)
	voc := importString(t, data, st)

	assert.Empty(t, get(t, voc, "D").List(resource.FieldBroader))
	assert.Equal(t, 1, st.Warnings())
}

func TestImporter_ConceptCycle(t *testing.T) {
	t.Parallel()

	data := `<poster>
<post><term-id>A</term-id><hovedemnefrase>A</hovedemnefrase><overordnetterm-id>B</overordnetterm-id></post>
<post><term-id>B</term-id><hovedemnefrase>B</hovedemnefrase><overordnetterm-id>C</overordnetterm-id></post>
<post><term-id>C</term-id><hovedemnefrase>C</hovedemnefrase><overordnetterm-id>A</overordnetterm-id></post>
</poster>`

	st := stats.NewStats(nil)
	voc := importString(t, data, st)

	// concepts are never walked through, so the cycle is kept as is
	assert.Equal(t, []string{"B"}, get(t, voc, "A").List(resource.FieldBroader))
	assert.Equal(t, []string{"C"}, get(t, voc, "B").List(resource.FieldBroader))
	assert.Equal(t, []string{"A"}, get(t, voc, "C").List(resource.FieldBroader))
	assert.Equal(t, 0, st.Warnings())
}

func TestImporter_MissingParent(t *testing.T) {
	t.Parallel()

	data := `<poster><post><term-id>A</term-id><hovedemnefrase>A</hovedemnefrase><overordnetterm-id>Z</overordnetterm-id></post></poster>`

	st := stats.NewStats(nil)
	voc := importString(t, data, st)

	assert.Empty(t, get(t, voc, "A").List(resource.FieldBroader))
	assert.Equal(t, 1, st.Warnings())
}

func TestImport_Disk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bibsys.xml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	voc := vocabulary.New("nb")
	require.NoError(t, bibsys.Import(path, voc, sidetable.NewEngine(filepath.Join(dir, "cache")), nil))

	assert.Equal(t, 6, voc.Resources.Len())
	assert.Equal(t, []string{"T1"}, get(t, voc, "T3").List(resource.FieldBroader))

	// missing files are not an error
	require.NoError(t, bibsys.Import(filepath.Join(dir, "missing.xml"), vocabulary.New("nb"), nil, nil))
}
