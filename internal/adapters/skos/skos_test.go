package skos_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FAU-CDI/roald/internal/adapters/skos"
	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/triplestore"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cspell:words Fysikk Mekanikk Jorden Naturvitenskap

var modified = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

const scheme = "http://example.org/"

func iri(value string) triplestore.Term { return triplestore.IRI(value) }
func c(id string) triplestore.Term      { return iri("http://example.org/c" + id) }
func sk(name string) triplestore.Term   { return iri(triplestore.SKOS + name) }

func triple(s, p, o triplestore.Term) triplestore.Triple {
	return triplestore.Triple{Subject: s, Predicate: p, Object: o}
}

func newVocabulary(t *testing.T, resources ...*resource.Resource) *vocabulary.Vocabulary {
	t.Helper()

	voc := vocabulary.New("nb")
	require.NoError(t, voc.SetURIFormat("http://example.org/c{id}"))
	require.NoError(t, voc.Resources.Add(resources...))
	return voc
}

func concept(t *testing.T, id string, typ resource.Type, labels ...string) *resource.Resource {
	t.Helper()

	res, err := resource.NewConcept(typ)
	require.NoError(t, err)
	require.NoError(t, res.Set(resource.FieldID, id))
	for i := 0; i+1 < len(labels); i += 2 {
		require.NoError(t, res.SetLabel(resource.FieldPrefLabel, labels[i], resource.NewLabel(labels[i+1])))
	}
	return res
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	physics := concept(t, "1", resource.TypeTopic)
	require.NoError(t, physics.SetLabel(resource.FieldPrefLabel, "nb", resource.Label{Value: "Fysikk", HasAcronym: "F"}))
	require.NoError(t, physics.SetFlag(resource.FieldIsTopConcept, true))
	require.NoError(t, physics.Set(resource.FieldCreated, "2015-02-20T13:08:04Z"))
	require.NoError(t, physics.Add(resource.FieldEditorialNote, "merknad"))
	require.NoError(t, physics.SetText(resource.FieldDefinition, "en", "The study of matter"))

	mechanics := concept(t, "2", resource.TypeTopic, "nb", "Mekanikk")
	require.NoError(t, mechanics.Add(resource.FieldBroader, "1", "missing"))
	require.NoError(t, mechanics.Add(resource.FieldRelated, "3"))
	require.NoError(t, mechanics.Add(resource.FieldMemberOf, "F1"))
	require.NoError(t, mechanics.Set(resource.FieldDeprecated, "2020-01-01T00:00:00Z"))

	earth := concept(t, "3", resource.TypeGeographic, "en", "Earth", "nb", "Jorden")
	require.NoError(t, earth.AddText(resource.FieldMappings, "exactMatch", "http://www.wikidata.org/entity/Q2"))

	compound := concept(t, "4", resource.TypeCompoundHeading)
	require.NoError(t, compound.Add(resource.FieldComponent, "1", "3"))

	collection := resource.NewCollection()
	require.NoError(t, collection.Set(resource.FieldID, "F1"))

	voc := newVocabulary(t, physics, mechanics, earth, compound, collection)

	st := stats.NewStats(nil)
	graph, err := skos.Prepare(voc, skos.Options{
		SchemeURI:       scheme,
		IncludeNarrower: true,
		AddSameAs:       []string{"http://other.org/{id}"},
		Modified:        modified,
	}, st)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Warnings(), "missing broader concept")

	xsdDateTime := func(value string) triplestore.Term { return triplestore.TypedLiteral(value, triplestore.XSDDateTime) }
	rdfType := iri(triplestore.RDFType)
	dctModified := iri(triplestore.DCTERMS + "modified")

	for _, want := range []triplestore.Triple{
		triple(iri(scheme), rdfType, sk("ConceptScheme")),
		triple(iri(scheme), dctModified, xsdDateTime("2024-01-02T03:04:05Z")),

		triple(c("1"), rdfType, sk("Concept")),
		triple(c("1"), rdfType, iri(skos.LOCAL+"Topic")),
		triple(c("1"), sk("topConceptOf"), iri(scheme)),
		triple(c("1"), sk("prefLabel"), triplestore.LangLiteral("Fysikk", "nb")),
		triple(c("1"), sk("altLabel"), triplestore.LangLiteral("F", "nb")),
		triple(c("1"), sk("definition"), triplestore.LangLiteral("The study of matter", "en")),
		triple(c("1"), sk("editorialNote"), triplestore.LangLiteral("merknad", "nb")),
		triple(c("1"), iri(triplestore.DCTERMS+"created"), xsdDateTime("2015-02-20T13:08:04Z")),
		triple(c("1"), dctModified, xsdDateTime("2015-02-20T13:08:04Z")),
		triple(c("1"), iri(triplestore.DCTERMS+"identifier"), triplestore.Literal("1")),
		triple(c("1"), iri(triplestore.OWL+"sameAs"), iri("http://other.org/1")),
		triple(c("1"), sk("narrower"), c("2")),

		triple(c("2"), sk("inScheme"), iri(scheme)),
		triple(c("2"), sk("broader"), c("1")),
		triple(c("2"), sk("related"), c("3")),
		triple(c("2"), iri(triplestore.OWL+"deprecated"), triplestore.TypedLiteral("true", triplestore.XSDBoolean)),
		triple(c("2"), sk("historyNote"), triplestore.Literal("Deprecated on 2020-01-01T00:00:00Z")),
		triple(c("2"), dctModified, xsdDateTime("2020-01-01T00:00:00Z")),

		triple(c("3"), rdfType, iri(skos.LOCAL+"Place")),
		triple(c("3"), sk("exactMatch"), iri("http://www.wikidata.org/entity/Q2")),

		triple(c("4"), rdfType, iri(skos.LOCAL+"CompoundConcept")),
		triple(c("4"), sk("prefLabel"), triplestore.LangLiteral("Fysikk : Jorden", "nb")),
		triple(c("4"), iri(skos.LOCAL+"component"), c("1")),
		triple(c("4"), sk("broader"), c("3")),
		triple(c("3"), iri(skos.LOCAL+"compound"), c("4")),

		triple(c("F1"), rdfType, sk("Collection")),
		triple(c("F1"), sk("member"), c("2")),
	} {
		assert.True(t, graph.Has(want), "missing %s", want)
	}

	assert.Len(t, graph.Objects(c("4"), sk("prefLabel")), 1, "languages missing in a component are skipped")
	assert.Len(t, graph.Objects(c("2"), dctModified), 1)
	assert.False(t, graph.Has(triple(c("2"), sk("broader"), c("missing"))))
}

func TestPrepare_Errors(t *testing.T) {
	t.Parallel()

	voc := newVocabulary(t, concept(t, "1", resource.TypeTopic, "nb", "Fysikk"))
	_, err := skos.Prepare(voc, skos.Options{}, nil)
	assert.ErrorIs(t, err, skos.ErrNoConceptScheme)

	noFormat := vocabulary.New("nb")
	_, err = skos.Prepare(noFormat, skos.Options{SchemeURI: scheme}, nil)
	assert.ErrorIs(t, err, vocabulary.ErrNoURIFormat)

	noLanguage := vocabulary.New("")
	_, err = skos.Prepare(noLanguage, skos.Options{SchemeURI: scheme}, nil)
	assert.ErrorIs(t, err, vocabulary.ErrNoDefaultLanguage)
}

func TestPrepare_Include(t *testing.T) {
	t.Parallel()

	include := writeFile(t, "scheme.ttl", `@prefix skos: <http://www.w3.org/2004/02/skos/core#> .
@prefix dcterms: <http://purl.org/dc/terms/> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

<http://example.org/> a skos:ConceptScheme ;
    dcterms:modified "2000-01-01T00:00:00Z"^^xsd:dateTime .
`)
	mappings := writeFile(t, "mappings.ttl", `@prefix skos: <http://www.w3.org/2004/02/skos/core#> .

<http://example.org/c1> skos:closeMatch <http://x.org/1> .
<http://example.org/c99> skos:closeMatch <http://x.org/99> .
<http://example.org/c1> skos:prefLabel "ignored"@nb .
`)

	voc := newVocabulary(t, concept(t, "1", resource.TypeTopic, "nb", "Fysikk"))
	graph, err := skos.Prepare(voc, skos.Options{
		Include:      []string{include},
		MappingsFrom: []string{mappings},
		Modified:     modified,
	}, nil)
	require.NoError(t, err)

	dctModified := iri(triplestore.DCTERMS + "modified")
	assert.Equal(t, []triplestore.Term{triplestore.TypedLiteral("2024-01-02T03:04:05Z", triplestore.XSDDateTime)}, graph.Objects(iri(scheme), dctModified))
	assert.Equal(t, []triplestore.Triple{triple(c("1"), sk("closeMatch"), iri("http://x.org/1"))}, graph.Triples(sk("closeMatch")))
	assert.Equal(t, []triplestore.Term{triplestore.LangLiteral("Fysikk", "nb")}, graph.Objects(c("1"), sk("prefLabel")))
}

func TestExport(t *testing.T) {
	t.Parallel()

	a := concept(t, "10", resource.TypeTopic, "nb", "A")
	b := concept(t, "2", resource.TypeTopic, "nb", "B")
	require.NoError(t, a.Add(resource.FieldBroader, "2"))
	require.NoError(t, b.Add(resource.FieldBroader, "10"))

	voc := newVocabulary(t, a, b)
	opts := skos.Options{SchemeURI: scheme, Modified: modified}

	st := stats.NewStats(nil)
	var buffer bytes.Buffer
	require.NoError(t, skos.Export(&buffer, voc, opts, st))
	output := buffer.String()

	assert.Equal(t, 1, strings.Count(output, "skos:broader"), "cycles are broken")
	assert.Equal(t, 1, st.Warnings())

	assert.True(t, strings.HasPrefix(output, "@prefix dcterms: <http://purl.org/dc/terms/> .\n"))
	schemeAt := strings.Index(output, "<http://example.org/> a skos:ConceptScheme")
	twoAt := strings.Index(output, "<http://example.org/c2> a ")
	tenAt := strings.Index(output, "<http://example.org/c10> a ")
	assert.True(t, 0 < schemeAt && schemeAt < twoAt && twoAt < tenAt, output)

	opts.Format = triplestore.FormatNTriples
	buffer.Reset()
	require.NoError(t, skos.Export(&buffer, voc, opts, nil))

	var graph triplestore.Graph
	require.NoError(t, triplestore.Decode(&buffer, triplestore.FormatNTriples, func(t triplestore.Triple) error {
		graph.Add(t)
		return nil
	}))
	assert.Len(t, graph.Triples(sk("broader")), 1)
	assert.True(t, graph.HasType(c("10"), skos.LOCAL+"Topic"))

	opts.Format = triplestore.FormatRDFXML
	assert.ErrorIs(t, skos.Export(&buffer, voc, opts, nil), skos.ErrUnsupportedFormat)
}

func TestExport_InverseMappings(t *testing.T) {
	t.Parallel()

	physics := concept(t, "1", resource.TypeTopic, "nb", "Fysikk")
	require.NoError(t, physics.AddText(resource.FieldMappings, "broadMatch", "http://other.org/x"))
	require.NoError(t, physics.AddText(resource.FieldMappings, "exactMatch", "http://other.org/y"))

	voc := newVocabulary(t, physics)

	var buffer bytes.Buffer
	require.NoError(t, skos.Export(&buffer, voc, skos.Options{SchemeURI: scheme, Modified: modified, Format: triplestore.FormatNTriples}, nil))

	var graph triplestore.Graph
	require.NoError(t, triplestore.Decode(&buffer, triplestore.FormatNTriples, func(t triplestore.Triple) error {
		graph.Add(t)
		return nil
	}))

	assert.True(t, graph.Has(triple(c("1"), sk("broadMatch"), iri("http://other.org/x"))))
	assert.True(t, graph.Has(triple(iri("http://other.org/x"), sk("narrowMatch"), c("1"))))
	assert.True(t, graph.Has(triple(iri("http://other.org/y"), sk("exactMatch"), c("1"))))
}

func TestOrdered(t *testing.T) {
	t.Parallel()

	var graph triplestore.Graph
	rdfType := iri(triplestore.RDFType)
	graph.AddAll(
		triple(triplestore.Blank("b"), sk("prefLabel"), triplestore.Literal("blank")),
		triple(c("10"), sk("prefLabel"), triplestore.Literal("ten")),
		triple(c("10"), rdfType, sk("Concept")),
		triple(c("9"), rdfType, sk("Concept")),
		triple(iri("http://example.org/other"), sk("prefLabel"), triplestore.Literal("other")),
		triple(c("F"), rdfType, sk("Collection")),
		triple(iri(scheme), rdfType, sk("ConceptScheme")),
	)

	var subjects []triplestore.Term
	var predicates []triplestore.Term
	for _, t := range skos.Ordered(&graph) {
		subjects = append(subjects, t.Subject)
		predicates = append(predicates, t.Predicate)
	}

	assert.Equal(t, []triplestore.Term{iri(scheme), c("F"), c("9"), c("10"), c("10"), iri("http://example.org/other"), triplestore.Blank("b")}, subjects)
	assert.Equal(t, rdfType, predicates[3], "types are written first")
	assert.Equal(t, sk("prefLabel"), predicates[4])
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "mappings.ttl", `@prefix skos: <http://www.w3.org/2004/02/skos/core#> .
@prefix uoc: <http://trans.biblionaut.net/class#> .

<http://dewey.info/class/530/e23/> skos:exactMatch <http://example.org/c1> .
<http://example.org/c2> skos:broadMatch <http://dewey.info/class/5/e23/> .
<http://example.org/c99> skos:closeMatch <http://x.org/99> .

<http://example.org/categories/K1> a uoc:Category ;
    skos:prefLabel "Naturvitenskap"@nb, "Science"@en ;
    skos:member <http://example.org/c1>, <http://example.org/c99> .
`)

	voc := newVocabulary(t,
		concept(t, "1", resource.TypeTopic, "nb", "Fysikk"),
		concept(t, "2", resource.TypeTopic, "nb", "Matematikk"),
	)

	st := stats.NewStats(nil)
	require.NoError(t, skos.Load(path, voc, st))
	assert.Equal(t, 2, st.Warnings(), "unknown concept in mappings and categories")

	check := func() {
		one, _ := voc.Resources.Get("1")
		assert.Equal(t, []string{"http://dewey.info/class/530/e23/"}, one.TextList(resource.FieldMappings, "exactMatch"))
		assert.Equal(t, []string{"K1"}, one.List(resource.FieldMemberOf))

		two, _ := voc.Resources.Get("2")
		assert.Equal(t, []string{"http://dewey.info/class/5/e23/"}, two.TextList(resource.FieldMappings, "broadMatch"))

		category, ok := voc.Resources.Get("K1")
		require.True(t, ok)
		assert.Equal(t, []resource.Type{resource.TypeCategory}, category.Types())
		label, _ := category.Label(resource.FieldPrefLabel, "nb")
		assert.Equal(t, "Naturvitenskap", label.Value)
	}
	check()
	assert.Equal(t, 3, voc.Resources.Len())

	// loading again does not duplicate anything
	require.NoError(t, skos.Load(path, voc, st))
	check()
	assert.Equal(t, 3, voc.Resources.Len())
}
