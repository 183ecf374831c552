// Package skos exports vocabularies as skos rdf graphs, and loads mappings and categories from rdf files.
package skos

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/FAU-CDI/roald/internal/skosify"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/triplestore"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"golang.org/x/exp/slices"
)

// cspell:words isothes skosify

// Namespaces used in addition to those of the triplestore package.
const (
	ISOTHES = "http://purl.org/iso25964/skos-thes#"
	MADS    = "http://www.loc.gov/mads/rdf/v1#"
	SD      = "http://www.w3.org/ns/sparql-service-description#"
	LOCAL   = "http://data.ub.uio.no/onto#"
	UOC     = "http://trans.biblionaut.net/class#"
)

// Prefixes are the prefixes used when writing turtle.
var Prefixes = map[string]string{
	"rdf":     triplestore.RDF,
	"rdfs":    triplestore.RDFS,
	"owl":     triplestore.OWL,
	"xsd":     triplestore.XSD,
	"skos":    triplestore.SKOS,
	"dcterms": triplestore.DCTERMS,
	"foaf":    triplestore.FOAF,
	"isothes": ISOTHES,
	"mads":    MADS,
	"sd":      SD,
	"local":   LOCAL,
	"uoc":     UOC,
}

var (
	ErrNoConceptScheme   = errors.New("concept scheme uri could not be found in included files")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Options configure the export.
type Options struct {
	// Include are rdf files added to the graph as is.
	// Unless SchemeURI is set, they must declare a skos:ConceptScheme.
	Include []string

	// MappingsFrom are rdf files to take mapping relations from.
	// Only mappings of concepts in the exported graph are kept.
	MappingsFrom []string

	// AddSameAs are uri templates containing "{id}".
	// Each template adds an owl:sameAs link to every resource.
	AddSameAs []string

	// IncludeNarrower adds the inverse of skos:broader.
	IncludeNarrower bool

	// SchemeURI is the uri of the concept scheme.
	// When empty, it is taken from the included files.
	SchemeURI string

	// Format is the output format, either turtle (the default) or ntriples.
	Format triplestore.Format

	// Modified is the modification date of the scheme.
	// The zero value uses the current time.
	Modified time.Time
}

// Export converts voc into an rdf graph and writes it to w.
//
// Export runs its own stages on st.
func Export(w io.Writer, voc *vocabulary.Vocabulary, opts Options, st *stats.Stats) error {
	switch opts.Format {
	case "":
		opts.Format = triplestore.FormatTurtle
	case triplestore.FormatTurtle, triplestore.FormatNTriples:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}

	var graph *triplestore.Graph
	if err := st.DoStage(stats.StageSKOSPrepare, func() (err error) {
		graph, err = Prepare(voc, opts, st)
		return err
	}); err != nil {
		return err
	}

	if err := st.DoStage(stats.StageSKOSEnrich, func() error {
		added := skosify.EnrichMappings(graph)
		st.Log("added inverse mappings", "count", added)

		report := skosify.CheckHierarchy(graph, skosify.DefaultOptions, st)
		st.Log("checked hierarchy", "cycles", report.CyclesBroken, "redundant", report.RedundantRemoved, "related", report.RelatedRemoved)
		return nil
	}); err != nil {
		return err
	}

	return st.DoStage(stats.StageSKOSSerialize, func() error {
		return Serialize(w, graph, opts.Format)
	})
}

// Prepare builds the rdf graph of voc, without checking the hierarchy.
func Prepare(voc *vocabulary.Vocabulary, opts Options, st *stats.Stats) (*triplestore.Graph, error) {
	language, err := voc.DefaultLanguage()
	if err != nil {
		return nil, err
	}
	if voc.URIFormat == "" {
		return nil, vocabulary.ErrNoURIFormat
	}

	graph := new(triplestore.Graph)
	for _, path := range opts.Include {
		count, err := graph.ReadFile(path)
		if err != nil {
			return nil, err
		}
		st.Log("included triples", "count", count, "path", path)
	}

	scheme, err := conceptScheme(graph, opts.SchemeURI)
	if err != nil {
		return nil, err
	}

	modified := opts.Modified
	if modified.IsZero() {
		modified = time.Now()
	}
	graph.RemoveAbout(scheme, dctModified)
	graph.Add(triplestore.Triple{Subject: scheme, Predicate: dctModified, Object: dateTime(modified.UTC().Format("2006-01-02T15:04:05Z"))})

	c := converter{
		voc:      voc,
		opts:     opts,
		language: language.Alpha2,
		scheme:   scheme,
		graph:    graph,
		st:       st,
	}

	before := graph.Len()
	all := voc.Resources.All()
	for i, res := range all {
		if err := c.resource(res); err != nil {
			return nil, fmt.Errorf("resource %q: %w", res.ID(), err)
		}
		st.SetCT(i+1, len(all))
	}
	st.Log("added triples", "count", graph.Len()-before)

	for _, path := range opts.MappingsFrom {
		count, err := addMappings(graph, path)
		if err != nil {
			return nil, err
		}
		st.Log("added mappings", "count", count, "path", path)
	}

	return graph, nil
}

// conceptScheme returns the scheme to put concepts in.
func conceptScheme(graph *triplestore.Graph, uri string) (triplestore.Term, error) {
	if uri != "" {
		scheme := triplestore.IRI(uri)
		graph.Add(triplestore.Triple{Subject: scheme, Predicate: rdfType, Object: triplestore.IRI(triplestore.SKOS + "ConceptScheme")})
		return scheme, nil
	}

	schemes := graph.Instances(triplestore.SKOS + "ConceptScheme")
	if len(schemes) == 0 {
		return triplestore.Term{}, ErrNoConceptScheme
	}
	return schemes[0], nil
}

// addMappings adds the mapping relations found in path whose subject is a concept in graph.
func addMappings(graph *triplestore.Graph, path string) (count int, err error) {
	var mappings triplestore.Graph
	if _, err := mappings.ReadFile(path); err != nil {
		return 0, err
	}

	for _, name := range skosify.MappingRelations {
		triples := mappings.Triples(triplestore.IRI(triplestore.SKOS + name))
		triples = slices.DeleteFunc(triples, func(t triplestore.Triple) bool {
			return !graph.HasType(t.Subject, triplestore.SKOS+"Concept")
		})
		count += graph.AddAll(triples...)
	}
	return count, nil
}
