package skos

import (
	"strings"

	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/triplestore"
	"github.com/FAU-CDI/roald/internal/vocabulary"
)

func skos(name string) triplestore.Term    { return triplestore.IRI(triplestore.SKOS + name) }
func local(name string) triplestore.Term   { return triplestore.IRI(LOCAL + name) }
func isothes(name string) triplestore.Term { return triplestore.IRI(ISOTHES + name) }
func dcterms(name string) triplestore.Term { return triplestore.IRI(triplestore.DCTERMS + name) }

var (
	rdfType       = triplestore.IRI(triplestore.RDFType)
	dctModified   = dcterms("modified")
	owlSameAs     = triplestore.IRI(triplestore.OWL + "sameAs")
	owlDeprecated = triplestore.IRI(triplestore.OWL + "deprecated")
)

func dateTime(value string) triplestore.Term {
	return triplestore.TypedLiteral(value, triplestore.XSDDateTime)
}

// typeClasses maps resource types to the rdf classes they are exported as.
// Types not listed here are not exported.
var typeClasses = map[resource.Type][]triplestore.Term{
	resource.TypeCollection:             {skos("Collection"), isothes("ThesaurusArray")},
	resource.TypeCategory:               {skos("Collection"), triplestore.IRI(UOC + "Category")},
	resource.TypeTopic:                  {skos("Concept"), local("Topic")},
	resource.TypeGeographic:             {skos("Concept"), local("Place")},
	resource.TypeGenreForm:              {skos("Concept"), local("GenreForm")},
	resource.TypeTemporal:               {skos("Concept"), local("Time")},
	resource.TypeCompoundHeading:        {skos("Concept"), local("CompoundConcept")},
	resource.TypeVirtualCompoundHeading: {skos("Concept"), local("VirtualCompoundConcept")},
	resource.TypeKnuteTerm:              {skos("Concept"), local("KnuteTerm")},
	resource.TypeLinkingTerm:            {skos("Concept"), local("LinkingTerm")},
	resource.TypeSplitNonPreferredTerm:  {skos("Concept"), local("SplitNonPreferredTerm")},
}

// converter adds the triples of resources to a graph.
type converter struct {
	voc      *vocabulary.Vocabulary
	opts     Options
	language string
	scheme   triplestore.Term
	graph    *triplestore.Graph
	st       *stats.Stats
}

func (c *converter) uri(id string) (triplestore.Term, error) {
	uri, err := c.voc.URI(id)
	if err != nil {
		return triplestore.Term{}, err
	}
	return triplestore.IRI(uri), nil
}

// link returns the uri of the existing resource with the given id.
// Missing resources are logged.
func (c *converter) link(res *resource.Resource, relation, id string) (triplestore.Term, bool) {
	if !c.voc.Resources.Has(id) {
		c.st.LogWarn("relation target does not exist", "id", res.ID(), "relation", relation, "target", id)
		return triplestore.Term{}, false
	}
	uri, err := c.uri(id)
	return uri, err == nil
}

// resource adds the triples describing res.
func (c *converter) resource(res *resource.Resource) error {
	var classes []triplestore.Term
	for _, t := range res.Types() {
		classes = append(classes, typeClasses[t]...)
	}
	if len(classes) == 0 {
		c.st.LogDebug("skipping resource without rdf class", "id", res.ID(), "type", res.PrimaryType())
		return nil
	}

	subject, err := c.uri(res.ID())
	if err != nil {
		return err
	}
	add := func(predicate, object triplestore.Term) {
		c.graph.Add(triplestore.Triple{Subject: subject, Predicate: predicate, Object: object})
	}

	for _, class := range classes {
		add(rdfType, class)
	}

	if res.Flag(resource.FieldIsTopConcept) {
		add(skos("topConceptOf"), c.scheme)
	} else {
		add(skos("inScheme"), c.scheme)
	}

	c.labels(res, add)
	c.notes(res, add)
	c.dates(res, add)

	if symbol, ok := res.Get(resource.FieldElementSymbol); ok {
		add(local("elementSymbol"), triplestore.Literal(symbol))
	}
	for _, code := range res.List(resource.FieldLibCode) {
		add(local("libCode"), triplestore.Literal(code))
	}
	add(dcterms("identifier"), triplestore.Literal(res.ID()))
	for _, ddc := range res.List(resource.FieldDDC) {
		add(dcterms("DDC"), triplestore.Literal(ddc))
	}

	if err := c.relations(res, subject, add); err != nil {
		return err
	}

	for _, relation := range res.Keys(resource.FieldMappings) {
		for _, target := range res.TextList(resource.FieldMappings, relation) {
			add(skos(relation), triplestore.IRI(target))
		}
	}

	c.components(res, subject, add)

	for _, template := range c.opts.AddSameAs {
		add(owlSameAs, triplestore.IRI(strings.ReplaceAll(template, vocabulary.IDPlaceholder, res.ID())))
	}
	return nil
}

func (c *converter) labels(res *resource.Resource, add func(p, o triplestore.Term)) {
	for _, lang := range res.Keys(resource.FieldPrefLabel) {
		label, _ := res.Label(resource.FieldPrefLabel, lang)
		add(skos("prefLabel"), triplestore.LangLiteral(label.Value, lang))
		if label.HasAcronym != "" {
			add(skos("altLabel"), triplestore.LangLiteral(label.HasAcronym, lang))
		}
	}

	for _, lang := range res.Keys(resource.FieldAltLabel) {
		for _, label := range res.LabelList(resource.FieldAltLabel, lang) {
			add(skos("altLabel"), triplestore.LangLiteral(label.Value, lang))
			if label.HasAcronym != "" {
				add(skos("altLabel"), triplestore.LangLiteral(label.HasAcronym, lang))
			}
		}
	}
}

func (c *converter) notes(res *resource.Resource, add func(p, o triplestore.Term)) {
	for _, lang := range res.Keys(resource.FieldDefinition) {
		definition, _ := res.Text(resource.FieldDefinition, lang)
		add(skos("definition"), triplestore.LangLiteral(definition, lang))
	}
	for _, lang := range res.Keys(resource.FieldScopeNote) {
		for _, note := range res.TextList(resource.FieldScopeNote, lang) {
			add(skos("scopeNote"), triplestore.LangLiteral(note, lang))
		}
	}
	for _, note := range res.List(resource.FieldEditorialNote) {
		add(skos("editorialNote"), triplestore.LangLiteral(note, c.language))
	}
	for _, acronym := range res.List(resource.FieldAcronym) {
		add(local("acronym"), triplestore.Literal(acronym))
	}
	for _, notation := range res.List(resource.FieldNotation) {
		add(skos("notation"), triplestore.Literal(notation))
	}
}

func (c *converter) dates(res *resource.Resource, add func(p, o triplestore.Term)) {
	created, hasCreated := res.Get(resource.FieldCreated)
	if hasCreated {
		add(dcterms("created"), dateTime(created))
	}

	if deprecated, ok := res.Get(resource.FieldDeprecated); ok {
		add(owlDeprecated, triplestore.TypedLiteral("true", triplestore.XSDBoolean))
		add(skos("historyNote"), triplestore.Literal("Deprecated on "+deprecated))
		add(dctModified, dateTime(deprecated))
		return
	}

	if modified, ok := res.Get(resource.FieldModified); ok {
		add(dctModified, dateTime(modified))
	} else if hasCreated {
		add(dctModified, dateTime(created))
	}
}

func (c *converter) relations(res *resource.Resource, subject triplestore.Term, add func(p, o triplestore.Term)) error {
	for _, id := range res.List(resource.FieldRelated) {
		if target, ok := c.link(res, "related", id); ok {
			add(skos("related"), target)
		}
	}

	for _, id := range res.List(resource.FieldReplacedBy) {
		if target, ok := c.link(res, "replacedBy", id); ok {
			add(dcterms("isReplacedBy"), target)
		}
	}

	for _, id := range res.List(resource.FieldMemberOf) {
		collection, err := c.uri(id)
		if err != nil {
			return err
		}
		c.graph.Add(triplestore.Triple{Subject: collection, Predicate: skos("member"), Object: subject})
	}

	for _, id := range res.List(resource.FieldSuperOrdinate) {
		superOrdinate, err := c.uri(id)
		if err != nil {
			return err
		}
		add(isothes("superOrdinate"), superOrdinate)
		c.graph.Add(triplestore.Triple{Subject: superOrdinate, Predicate: isothes("subordinateArray"), Object: subject})
	}

	for _, id := range res.List(resource.FieldBroader) {
		if target, ok := c.link(res, "broader", id); ok {
			c.broader(subject, target)
		}
	}
	return nil
}

// broader links subject to the broader concept target.
func (c *converter) broader(subject, target triplestore.Term) {
	c.graph.Add(triplestore.Triple{Subject: subject, Predicate: skos("broader"), Object: target})
	if c.opts.IncludeNarrower {
		c.graph.Add(triplestore.Triple{Subject: target, Predicate: skos("narrower"), Object: subject})
	}
}

// components adds the labels and links of a compound heading.
// A label is only added in languages that every component has a preferred label in.
func (c *converter) components(res *resource.Resource, subject triplestore.Term, add func(p, o triplestore.Term)) {
	ids := res.List(resource.FieldComponent)
	if len(ids) == 0 {
		return
	}

	components := make([]*resource.Resource, 0, len(ids))
	uris := make([]triplestore.Term, 0, len(ids))
	for _, id := range ids {
		component, ok := c.voc.Resources.Get(id)
		if !ok {
			c.st.LogWarn("component does not exist", "id", res.ID(), "component", id)
			return
		}
		uri, ok := c.link(res, "component", id)
		if !ok {
			return
		}
		components = append(components, component)
		uris = append(uris, uri)
	}

outer:
	for _, lang := range components[0].Keys(resource.FieldPrefLabel) {
		terms := make([]string, len(components))
		for i, component := range components {
			label, ok := component.Label(resource.FieldPrefLabel, lang)
			if !ok {
				continue outer
			}
			terms[i] = label.Value
		}
		add(skos("prefLabel"), triplestore.LangLiteral(strings.Join(terms, resource.TermSeparator), lang))
	}

	for _, uri := range uris {
		add(local("component"), uri)
		c.broader(subject, uri)
		if c.opts.IncludeNarrower {
			c.graph.Add(triplestore.Triple{Subject: uri, Predicate: local("compound"), Object: subject})
		}
	}
}
