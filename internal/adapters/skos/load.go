package skos

import (
	"fmt"
	"strings"

	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/skosify"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/triplestore"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"golang.org/x/exp/slices"
)

// CategoryLanguage is the language category labels are read in.
const CategoryLanguage = "nb"

// Load reads mappings and categories from the rdf file at path into voc.
//
// Mapping relations are symmetrized first; relations of resources in voc are added to their mappings.
// Every uoc:Category becomes a Category concept, and its skos:member resources are made members of it.
func Load(path string, voc *vocabulary.Vocabulary, st *stats.Stats) error {
	var graph triplestore.Graph
	count, err := graph.ReadFile(path)
	if err != nil {
		return err
	}
	enriched := skosify.EnrichMappings(&graph)
	st.Log("read triples", "path", path, "count", count, "enriched", enriched)

	mappings := loadMappings(&graph, voc, st)
	categories, err := loadCategories(&graph, voc, st)
	if err != nil {
		return err
	}

	voc.Resources.Touch()
	st.Log("loaded mappings and categories", "path", path, "mappings", mappings, "categories", categories)
	return nil
}

func loadMappings(graph *triplestore.Graph, voc *vocabulary.Vocabulary, st *stats.Stats) (count int) {
	for _, relation := range skosify.MappingRelations {
		for _, t := range graph.Triples(skos(relation)) {
			if !t.Subject.IsIRI() || !t.Object.IsIRI() {
				continue
			}
			id, ok := voc.IDFromURI(t.Subject.Value)
			if !ok {
				continue
			}
			res, ok := voc.Resources.Get(id)
			if !ok {
				st.LogWarn("concept not found", "id", id, "relation", relation)
				continue
			}
			if slices.Contains(res.TextList(resource.FieldMappings, relation), t.Object.Value) {
				continue
			}
			if err := res.AddText(resource.FieldMappings, relation, t.Object.Value); err != nil {
				st.LogWarn("cannot add mapping", "id", id, "error", err)
				continue
			}
			count++
		}
	}
	return count
}

func loadCategories(graph *triplestore.Graph, voc *vocabulary.Vocabulary, st *stats.Stats) (count int, err error) {
	prefix := voc.Prefix()
	for _, category := range graph.Instances(UOC + "Category") {
		if !category.IsIRI() {
			continue
		}

		id := prefix + category.Value[strings.LastIndex(category.Value, "/")+1:]
		if !voc.Resources.Has(id) {
			label, ok := categoryLabel(graph, category)
			if !ok {
				st.LogWarn("category has no label", "uri", category.Value, "language", CategoryLanguage)
				continue
			}

			res, err := resource.NewConcept(resource.TypeCategory)
			if err != nil {
				return count, err
			}
			if err := res.Set(resource.FieldID, id); err != nil {
				return count, err
			}
			if err := res.SetLabel(resource.FieldPrefLabel, CategoryLanguage, resource.NewLabel(label)); err != nil {
				return count, err
			}
			if err := voc.Resources.Add(res); err != nil {
				return count, fmt.Errorf("category %q: %w", id, err)
			}
			count++
		}

		for _, member := range graph.Objects(category, skos("member")) {
			memberID, ok := voc.IDFromURI(member.Value)
			if !member.IsIRI() || !ok {
				continue
			}
			res, ok := voc.Resources.Get(memberID)
			if !ok {
				st.LogWarn("concept not found", "id", memberID, "category", id)
				continue
			}
			if slices.Contains(res.List(resource.FieldMemberOf), id) {
				continue
			}
			if err := res.Add(resource.FieldMemberOf, id); err != nil {
				return count, err
			}
		}
	}
	return count, nil
}

func categoryLabel(graph *triplestore.Graph, category triplestore.Term) (string, bool) {
	for _, label := range graph.Objects(category, skos("prefLabel")) {
		if label.IsLiteral() && label.Lang == CategoryLanguage {
			return label.Value, true
		}
	}
	return "", false
}
