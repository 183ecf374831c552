package skos

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/FAU-CDI/roald/internal/triplestore"
	"golang.org/x/exp/slices"
)

// TopClasses are the classes whose instances are written first, in this order.
var TopClasses = []string{
	triplestore.SKOS + "ConceptScheme",
	triplestore.FOAF + "Organization",
	SD + "Service",
	SD + "Dataset",
	SD + "Graph",
	SD + "NamedGraph",
	triplestore.OWL + "Ontology",
	triplestore.OWL + "Class",
	triplestore.OWL + "DatatypeProperty",
	triplestore.SKOS + "Collection",
	triplestore.SKOS + "Concept",
}

// Serialize writes graph to w in the given format.
// Subjects are written in a deterministic order, see Ordered.
func Serialize(w io.Writer, graph *triplestore.Graph, format triplestore.Format) error {
	triples := Ordered(graph)

	switch format {
	case triplestore.FormatNTriples:
		return triplestore.WriteNTriples(w, triples)
	case triplestore.FormatTurtle, "":
		tw := triplestore.NewTurtleWriter(w, Prefixes)
		tw.WritePrefixes()
		for _, t := range triples {
			tw.Write(t)
		}
		return tw.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Ordered returns the triples of graph grouped by subject.
//
// Instances of TopClasses come first, grouped by class, followed by all other subjects.
// Within each group subjects are sorted by uri, comparing a trailing number numerically.
// The triples of a subject start with its types, followed by all others sorted by predicate and object.
func Ordered(graph *triplestore.Graph) []triplestore.Triple {
	triples := make([]triplestore.Triple, 0, graph.Len())
	written := make(map[triplestore.Term]struct{})

	emit := func(subjects []triplestore.Term) {
		slices.SortFunc(subjects, compareSubjects)
		for _, subject := range subjects {
			if _, ok := written[subject]; ok {
				continue
			}
			written[subject] = struct{}{}
			triples = append(triples, about(graph, subject)...)
		}
	}

	for _, class := range TopClasses {
		emit(graph.Instances(class))
	}
	emit(graph.AllSubjects())

	return triples
}

// about returns the triples of subject, types first.
func about(graph *triplestore.Graph, subject triplestore.Term) []triplestore.Triple {
	triples := graph.About(subject)
	slices.SortStableFunc(triples, func(a, b triplestore.Triple) int {
		aType, bType := a.Predicate.Value == triplestore.RDFType, b.Predicate.Value == triplestore.RDFType
		switch {
		case aType && !bType:
			return -1
		case bType && !aType:
			return 1
		}
		if c := strings.Compare(a.Predicate.Value, b.Predicate.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Object.String(), b.Object.String())
	})
	return triples
}

var trailingNumber = regexp.MustCompile(`^(.*?)([0-9]+)$`)

// compareSubjects orders iris before blank nodes.
// IRIs ending in a number compare by prefix, then numerically.
func compareSubjects(a, b triplestore.Term) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}

	aMatch, bMatch := trailingNumber.FindStringSubmatch(a.Value), trailingNumber.FindStringSubmatch(b.Value)
	if aMatch != nil && bMatch != nil && aMatch[1] == bMatch[1] {
		aNum, aErr := strconv.ParseUint(aMatch[2], 10, 64)
		bNum, bErr := strconv.ParseUint(bMatch[2], 10, 64)
		if aErr == nil && bErr == nil && aNum != bNum {
			if aNum < bNum {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a.Value, b.Value)
}
