// Package skosify performs consistency checks and enrichment on skos graphs.
package skosify

import (
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/triplestore"
)

// cspell:words skosify

var (
	broader = triplestore.IRI(triplestore.SKOS + "broader")
	related = triplestore.IRI(triplestore.SKOS + "related")
)

// MappingRelations are the skos mapping properties, in canonical order.
var MappingRelations = []string{"exactMatch", "closeMatch", "relatedMatch", "broadMatch", "narrowMatch"}

// inverse mapping properties; symmetric ones map to themselves
var mappingInverse = map[string]string{
	"exactMatch":   "exactMatch",
	"closeMatch":   "closeMatch",
	"relatedMatch": "relatedMatch",
	"broadMatch":   "narrowMatch",
	"narrowMatch":  "broadMatch",
}

// EnrichMappings adds the inverse of every mapping relation in g.
// It returns the number of triples added.
func EnrichMappings(g *triplestore.Graph) int {
	added := 0
	for _, name := range MappingRelations {
		inverse := triplestore.IRI(triplestore.SKOS + mappingInverse[name])
		for _, t := range g.Triples(triplestore.IRI(triplestore.SKOS + name)) {
			if t.Object.IsLiteral() {
				continue
			}
			if g.Add(triplestore.Triple{Subject: t.Object, Predicate: inverse, Object: t.Subject}) {
				added++
			}
		}
	}
	return added
}

// Options determine which checks CheckHierarchy performs.
type Options struct {
	// BreakCycles removes one skos:broader edge from every cycle in the hierarchy.
	BreakCycles bool

	// KeepRelated retains skos:related between concepts that are hierarchically related.
	KeepRelated bool

	// EliminateRedundancy removes skos:broader edges implied by other paths.
	EliminateRedundancy bool
}

// DefaultOptions are the options used for exporting vocabularies.
var DefaultOptions = Options{BreakCycles: true, KeepRelated: false, EliminateRedundancy: true}

// Report summarizes the changes made by CheckHierarchy.
type Report struct {
	CyclesBroken     int
	RedundantRemoved int
	RelatedRemoved   int
}

// CheckHierarchy checks the skos:broader hierarchy of g and repairs it according to opts.
//
// Cycles are detected by a depth-first traversal from the top concepts downwards, visiting
// concepts in order of first appearance in g; the edge closing a cycle is removed.
// Concepts only reachable through cycles are then visited in the same order.
// Every modification is logged as a warning to st.
func CheckHierarchy(g *triplestore.Graph, opts Options, st *stats.Stats) (report Report) {
	h := newHierarchy(g)

	if opts.BreakCycles {
		report.CyclesBroken = h.breakCycles(st)
	}
	if opts.EliminateRedundancy {
		report.RedundantRemoved = h.eliminateRedundancy(st)
	}
	if !opts.KeepRelated {
		report.RelatedRemoved = h.removeRelatedClashes(st)
	}
	return report
}

type hierarchy struct {
	g     *triplestore.Graph
	nodes []triplestore.Term

	ancestors map[triplestore.Term]map[triplestore.Term]struct{}
}

func newHierarchy(g *triplestore.Graph) *hierarchy {
	h := &hierarchy{g: g}

	seen := make(map[triplestore.Term]struct{})
	for _, t := range g.Triples(broader) {
		for _, node := range []triplestore.Term{t.Subject, t.Object} {
			if _, ok := seen[node]; ok {
				continue
			}
			seen[node] = struct{}{}
			h.nodes = append(h.nodes, node)
		}
	}
	return h
}

func (h *hierarchy) parents(node triplestore.Term) []triplestore.Term {
	return h.g.Objects(node, broader)
}

func (h *hierarchy) children(node triplestore.Term) []triplestore.Term {
	return h.g.Subjects(broader, node)
}

const (
	white = iota // not yet visited
	gray         // on the current path
	black        // finished
)

func (h *hierarchy) breakCycles(st *stats.Stats) (broken int) {
	color := make(map[triplestore.Term]int, len(h.nodes))

	var visit func(node triplestore.Term)
	visit = func(node triplestore.Term) {
		color[node] = gray
		for _, child := range h.children(node) {
			switch color[child] {
			case gray:
				h.g.Remove(triplestore.Triple{Subject: child, Predicate: broader, Object: node})
				st.LogWarn("hierarchy cycle: removed broader relation", "narrower", child.Value, "broader", node.Value)
				broken++
			case white:
				visit(child)
			}
		}
		color[node] = black
	}

	for _, node := range h.nodes {
		if len(h.parents(node)) == 0 && color[node] == white {
			visit(node)
		}
	}

	// whatever is left is only reachable through a cycle
	for _, node := range h.nodes {
		if color[node] == white {
			visit(node)
		}
	}
	return broken
}

// ancestorsOf returns the transitive parents of node.
// The hierarchy must be free of cycles.
func (h *hierarchy) ancestorsOf(node triplestore.Term) map[triplestore.Term]struct{} {
	if h.ancestors == nil {
		h.ancestors = make(map[triplestore.Term]map[triplestore.Term]struct{})
	}
	if cached, ok := h.ancestors[node]; ok {
		return cached
	}

	result := make(map[triplestore.Term]struct{})
	h.ancestors[node] = result // guards against remaining cycles
	for _, parent := range h.parents(node) {
		result[parent] = struct{}{}
		for ancestor := range h.ancestorsOf(parent) {
			result[ancestor] = struct{}{}
		}
	}
	return result
}

func (h *hierarchy) eliminateRedundancy(st *stats.Stats) (removed int) {
	for _, node := range h.nodes {
		parents := h.parents(node)
		if len(parents) < 2 {
			continue
		}
		for _, parent := range parents {
			for _, other := range parents {
				if other == parent {
					continue
				}
				if _, implied := h.ancestorsOf(other)[parent]; !implied {
					continue
				}
				if h.g.Remove(triplestore.Triple{Subject: node, Predicate: broader, Object: parent}) {
					st.LogWarn("redundant broader relation removed", "narrower", node.Value, "broader", parent.Value, "via", other.Value)
					removed++
				}
				break
			}
		}
	}
	return removed
}

func (h *hierarchy) removeRelatedClashes(st *stats.Stats) (removed int) {
	for _, t := range h.g.Triples(related) {
		if !h.g.Has(t) {
			continue // inverse already removed
		}
		_, up := h.ancestorsOf(t.Subject)[t.Object]
		_, down := h.ancestorsOf(t.Object)[t.Subject]
		if !up && !down {
			continue
		}

		if h.g.Remove(t) {
			removed++
		}
		if h.g.Remove(triplestore.Triple{Subject: t.Object, Predicate: related, Object: t.Subject}) {
			removed++
		}
		st.LogWarn("related concepts are hierarchically related: removed related relation", "concept", t.Subject.Value, "related", t.Object.Value)
	}
	return removed
}
