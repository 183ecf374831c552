package triplestore

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// cSpell:words pso

// ID identifies an interned term within a single Graph.
// IDs are assigned in order of first use, starting at 1.
type ID uint32

type threeIndex map[ID]map[ID]map[ID]struct{}

func (ti threeIndex) add(a, b, c ID) bool {
	second, ok := ti[a]
	if !ok {
		second = make(map[ID]map[ID]struct{})
		ti[a] = second
	}
	third, ok := second[b]
	if !ok {
		third = make(map[ID]struct{})
		second[b] = third
	}
	if _, ok := third[c]; ok {
		return false
	}
	third[c] = struct{}{}
	return true
}

func (ti threeIndex) remove(a, b, c ID) bool {
	third, ok := ti[a][b]
	if !ok {
		return false
	}
	if _, ok := third[c]; !ok {
		return false
	}
	delete(third, c)
	if len(third) == 0 {
		delete(ti[a], b)
		if len(ti[a]) == 0 {
			delete(ti, a)
		}
	}
	return true
}

func (ti threeIndex) has(a, b, c ID) bool {
	_, ok := ti[a][b][c]
	return ok
}

// sortedIDs returns the keys of m in ascending order.
func sortedIDs[V any](m map[ID]V) []ID {
	ids := maps.Keys(m)
	slices.Sort(ids)
	return ids
}

// Graph is a set of triples, indexed by predicate.
//
// Terms are interned; every query returns results in order of first insertion of the term,
// making iteration deterministic.
//
// The zero value is an empty graph ready to use.
// A Graph may not be modified concurrently.
type Graph struct {
	terms []Term // terms[id-1] is the term with the given id
	ids   map[Term]ID

	psoIndex threeIndex // <predicate> <subject> <object>
	posIndex threeIndex // <predicate> <object> <subject>
	spIndex  map[ID]map[ID]int

	count int
}

func (g *Graph) init() {
	if g.ids != nil {
		return
	}
	g.ids = make(map[Term]ID)
	g.psoIndex = make(threeIndex)
	g.posIndex = make(threeIndex)
	g.spIndex = make(map[ID]map[ID]int)
}

func (g *Graph) intern(t Term) ID {
	if id, ok := g.ids[t]; ok {
		return id
	}
	g.terms = append(g.terms, t)
	id := ID(len(g.terms))
	g.ids[t] = id
	return id
}

func (g *Graph) lookup(t Term) (ID, bool) {
	id, ok := g.ids[t]
	return id, ok
}

func (g *Graph) term(id ID) Term {
	return g.terms[id-1]
}

// Len returns the number of triples in g.
func (g *Graph) Len() int {
	return g.count
}

// Add adds a triple to g, and reports if it was not yet present.
func (g *Graph) Add(t Triple) bool {
	g.init()

	s, p, o := g.intern(t.Subject), g.intern(t.Predicate), g.intern(t.Object)
	if !g.psoIndex.add(p, s, o) {
		return false
	}
	g.posIndex.add(p, o, s)

	if g.spIndex[s] == nil {
		g.spIndex[s] = make(map[ID]int)
	}
	g.spIndex[s][p]++
	g.count++
	return true
}

// AddAll adds all triples to g, and returns the number of new triples.
func (g *Graph) AddAll(triples ...Triple) (added int) {
	for _, t := range triples {
		if g.Add(t) {
			added++
		}
	}
	return
}

// Remove removes a triple from g, and reports if it was present.
func (g *Graph) Remove(t Triple) bool {
	s, okS := g.lookup(t.Subject)
	p, okP := g.lookup(t.Predicate)
	o, okO := g.lookup(t.Object)
	if !(okS && okP && okO) || !g.psoIndex.remove(p, s, o) {
		return false
	}
	g.posIndex.remove(p, o, s)

	g.spIndex[s][p]--
	if g.spIndex[s][p] == 0 {
		delete(g.spIndex[s], p)
		if len(g.spIndex[s]) == 0 {
			delete(g.spIndex, s)
		}
	}
	g.count--
	return true
}

// Has reports if g contains the given triple.
func (g *Graph) Has(t Triple) bool {
	s, okS := g.lookup(t.Subject)
	p, okP := g.lookup(t.Predicate)
	o, okO := g.lookup(t.Object)
	return okS && okP && okO && g.psoIndex.has(p, s, o)
}

// Objects returns all objects o such that (subject, predicate, o) is in g.
func (g *Graph) Objects(subject, predicate Term) []Term {
	s, okS := g.lookup(subject)
	p, okP := g.lookup(predicate)
	if !(okS && okP) {
		return nil
	}
	return g.resolve(sortedIDs(g.psoIndex[p][s]))
}

// Object returns the first object o such that (subject, predicate, o) is in g.
func (g *Graph) Object(subject, predicate Term) (Term, bool) {
	objects := g.Objects(subject, predicate)
	if len(objects) == 0 {
		return Term{}, false
	}
	return objects[0], true
}

// Subjects returns all subjects s such that (s, predicate, object) is in g.
func (g *Graph) Subjects(predicate, object Term) []Term {
	p, okP := g.lookup(predicate)
	o, okO := g.lookup(object)
	if !(okP && okO) {
		return nil
	}
	return g.resolve(sortedIDs(g.posIndex[p][o]))
}

// Predicates returns all predicates used with the given subject.
func (g *Graph) Predicates(subject Term) []Term {
	s, ok := g.lookup(subject)
	if !ok {
		return nil
	}
	return g.resolve(sortedIDs(g.spIndex[s]))
}

// AllSubjects returns all terms that occur as a subject.
func (g *Graph) AllSubjects() []Term {
	return g.resolve(sortedIDs(g.spIndex))
}

// Triples returns all triples with the given predicate.
func (g *Graph) Triples(predicate Term) []Triple {
	p, ok := g.lookup(predicate)
	if !ok {
		return nil
	}

	var triples []Triple
	for _, s := range sortedIDs(g.psoIndex[p]) {
		for _, o := range sortedIDs(g.psoIndex[p][s]) {
			triples = append(triples, Triple{Subject: g.term(s), Predicate: predicate, Object: g.term(o)})
		}
	}
	return triples
}

// All returns all triples in g, grouped by subject.
func (g *Graph) All() []Triple {
	triples := make([]Triple, 0, g.count)
	for _, s := range sortedIDs(g.spIndex) {
		triples = append(triples, g.About(g.term(s))...)
	}
	return triples
}

// About returns all triples with the given subject, grouped by predicate.
func (g *Graph) About(subject Term) []Triple {
	s, ok := g.lookup(subject)
	if !ok {
		return nil
	}

	var triples []Triple
	for _, p := range sortedIDs(g.spIndex[s]) {
		for _, o := range sortedIDs(g.psoIndex[p][s]) {
			triples = append(triples, Triple{Subject: subject, Predicate: g.term(p), Object: g.term(o)})
		}
	}
	return triples
}

// HasType reports if subject has the given rdf:type.
func (g *Graph) HasType(subject Term, class string) bool {
	return g.Has(Triple{Subject: subject, Predicate: IRI(RDFType), Object: IRI(class)})
}

// Instances returns all subjects with the given rdf:type.
func (g *Graph) Instances(class string) []Term {
	return g.Subjects(IRI(RDFType), IRI(class))
}

// RemoveAbout removes all triples with the given subject and predicate.
func (g *Graph) RemoveAbout(subject, predicate Term) int {
	removed := 0
	for _, o := range g.Objects(subject, predicate) {
		if g.Remove(Triple{Subject: subject, Predicate: predicate, Object: o}) {
			removed++
		}
	}
	return removed
}

func (g *Graph) resolve(ids []ID) []Term {
	if len(ids) == 0 {
		return nil
	}
	terms := make([]Term, len(ids))
	for i, id := range ids {
		terms[i] = g.term(id)
	}
	return terms
}
