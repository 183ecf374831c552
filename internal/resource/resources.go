package resource

import (
	"fmt"
	"strings"
)

// TermSeparator joins the component terms of a compound heading.
const TermSeparator = " : "

// Resources is an ordered registry of resources, keyed by id.
//
// It maintains an index between ids and terms, the preferred label in the
// default language, or the joined component terms for compound headings.
// The index is rebuilt lazily after modification.
type Resources struct {
	language string

	order []string
	byID  map[string]*Resource

	dirty      bool
	termOf     map[string]string // id => term
	idOf       map[string]string // term => id
	duplicates []string
}

// NewResources creates an empty registry indexing terms in the given language.
func NewResources(language string) *Resources {
	return &Resources{
		language: language,
		byID:     make(map[string]*Resource),
		dirty:    true,
	}
}

// Language returns the language terms are indexed in.
func (rs *Resources) Language() string {
	return rs.language
}

// SetLanguage changes the language terms are indexed in.
func (rs *Resources) SetLanguage(language string) {
	rs.language = language
	rs.dirty = true
}

// Add adds resources to the registry, preserving order.
// Each resource must have an id that is not yet present.
func (rs *Resources) Add(resources ...*Resource) error {
	for _, r := range resources {
		id := r.ID()
		if id == "" {
			return ErrMissingID
		}
		if _, ok := rs.byID[id]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateResource, id)
		}
		rs.byID[id] = r
		rs.order = append(rs.order, id)
	}
	rs.dirty = true
	return nil
}

// Touch marks the term index as stale, after resources have been modified in place.
func (rs *Resources) Touch() {
	rs.dirty = true
}

// Len returns the number of resources.
func (rs *Resources) Len() int {
	return len(rs.order)
}

// Get returns the resource with the given id.
func (rs *Resources) Get(id string) (*Resource, bool) {
	r, ok := rs.byID[id]
	return r, ok
}

// Has reports if a resource with the given id exists.
func (rs *Resources) Has(id string) bool {
	_, ok := rs.byID[id]
	return ok
}

// FirstID returns the id of the resource added first.
func (rs *Resources) FirstID() (string, bool) {
	if len(rs.order) == 0 {
		return "", false
	}
	return rs.order[0], true
}

// IDs returns all ids in insertion order.
func (rs *Resources) IDs() []string {
	ids := make([]string, len(rs.order))
	copy(ids, rs.order)
	return ids
}

// All returns all resources in insertion order.
func (rs *Resources) All() []*Resource {
	all := make([]*Resource, len(rs.order))
	for i, id := range rs.order {
		all[i] = rs.byID[id]
	}
	return all
}

// Term returns the term of the resource with the given id.
func (rs *Resources) Term(id string) (string, bool) {
	rs.reindex()
	term, ok := rs.termOf[id]
	return term, ok
}

// ByTerm returns the resource whose term is exactly term.
// When several resources share a term, the last one added wins.
func (rs *Resources) ByTerm(term string) (*Resource, bool) {
	rs.reindex()
	id, ok := rs.idOf[term]
	if !ok {
		return nil, false
	}
	return rs.Get(id)
}

// Duplicates returns the terms used by more than one resource.
func (rs *Resources) Duplicates() []string {
	rs.reindex()
	dups := make([]string, len(rs.duplicates))
	copy(dups, rs.duplicates)
	return dups
}

func (rs *Resources) reindex() {
	if !rs.dirty {
		return
	}
	rs.dirty = false

	rs.termOf = make(map[string]string, len(rs.order))
	rs.idOf = make(map[string]string, len(rs.order))
	rs.duplicates = nil

	// simple terms first, compound terms are built from them
	for _, id := range rs.order {
		if label, ok := rs.byID[id].Label(FieldPrefLabel, rs.language); ok {
			rs.termOf[id] = label.Value
		}
	}
	for _, id := range rs.order {
		if _, ok := rs.termOf[id]; ok {
			continue
		}
		if term, ok := rs.compoundTerm(rs.byID[id]); ok {
			rs.termOf[id] = term
		}
	}

	seen := make(map[string]struct{}, len(rs.termOf))
	for _, id := range rs.order {
		term, ok := rs.termOf[id]
		if !ok {
			continue
		}
		if _, dup := rs.idOf[term]; dup {
			if _, reported := seen[term]; !reported {
				rs.duplicates = append(rs.duplicates, term)
				seen[term] = struct{}{}
			}
		}
		rs.idOf[term] = id
	}
}

func (rs *Resources) compoundTerm(r *Resource) (string, bool) {
	components := r.List(FieldComponent)
	if len(components) == 0 {
		return "", false
	}

	terms := make([]string, len(components))
	for i, cid := range components {
		term, ok := rs.termOf[cid]
		if !ok {
			return "", false
		}
		terms[i] = term
	}
	return strings.Join(terms, TermSeparator), true
}

// Counts summarizes the contents of a registry.
type Counts struct {
	Resources   int
	Concepts    int
	Collections int
	Terms       int
	Duplicates  int
	PerType     map[Type]int
}

// Counts computes summary statistics of rs.
func (rs *Resources) Counts() Counts {
	rs.reindex()

	counts := Counts{
		Resources:  len(rs.order),
		Terms:      len(rs.idOf),
		Duplicates: len(rs.duplicates),
		PerType:    make(map[Type]int),
	}
	for _, id := range rs.order {
		r := rs.byID[id]
		if r.IsCollection() {
			counts.Collections++
		} else {
			counts.Concepts++
		}
		for _, t := range r.types {
			counts.PerType[t]++
		}
	}
	return counts
}
