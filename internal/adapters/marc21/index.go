package marc21

import "github.com/FAU-CDI/roald/internal/resource"

// Index holds the inverse relations needed to export a vocabulary.
type Index struct {
	narrower map[string][]string // id => ids of narrower resources
}

// NewIndex builds an index over all resources in a single pass.
//
// When memberships is true, members of a collection count as narrower resources,
// unless they are deprecated.
func NewIndex(resources *resource.Resources, memberships bool) *Index {
	index := &Index{
		narrower: make(map[string][]string),
	}

	for _, res := range resources.All() {
		id := res.ID()
		for _, broader := range res.List(resource.FieldBroader) {
			index.narrower[broader] = append(index.narrower[broader], id)
		}
		if memberships && !res.Has(resource.FieldDeprecated) {
			for _, collection := range res.List(resource.FieldMemberOf) {
				index.narrower[collection] = append(index.narrower[collection], id)
			}
		}
	}
	return index
}

// Narrower returns the ids of the resources directly narrower than id, in registry order.
func (index *Index) Narrower(id string) []string {
	return index.narrower[id]
}
