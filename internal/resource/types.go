package resource

import (
	"errors"
	"fmt"
)

// cspell:words Knute

// Type is a type tag carried by a Resource.
type Type string

const (
	TypeTopic                  Type = "Topic"
	TypeGeographic             Type = "Geographic"
	TypeTemporal               Type = "Temporal"
	TypeGenreForm              Type = "GenreForm"
	TypeCompoundHeading        Type = "CompoundHeading"
	TypeVirtualCompoundHeading Type = "VirtualCompoundHeading"
	TypeKnuteTerm              Type = "KnuteTerm"
	TypeLinkingTerm            Type = "LinkingTerm"
	TypeSplitNonPreferredTerm  Type = "SplitNonPreferredTerm"
	TypeCategory               Type = "Category"

	TypeCollection Type = "Collection"
)

var conceptTypes = map[Type]struct{}{
	TypeTopic:                  {},
	TypeGeographic:             {},
	TypeTemporal:               {},
	TypeGenreForm:              {},
	TypeCompoundHeading:        {},
	TypeVirtualCompoundHeading: {},
	TypeKnuteTerm:              {},
	TypeLinkingTerm:            {},
	TypeSplitNonPreferredTerm:  {},
	TypeCategory:               {},
}

// IsConceptType reports if t may be carried by a concept.
func (t Type) IsConceptType() bool {
	_, ok := conceptTypes[t]
	return ok
}

// ParseType parses a concept type tag.
func ParseType(tag string) (Type, error) {
	t := Type(tag)
	if !t.IsConceptType() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, tag)
	}
	return t, nil
}

var (
	ErrDuplicateField    = errors.New("field defined twice")
	ErrInvalidType       = errors.New("invalid concept type")
	ErrUnknownField      = errors.New("unknown field")
	ErrWrongShape        = errors.New("value does not match field shape")
	ErrDuplicateResource = errors.New("duplicate resource id")
	ErrMissingID         = errors.New("resource has no id")
)
