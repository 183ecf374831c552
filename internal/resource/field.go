package resource

import (
	"fmt"
	"strings"
)

// Field identifies a single attribute of a Resource.
//
// The set of fields is closed: every attribute a legacy format can populate
// has an entry here, together with the Shape of value it holds.
type Field uint8

const (
	FieldInvalid Field = iota
	FieldID
	FieldType
	FieldPrefLabel
	FieldAltLabel
	FieldDefinition
	FieldScopeNote
	FieldEditorialNote
	FieldNotation
	FieldMSC
	FieldDDC
	FieldLibCode
	FieldAcronym
	FieldElementSymbol
	FieldCreated
	FieldModified
	FieldDeprecated
	FieldBroader
	FieldRelated
	FieldReplacedBy
	FieldMemberOf
	FieldMember
	FieldSuperOrdinate
	FieldComponent
	FieldMappings
	FieldIsTopConcept

	fieldCount
)

// Shape describes what kind of value a Field holds.
type Shape uint8

const (
	ShapeScalar Shape = iota + 1 // a single string, assigned at most once
	ShapeFlag                    // a boolean, assigned at most once
	ShapeList                    // an ordered sequence of strings
	ShapeLabel                   // one Label per language, assigned at most once per language
	ShapeLabels                  // an ordered sequence of Labels per language
	ShapeText                    // one string per language, assigned at most once per language
	ShapeTexts                   // an ordered sequence of strings per sub key
	ShapeTypes                   // the type tags of the resource
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeFlag:
		return "flag"
	case ShapeList:
		return "list"
	case ShapeLabel:
		return "label"
	case ShapeLabels:
		return "label list"
	case ShapeText:
		return "text"
	case ShapeTexts:
		return "text list"
	case ShapeTypes:
		return "types"
	default:
		return fmt.Sprintf("Shape(%d)", uint8(s))
	}
}

// Keyed reports if values of this shape are stored below a sub key (a language code or mapping relation).
func (s Shape) Keyed() bool {
	return s == ShapeLabel || s == ShapeLabels || s == ShapeText || s == ShapeTexts
}

type fieldInfo struct {
	name  string
	shape Shape
}

// fields is indexed by Field and determines serialization order.
var fields = [fieldCount]fieldInfo{
	FieldID:            {"id", ShapeScalar},
	FieldType:          {"type", ShapeTypes},
	FieldPrefLabel:     {"prefLabel", ShapeLabel},
	FieldAltLabel:      {"altLabel", ShapeLabels},
	FieldDefinition:    {"definition", ShapeText},
	FieldScopeNote:     {"scopeNote", ShapeTexts},
	FieldEditorialNote: {"editorialNote", ShapeList},
	FieldNotation:      {"notation", ShapeList},
	FieldMSC:           {"msc", ShapeList},
	FieldDDC:           {"ddc", ShapeList},
	FieldLibCode:       {"libCode", ShapeList},
	FieldAcronym:       {"acronym", ShapeList},
	FieldElementSymbol: {"elementSymbol", ShapeScalar},
	FieldCreated:       {"created", ShapeScalar},
	FieldModified:      {"modified", ShapeScalar},
	FieldDeprecated:    {"deprecated", ShapeScalar},
	FieldBroader:       {"broader", ShapeList},
	FieldRelated:       {"related", ShapeList},
	FieldReplacedBy:    {"replacedBy", ShapeList},
	FieldMemberOf:      {"memberOf", ShapeList},
	FieldMember:        {"member", ShapeList},
	FieldSuperOrdinate: {"superOrdinate", ShapeList},
	FieldComponent:     {"component", ShapeList},
	FieldMappings:      {"mappings", ShapeTexts},
	FieldIsTopConcept:  {"isTopConcept", ShapeFlag},
}

var fieldsByName = func() map[string]Field {
	byName := make(map[string]Field, fieldCount)
	for f := FieldID; f < fieldCount; f++ {
		byName[fields[f].name] = f
	}
	return byName
}()

// Fields returns all valid fields in serialization order.
func Fields() []Field {
	all := make([]Field, 0, fieldCount-1)
	for f := FieldID; f < fieldCount; f++ {
		all = append(all, f)
	}
	return all
}

// Valid reports if f is a known field.
func (f Field) Valid() bool {
	return f > FieldInvalid && f < fieldCount
}

// Shape returns the shape of values held by f.
func (f Field) Shape() Shape {
	if !f.Valid() {
		return 0
	}
	return fields[f].shape
}

func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", uint8(f))
	}
	return fields[f].name
}

// ParseField returns the field with the given name.
func ParseField(name string) (Field, error) {
	f, ok := fieldsByName[name]
	if !ok {
		return FieldInvalid, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// Path addresses a field, and for keyed shapes, a sub key within it.
type Path struct {
	Field Field
	Key   string // language code or mapping relation; empty for unkeyed shapes
}

func (p Path) String() string {
	if p.Key == "" {
		return p.Field.String()
	}
	return p.Field.String() + "." + p.Key
}

// ParsePath parses a dotted path such as "prefLabel.nb" or "broader".
// A trailing ".value" on a label path is accepted and ignored.
func ParsePath(path string) (Path, error) {
	name, key, _ := strings.Cut(path, ".")
	f, err := ParseField(name)
	if err != nil {
		return Path{}, err
	}

	shape := f.Shape()
	if shape == ShapeLabel || shape == ShapeLabels {
		key = strings.TrimSuffix(key, ".value")
	}

	switch {
	case shape.Keyed() && key == "":
		return Path{}, fmt.Errorf("%w: %q needs a sub key", ErrWrongShape, path)
	case !shape.Keyed() && key != "":
		return Path{}, fmt.Errorf("%w: %q does not take a sub key", ErrWrongShape, path)
	case strings.Contains(key, "."):
		return Path{}, fmt.Errorf("%w: %q is nested too deeply", ErrWrongShape, path)
	}
	return Path{Field: f, Key: key}, nil
}
