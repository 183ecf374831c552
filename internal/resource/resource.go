// Package resource implements the thesaurus resource model and its registry.
package resource

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Class distinguishes concepts from collections.
type Class uint8

const (
	ClassConcept Class = iota
	ClassCollection
)

func (c Class) String() string {
	if c == ClassCollection {
		return "Collection"
	}
	return "Concept"
}

// Resource is a single concept or collection of a vocabulary.
//
// Values are stored according to the Shape of their Field.
// Single-valued shapes reject a second assignment with ErrDuplicateField.
// The zero value is an empty concept.
type Resource struct {
	class Class
	types []Type
	blank bool

	scalars    map[Field]string
	flags      map[Field]bool
	lists      map[Field][]string
	labels     map[Field]map[string]Label
	labelLists map[Field]map[string][]Label
	texts      map[Field]map[string]string
	textLists  map[Field]map[string][]string
}

// NewConcept returns a new blank concept with the given primary type.
func NewConcept(t Type) (*Resource, error) {
	r := &Resource{class: ClassConcept, blank: true}
	if err := r.SetType(t); err != nil {
		return nil, err
	}
	return r, nil
}

// NewCollection returns a new blank collection.
func NewCollection() *Resource {
	return &Resource{class: ClassCollection, types: []Type{TypeCollection}, blank: true}
}

// Class returns the class of this resource.
func (r *Resource) Class() Class { return r.class }

// IsCollection reports if r is a collection.
func (r *Resource) IsCollection() bool { return r.class == ClassCollection }

// Blank reports if no value has been assigned since creation.
func (r *Resource) Blank() bool { return r.blank }

// ID returns the identifier of r, or the empty string.
func (r *Resource) ID() string {
	return r.scalars[FieldID]
}

// Types returns the type tags of r in order, the primary type first.
func (r *Resource) Types() []Type {
	return slices.Clone(r.types)
}

// PrimaryType returns the first type tag of r.
func (r *Resource) PrimaryType() Type {
	if len(r.types) == 0 {
		return ""
	}
	return r.types[0]
}

// HasType reports if r carries the given type tag.
func (r *Resource) HasType(t Type) bool {
	return slices.Contains(r.types, t)
}

func (r *Resource) checkType(t Type) error {
	if r.class == ClassCollection {
		if t != TypeCollection {
			return fmt.Errorf("%w: %q for a collection", ErrInvalidType, t)
		}
		return nil
	}
	if !t.IsConceptType() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	return nil
}

// SetType replaces the type tags of r with the single tag t.
func (r *Resource) SetType(t Type) error {
	if err := r.checkType(t); err != nil {
		return err
	}
	r.types = []Type{t}
	return nil
}

// AddType adds an additional type tag to r, unless it is already present.
func (r *Resource) AddType(t Type) error {
	if err := r.checkType(t); err != nil {
		return err
	}
	if !r.HasType(t) {
		r.types = append(r.types, t)
	}
	return nil
}

func (r *Resource) checkShape(f Field, want ...Shape) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	if !slices.Contains(want, f.Shape()) {
		return fmt.Errorf("%w: %s holds a %s", ErrWrongShape, f, f.Shape())
	}
	return nil
}

func (r *Resource) duplicate(what string) error {
	id := r.ID()
	if id == "" {
		return fmt.Errorf("%w: %s", ErrDuplicateField, what)
	}
	return fmt.Errorf("%w: %s of resource %q", ErrDuplicateField, what, id)
}

// Set assigns a scalar field.
// The type field is accepted as well and replaces the type tags.
func (r *Resource) Set(f Field, value string) error {
	if f == FieldType {
		if err := r.SetType(Type(value)); err != nil {
			return err
		}
		r.blank = false
		return nil
	}
	if err := r.checkShape(f, ShapeScalar); err != nil {
		return err
	}
	if _, ok := r.scalars[f]; ok {
		return r.duplicate(f.String())
	}
	if r.scalars == nil {
		r.scalars = make(map[Field]string)
	}
	r.scalars[f] = value
	r.blank = false
	return nil
}

// Get returns the value of a scalar field.
func (r *Resource) Get(f Field) (string, bool) {
	value, ok := r.scalars[f]
	return value, ok
}

// SetFlag assigns a flag field.
func (r *Resource) SetFlag(f Field, value bool) error {
	if err := r.checkShape(f, ShapeFlag); err != nil {
		return err
	}
	if _, ok := r.flags[f]; ok {
		return r.duplicate(f.String())
	}
	if r.flags == nil {
		r.flags = make(map[Field]bool)
	}
	r.flags[f] = value
	r.blank = false
	return nil
}

// Flag returns the value of a flag field, false when unset.
func (r *Resource) Flag(f Field) bool {
	return r.flags[f]
}

// Add appends values to a list field.
func (r *Resource) Add(f Field, values ...string) error {
	if f == FieldType {
		for _, v := range values {
			if err := r.AddType(Type(v)); err != nil {
				return err
			}
		}
		r.blank = false
		return nil
	}
	if err := r.checkShape(f, ShapeList); err != nil {
		return err
	}
	if r.lists == nil {
		r.lists = make(map[Field][]string)
	}
	r.lists[f] = append(r.lists[f], values...)
	r.blank = false
	return nil
}

// List returns the values of a list field.
// The returned slice must not be modified.
func (r *Resource) List(f Field) []string {
	return r.lists[f]
}

// SetLabel assigns the label of a single language.
func (r *Resource) SetLabel(f Field, lang string, label Label) error {
	if err := r.checkShape(f, ShapeLabel); err != nil {
		return err
	}
	if _, ok := r.labels[f][lang]; ok {
		return r.duplicate(Path{Field: f, Key: lang}.String())
	}
	if r.labels == nil {
		r.labels = make(map[Field]map[string]Label)
	}
	if r.labels[f] == nil {
		r.labels[f] = make(map[string]Label)
	}
	r.labels[f][lang] = label
	r.blank = false
	return nil
}

// Label returns the label of a single language.
func (r *Resource) Label(f Field, lang string) (Label, bool) {
	label, ok := r.labels[f][lang]
	return label, ok
}

// AddLabel appends labels in a single language.
func (r *Resource) AddLabel(f Field, lang string, labels ...Label) error {
	if err := r.checkShape(f, ShapeLabels); err != nil {
		return err
	}
	if r.labelLists == nil {
		r.labelLists = make(map[Field]map[string][]Label)
	}
	if r.labelLists[f] == nil {
		r.labelLists[f] = make(map[string][]Label)
	}
	r.labelLists[f][lang] = append(r.labelLists[f][lang], labels...)
	r.blank = false
	return nil
}

// LabelList returns the labels of a single language.
// The returned slice must not be modified.
func (r *Resource) LabelList(f Field, lang string) []Label {
	return r.labelLists[f][lang]
}

// EditLabel calls edit on a stored label in place.
// For label lists index selects the entry, for single labels it must be 0.
// Reports if the label existed.
func (r *Resource) EditLabel(f Field, lang string, index int, edit func(*Label)) bool {
	switch f.Shape() {
	case ShapeLabel:
		label, ok := r.labels[f][lang]
		if !ok || index != 0 {
			return false
		}
		edit(&label)
		r.labels[f][lang] = label
		return true
	case ShapeLabels:
		list := r.labelLists[f][lang]
		if index < 0 || index >= len(list) {
			return false
		}
		edit(&list[index])
		return true
	default:
		return false
	}
}

// SetText assigns the text of a single language.
func (r *Resource) SetText(f Field, key, value string) error {
	if err := r.checkShape(f, ShapeText); err != nil {
		return err
	}
	if _, ok := r.texts[f][key]; ok {
		return r.duplicate(Path{Field: f, Key: key}.String())
	}
	if r.texts == nil {
		r.texts = make(map[Field]map[string]string)
	}
	if r.texts[f] == nil {
		r.texts[f] = make(map[string]string)
	}
	r.texts[f][key] = value
	r.blank = false
	return nil
}

// Text returns the text stored below key.
func (r *Resource) Text(f Field, key string) (string, bool) {
	value, ok := r.texts[f][key]
	return value, ok
}

// AddText appends texts below key.
func (r *Resource) AddText(f Field, key string, values ...string) error {
	if err := r.checkShape(f, ShapeTexts); err != nil {
		return err
	}
	if r.textLists == nil {
		r.textLists = make(map[Field]map[string][]string)
	}
	if r.textLists[f] == nil {
		r.textLists[f] = make(map[string][]string)
	}
	r.textLists[f][key] = append(r.textLists[f][key], values...)
	r.blank = false
	return nil
}

// TextList returns the texts stored below key.
// The returned slice must not be modified.
func (r *Resource) TextList(f Field, key string) []string {
	return r.textLists[f][key]
}

// Keys returns the sorted sub keys present in a keyed field.
func (r *Resource) Keys(f Field) []string {
	var keys []string
	switch f.Shape() {
	case ShapeLabel:
		for k := range r.labels[f] {
			keys = append(keys, k)
		}
	case ShapeLabels:
		for k := range r.labelLists[f] {
			keys = append(keys, k)
		}
	case ShapeText:
		for k := range r.texts[f] {
			keys = append(keys, k)
		}
	case ShapeTexts:
		for k := range r.textLists[f] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// Has reports if any value is stored in f.
func (r *Resource) Has(f Field) bool {
	switch f.Shape() {
	case ShapeScalar:
		_, ok := r.scalars[f]
		return ok
	case ShapeFlag:
		_, ok := r.flags[f]
		return ok
	case ShapeList:
		return len(r.lists[f]) > 0
	case ShapeTypes:
		return len(r.types) > 0
	default:
		return len(r.Keys(f)) > 0
	}
}

// SetPath assigns a single-valued field by dotted path, e.g. "prefLabel.nb".
// Value must be a string, a bool for flags, or a Label for labels.
func (r *Resource) SetPath(path string, value any) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}

	switch p.Field.Shape() {
	case ShapeScalar, ShapeTypes:
		s, ok := value.(string)
		if !ok {
			return wrongValue(p, value)
		}
		return r.Set(p.Field, s)
	case ShapeFlag:
		b, ok := value.(bool)
		if !ok {
			return wrongValue(p, value)
		}
		return r.SetFlag(p.Field, b)
	case ShapeLabel:
		label, ok := asLabel(value)
		if !ok {
			return wrongValue(p, value)
		}
		return r.SetLabel(p.Field, p.Key, label)
	case ShapeText:
		s, ok := value.(string)
		if !ok {
			return wrongValue(p, value)
		}
		return r.SetText(p.Field, p.Key, s)
	default:
		return fmt.Errorf("%w: %s holds a %s, use add", ErrWrongShape, p, p.Field.Shape())
	}
}

// AddPath appends to a multi-valued field by dotted path, e.g. "altLabel.en".
func (r *Resource) AddPath(path string, value any) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}

	switch p.Field.Shape() {
	case ShapeList, ShapeTypes:
		s, ok := value.(string)
		if !ok {
			return wrongValue(p, value)
		}
		return r.Add(p.Field, s)
	case ShapeLabels:
		label, ok := asLabel(value)
		if !ok {
			return wrongValue(p, value)
		}
		return r.AddLabel(p.Field, p.Key, label)
	case ShapeTexts:
		s, ok := value.(string)
		if !ok {
			return wrongValue(p, value)
		}
		return r.AddText(p.Field, p.Key, s)
	default:
		return fmt.Errorf("%w: %s holds a %s, use set", ErrWrongShape, p, p.Field.Shape())
	}
}

// GetPath returns the value stored at a dotted path, or def when absent.
//
// Scalars are returned as string, flags as bool, lists and text lists as []string,
// labels as Label, label lists as []Label and types as []Type.
func (r *Resource) GetPath(path string, def any) any {
	p, err := ParsePath(path)
	if err != nil || !r.Has(p.Field) {
		return def
	}

	switch p.Field.Shape() {
	case ShapeScalar:
		return r.scalars[p.Field]
	case ShapeFlag:
		return r.flags[p.Field]
	case ShapeList:
		return slices.Clone(r.lists[p.Field])
	case ShapeTypes:
		return r.Types()
	case ShapeLabel:
		if label, ok := r.Label(p.Field, p.Key); ok {
			return label
		}
	case ShapeLabels:
		if list := r.LabelList(p.Field, p.Key); len(list) > 0 {
			return slices.Clone(list)
		}
	case ShapeText:
		if text, ok := r.Text(p.Field, p.Key); ok {
			return text
		}
	case ShapeTexts:
		if list := r.TextList(p.Field, p.Key); len(list) > 0 {
			return slices.Clone(list)
		}
	}
	return def
}

func asLabel(value any) (Label, bool) {
	switch v := value.(type) {
	case Label:
		return v, true
	case string:
		return NewLabel(v), true
	default:
		return Label{}, false
	}
}

func wrongValue(p Path, value any) error {
	return fmt.Errorf("%w: cannot store %T in %s", ErrWrongShape, value, p)
}
