package resource

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slices"
)

// MarshalJSON encodes r as an object with one key per populated field, in field order.
func (r *Resource) MarshalJSON() ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteByte('{')

	first := true
	for _, f := range Fields() {
		if !r.Has(f) {
			continue
		}
		value, err := json.Marshal(r.fieldValue(f))
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f, err)
		}

		if !first {
			buffer.WriteByte(',')
		}
		first = false

		name, _ := json.Marshal(f.String())
		buffer.Write(name)
		buffer.WriteByte(':')
		buffer.Write(value)
	}

	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

func (r *Resource) fieldValue(f Field) any {
	switch f.Shape() {
	case ShapeScalar:
		return r.scalars[f]
	case ShapeFlag:
		return r.flags[f]
	case ShapeList:
		return r.lists[f]
	case ShapeTypes:
		return r.types
	case ShapeLabel:
		return r.labels[f]
	case ShapeLabels:
		return r.labelLists[f]
	case ShapeText:
		return r.texts[f]
	case ShapeTexts:
		return r.textLists[f]
	}
	return nil
}

// UnmarshalJSON decodes a resource object.
// The class is determined by the presence of the "Collection" type tag.
// Unknown keys result in ErrUnknownField.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var types []Type
	if value, ok := raw[FieldType.String()]; ok {
		if err := json.Unmarshal(value, &types); err != nil {
			return fmt.Errorf("failed to decode type: %w", err)
		}
	}

	*r = Resource{class: ClassConcept, blank: true}
	if slices.Contains(types, TypeCollection) {
		r.class = ClassCollection
	}
	for _, t := range types {
		if err := r.AddType(t); err != nil {
			return err
		}
	}

	// decode in field order for deterministic error reporting
	present := make([]Field, 0, len(raw))
	for name := range raw {
		f, err := ParseField(name)
		if err != nil {
			return err
		}
		if f != FieldType {
			present = append(present, f)
		}
	}
	slices.Sort(present)

	for _, f := range present {
		if err := r.decodeField(f, raw[f.String()]); err != nil {
			return fmt.Errorf("failed to decode %s: %w", f, err)
		}
	}
	if len(raw) > 0 {
		r.blank = false
	}
	return nil
}

func (r *Resource) decodeField(f Field, value json.RawMessage) error {
	switch f.Shape() {
	case ShapeScalar:
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return err
		}
		return r.Set(f, s)
	case ShapeFlag:
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			return err
		}
		return r.SetFlag(f, b)
	case ShapeList:
		var list []string
		if err := json.Unmarshal(value, &list); err != nil {
			return err
		}
		return r.Add(f, list...)
	case ShapeLabel:
		var labels map[string]Label
		if err := json.Unmarshal(value, &labels); err != nil {
			return err
		}
		for _, lang := range sortedKeys(labels) {
			if err := r.SetLabel(f, lang, labels[lang]); err != nil {
				return err
			}
		}
	case ShapeLabels:
		var labels map[string][]Label
		if err := json.Unmarshal(value, &labels); err != nil {
			return err
		}
		for _, lang := range sortedKeys(labels) {
			if err := r.AddLabel(f, lang, labels[lang]...); err != nil {
				return err
			}
		}
	case ShapeText:
		var texts map[string]string
		if err := json.Unmarshal(value, &texts); err != nil {
			return err
		}
		for _, key := range sortedKeys(texts) {
			if err := r.SetText(f, key, texts[key]); err != nil {
				return err
			}
		}
	case ShapeTexts:
		var texts map[string][]string
		if err := json.Unmarshal(value, &texts); err != nil {
			return err
		}
		for _, key := range sortedKeys(texts) {
			if err := r.AddText(f, key, texts[key]...); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
