package resource

import (
	"bytes"
	"encoding/json"
)

// Label is a lexical label of a resource in a single language.
type Label struct {
	Value string `json:"value"`

	// HasAcronym is an acronym that abbreviates Value.
	HasAcronym string `json:"hasAcronym,omitempty"`

	// AcronymFor is set when Value is itself an acronym, and holds the expansion.
	AcronymFor string `json:"acronymFor,omitempty"`
}

// NewLabel returns a label with the given value.
func NewLabel(value string) Label {
	return Label{Value: value}
}

type plainLabel Label

// UnmarshalJSON accepts both the object form and a bare string.
func (l *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*l = Label{Value: value}
		return nil
	}
	return json.Unmarshal(data, (*plainLabel)(l))
}
