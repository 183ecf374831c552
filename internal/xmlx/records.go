// Package xmlx provides streaming helpers on top of encoding/xml.
package xmlx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Field is a single child element of a Record, reduced to its text content.
type Field struct {
	Name  string
	Value string
}

// Record is a flat xml element whose children each hold only text.
type Record struct {
	Name   xml.Name
	Fields []Field
}

// Get returns the value of the first field with the given name.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// All returns the values of all fields with the given name, in document order.
func (r Record) All(name string) []string {
	var values []string
	for _, f := range r.Fields {
		if f.Name == name {
			values = append(values, f.Value)
		}
	}
	return values
}

// ErrStop may be returned by a RecordFunc to end iteration early without error.
var ErrStop = errors.New("stop iteration")

// RecordFunc is called once per record.
type RecordFunc = func(record Record) error

// Records streams all elements with the given local name from d, calling f once for each.
// Elements are decoded and released one at a time, the document is never held in memory.
//
// The text content of every direct child element becomes a Field, with surrounding whitespace trimmed.
// Grandchildren contribute their text to the enclosing child.
// Comments, directives and processing instructions are ignored.
func Records(d *xml.Decoder, name string, f RecordFunc) error {
	for {
		token, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != name {
			continue
		}

		record, err := readRecord(d, start)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		if err := f(record); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}
}

func readRecord(d *xml.Decoder, start xml.StartElement) (Record, error) {
	record := Record{Name: start.Name}
	for {
		token, err := d.Token()
		if err != nil {
			return record, fmt.Errorf("unexpected decode error: %w", err)
		}

		switch tt := token.(type) {
		case xml.StartElement:
			value, err := readText(d, tt)
			if err != nil {
				return record, err
			}
			record.Fields = append(record.Fields, Field{Name: tt.Name.Local, Value: strings.TrimSpace(value)})
		case xml.EndElement:
			if tt.Name != start.Name {
				// shouldn't happen because the parser validates
				return record, fmt.Errorf("unexpected close tag %s (expected %s)", tt.Name.Local, start.Name.Local)
			}
			return record, nil
		}
	}
}

// readText reads the text content of the element opened by start, including that of nested elements.
func readText(d *xml.Decoder, start xml.StartElement) (string, error) {
	var builder strings.Builder
	depth := 1
	for depth > 0 {
		token, err := d.Token()
		if err != nil {
			return "", fmt.Errorf("unexpected decode error: %w", err)
		}

		switch tt := token.(type) {
		case xml.CharData:
			builder.Write(tt)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return builder.String(), nil
}
