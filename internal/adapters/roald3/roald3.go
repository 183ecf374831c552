// Package roald3 reads and writes the canonical json representation of a vocabulary.
//
// A document is a single object:
//
//	{
//	  "default_language": "nb",
//	  "uri_format": "http://data.ub.uio.no/realfagstermer/c{id}",
//	  "resources": { "REAL012345": { "id": "REAL012345", ... }, ... }
//	}
//
// The order of resources is significant and preserved.
package roald3

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/vocabulary"
)

// top-level keys of a document
const (
	keyLanguage  = "default_language"
	keyURIFormat = "uri_format"
	keyIDPrefix  = "id_prefix"
	keyResources = "resources"
)

var (
	errNotAnObject = errors.New("expected a json object")
	errIDMismatch  = errors.New("resource key does not match its id")
)

// LoadFile is like Load, but reads from the file at path.
func LoadFile(path string, voc *vocabulary.Vocabulary, st *stats.Stats) (e error) {
	file, err := os.Open(path) // #nosec G304 -- explicit parameter
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e = errors.Join(e, fmt.Errorf("failed to close %q: %w", path, err))
		}
	}()

	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	if err := Load(st.Reader(file, size), voc, st); err != nil {
		return fmt.Errorf("failed to load %q: %w", path, err)
	}
	return nil
}

// Load reads a document from r into voc.
//
// Settings present in the document replace those of voc.
// Resources are added in document order.
func Load(r io.Reader, voc *vocabulary.Vocabulary, st *stats.Stats) error {
	decoder := json.NewDecoder(bufio.NewReader(r))

	if err := expectDelim(decoder, '{'); err != nil {
		return err
	}
	for decoder.More() {
		key, err := readKey(decoder)
		if err != nil {
			return err
		}

		switch key {
		case keyLanguage:
			var language string
			if err := decoder.Decode(&language); err != nil {
				return fmt.Errorf("failed to decode %s: %w", key, err)
			}
			if err := voc.SetLanguage(language); err != nil {
				return err
			}
		case keyURIFormat:
			var format string
			if err := decoder.Decode(&format); err != nil {
				return fmt.Errorf("failed to decode %s: %w", key, err)
			}
			if format == "" {
				continue
			}
			if err := voc.SetURIFormat(format); err != nil {
				return err
			}
		case keyIDPrefix:
			if err := decoder.Decode(&voc.IDPrefix); err != nil {
				return fmt.Errorf("failed to decode %s: %w", key, err)
			}
		case keyResources:
			if err := loadResources(decoder, voc.Resources, st); err != nil {
				return fmt.Errorf("failed to decode %s: %w", key, err)
			}
		default:
			st.LogWarn("ignoring unknown key", "key", key)
			var skip json.RawMessage
			if err := decoder.Decode(&skip); err != nil {
				return err
			}
		}
	}
	return expectDelim(decoder, '}')
}

func loadResources(decoder *json.Decoder, resources *resource.Resources, st *stats.Stats) error {
	if err := expectDelim(decoder, '{'); err != nil {
		return err
	}

	count := 0
	for decoder.More() {
		id, err := readKey(decoder)
		if err != nil {
			return err
		}

		var res resource.Resource
		if err := decoder.Decode(&res); err != nil {
			return fmt.Errorf("resource %q: %w", id, err)
		}
		if res.ID() == "" {
			if err := res.Set(resource.FieldID, id); err != nil {
				return err
			}
		}
		if res.ID() != id {
			return fmt.Errorf("%w: %q has id %q", errIDMismatch, id, res.ID())
		}
		if err := resources.Add(&res); err != nil {
			return err
		}

		count++
		st.SetCT(count, 0)
	}
	return expectDelim(decoder, '}')
}

func expectDelim(decoder *json.Decoder, delim json.Delim) error {
	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if got, ok := token.(json.Delim); !ok || got != delim {
		return fmt.Errorf("%w: got %v", errNotAnObject, token)
	}
	return nil
}

func readKey(decoder *json.Decoder) (string, error) {
	token, err := decoder.Token()
	if err != nil {
		return "", err
	}
	key, ok := token.(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected token %v", errNotAnObject, token)
	}
	return key, nil
}

// Save writes voc to w as an indented document.
// The vocabulary must have a default language.
func Save(w io.Writer, voc *vocabulary.Vocabulary) error {
	language := voc.Language()
	if language == "" {
		return vocabulary.ErrNoDefaultLanguage
	}

	bw := bufio.NewWriter(w)

	header := []struct {
		key   string
		value string
	}{
		{keyLanguage, language},
		{keyURIFormat, voc.URIFormat},
		{keyIDPrefix, voc.IDPrefix},
	}

	bw.WriteString("{\n")
	for _, h := range header {
		if h.value == "" && h.key == keyIDPrefix {
			continue
		}
		value, _ := json.Marshal(h.value)
		fmt.Fprintf(bw, "  %q: %s,\n", h.key, value)
	}

	fmt.Fprintf(bw, "  %q: {", keyResources)
	var indented bytes.Buffer
	for i, res := range voc.Resources.All() {
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to encode %q: %w", res.ID(), err)
		}
		indented.Reset()
		if err := json.Indent(&indented, data, "    ", "  "); err != nil {
			return err
		}
		id, _ := json.Marshal(res.ID())

		if i > 0 {
			bw.WriteString(",")
		}
		bw.WriteString("\n    ")
		bw.Write(id)
		bw.WriteString(": ")
		bw.Write(indented.Bytes())
	}
	if voc.Resources.Len() > 0 {
		bw.WriteString("\n  ")
	}
	bw.WriteString("}\n}\n")

	return bw.Flush()
}
