package triplestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anglo-korean/rdf"
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
)

// Format is an rdf serialization format.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatNTriples Format = "ntriples"
	FormatNQuads   Format = "nquads"
	FormatRDFXML   Format = "rdfxml"
)

// ErrUnknownFormat indicates an unsupported serialization format.
var ErrUnknownFormat = errors.New("unknown rdf format")

// ParseFormat parses the name of a serialization format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	case "nquads", "n-quads", "nq":
		return FormatNQuads, nil
	case "rdfxml", "rdf/xml", "xml", "rdf":
		return FormatRDFXML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatOf guesses the format of a file from its extension.
// Unknown extensions are assumed to hold RDF/XML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttl":
		return FormatTurtle
	case ".nt":
		return FormatNTriples
	case ".nq":
		return FormatNQuads
	default:
		return FormatRDFXML
	}
}

// ReadFile reads all triples from the file at path into g.
// It returns the number of new triples.
func (g *Graph) ReadFile(path string) (count int, e error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			e = errors.Join(e, fmt.Errorf("failed to close %q: %w", path, err))
		}
	}()

	err = Decode(file, FormatOf(path), func(t Triple) error {
		if g.Add(t) {
			count++
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return count, nil
}

// Decode reads triples in the given format from r, and calls f for each of them.
// Graph labels of quads are ignored.
func Decode(r io.Reader, format Format, f func(Triple) error) error {
	switch format {
	case FormatNTriples, FormatNQuads:
		return decodeQuads(r, f)
	case FormatTurtle:
		return decodeRDF(r, rdf.Turtle, f)
	case FormatRDFXML:
		return decodeRDF(r, rdf.RDFXML, f)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func decodeRDF(r io.Reader, format rdf.Format, f func(Triple) error) error {
	decoder := rdf.NewTripleDecoder(r, format)
	for {
		triple, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		t, ok := fromRDF(triple)
		if !ok {
			continue
		}
		if err := f(t); err != nil {
			return err
		}
	}
}

func fromRDF(triple rdf.Triple) (t Triple, ok bool) {
	if t.Subject, ok = fromRDFTerm(triple.Subj); !ok {
		return
	}
	if t.Predicate, ok = fromRDFTerm(triple.Pred); !ok {
		return
	}
	t.Object, ok = fromRDFTerm(triple.Obj)
	return
}

func fromRDFTerm(term rdf.Term) (Term, bool) {
	switch value := term.(type) {
	case rdf.IRI:
		return IRI(value.String()), true
	case rdf.Blank:
		return Blank(value.String()), true
	case rdf.Literal:
		if lang := value.Lang(); lang != "" {
			return LangLiteral(value.String(), lang), true
		}
		return TypedLiteral(value.String(), value.DataType.String()), true
	}
	return Term{}, false
}

func decodeQuads(r io.Reader, f func(Triple) error) (e error) {
	reader := nquads.NewReader(r, true)
	defer func() {
		if err := reader.Close(); err != nil {
			e = errors.Join(e, err)
		}
	}()

	for {
		value, err := reader.ReadQuad()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		t, ok := fromQuad(value)
		if !ok {
			continue
		}
		if err := f(t); err != nil {
			return err
		}
	}
}

func fromQuad(value quad.Quad) (t Triple, ok bool) {
	if t.Subject, ok = fromQuadValue(value.Subject); !ok || t.Subject.IsLiteral() {
		return t, false
	}
	if t.Predicate, ok = fromQuadValue(value.Predicate); !ok || !t.Predicate.IsIRI() {
		return t, false
	}
	t.Object, ok = fromQuadValue(value.Object)
	return
}

func fromQuadValue(value quad.Value) (Term, bool) {
	switch datum := value.(type) {
	case quad.IRI:
		return IRI(string(datum)), true
	case quad.BNode:
		return Blank(string(datum)), true
	case quad.String:
		return Literal(string(datum)), true
	case quad.LangString:
		return LangLiteral(string(datum.Value), datum.Lang), true
	case quad.TypedString:
		return TypedLiteral(string(datum.Value), string(datum.Type)), true
	}
	return Term{}, false
}

func toQuadValue(t Term) quad.Value {
	switch t.Kind {
	case KindIRI:
		return quad.IRI(t.Value)
	case KindBlank:
		return quad.BNode(t.Value)
	}
	switch {
	case t.Lang != "":
		return quad.LangString{Value: quad.String(t.Value), Lang: t.Lang}
	case t.Datatype != "":
		return quad.TypedString{Value: quad.String(t.Value), Type: quad.IRI(t.Datatype)}
	}
	return quad.String(t.Value)
}

// WriteNTriples writes triples to w in N-Triples format.
func WriteNTriples(w io.Writer, triples []Triple) (e error) {
	writer := nquads.NewWriter(w)
	defer func() {
		if err := writer.Close(); err != nil {
			e = errors.Join(e, err)
		}
	}()

	for _, t := range triples {
		q := quad.Quad{
			Subject:   toQuadValue(t.Subject),
			Predicate: toQuadValue(t.Predicate),
			Object:    toQuadValue(t.Object),
		}
		if err := writer.WriteQuad(q); err != nil {
			return fmt.Errorf("failed to write triple: %w", err)
		}
	}
	return nil
}
