// Package triplestore implements an in-memory rdf graph with predicate indexes.
package triplestore

import (
	"strings"
)

// cspell:words triplestore

// Kind is the kind of an rdf term.
type Kind uint8

const (
	KindIRI Kind = iota + 1
	KindBlank
	KindLiteral
)

// Term is an rdf term.
//
// For literals Value holds the lexical form, and at most one of Lang and Datatype is set.
// For blank nodes Value holds the node label without the "_:" prefix.
type Term struct {
	Kind     Kind
	Value    string
	Lang     string
	Datatype string
}

// IRI returns an iri term.
func IRI(iri string) Term {
	return Term{Kind: KindIRI, Value: iri}
}

// Blank returns a blank node term.
func Blank(id string) Term {
	return Term{Kind: KindBlank, Value: strings.TrimPrefix(id, "_:")}
}

// Literal returns a plain string literal.
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// LangLiteral returns a language tagged literal.
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: lang}
}

// TypedLiteral returns a literal with the given datatype.
func TypedLiteral(value, datatype string) Term {
	if datatype == XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// IsIRI reports if t is an iri.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsLiteral reports if t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsZero reports if t is the zero term.
func (t Term) IsZero() bool { return t.Kind == 0 }

// String formats t in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + EscapeString(t.Value) + `"`
		switch {
		case t.Lang != "":
			return s + "@" + t.Lang
		case t.Datatype != "":
			return s + "^^<" + t.Datatype + ">"
		}
		return s
	}
	return ""
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// EscapeString escapes a string for use within a double-quoted N-Triples or Turtle literal.
func EscapeString(value string) string {
	return stringEscaper.Replace(value)
}

// Triple is a single rdf statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

// Common namespaces and terms.
const (
	RDF     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS    = "http://www.w3.org/2000/01/rdf-schema#"
	XSD     = "http://www.w3.org/2001/XMLSchema#"
	OWL     = "http://www.w3.org/2002/07/owl#"
	SKOS    = "http://www.w3.org/2004/02/skos/core#"
	DCTERMS = "http://purl.org/dc/terms/"
	FOAF    = "http://xmlns.com/foaf/0.1/"

	RDFType     = RDF + "type"
	XSDString   = XSD + "string"
	XSDBoolean  = XSD + "boolean"
	XSDDateTime = XSD + "dateTime"
)
