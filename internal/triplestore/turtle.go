package triplestore

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// TurtleWriter writes triples in Turtle format.
//
// Triples are written in the order given; consecutive triples sharing a subject
// are written as a single block.
type TurtleWriter struct {
	prefixes map[string]string // prefix => namespace
	w        *bufio.Writer

	subject   Term
	predicate Term
	open      bool
}

// NewTurtleWriter creates a new writer using the given prefixes.
func NewTurtleWriter(w io.Writer, prefixes map[string]string) *TurtleWriter {
	return &TurtleWriter{
		prefixes: maps.Clone(prefixes),
		w:        bufio.NewWriter(w),
	}
}

// WritePrefixes writes prefix declarations, sorted by prefix.
func (tw *TurtleWriter) WritePrefixes() {
	keys := maps.Keys(tw.prefixes)
	slices.Sort(keys)

	for _, prefix := range keys {
		fmt.Fprintf(tw.w, "@prefix %s: <%s> .\n", prefix, tw.prefixes[prefix])
	}
	tw.w.WriteString("\n")
}

// Write writes a single triple.
func (tw *TurtleWriter) Write(t Triple) {
	switch {
	case tw.open && t.Subject == tw.subject && t.Predicate == tw.predicate:
		tw.w.WriteString(" ,\n        ")
	case tw.open && t.Subject == tw.subject:
		tw.w.WriteString(" ;\n    ")
		tw.w.WriteString(tw.predicateString(t.Predicate))
		tw.w.WriteString(" ")
	default:
		tw.closeBlock()
		tw.w.WriteString(tw.format(t.Subject))
		tw.w.WriteString(" ")
		tw.w.WriteString(tw.predicateString(t.Predicate))
		tw.w.WriteString(" ")
	}
	tw.w.WriteString(tw.format(t.Object))

	tw.subject, tw.predicate, tw.open = t.Subject, t.Predicate, true
}

func (tw *TurtleWriter) closeBlock() {
	if tw.open {
		tw.w.WriteString(" .\n\n")
	}
	tw.open = false
}

// Close terminates the final block and flushes all output.
func (tw *TurtleWriter) Close() error {
	tw.closeBlock()
	if err := tw.w.Flush(); err != nil {
		return fmt.Errorf("failed to write turtle: %w", err)
	}
	return nil
}

func (tw *TurtleWriter) predicateString(p Term) string {
	if p.Kind == KindIRI && p.Value == RDFType {
		return "a"
	}
	return tw.format(p)
}

func (tw *TurtleWriter) format(t Term) string {
	switch t.Kind {
	case KindIRI:
		return tw.compact(t.Value)
	case KindLiteral:
		if t.Datatype == XSDBoolean && (t.Value == "true" || t.Value == "false") {
			return t.Value
		}
		s := `"` + EscapeString(t.Value) + `"`
		switch {
		case t.Lang != "":
			return s + "@" + t.Lang
		case t.Datatype != "":
			return s + "^^" + tw.compact(t.Datatype)
		}
		return s
	}
	return t.String()
}

// compact returns the shortest form of iri: a prefixed name when possible, else <iri>.
func (tw *TurtleWriter) compact(iri string) string {
	best := ""
	for prefix, namespace := range tw.prefixes {
		local, ok := strings.CutPrefix(iri, namespace)
		if !ok || !validLocalName(local) {
			continue
		}
		name := prefix + ":" + local
		if best == "" || len(name) < len(best) || (len(name) == len(best) && name < best) {
			best = name
		}
	}
	if best != "" {
		return best
	}
	return "<" + iri + ">"
}

// validLocalName reports if local can be used unescaped as the local part of a prefixed name.
func validLocalName(local string) bool {
	for i, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		case (r == '-' || r == '.') && i > 0:
		default:
			return false
		}
	}
	return !strings.HasSuffix(local, ".")
}
