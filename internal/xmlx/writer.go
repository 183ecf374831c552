package xmlx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// Writer writes an xml document token by token.
//
// The first error encountered is retained; later calls become no-ops and the error is returned from Close.
type Writer struct {
	encoder *xml.Encoder
	open    []xml.Name
	err     error
}

// NewWriter creates a new writer that indents nested elements by two spaces.
func NewWriter(w io.Writer) *Writer {
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	return &Writer{encoder: encoder}
}

// Header writes the standard xml declaration.
func (w *Writer) Header() {
	if w.err != nil {
		return
	}
	w.err = w.encoder.EncodeToken(xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="UTF-8"`)})
}

// Attr is a convenience function to create an unqualified attribute.
func Attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

// Start opens a new element.
func (w *Writer) Start(name string, attrs ...xml.Attr) {
	if w.err != nil {
		return
	}
	start := xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs}
	if err := w.encoder.EncodeToken(start); err != nil {
		w.err = fmt.Errorf("failed to encode start token: %w", err)
		return
	}
	w.open = append(w.open, start.Name)
}

// End closes the most recently opened element.
func (w *Writer) End() {
	if w.err != nil {
		return
	}
	if len(w.open) == 0 {
		w.err = errNoOpenElement
		return
	}

	name := w.open[len(w.open)-1]
	w.open = w.open[:len(w.open)-1]
	if err := w.encoder.EncodeToken(xml.EndElement{Name: name}); err != nil {
		w.err = fmt.Errorf("failed to encode end token: %w", err)
	}
}

// Element writes an element containing only text.
func (w *Writer) Element(name, text string, attrs ...xml.Attr) {
	w.Start(name, attrs...)
	if w.err == nil && text != "" {
		if err := w.encoder.EncodeToken(xml.CharData(text)); err != nil {
			w.err = fmt.Errorf("failed to encode text: %w", err)
			return
		}
	}
	w.End()
}

var (
	errNoOpenElement = errors.New("no open element")
	errUnclosed      = errors.New("unclosed elements at end of document")
)

// Err returns the first error encountered, if any.
func (w *Writer) Err() error {
	return w.err
}

// Close flushes the document and returns the first error encountered.
// All opened elements must have been closed.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if len(w.open) != 0 {
		return fmt.Errorf("%w: %d", errUnclosed, len(w.open))
	}
	if err := w.encoder.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}
