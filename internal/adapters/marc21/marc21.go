// Package marc21 exports vocabularies as MARC21 authority records in marcxchange xml.
package marc21

import (
	"errors"
	"fmt"
	"io"

	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"github.com/FAU-CDI/roald/internal/xmlx"
)

// cspell:words marcxchange

// Namespaces of the exported document.
const (
	CollectionNamespace = "info:lc/xmlns/marcxchange-v1"
	RecordNamespace     = "http://www.loc.gov/MARC21/slim"
)

// ErrNoLanguage indicates that no cataloging language could be determined.
var ErrNoLanguage = errors.New("marc21 serialization needs a language")

// Options configure the export.
type Options struct {
	CreatedBy      string // original cataloging agency, 003 and 040 $a
	TranscribedBy  string // transcribing agency, 040 $c
	ModifiedBy     string // modifying agency, 040 $d
	VocabularyCode string // subject heading system, 040 $f

	// Language of cataloging, 040 $b.
	// Defaults to the default language of the vocabulary.
	Language string

	// IncludeExtras adds $9 subfields with the rank and language of every heading.
	IncludeExtras bool

	// IncludeMemberships treats collection membership like a broader relation,
	// and exports Category records.
	IncludeMemberships bool

	// Siblings are vocabularies that mappings are linked to by control number.
	// A nil value uses DefaultSiblings.
	Siblings []Sibling
}

// Export writes all resources of voc to w.
func Export(w io.Writer, voc *vocabulary.Vocabulary, opts Options, st *stats.Stats) error {
	code := opts.Language
	if code == "" {
		code = voc.Language()
	}
	if code == "" {
		return ErrNoLanguage
	}
	language, err := vocabulary.ParseLanguage(code)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoLanguage, err)
	}

	if opts.Siblings == nil {
		opts.Siblings = DefaultSiblings
	}

	e := &exporter{
		voc:      voc,
		opts:     opts,
		language: language,
		index:    NewIndex(voc.Resources, opts.IncludeMemberships),
		st:       st,
		w:        xmlx.NewWriter(w),
	}
	if err := e.export(); err != nil {
		return err
	}

	st.Log("included DDC mappings", "count", e.classMappings)
	return nil
}

type exporter struct {
	voc      *vocabulary.Vocabulary
	opts     Options
	language vocabulary.Language
	index    *Index
	st       *stats.Stats

	w *xmlx.Writer

	classMappings int
}

func (e *exporter) export() error {
	e.w.Header()
	e.w.Start("collection", xmlx.Attr("xmlns", CollectionNamespace))

	all := e.voc.Resources.All()
	for i, res := range all {
		if err := e.resource(res); err != nil {
			return fmt.Errorf("resource %q: %w", res.ID(), err)
		}
		e.st.SetCT(i+1, len(all))
		if err := e.w.Err(); err != nil {
			return err
		}
	}

	e.w.End()
	return e.w.Close()
}

// globalControlNumber returns the control number of id, prefixed by the agency if known.
func (e *exporter) globalControlNumber(id string) string {
	if e.opts.CreatedBy == "" {
		return id
	}
	return "(" + e.opts.CreatedBy + ")" + id
}

// resource writes one record for every exportable type of res.
func (e *exporter) resource(res *resource.Resource) error {
	var uri string
	if e.voc.URIFormat != "" {
		var err error
		if uri, err = e.voc.URI(res.ID()); err != nil {
			return err
		}
	}

	for _, t := range res.Types() {
		switch {
		case t == resource.TypeVirtualCompoundHeading:
			continue
		case t == resource.TypeCategory && !e.opts.IncludeMemberships:
			continue
		}

		r := record{exporter: e, res: res, typ: t, uri: uri}
		r.write()
	}
	return nil
}
