// Package bibsys imports vocabularies from legacy Bibsys authority xml files.
//
// A Bibsys file is a sequence of <post> elements, one per term.
// Importing happens in two streaming passes over the file: Scan creates all
// resources, Link resolves the relations between them.
package bibsys

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/sidetable"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"github.com/FAU-CDI/roald/internal/xmlx"
	"golang.org/x/exp/slices"
	"golang.org/x/net/html/charset"
)

// cspell:words bibsys hovedemnefrase kvalifikator overordnetterm definisjon noter henvisning ogsa dato

// names of the elements of a record
const (
	elementPost          = "post"
	elementID            = "term-id"
	elementLabel         = "hovedemnefrase"
	elementQualifier     = "kvalifikator"
	elementType          = "type"
	elementParent        = "overordnetterm-id"
	elementDate          = "dato"
	elementDefinition    = "definisjon"
	elementNote          = "noter"
	elementSeeID         = "se-id"
	elementSeeAlsoID     = "se-ogsa-id"
	elementGeneralSeeRef = "gen-se-henvisning"
)

// record types
const (
	typeFacet = "F"
	typeKnute = "K"
)

// Importer imports a single Bibsys file into a vocabulary.
type Importer struct {
	voc      *vocabulary.Vocabulary
	language string
	st       *stats.Stats

	parents sidetable.Table // id => raw parent ids
}

// NewImporter creates a new importer adding resources to voc.
// Intermediate data is stored in tables opened from engine.
//
// The caller must Close the importer.
func NewImporter(voc *vocabulary.Vocabulary, engine sidetable.Engine, st *stats.Stats) (*Importer, error) {
	language := voc.Language()
	if language == "" {
		return nil, vocabulary.ErrNoDefaultLanguage
	}
	if engine == nil {
		engine = sidetable.MemoryEngine{}
	}

	parents, err := engine.Open("parents")
	if err != nil {
		return nil, fmt.Errorf("failed to open parents table: %w", err)
	}

	return &Importer{
		voc:      voc,
		language: language,
		st:       st,
		parents:  parents,
	}, nil
}

// Close releases all resources held by the importer.
func (im *Importer) Close() error {
	return im.parents.Close()
}

// Import reads the file at path in two passes and adds all resources to voc.
// A file that does not exist yields no resources.
func Import(path string, voc *vocabulary.Vocabulary, engine sidetable.Engine, st *stats.Stats) (e error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		st.LogWarn("bibsys file does not exist", "path", path)
		return nil
	}

	im, err := NewImporter(voc, engine, st)
	if err != nil {
		return err
	}
	defer func() {
		if err := im.Close(); err != nil {
			e = errors.Join(e, fmt.Errorf("failed to close importer: %w", err))
		}
	}()

	if err := st.DoStage(stats.StageBibsysScan, func() error {
		return readFile(path, im.Scan, st)
	}); err != nil {
		return err
	}

	return st.DoStage(stats.StageBibsysLink, func() error {
		return readFile(path, im.Link, st)
	})
}

func readFile(path string, pass func(io.Reader) error, st *stats.Stats) (e error) {
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
	return pass(st.Reader(file, size))
}

// newDecoder returns a decoder for r that understands the legacy encodings declared by Bibsys files.
func newDecoder(r io.Reader) *xml.Decoder {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	return decoder
}

// label returns the label of a record, including any qualifier.
func label(record xmlx.Record) string {
	value, _ := record.Get(elementLabel)
	if qualifier, ok := record.Get(elementQualifier); ok && qualifier != "" {
		return fmt.Sprintf("%s (%s)", value, qualifier)
	}
	return value
}

// Scan performs the first pass over r.
// It creates a resource for every record that is not a cross reference, and records parent ids.
func (im *Importer) Scan(r io.Reader) error {
	count := 0
	err := xmlx.Records(newDecoder(r), elementPost, func(record xmlx.Record) error {
		count++
		im.st.SetCT(count, 0)
		return im.scanRecord(record)
	})
	if err != nil {
		return err
	}
	return im.parents.Finalize()
}

func (im *Importer) scanRecord(record xmlx.Record) error {
	if _, ok := record.Get(elementSeeID); ok {
		return nil // cross references are handled by Link
	}

	id, ok := record.Get(elementID)
	if !ok || id == "" {
		im.st.LogWarn("skipping record without term-id", "label", label(record))
		return nil
	}

	if parents := record.All(elementParent); len(parents) > 0 {
		if err := im.parents.Append(id, parents...); err != nil {
			return fmt.Errorf("failed to store parents of %q: %w", id, err)
		}
	}

	var res *resource.Resource
	switch kind, _ := record.Get(elementType); kind {
	case typeFacet:
		res = resource.NewCollection()
	case typeKnute:
		concept, err := resource.NewConcept(resource.TypeKnuteTerm)
		if err != nil {
			return err
		}
		res = concept
	default:
		concept, err := resource.NewConcept(resource.TypeTopic)
		if err != nil {
			return err
		}
		res = concept
	}

	if err := res.Set(resource.FieldID, id); err != nil {
		return err
	}
	if err := res.SetLabel(resource.FieldPrefLabel, im.language, resource.NewLabel(label(record))); err != nil {
		return err
	}

	if date, ok := record.Get(elementDate); ok && date != "" {
		modified, err := resource.NormalizeTime(date)
		if err != nil {
			im.st.LogWarn("keeping unparsable date", "id", id, "date", date)
		}
		if err := res.Set(resource.FieldModified, modified); err != nil {
			return err
		}
	}

	for _, definition := range record.All(elementDefinition) {
		if err := res.SetText(resource.FieldDefinition, im.language, definition); err != nil {
			return err
		}
	}
	if notes := record.All(elementNote); len(notes) > 0 {
		if err := res.Add(resource.FieldEditorialNote, notes...); err != nil {
			return err
		}
	}

	if err := im.voc.Resources.Add(res); err != nil {
		return err
	}
	return nil
}

// Link performs the second pass over r, resolving the relations of all records.
func (im *Importer) Link(r io.Reader) error {
	count := 0
	err := xmlx.Records(newDecoder(r), elementPost, func(record xmlx.Record) error {
		count++
		im.st.SetCT(count, im.voc.Resources.Len())
		return im.linkRecord(record)
	})
	im.voc.Resources.Touch()
	return err
}

func (im *Importer) linkRecord(record xmlx.Record) error {
	id, _ := record.Get(elementID)

	if _, ok := record.Get(elementGeneralSeeRef); ok {
		im.st.LogWarn("ignoring general cross reference", "id", id)
		return nil
	}

	if target, ok := record.Get(elementSeeID); ok {
		res, ok := im.voc.Resources.Get(target)
		if !ok {
			im.st.LogWarn("cross reference to unknown term", "id", id, "target", target)
			return nil
		}
		return res.AddLabel(resource.FieldAltLabel, im.language, resource.NewLabel(label(record)))
	}

	res, ok := im.voc.Resources.Get(id)
	if !ok {
		return nil // reported by Scan
	}

	for _, rid := range record.All(elementSeeAlsoID) {
		related, ok := im.voc.Resources.Get(rid)
		switch {
		case !ok:
			im.st.LogWarn("related term does not exist", "id", id, "related", rid)
		case related.IsCollection():
			im.st.LogWarn("cannot use a collection as related term", "id", id, "related", rid)
		default:
			if err := res.Add(resource.FieldRelated, rid); err != nil {
				return err
			}
		}
	}

	if !res.IsCollection() {
		broader, err := im.ConceptParents(id)
		if err != nil {
			return err
		}
		if len(broader) > 0 {
			if err := res.Add(resource.FieldBroader, broader...); err != nil {
				return err
			}
		}
	}

	for _, pid := range record.All(elementParent) {
		parent, ok := im.voc.Resources.Get(pid)
		switch {
		case !ok:
			// reported by ConceptParents for concepts
			if res.IsCollection() {
				im.st.LogWarn("parent term does not exist", "id", id, "parent", pid)
			}
		case parent.IsCollection():
			if err := parent.Add(resource.FieldMember, id); err != nil {
				return err
			}
		case res.IsCollection():
			if err := res.Add(resource.FieldSuperOrdinate, pid); err != nil {
				return err
			}
		}
	}
	return nil
}

// ConceptParents returns the ids of the concepts that are broader than id.
//
// Collections are transparent: a collection parent is replaced by its own parents.
// Missing parents and cycles through collections are logged and skipped.
// Must only be called after Scan.
func (im *Importer) ConceptParents(id string) ([]string, error) {
	var out []string
	err := im.conceptParents(id, []string{id}, &out)
	return out, err
}

func (im *Importer) conceptParents(id string, path []string, out *[]string) error {
	parents, _, err := im.parents.Get(id)
	if err != nil {
		return fmt.Errorf("failed to get parents of %q: %w", id, err)
	}

	for _, pid := range parents {
		if slices.Contains(path, pid) {
			im.st.LogWarn("cycle in parent hierarchy", "id", path[0], "path", append(slices.Clone(path), pid))
			continue
		}

		parent, ok := im.voc.Resources.Get(pid)
		if !ok {
			im.st.LogWarn("parent term does not exist", "id", id, "parent", pid)
			continue
		}

		if !parent.IsCollection() {
			if !slices.Contains(*out, pid) {
				*out = append(*out, pid)
			}
			continue
		}

		if err := im.conceptParents(pid, append(path, pid), out); err != nil {
			return err
		}
	}
	return nil
}
