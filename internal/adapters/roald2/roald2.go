// Package roald2 imports vocabularies from the legacy Roald 2 flat file format.
//
// A Roald 2 export is a directory holding one file per concept type.
// Each file consists of records separated by blank lines, every record
// being a sequence of "key= value" lines.
package roald2

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/FAU-CDI/roald/internal/resource"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/vocabulary"
)

// ErrNoConcepts is returned when an import did not yield a single concept.
var ErrNoConcepts = errors.New("found no concepts")

// File is a legacy file holding concepts of a single type.
type File struct {
	Name string
	Type resource.Type
}

// Files are the files read from a Roald 2 directory, in order.
var Files = []File{
	{Name: "idtermer.txt", Type: resource.TypeTopic},
	{Name: "idformer.txt", Type: resource.TypeGenreForm},
	{Name: "idtider.txt", Type: resource.TypeTemporal},
	{Name: "idsteder.txt", Type: resource.TypeGeographic},
	{Name: "idstrenger.txt", Type: resource.TypeCompoundHeading},
}

// Import reads all files in dir and adds the concepts found to voc.
// Labels without an explicit language are assigned the default language of voc.
func Import(dir string, voc *vocabulary.Vocabulary, st *stats.Stats) error {
	lang := voc.Language()
	if lang == "" {
		return vocabulary.ErrNoDefaultLanguage
	}

	total := 0
	for _, file := range Files {
		concepts, err := ReadFile(filepath.Join(dir, file.Name), file.Type, lang, st)
		if err != nil {
			return err
		}
		if err := voc.Resources.Add(concepts...); err != nil {
			return fmt.Errorf("failed to add concepts from %q: %w", file.Name, err)
		}
		total += len(concepts)
		st.SetCT(total, 0)
	}

	if total == 0 {
		return fmt.Errorf("%w in %q", ErrNoConcepts, dir)
	}
	return nil
}

// ReadFile reads all concepts of the given type from the file at path.
// A file that does not exist yields no concepts.
func ReadFile(path string, t resource.Type, lang string, st *stats.Stats) (concepts []*resource.Resource, e error) {
	file, err := os.Open(path) // #nosec G304 -- explicit parameter
	if errors.Is(err, fs.ErrNotExist) {
		st.LogDebug("skipping missing file", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
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

	concepts, err = Parse(st.Reader(file, size), t, lang, st)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return concepts, nil
}

// Parse reads all concepts of the given type from r.
// Records that do not set any field are dropped.
func Parse(r io.Reader, t resource.Type, lang string, st *stats.Stats) ([]*resource.Resource, error) {
	p := parser{typ: t, lang: lang, st: st}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		p.line++
		if err := p.feed(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := p.flush(); err != nil {
		return nil, fmt.Errorf("line %d: %w", p.line, err)
	}
	return p.concepts, nil
}

type parser struct {
	typ  resource.Type
	lang string
	st   *stats.Stats
	line int

	current  *resource.Resource
	acronyms []string

	concepts []*resource.Resource
}

// feed processes a single line of input.
func (p *parser) feed(line string) error {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "= ")
	if !ok {
		return p.flush()
	}

	if p.current == nil {
		concept, err := resource.NewConcept(p.typ)
		if err != nil {
			return err
		}
		p.current = concept
	}

	handler, known := keys[strings.TrimSpace(key)]
	if !known {
		p.st.LogWarn("unknown key", "key", key, "line", p.line)
		return nil
	}
	return handler(p, strings.TrimSpace(value))
}

// flush finishes the current record, if any.
func (p *parser) flush() error {
	concept, acronyms := p.current, p.acronyms
	p.current, p.acronyms = nil, nil

	if concept == nil || (concept.Blank() && len(acronyms) == 0) {
		return nil
	}
	if concept.ID() == "" {
		p.st.LogWarn("dropping record without id", "line", p.line)
		return nil
	}
	if err := resolveAcronyms(concept, acronyms, p.lang); err != nil {
		return err
	}

	p.concepts = append(p.concepts, concept)
	return nil
}
