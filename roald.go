// Package roald converts thesaurus data between legacy, canonical and export formats.
package roald

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/FAU-CDI/roald/internal/adapters/bibsys"
	"github.com/FAU-CDI/roald/internal/adapters/marc21"
	"github.com/FAU-CDI/roald/internal/adapters/roald2"
	"github.com/FAU-CDI/roald/internal/adapters/roald3"
	"github.com/FAU-CDI/roald/internal/adapters/skos"
	"github.com/FAU-CDI/roald/internal/adapters/sqlexport"
	"github.com/FAU-CDI/roald/internal/config"
	"github.com/FAU-CDI/roald/internal/sidetable"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/vocabulary"
)

// Roald holds a vocabulary together with the configuration used to import and export it.
//
// A Roald is not safe for concurrent use.
type Roald struct {
	Vocabulary *vocabulary.Vocabulary
	Config     *config.Config
	Stats      *stats.Stats
}

// New creates a new Roald with an empty vocabulary.
// A nil config uses config.DefaultConfig.
func New(cfg *config.Config, st *stats.Stats) *Roald {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Roald{
		Vocabulary: vocabulary.New(""),
		Config:     cfg,
		Stats:      st,
	}
}

// Import imports or loads the data at path, using the format determined by FindSource.
func (r *Roald) Import(path string) error {
	format, err := FindSource(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatRoald2:
		return r.ImportRoald2(path)
	case FormatBibsys:
		return r.ImportBibsys(path)
	case FormatRoald3:
		return r.Load(path)
	}
	panic("never reached")
}

// ImportRoald2 imports all concepts from a Roald 2 data directory.
// The default language must be configured.
func (r *Roald) ImportRoald2(dir string) error {
	if err := r.Config.Apply(r.Vocabulary); err != nil {
		return err
	}

	if err := r.Stats.DoStage(stats.StageImportRoald2, func() error {
		return roald2.Import(dir, r.Vocabulary, r.Stats)
	}); err != nil {
		return err
	}

	r.loaded()
	return nil
}

// ImportBibsys imports all resources from a Bibsys xml file.
func (r *Roald) ImportBibsys(path string) error {
	if err := r.Config.Apply(r.Vocabulary); err != nil {
		return err
	}

	if r.Config.Cache != "" {
		r.Stats.Log("caching side tables on-disk", "path", r.Config.Cache)
	}

	if err := bibsys.Import(path, r.Vocabulary, sidetable.NewEngine(r.Config.Cache), r.Stats); err != nil {
		return err
	}

	r.loaded()
	return nil
}

// Load loads a vocabulary in Roald 3 json format.
// Non-empty vocabulary settings of the configuration override those in the file.
func (r *Roald) Load(path string) error {
	if err := r.Stats.DoStage(stats.StageLoadJSON, func() error {
		return roald3.LoadFile(path, r.Vocabulary, r.Stats)
	}); err != nil {
		return err
	}

	if err := r.Config.Apply(r.Vocabulary); err != nil {
		return err
	}

	r.loaded()
	return nil
}

// Save saves the vocabulary in Roald 3 json format.
func (r *Roald) Save(path string) error {
	return r.Stats.DoStage(stats.StageSaveJSON, func() error {
		return writeFile(path, r.Stats, func(w io.Writer) error {
			return roald3.Save(w, r.Vocabulary)
		})
	})
}

// LoadMappings merges mapping relations and categories from the given rdf files.
func (r *Roald) LoadMappings(paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	if err := r.Stats.DoStage(stats.StageLoadMappings, func() error {
		for i, path := range paths {
			if err := skos.Load(path, r.Vocabulary, r.Stats); err != nil {
				return err
			}
			r.Stats.SetCT(i+1, len(paths))
		}
		return nil
	}); err != nil {
		return err
	}

	r.loaded()
	return nil
}

// ExportMARC21 writes the vocabulary as MARC21 authority records to path.
func (r *Roald) ExportMARC21(path string) error {
	return r.Stats.DoStage(stats.StageExportMARC21, func() error {
		return writeFile(path, r.Stats, func(w io.Writer) error {
			return marc21.Export(w, r.Vocabulary, r.Config.MARC21Options(), r.Stats)
		})
	})
}

// ExportSKOS writes the vocabulary as SKOS to path.
func (r *Roald) ExportSKOS(path string) error {
	opts, err := r.Config.SKOSOptions()
	if err != nil {
		return err
	}
	return writeFile(path, r.Stats, func(w io.Writer) error {
		return skos.Export(w, r.Vocabulary, opts, r.Stats)
	})
}

// ExportSQL writes the vocabulary into the database with the given driver and connection string.
func (r *Roald) ExportSQL(driver, dsn string) (e error) {
	exporter, err := sqlexport.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer func() {
		if err := exporter.Close(); err != nil {
			e = errors.Join(e, fmt.Errorf("failed to close database: %w", err))
		}
	}()

	r.Config.ConfigureSQL(exporter)
	if driver == sqlexport.DriverMySQL && r.Config.SQL.MaxQueryVar == sqlexport.SQLiteMaxQueryVar {
		exporter.MaxQueryVar = sqlexport.MySQLMaxQueryVar
	}

	return exporter.Export(r.Vocabulary, r.Stats)
}

// loaded records the counts of the vocabulary, and warns about ambiguous terms.
func (r *Roald) loaded() {
	for _, term := range r.Vocabulary.Resources.Duplicates() {
		r.Stats.LogWarn("term is not unique", "term", term)
	}

	counts := r.Vocabulary.Resources.Counts()
	r.Stats.StoreCounts(counts)
	r.Stats.Log("vocabulary loaded", "resources", counts.Resources, "concepts", counts.Concepts, "collections", counts.Collections)
}

// writeFile writes the output of write into a temporary file, and renames it to path on success.
// On failure, no file is created at path.
func writeFile(path string, st *stats.Stats, write func(w io.Writer) error) (e error) {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}

	tmp := file.Name()
	defer func() {
		if e != nil {
			_ = os.Remove(tmp)
		}
	}()

	buffer := bufio.NewWriter(st.Writer(file))
	if err := write(buffer); err != nil {
		return errors.Join(err, file.Close())
	}
	if err := buffer.Flush(); err != nil {
		return errors.Join(fmt.Errorf("failed to write %q: %w", path, err), file.Close())
	}
	if err := file.Chmod(0o644); err != nil { // #nosec G302 -- output is meant to be shared
		return errors.Join(fmt.Errorf("failed to chmod %q: %w", path, err), file.Close())
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename %q: %w", path, err)
	}
	return nil
}
