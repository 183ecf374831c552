package roald

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/FAU-CDI/roald/internal/adapters/sqlexport"
	"github.com/FAU-CDI/roald/internal/config"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cspell:words idtermer Fysikk Mekanikk

const testTerms = `id= REAL1
te= Fysikk
en= Physics

id= REAL2
te= Mekanikk
ot= REAL1
`

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Vocabulary.DefaultLanguage = "nb"
	cfg.Vocabulary.URIFormat = "http://example.org/c{id}"
	cfg.Vocabulary.IDPrefix = "REAL"
	cfg.MARC21.CreatedBy = "NoOU"
	cfg.SKOS.SchemeURI = "http://example.org/"
	return cfg
}

func TestRoald(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "input")
	require.NoError(t, os.Mkdir(input, 0o700))
	writeTestFile(t, filepath.Join(input, "idtermer.txt"), testTerms)

	st := stats.NewStats(io.Discard)

	// import the legacy data and save it
	imported := New(testConfig(), st)
	require.NoError(t, imported.Import(input))
	assert.Equal(t, 2, imported.Vocabulary.Resources.Len())
	assert.Equal(t, 2, st.Counts().Resources)

	jsonPath := filepath.Join(dir, "roald.json")
	require.NoError(t, imported.Save(jsonPath))

	// load it with nothing configured
	loaded := New(nil, st)
	require.NoError(t, loaded.Import(jsonPath))
	assert.Equal(t, 2, loaded.Vocabulary.Resources.Len())
	assert.Equal(t, "nb", loaded.Vocabulary.Language())
	assert.Equal(t, "http://example.org/c{id}", loaded.Vocabulary.URIFormat)
	assert.Equal(t, "REAL", loaded.Vocabulary.IDPrefix)

	loaded.Config.SKOS.SchemeURI = "http://example.org/"

	marcPath := filepath.Join(dir, "roald.marc21.xml")
	require.NoError(t, loaded.ExportMARC21(marcPath))
	marc, err := os.ReadFile(marcPath)
	require.NoError(t, err)
	assert.Contains(t, string(marc), "Fysikk")
	assert.Contains(t, string(marc), "marcxchange")

	skosPath := filepath.Join(dir, "roald.ttl")
	require.NoError(t, loaded.ExportSKOS(skosPath))
	ttl, err := os.ReadFile(skosPath)
	require.NoError(t, err)
	assert.Contains(t, string(ttl), "http://example.org/c2")
	assert.Contains(t, string(ttl), "Mekanikk")

	dbPath := filepath.Join(dir, "roald.sqlite")
	require.NoError(t, loaded.ExportSQL(sqlexport.DriverSQLite, dbPath))
	assert.FileExists(t, dbPath)

	assert.Equal(t, 0, st.Warnings())
}

func TestRoald_ImportRoald2_NoLanguage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "idtermer.txt"), testTerms)

	r := New(nil, nil)
	assert.Error(t, r.ImportRoald2(dir))
}

func TestRoald_ExportSKOS_NoScheme(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "idtermer.txt"), testTerms)

	cfg := testConfig()
	cfg.SKOS.SchemeURI = ""

	r := New(cfg, nil)
	require.NoError(t, r.ImportRoald2(dir))

	path := filepath.Join(dir, "roald.ttl")
	assert.Error(t, r.ExportSKOS(path))
	assert.NoFileExists(t, path)
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	errWrite := errors.New("write failed")
	err := writeFile(path, nil, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errWrite
	})
	assert.ErrorIs(t, err, errWrite)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed writes leave no files behind")

	require.NoError(t, writeFile(path, nil, func(w io.Writer) error {
		_, err := io.WriteString(w, "complete")
		return err
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "complete", string(data))

	assert.Error(t, writeFile(filepath.Join(dir, "missing", "out.txt"), nil, func(w io.Writer) error { return nil }))
}

func TestFindSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	roald2Dir := filepath.Join(dir, "roald2")
	require.NoError(t, os.Mkdir(roald2Dir, 0o700))
	writeTestFile(t, filepath.Join(roald2Dir, "idformer.txt"), "")

	emptyDir := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(emptyDir, 0o700))

	for _, name := range []string{"data.json", "data.XML", "data.txt"} {
		writeTestFile(t, filepath.Join(dir, name), "")
	}

	tests := []struct {
		name    string
		path    string
		want    Format
		wantErr error
	}{
		{"roald2 directory", roald2Dir, FormatRoald2, nil},
		{"empty directory", emptyDir, "", ErrUnknownFormat},
		{"json", filepath.Join(dir, "data.json"), FormatRoald3, nil},
		{"xml", filepath.Join(dir, "data.XML"), FormatBibsys, nil},
		{"unknown extension", filepath.Join(dir, "data.txt"), "", ErrUnknownFormat},
		{"missing", filepath.Join(dir, "missing.json"), "", os.ErrNotExist},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FindSource(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
