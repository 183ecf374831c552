package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FAU-CDI/roald/internal/adapters/sqlexport"
	"github.com/FAU-CDI/roald/internal/triplestore"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	assert.Equal(t, "turtle", cfg.SKOS.Format)
	assert.Equal(t, sqlexport.DefaultBatchSize, cfg.SQL.BatchSize)
	assert.Equal(t, sqlexport.SQLiteMaxQueryVar, cfg.SQL.MaxQueryVar)
	assert.Empty(t, cfg.Vocabulary.DefaultLanguage)
	assert.Empty(t, cfg.Cache)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:   "valid default config",
			modify: func(c *Config) {},
		},
		{
			name:    "invalid language",
			modify:  func(c *Config) { c.Vocabulary.DefaultLanguage = "english" },
			wantErr: ErrInvalidLanguage,
		},
		{
			name:    "uri format without placeholder",
			modify:  func(c *Config) { c.Vocabulary.URIFormat = "http://example.org/" },
			wantErr: ErrInvalidURIFormat,
		},
		{
			name:    "same as without placeholder",
			modify:  func(c *Config) { c.SKOS.AddSameAs = []string{"http://example.org/"} },
			wantErr: ErrInvalidSameAs,
		},
		{
			name:    "rdfxml output",
			modify:  func(c *Config) { c.SKOS.Format = "rdfxml" },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "unknown output",
			modify:  func(c *Config) { c.SKOS.Format = "json" },
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "zero batch size",
			modify:  func(c *Config) { c.SQL.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name: "full config",
			modify: func(c *Config) {
				c.Vocabulary.DefaultLanguage = "nb"
				c.Vocabulary.URIFormat = "http://data.ub.uio.no/realfagstermer/c{id}"
				c.SKOS.AddSameAs = []string{"http://example.org/{id}"}
				c.SKOS.Format = "nt"
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	content := `
vocabulary:
  default_language: nb
  uri_format: "http://data.ub.uio.no/realfagstermer/c{id}"
  id_prefix: REAL
marc21:
  created_by: NoOU
  vocabulary_code: noubomn
  include_extras: true
skos:
  include:
    - scheme.ttl
  include_narrower: true
  format: ntriples
sql:
  batch_size: 50
cache: /tmp/roald
`
	path := filepath.Join(t.TempDir(), "roald.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "nb", cfg.Vocabulary.DefaultLanguage)
	assert.Equal(t, "REAL", cfg.Vocabulary.IDPrefix)
	assert.Equal(t, "NoOU", cfg.MARC21.CreatedBy)
	assert.True(t, cfg.MARC21.IncludeExtras)
	assert.False(t, cfg.MARC21.IncludeMemberships)
	assert.Equal(t, []string{"scheme.ttl"}, cfg.SKOS.Include)
	assert.True(t, cfg.SKOS.IncludeNarrower)
	assert.Equal(t, 50, cfg.SQL.BatchSize)
	assert.Equal(t, "/tmp/roald", cfg.Cache)

	// unset values keep their defaults
	assert.Equal(t, sqlexport.SQLiteMaxQueryVar, cfg.SQL.MaxQueryVar)
	assert.Equal(t, sqlexport.DefaultSeparator, cfg.SQL.Separator)

	format, err := cfg.SKOSFormat()
	require.NoError(t, err)
	assert.Equal(t, triplestore.FormatNTriples, format)

	opts, err := cfg.SKOSOptions()
	require.NoError(t, err)
	assert.Equal(t, triplestore.FormatNTriples, opts.Format)
	assert.True(t, opts.IncludeNarrower)

	assert.Equal(t, "noubomn", cfg.MARC21Options().VocabularyCode)
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("vocabulary: [not, a, map"), 0o600))
	_, err = LoadFromFile(broken)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "roald.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vocabulary:\n  default_language: english\n"), 0o600))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidLanguage)

	require.NoError(t, os.WriteFile(path, []byte("skos:\n  scheme_uri: http://example.org/\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/", cfg.SKOS.SchemeURI)
	assert.Equal(t, "turtle", cfg.SKOS.Format)
}

func TestConfig_Merge(t *testing.T) {
	t.Parallel()

	base := DefaultConfig()
	base.Vocabulary.DefaultLanguage = "nb"
	base.MARC21.CreatedBy = "NoOU"

	other := &Config{}
	other.Vocabulary.DefaultLanguage = "en"
	other.SKOS.MappingsFrom = []string{"mappings.ttl"}
	other.MARC21.IncludeMemberships = true

	base.Merge(other)
	base.Merge(nil)

	assert.Equal(t, "en", base.Vocabulary.DefaultLanguage)
	assert.Equal(t, "NoOU", base.MARC21.CreatedBy)
	assert.Equal(t, []string{"mappings.ttl"}, base.SKOS.MappingsFrom)
	assert.True(t, base.MARC21.IncludeMemberships)
	assert.Equal(t, "turtle", base.SKOS.Format)
	assert.Equal(t, sqlexport.DefaultBatchSize, base.SQL.BatchSize)
}

func TestConfig_Apply(t *testing.T) {
	t.Parallel()

	voc := vocabulary.New("")
	voc.IDPrefix = "HUME"

	cfg := DefaultConfig()
	cfg.Vocabulary.DefaultLanguage = "nn"
	cfg.Vocabulary.URIFormat = "http://example.org/c{id}"
	require.NoError(t, cfg.Apply(voc))

	assert.Equal(t, "nn", voc.Language())
	assert.Equal(t, "http://example.org/c{id}", voc.URIFormat)
	assert.Equal(t, "HUME", voc.IDPrefix)
}

func TestConfig_Marshal(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Vocabulary.IDPrefix = "REAL"

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "id_prefix: REAL")
	assert.Contains(t, string(data), "batch_size: 1000")
}
