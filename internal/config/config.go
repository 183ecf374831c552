// Package config provides configuration loading for roald.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/FAU-CDI/roald/internal/adapters/marc21"
	"github.com/FAU-CDI/roald/internal/adapters/skos"
	"github.com/FAU-CDI/roald/internal/adapters/sqlexport"
	"github.com/FAU-CDI/roald/internal/triplestore"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the name of the configuration file read when none is given explicitly.
const DefaultFile = "roald.yaml"

// Config represents the complete roald configuration
type Config struct {
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	MARC21     MARC21Config     `yaml:"marc21"`
	SKOS       SKOSConfig       `yaml:"skos"`
	SQL        SQLConfig        `yaml:"sql"`

	// Cache is a directory to keep side tables of large imports in.
	// Empty means memory.
	Cache string `yaml:"cache"`
}

// VocabularyConfig overrides the settings of imported or loaded vocabularies.
// Empty values leave the vocabulary unchanged.
type VocabularyConfig struct {
	DefaultLanguage string `yaml:"default_language"`
	URIFormat       string `yaml:"uri_format"`
	IDPrefix        string `yaml:"id_prefix"`
}

// MARC21Config configures the MARC21 export
type MARC21Config struct {
	CreatedBy          string `yaml:"created_by"`
	TranscribedBy      string `yaml:"transcribed_by"`
	ModifiedBy         string `yaml:"modified_by"`
	VocabularyCode     string `yaml:"vocabulary_code"`
	Language           string `yaml:"language"`
	IncludeExtras      bool   `yaml:"include_extras"`
	IncludeMemberships bool   `yaml:"include_memberships"`
}

// SKOSConfig configures the SKOS export
type SKOSConfig struct {
	Include         []string `yaml:"include"`
	MappingsFrom    []string `yaml:"mappings_from"`
	AddSameAs       []string `yaml:"add_same_as"`
	IncludeNarrower bool     `yaml:"include_narrower"`
	SchemeURI       string   `yaml:"scheme_uri"`
	Format          string   `yaml:"format"`
}

// SQLConfig configures the SQL export
type SQLConfig struct {
	BatchSize   int    `yaml:"batch_size"`
	MaxQueryVar int    `yaml:"max_query_var"`
	Separator   string `yaml:"separator"`
}

var (
	ErrInvalidLanguage  = errors.New("vocabulary.default_language is not a two-letter language code")
	ErrInvalidURIFormat = errors.New("vocabulary.uri_format must contain " + vocabulary.IDPlaceholder)
	ErrInvalidSameAs    = errors.New("skos.add_same_as entries must contain " + vocabulary.IDPlaceholder)
	ErrInvalidFormat    = errors.New("skos.format must be turtle or ntriples")
	ErrInvalidBatchSize = errors.New("sql.batch_size and sql.max_query_var must be positive")
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SKOS: SKOSConfig{
			Format: string(triplestore.FormatTurtle),
		},
		SQL: SQLConfig{
			BatchSize:   sqlexport.DefaultBatchSize,
			MaxQueryVar: sqlexport.SQLiteMaxQueryVar,
			Separator:   sqlexport.DefaultSeparator,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if lang := c.Vocabulary.DefaultLanguage; lang != "" {
		if _, err := vocabulary.ParseLanguage(lang); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidLanguage, err)
		}
	}
	if lang := c.MARC21.Language; lang != "" {
		if _, err := vocabulary.ParseLanguage(lang); err != nil {
			return fmt.Errorf("marc21.language: %w", err)
		}
	}
	if format := c.Vocabulary.URIFormat; format != "" && !strings.Contains(format, vocabulary.IDPlaceholder) {
		return ErrInvalidURIFormat
	}
	for _, template := range c.SKOS.AddSameAs {
		if !strings.Contains(template, vocabulary.IDPlaceholder) {
			return fmt.Errorf("%w: %q", ErrInvalidSameAs, template)
		}
	}
	if _, err := c.SKOSFormat(); err != nil {
		return err
	}
	if c.SQL.BatchSize <= 0 || c.SQL.MaxQueryVar <= 0 {
		return ErrInvalidBatchSize
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- explicit parameter
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load loads the configuration at path.
// If path is empty, DefaultFile is read when it exists, and the defaults are used otherwise.
// The result is validated.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}

	if path != "" {
		file, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		config.Merge(file)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Marshal returns the YAML representation of c
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Vocabulary
	if other.Vocabulary.DefaultLanguage != "" {
		c.Vocabulary.DefaultLanguage = other.Vocabulary.DefaultLanguage
	}
	if other.Vocabulary.URIFormat != "" {
		c.Vocabulary.URIFormat = other.Vocabulary.URIFormat
	}
	if other.Vocabulary.IDPrefix != "" {
		c.Vocabulary.IDPrefix = other.Vocabulary.IDPrefix
	}

	// MARC21
	if other.MARC21.CreatedBy != "" {
		c.MARC21.CreatedBy = other.MARC21.CreatedBy
	}
	if other.MARC21.TranscribedBy != "" {
		c.MARC21.TranscribedBy = other.MARC21.TranscribedBy
	}
	if other.MARC21.ModifiedBy != "" {
		c.MARC21.ModifiedBy = other.MARC21.ModifiedBy
	}
	if other.MARC21.VocabularyCode != "" {
		c.MARC21.VocabularyCode = other.MARC21.VocabularyCode
	}
	if other.MARC21.Language != "" {
		c.MARC21.Language = other.MARC21.Language
	}
	c.MARC21.IncludeExtras = c.MARC21.IncludeExtras || other.MARC21.IncludeExtras
	c.MARC21.IncludeMemberships = c.MARC21.IncludeMemberships || other.MARC21.IncludeMemberships

	// SKOS
	if len(other.SKOS.Include) > 0 {
		c.SKOS.Include = other.SKOS.Include
	}
	if len(other.SKOS.MappingsFrom) > 0 {
		c.SKOS.MappingsFrom = other.SKOS.MappingsFrom
	}
	if len(other.SKOS.AddSameAs) > 0 {
		c.SKOS.AddSameAs = other.SKOS.AddSameAs
	}
	c.SKOS.IncludeNarrower = c.SKOS.IncludeNarrower || other.SKOS.IncludeNarrower
	if other.SKOS.SchemeURI != "" {
		c.SKOS.SchemeURI = other.SKOS.SchemeURI
	}
	if other.SKOS.Format != "" {
		c.SKOS.Format = other.SKOS.Format
	}

	// SQL
	if other.SQL.BatchSize != 0 {
		c.SQL.BatchSize = other.SQL.BatchSize
	}
	if other.SQL.MaxQueryVar != 0 {
		c.SQL.MaxQueryVar = other.SQL.MaxQueryVar
	}
	if other.SQL.Separator != "" {
		c.SQL.Separator = other.SQL.Separator
	}

	if other.Cache != "" {
		c.Cache = other.Cache
	}
}

// SKOSFormat parses the configured skos output format.
func (c *Config) SKOSFormat() (triplestore.Format, error) {
	if c.SKOS.Format == "" {
		return triplestore.FormatTurtle, nil
	}
	format, err := triplestore.ParseFormat(c.SKOS.Format)
	if err != nil || (format != triplestore.FormatTurtle && format != triplestore.FormatNTriples) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, c.SKOS.Format)
	}
	return format, nil
}

// Apply overrides the settings of voc with the non-empty vocabulary settings.
func (c *Config) Apply(voc *vocabulary.Vocabulary) error {
	if c.Vocabulary.DefaultLanguage != "" {
		if err := voc.SetLanguage(c.Vocabulary.DefaultLanguage); err != nil {
			return err
		}
	}
	if c.Vocabulary.URIFormat != "" {
		if err := voc.SetURIFormat(c.Vocabulary.URIFormat); err != nil {
			return err
		}
	}
	if c.Vocabulary.IDPrefix != "" {
		voc.IDPrefix = c.Vocabulary.IDPrefix
	}
	return nil
}

// MARC21Options returns the options for the MARC21 export.
func (c *Config) MARC21Options() marc21.Options {
	return marc21.Options{
		CreatedBy:          c.MARC21.CreatedBy,
		TranscribedBy:      c.MARC21.TranscribedBy,
		ModifiedBy:         c.MARC21.ModifiedBy,
		VocabularyCode:     c.MARC21.VocabularyCode,
		Language:           c.MARC21.Language,
		IncludeExtras:      c.MARC21.IncludeExtras,
		IncludeMemberships: c.MARC21.IncludeMemberships,
	}
}

// SKOSOptions returns the options for the SKOS export.
func (c *Config) SKOSOptions() (skos.Options, error) {
	format, err := c.SKOSFormat()
	if err != nil {
		return skos.Options{}, err
	}
	return skos.Options{
		Include:         c.SKOS.Include,
		MappingsFrom:    c.SKOS.MappingsFrom,
		AddSameAs:       c.SKOS.AddSameAs,
		IncludeNarrower: c.SKOS.IncludeNarrower,
		SchemeURI:       c.SKOS.SchemeURI,
		Format:          format,
	}, nil
}

// ConfigureSQL applies the sql settings to an exporter.
func (c *Config) ConfigureSQL(s *sqlexport.SQL) {
	s.BatchSize = c.SQL.BatchSize
	s.MaxQueryVar = c.SQL.MaxQueryVar
	s.Separator = c.SQL.Separator
}
