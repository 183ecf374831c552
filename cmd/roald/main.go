// Command roald converts thesaurus data between formats.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/FAU-CDI/roald"
	"github.com/FAU-CDI/roald/internal/adapters/sqlexport"
	"github.com/FAU-CDI/roald/internal/config"
	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// cspell:words sqlite mysql

var (
	errBothSqliteAndMysql = errors.New("both --sqlite and --mysql were given")
	errNoInput            = errors.New("need exactly one input path")
	errNoOutput           = errors.New("no output requested")
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options holds the flags of the root command.
type options struct {
	configPath   string
	logLevel     string
	debugProfile string
	legal        bool

	// vocabulary overrides
	language  string
	uriFormat string
	idPrefix  string
	cache     string

	mappings []string

	json   string
	marc21 string
	skos   string
	sqlite string
	mysql  string
}

func rootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "roald [flags] INPUT",
		Short: "Convert thesaurus data between formats",
		Long: `Roald converts thesaurus data between formats.

INPUT is one of:
- a directory with Roald 2 data files (idtermer.txt, ...)
- a Bibsys xml file (*.xml)
- a Roald 3 json file (*.json)

The loaded vocabulary can be saved as json, and exported as MARC21, SKOS, or
into an sql database. Settings are read from roald.yaml in the current
directory, or the file given by --config. Flags override settings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.legal {
				fmt.Fprint(cmd.OutOrStdout(), roald.LegalText())
				return nil
			}
			return run(opts, args)
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVarP(&opts.configPath, "config", "c", "", "Config file path (default "+config.DefaultFile+" if it exists)")
	persistent.StringVar(&opts.language, "language", "", "Default language of the vocabulary")
	persistent.StringVar(&opts.uriFormat, "uri-format", "", "URI format of the vocabulary, containing {id}")
	persistent.StringVar(&opts.idPrefix, "id-prefix", "", "Prefix stripped from ids when generating URIs")
	persistent.StringVar(&opts.cache, "cache", "", "During import, cache side tables in the given directory as opposed to memory")

	flags := cmd.Flags()
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.debugProfile, "debug-profile", "", "Write out a debugging profile to the given path")
	flags.BoolVar(&opts.legal, "legal", false, "Display legal notices and exit")

	flags.StringSliceVar(&opts.mappings, "mappings", nil, "Load mappings and categories from the given rdf files")

	flags.StringVar(&opts.json, "json", "", "Save the vocabulary as json to the given path")
	flags.StringVar(&opts.marc21, "marc21", "", "Export MARC21 to the given path")
	flags.StringVar(&opts.skos, "skos", "", "Export SKOS to the given path")
	flags.StringVar(&opts.sqlite, "sqlite", "", "Export an sqlite database to the given path")
	flags.StringVar(&opts.mysql, "mysql", "", "Export a mysql database. Use a connection string of the form `username:password@host/database`")

	cmd.AddCommand(configCmd(&opts))

	return cmd
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	cfg.Merge(&config.Config{
		Vocabulary: config.VocabularyConfig{
			DefaultLanguage: opts.language,
			URIFormat:       opts.uriFormat,
			IDPrefix:        opts.idPrefix,
		},
		Cache: opts.cache,
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newStats(level string) (*stats.Stats, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return stats.NewStatsWithLevel(os.Stderr, l), nil
}

func run(opts options, args []string) error {
	st, err := newStats(opts.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer st.Close()

	if opts.debugProfile != "" {
		defer profile.Start(profile.ProfilePath(opts.debugProfile)).Stop()
	}

	fail := func(message string, err error) error {
		st.LogError(message, err)
		return err
	}

	if len(args) != 1 {
		st.Log("Usage: roald [--help] [...flags] INPUT")
		return fail("parse arguments", errNoInput)
	}
	if opts.sqlite != "" && opts.mysql != "" {
		return fail("parse arguments", errBothSqliteAndMysql)
	}
	if opts.json == "" && opts.marc21 == "" && opts.skos == "" && opts.sqlite == "" && opts.mysql == "" {
		return fail("parse arguments", errNoOutput)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return fail("load config", err)
	}

	r := roald.New(cfg, st)
	if err := r.Import(args[0]); err != nil {
		return fail("import", err)
	}
	if err := r.LoadMappings(opts.mappings...); err != nil {
		return fail("load mappings", err)
	}

	if opts.json != "" {
		if err := r.Save(opts.json); err != nil {
			return fail("save json", err)
		}
	}
	if opts.marc21 != "" {
		if err := r.ExportMARC21(opts.marc21); err != nil {
			return fail("export marc21", err)
		}
	}
	if opts.skos != "" {
		if err := r.ExportSKOS(opts.skos); err != nil {
			return fail("export skos", err)
		}
	}

	switch {
	case opts.mysql != "":
		err = r.ExportSQL(sqlexport.DriverMySQL, opts.mysql)
	case opts.sqlite != "":
		err = r.ExportSQL(sqlexport.DriverSQLite, opts.sqlite)
	}
	if err != nil {
		return fail("export sql", err)
	}

	st.Log("done", "warnings", st.Warnings())
	return nil
}
