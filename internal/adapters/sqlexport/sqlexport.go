// Package sqlexport stores vocabularies in relational databases.
package sqlexport

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/FAU-CDI/roald/internal/stats"
	"github.com/FAU-CDI/roald/internal/vocabulary"
	"github.com/huandu/go-sqlbuilder"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

const (
	SQLiteMaxQueryVar = 32766 // see https://www.sqlite.org/limits.html
	MySQLMaxQueryVar  = 65535
	DefaultBatchSize  = 1000
	DefaultSeparator  = ","
)

var (
	errInsufficientQueryVars = errors.New("insufficient query variables")
	ErrUnknownDriver         = errors.New("unknown database driver")
)

// SQL exports vocabularies into an sql database.
//
// Every export drops and recreates the tables described by Tables.
type SQL struct {
	DB          *sql.DB
	BatchSize   int    // maximal number of rows per insert
	MaxQueryVar int    // maximal number of query variables per insert (overrides BatchSize)
	Separator   string // separator for the types column
}

// Open opens the database with the given driver and connection string.
// Limits are set to the defaults of the driver.
func Open(driver, dsn string) (*SQL, error) {
	var maxQueryVar int
	switch driver {
	case DriverSQLite:
		maxQueryVar = SQLiteMaxQueryVar
	case DriverMySQL:
		maxQueryVar = MySQLMaxQueryVar
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	return &SQL{
		DB:          db,
		BatchSize:   DefaultBatchSize,
		MaxQueryVar: maxQueryVar,
		Separator:   DefaultSeparator,
	}, nil
}

// Close closes the underlying database.
func (s *SQL) Close() error {
	return s.DB.Close()
}

// exec executes an sql query
func (s *SQL) exec(query string, args []any) error {
	_, err := s.DB.Exec(query, args...)
	return err
}

// chunkSize returns the maximal number of rows to insert at once.
func (s *SQL) chunkSize(columns int) (int, error) {
	size := s.MaxQueryVar / columns
	if size == 0 {
		return 0, errInsufficientQueryVars
	}
	if s.BatchSize > 0 && s.BatchSize < size {
		size = s.BatchSize
	}
	return size, nil
}

// execInsert inserts values into the given columns of table.
// When this would exceed limits on the number of query variables, multiple inserts are executed.
func (s *SQL) execInsert(table string, columns []string, values [][]any) error {
	if len(values) == 0 {
		return nil
	}

	size, err := s.chunkSize(len(columns))
	if err != nil {
		return err
	}

	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}

		insert := sqlbuilder.InsertInto(table)
		insert.Cols(columns...)
		for _, v := range values[start:end] {
			insert.Values(v...)
		}
		if err := s.exec(insert.Build()); err != nil {
			return fmt.Errorf("failed to insert into %q: %w", table, err)
		}
	}
	return nil
}

// createTable drops and creates the given table.
func (s *SQL) createTable(table Table) error {
	if err := s.exec("DROP TABLE IF EXISTS "+table.Name+";", nil); err != nil {
		return fmt.Errorf("failed to drop %q: %w", table.Name, err)
	}

	create := sqlbuilder.CreateTable(table.Name).IfNotExists()
	for _, column := range table.Columns {
		create.Define(column.Name, column.Type)
	}
	if err := s.exec(create.Build()); err != nil {
		return fmt.Errorf("failed to create %q: %w", table.Name, err)
	}
	return nil
}

// Export writes all resources of voc into the database.
//
// Export runs its own stages on st.
func (s *SQL) Export(voc *vocabulary.Vocabulary, st *stats.Stats) error {
	tables := Tables(voc, s.separator())

	if err := st.DoStage(stats.StageExportSQL, func() error {
		for _, table := range tables {
			if err := s.createTable(table); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	all := voc.Resources.All()
	for _, table := range tables {
		if err := st.DoStage(stats.StageExportSQLTable+stats.Stage("/"+table.Name), func() error {
			columns := table.ColumnNames()
			size, err := s.chunkSize(len(columns))
			if err != nil {
				return err
			}

			var pending [][]any
			count := 0
			for i, res := range all {
				pending = append(pending, table.Rows(res)...)
				if len(pending) >= size {
					if err := s.execInsert(table.Name, columns, pending); err != nil {
						return err
					}
					count += len(pending)
					pending = pending[:0]
				}
				st.SetCT(i+1, len(all))
			}
			if err := s.execInsert(table.Name, columns, pending); err != nil {
				return err
			}
			count += len(pending)

			st.LogDebug("inserted rows", "table", table.Name, "count", count)
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQL) separator() string {
	if s.Separator == "" {
		return DefaultSeparator
	}
	return s.Separator
}

// joined joins values with the separator, or returns NULL if there are none.
func joined(values []string, sep string) sql.NullString {
	return sql.NullString{String: strings.Join(values, sep), Valid: len(values) > 0}
}
