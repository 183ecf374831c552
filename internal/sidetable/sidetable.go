// Package sidetable provides Table, a key to list store held in memory or in a leveldb database on disk.
package sidetable

// cspell:words sidetable

// Table maps string keys to ordered lists of strings.
//
// Tables hold intermediate data of multi-pass importers, such as the
// unresolved parent ids of every record.
type Table interface {
	// Append appends values to the list stored under key.
	Append(key string, values ...string) error

	// Get returns the list stored under key.
	// The second value indicates if the key was found.
	Get(key string) ([]string, bool, error)

	// Has reports if key has been appended to.
	Has(key string) (bool, error)

	// Iterate calls f for all entries of the table.
	//
	// When any f returns a non-nil error, that error is returned immediately to the caller
	// and iteration stops.
	//
	// There is no guarantee on order.
	Iterate(f func(key string, values []string) error) error

	// Count counts the number of keys in this table
	Count() (uint64, error)

	// Finalize indicates to the implementation that no more calls to Append will be made.
	Finalize() error

	// Close closes this table and releases any resources associated with it.
	Close() error
}

// Engine creates new tables.
type Engine interface {
	// Open creates a new, empty, table with the given name.
	Open(name string) (Table, error)
}

// NewEngine returns a DiskEngine when path is non-empty, and a MemoryEngine otherwise.
func NewEngine(path string) Engine {
	if path == "" {
		return MemoryEngine{}
	}
	return DiskEngine{Path: path}
}
