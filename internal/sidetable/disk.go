//spellchecker:words sidetable
package sidetable

//spellchecker:words encoding json errors path filepath syndtr goleveldb leveldb util
import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// DiskEngine creates tables that are persisted in leveldb databases below Path.
type DiskEngine struct {
	Path string
}

var _ Engine = DiskEngine{}

func (de DiskEngine) Open(name string) (Table, error) {
	return NewDisk(filepath.Join(de.Path, name+".leveldb"))
}

// NewDisk creates a new disk-based table at the given path.
// If the path already exists, it is deleted.
func NewDisk(path string) (*Disk, error) {
	if _, err := os.Stat(path); err == nil {
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("failed to cleanup path: %w", err)
		}
	}

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}
	return &Disk{DB: db}, nil
}

// Disk is a Table stored in a leveldb database.
// Lists are stored json-encoded.
type Disk struct {
	DB *leveldb.DB
}

func (d *Disk) Append(key string, values ...string) error {
	current, _, err := d.Get(key)
	if err != nil {
		return err
	}

	valueB, err := json.Marshal(append(current, values...))
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := d.DB.Put([]byte(key), valueB, nil); err != nil {
		return fmt.Errorf("failed to set value for key: %w", err)
	}
	return nil
}

func (d *Disk) Get(key string) ([]string, bool, error) {
	valueB, err := d.DB.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key from database: %w", err)
	}

	var values []string
	if err := json.Unmarshal(valueB, &values); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return values, true, nil
}

func (d *Disk) Has(key string) (bool, error) {
	ok, err := d.DB.Has([]byte(key), nil)
	if err != nil {
		return false, fmt.Errorf("failed to check database for key: %w", err)
	}
	return ok, nil
}

func (d *Disk) Iterate(f func(key string, values []string) error) error {
	it := d.DB.NewIterator(nil, nil)
	defer it.Release()

	for it.Next() {
		var values []string
		if err := json.Unmarshal(it.Value(), &values); err != nil {
			return fmt.Errorf("failed to unmarshal value: %w", err)
		}
		if err := f(string(it.Key()), values); err != nil {
			return fmt.Errorf("function returned error: %w", err)
		}
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("failed to iterate database: %w", err)
	}
	return nil
}

func (d *Disk) Count() (count uint64, err error) {
	it := d.DB.NewIterator(nil, nil)
	defer it.Release()

	for it.Next() {
		count++
	}
	if err := it.Error(); err != nil {
		return 0, fmt.Errorf("failed to iterate database: %w", err)
	}
	return count, nil
}

func (d *Disk) Finalize() error {
	if err := d.DB.CompactRange(util.Range{}); err != nil {
		return fmt.Errorf("failed to compact database: %w", err)
	}
	return d.DB.SetReadOnly()
}

func (d *Disk) Close() error {
	var err error

	if d.DB != nil {
		err = d.DB.Close()
	}
	d.DB = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
