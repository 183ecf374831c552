package roald

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/FAU-CDI/roald/internal/adapters/roald2"
)

// Format is an input format understood by Roald.Import.
type Format string

const (
	FormatRoald2 Format = "roald2" // directory of flat files
	FormatBibsys Format = "bibsys" // xml file
	FormatRoald3 Format = "roald3" // json file
)

var ErrUnknownFormat = errors.New("unable to determine input format")

// FindSource determines the format of the input at path.
// FindSource does not guarantee that contents are loadable.
//
// A directory is a Roald 2 directory if it contains at least one of roald2.Files.
// Regular files are distinguished by extension.
func FindSource(path string) (Format, error) {
	isDir, err := isDirectory(path)
	if err != nil {
		return "", err
	}

	if isDir {
		for _, file := range roald2.Files {
			ok, err := isFile(filepath.Join(path, file.Name))
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return "", err
			}
			if ok {
				return FormatRoald2, nil
			}
		}
		return "", fmt.Errorf("%w: %q contains no roald 2 files", ErrUnknownFormat, path)
	}

	ok, err := isFile(path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%q is not a regular file", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatRoald3, nil
	case ".xml":
		return FormatBibsys, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

func isDirectory(path string) (ok bool, err error) {
	stats, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return stats.Mode().IsDir(), nil
}

// isFile checks if path is a regular file.
func isFile(path string) (ok bool, err error) {
	stats, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return stats.Mode().IsRegular(), nil
}
