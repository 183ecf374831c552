package resource

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// TimeLayout is the layout timestamps are stored in.
const TimeLayout = time.RFC3339

// DefaultTime is assumed when a resource carries neither a creation nor a modification date.
var DefaultTime = time.Date(2010, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseTime parses a timestamp as found in legacy data.
// Timestamps without a zone are taken to be UTC.
func ParseTime(value string) (time.Time, error) {
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

// NormalizeTime parses value and formats it using TimeLayout.
func NormalizeTime(value string) (string, error) {
	t, err := ParseTime(value)
	if err != nil {
		return value, err
	}
	return t.Format(TimeLayout), nil
}

// Times returns the creation and modification dates of r.
//
// Missing values fall back to each other, or to DefaultTime when both are absent.
// A deprecation date replaces the modification date.
// Unparsable values are treated as absent.
func (r *Resource) Times() (created, modified time.Time) {
	parse := func(f Field) (time.Time, bool) {
		value, ok := r.Get(f)
		if !ok {
			return time.Time{}, false
		}
		t, err := ParseTime(value)
		return t, err == nil
	}

	created, hasCreated := parse(FieldCreated)
	modified, hasModified := parse(FieldModified)
	if deprecated, ok := parse(FieldDeprecated); ok {
		modified, hasModified = deprecated, true
	}

	switch {
	case hasCreated && hasModified:
	case hasCreated:
		modified = created
	case hasModified:
		created = modified
	default:
		created, modified = DefaultTime, DefaultTime
	}
	return created, modified
}
