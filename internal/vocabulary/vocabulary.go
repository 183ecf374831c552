// Package vocabulary wraps a resource registry with the settings shared by all adapters.
package vocabulary

import (
	"errors"
	"fmt"
	"strings"

	"github.com/FAU-CDI/roald/internal/resource"
)

// IDPlaceholder is substituted with the local id in a URI format.
const IDPlaceholder = "{id}"

// SchemePrefixLength is the length of the scheme prefix of ids like "REAL012345".
// It is used when no IDPrefix is set.
const SchemePrefixLength = 4

var (
	ErrNoDefaultLanguage = errors.New("vocabulary has no default language")
	ErrNoURIFormat       = errors.New("vocabulary has no uri format")
	ErrInvalidURIFormat  = errors.New("uri format does not contain " + IDPlaceholder)
)

// Vocabulary is a set of resources together with naming settings.
type Vocabulary struct {
	language string

	// URIFormat is a template like "http://example.org/c{id}".
	URIFormat string

	// IDPrefix is stripped from resource ids before substituting into URIFormat.
	// When empty, a leading scheme prefix of SchemePrefixLength letters is stripped instead.
	IDPrefix string

	Resources *resource.Resources
}

// New creates a new empty vocabulary with the given default language.
func New(language string) *Vocabulary {
	return &Vocabulary{
		language:  language,
		Resources: resource.NewResources(language),
	}
}

// Language returns the default language code, possibly empty.
func (v *Vocabulary) Language() string {
	return v.language
}

// SetLanguage sets the default language and re-indexes terms.
// The empty string unsets the language.
func (v *Vocabulary) SetLanguage(code string) error {
	if code != "" {
		if _, err := ParseLanguage(code); err != nil {
			return err
		}
	}
	v.language = code
	v.Resources.SetLanguage(code)
	return nil
}

// DefaultLanguage resolves the default language.
func (v *Vocabulary) DefaultLanguage() (Language, error) {
	if v.language == "" {
		return Language{}, ErrNoDefaultLanguage
	}
	return ParseLanguage(v.language)
}

// SetURIFormat sets and validates the uri format.
func (v *Vocabulary) SetURIFormat(format string) error {
	if format != "" && !strings.Contains(format, IDPlaceholder) {
		return fmt.Errorf("%w: %q", ErrInvalidURIFormat, format)
	}
	v.URIFormat = format
	return nil
}

// URI returns the uri of the resource with the given id.
func (v *Vocabulary) URI(id string) (string, error) {
	if v.URIFormat == "" {
		return "", ErrNoURIFormat
	}
	prefix := v.IDPrefix
	if prefix == "" {
		prefix = SchemePrefix(id)
	}
	return strings.ReplaceAll(v.URIFormat, IDPlaceholder, strings.TrimPrefix(id, prefix)), nil
}

// Prefix returns the prefix of resource ids.
// This is IDPrefix if set, and otherwise the scheme prefix of the first resource.
func (v *Vocabulary) Prefix() string {
	if v.IDPrefix != "" {
		return v.IDPrefix
	}
	first, ok := v.Resources.FirstID()
	if !ok {
		return ""
	}
	return SchemePrefix(first)
}

// SchemePrefix returns the first SchemePrefixLength bytes of id if they are ascii letters
// followed by at least one more byte, and the empty string otherwise.
func SchemePrefix(id string) string {
	if len(id) <= SchemePrefixLength {
		return ""
	}
	for i := 0; i < SchemePrefixLength; i++ {
		c := id[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return ""
		}
	}
	return id[:SchemePrefixLength]
}

// IDFromURI returns the resource id belonging to uri.
// It does not check that the resource exists.
func (v *Vocabulary) IDFromURI(uri string) (string, bool) {
	before, after, ok := strings.Cut(v.URIFormat, IDPlaceholder)
	if !ok || len(before)+len(after) >= len(uri) {
		return "", false
	}
	if !strings.HasPrefix(uri, before) || !strings.HasSuffix(uri, after) {
		return "", false
	}

	local := uri[len(before) : len(uri)-len(after)]
	return v.Prefix() + local, true
}
