package marc21

import (
	"regexp"
	"strings"

	"github.com/FAU-CDI/roald/internal/resource"
	"golang.org/x/exp/slices"
)

// relationCodes abbreviate mapping relations in 083 $c and 750 $4.
var relationCodes = map[string]string{
	"exactMatch":   "=EQ",
	"closeMatch":   "~EQ",
	"relatedMatch": "RM",
	"broadMatch":   "BM",
	"narrowMatch":  "NM",
}

var (
	ddcPattern     = regexp.MustCompile(`^http://dewey\.info/class/(([1-9])--)?([0-9.]+)`)
	siblingPattern = regexp.MustCompile(`^http://data\.ub\.uio\.no/([a-z]+)/c([0-9]+)`)
)

// Sibling is a related vocabulary that mappings are expressed as 750 links to.
type Sibling struct {
	Name   string // path segment of concept uris, e.g. "humord"
	Code   string // vocabulary code for 750 $2
	Prefix string // control number prefix for 750 $0
}

// DefaultSiblings are the sibling vocabularies known by default.
var DefaultSiblings = []Sibling{
	{Name: "humord", Code: "humord", Prefix: "(No-TrBIB)HUME"},
	{Name: "realfagstermer", Code: "noubomn", Prefix: "(NoOU)REAL"},
	{Name: "tekord", Code: "tekord", Prefix: "(No-TrBIB)NTUB"},
}

// classMapping is a mapping to a dewey class, written as 083.
type classMapping struct {
	Number   string
	Table    string
	Relation string
}

// siblingMapping is a mapping to a sibling vocabulary, written as 750 with ind2 = 7.
type siblingMapping struct {
	Vocabulary string
	ID         string
	Relation   string
}

// uriMapping is a mapping to any other uri, written as 750 with ind2 = 4.
type uriMapping struct {
	URI      string
	Relation string
}

type mappings struct {
	classes  []classMapping
	siblings []siblingMapping
	uris     []uriMapping
}

// classifyMappings sorts the mappings of res into buckets, each sorted deterministically.
// Mappings with an unknown relation or to an unknown sibling vocabulary are dropped.
func classifyMappings(res *resource.Resource, siblings []Sibling) (m mappings) {
	for _, relation := range res.Keys(resource.FieldMappings) {
		code, ok := relationCodes[relation]
		if !ok {
			continue
		}

		for _, target := range res.TextList(resource.FieldMappings, relation) {
			if match := ddcPattern.FindStringSubmatch(target); match != nil {
				m.classes = append(m.classes, classMapping{Number: match[3], Table: match[2], Relation: code})
				continue
			}

			if match := siblingPattern.FindStringSubmatch(target); match != nil {
				idx := slices.IndexFunc(siblings, func(s Sibling) bool { return s.Name == match[1] })
				if idx < 0 {
					continue
				}
				m.siblings = append(m.siblings, siblingMapping{
					Vocabulary: siblings[idx].Code,
					ID:         siblings[idx].Prefix + match[2],
					Relation:   code,
				})
				continue
			}

			m.uris = append(m.uris, uriMapping{URI: target, Relation: code})
		}
	}

	slices.SortStableFunc(m.classes, func(a, b classMapping) int {
		return strings.Compare(a.Relation+","+a.Table+","+a.Number, b.Relation+","+b.Table+","+b.Number)
	})
	slices.SortStableFunc(m.siblings, func(a, b siblingMapping) int {
		return strings.Compare(a.Vocabulary+","+a.ID, b.Vocabulary+","+b.ID)
	})
	slices.SortStableFunc(m.uris, func(a, b uriMapping) int {
		return strings.Compare(a.URI, b.URI)
	})
	return m
}
