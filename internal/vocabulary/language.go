package vocabulary

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ErrInvalidLanguage indicates a language code that is not a known ISO 639-1 code.
var ErrInvalidLanguage = errors.New("invalid language code")

// Language is a language known by its ISO 639 codes.
type Language struct {
	Alpha2 string // ISO 639-1, e.g. "nb"

	// Terminology is the ISO 639-2/T code, e.g. "nob".
	Terminology string

	// Bibliographic is the ISO 639-2/B code used by MARC, e.g. "ger" for German.
	// It coincides with Terminology for most languages.
	Bibliographic string
}

// bibliographic holds the ISO 639-2 codes where B and T differ.
var bibliographic = map[string]string{
	"bod": "tib",
	"ces": "cze",
	"cym": "wel",
	"deu": "ger",
	"ell": "gre",
	"eus": "baq",
	"fas": "per",
	"fra": "fre",
	"hye": "arm",
	"isl": "ice",
	"kat": "geo",
	"mkd": "mac",
	"mri": "mao",
	"msa": "may",
	"mya": "bur",
	"nld": "dut",
	"ron": "rum",
	"slk": "slo",
	"sqi": "alb",
	"zho": "chi",
}

// ParseLanguage resolves an ISO 639-1 code.
func ParseLanguage(code string) (Language, error) {
	if len(code) != 2 {
		return Language{}, fmt.Errorf("%w: %q is not a two-letter code", ErrInvalidLanguage, code)
	}

	base, err := language.ParseBase(code)
	if err != nil {
		return Language{}, fmt.Errorf("%w: %q: %w", ErrInvalidLanguage, code, err)
	}

	terminology := base.ISO3()
	lang := Language{
		Alpha2:        base.String(),
		Terminology:   terminology,
		Bibliographic: terminology,
	}
	if b, ok := bibliographic[terminology]; ok {
		lang.Bibliographic = b
	}
	return lang, nil
}

func (l Language) String() string {
	return l.Alpha2
}
