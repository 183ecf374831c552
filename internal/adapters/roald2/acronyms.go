package roald2

import (
	"strings"
	"unicode"

	"github.com/FAU-CDI/roald/internal/resource"
)

// elements holds the symbols of the chemical elements.
var elements = func() map[string]struct{} {
	symbols := strings.Fields(`
		H He Li Be B C N O F Ne Na Mg Al Si P S Cl Ar K Ca
		Sc Ti V Cr Mn Fe Co Ni Cu Zn Ga Ge As Se Br Kr Rb Sr Y Zr
		Nb Mo Tc Ru Rh Pd Ag Cd In Sn Sb Te I Xe Cs Ba La Ce Pr Nd
		Pm Sm Eu Gd Tb Dy Ho Er Tm Yb Lu Hf Ta W Re Os Ir Pt Au Hg
		Tl Pb Bi Po At Rn Fr Ra Ac Th Pa U Np Pu Am Cm Bk Cf Es Fm
		Md No Lr Rf Db Sg Bh Hs Mt Ds Rg Cn Nh Fl Mc Lv Ts Og
	`)
	m := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		m[s] = struct{}{}
	}
	return m
}()

// IsElementSymbol reports if s is the symbol of a chemical element.
func IsElementSymbol(s string) bool {
	_, ok := elements[s]
	return ok
}

// resolveAcronyms attaches raw acronyms to the labels of r.
//
// An element symbol is stored as such.
// Other acronyms are attached to the first label spelled by them, see MatchesAcronym.
// If no label matches, the acronym goes to the only preferred label, if there is exactly one.
// Anything else becomes an alternative label in lang.
func resolveAcronyms(r *resource.Resource, acronyms []string, lang string) error {
	for _, acronym := range acronyms {
		if IsElementSymbol(acronym) && !r.Has(resource.FieldElementSymbol) {
			if err := r.Set(resource.FieldElementSymbol, acronym); err != nil {
				return err
			}
			continue
		}

		if attachAcronym(r, acronym, lang) {
			continue
		}

		if langs := r.Keys(resource.FieldPrefLabel); len(langs) == 1 && attachTo(r, resource.FieldPrefLabel, langs[0], 0, acronym) {
			continue
		}

		if err := r.AddLabel(resource.FieldAltLabel, lang, resource.NewLabel(acronym)); err != nil {
			return err
		}
	}
	return nil
}

// attachAcronym attaches acronym to the first matching label.
// Preferred labels come first, those in lang before others.
func attachAcronym(r *resource.Resource, acronym, lang string) bool {
	for _, l := range labelLanguages(r, resource.FieldPrefLabel, lang) {
		label, _ := r.Label(resource.FieldPrefLabel, l)
		if MatchesAcronym(label.Value, acronym) && attachTo(r, resource.FieldPrefLabel, l, 0, acronym) {
			return true
		}
	}
	for _, l := range labelLanguages(r, resource.FieldAltLabel, lang) {
		for i, label := range r.LabelList(resource.FieldAltLabel, l) {
			if MatchesAcronym(label.Value, acronym) && attachTo(r, resource.FieldAltLabel, l, i, acronym) {
				return true
			}
		}
	}
	return false
}

// attachTo sets the acronym of a label that does not have one yet.
func attachTo(r *resource.Resource, f resource.Field, lang string, index int, acronym string) (ok bool) {
	r.EditLabel(f, lang, index, func(label *resource.Label) {
		if label.HasAcronym != "" {
			return
		}
		label.HasAcronym = acronym
		ok = true
	})
	return ok
}

// labelLanguages returns the languages of f, starting with lang.
func labelLanguages(r *resource.Resource, f resource.Field, lang string) []string {
	keys := r.Keys(f)
	ordered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == lang {
			ordered = append(ordered, k)
		}
	}
	for _, k := range keys {
		if k != lang {
			ordered = append(ordered, k)
		}
	}
	return ordered
}

// MatchesAcronym reports if the initial letters of the words in label spell acronym.
// Comparison ignores case, as well as punctuation in the acronym.
func MatchesAcronym(label, acronym string) bool {
	letters := strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, acronym))
	if letters == "" {
		return false
	}

	words := strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var initials strings.Builder
	for _, word := range words {
		first := []rune(word)[0]
		initials.WriteRune(unicode.ToLower(first))
	}
	return initials.String() == letters
}
