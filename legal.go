package roald

import _ "embed"

//go:embed LICENSE
var License string

// LegalText returns legal text to be included in human-readable output using roald.
func LegalText() string {
	return `
================================================================================
Roald - A Thesaurus Converter
================================================================================
` + License + "\n" + ""
}
