package viewmodel

import (
	"strings"

	"tableflip.dev/bib/pkg/entry"
)

// Matches applies the search text to e. Text inside double quotes must
// appear verbatim; every other word must appear in some field. Matching is
// case insensitive against both the raw and the display value. Entries
// without a key always match so new entries stay in view.
func (v *View) Matches(e *entry.Entry) bool {
	if e.Key() == "" {
		return true
	}
	for _, term := range terms(strings.ToLower(v.Search)) {
		if !anyField(e, term) {
			return false
		}
	}
	return true
}

// terms splits a search string into quoted phrases and loose words. An
// unmatched trailing quote is read as if it were not there.
func terms(search string) []string {
	phrases := strings.Split(search, `"`)
	var out []string
	for i, phrase := range phrases {
		quoted := i%2 == 1
		if quoted && i == len(phrases)-1 {
			quoted = false
		}
		if phrase == "" {
			continue
		}
		if quoted {
			out = append(out, phrase)
			continue
		}
		out = append(out, strings.Fields(phrase)...)
	}
	return out
}

func anyField(e *entry.Entry, term string) bool {
	names := append([]string{entry.KeyField, entry.TypeField}, e.Fields()...)
	for _, name := range names {
		if raw, ok := e.Raw(name); ok && strings.Contains(strings.ToLower(raw), term) {
			return true
		}
		if pretty, ok := e.Pretty(name); ok && strings.Contains(strings.ToLower(pretty), term) {
			return true
		}
	}
	return false
}
