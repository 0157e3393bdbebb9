package collection

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tableflip.dev/bib/pkg/entry"
)

// GenerateKey proposes a key for e: the first author's family name, both
// family names for two-author works, or the entry type when there is no
// author, followed by the year. Collisions with other live entries get a
// letter suffix.
func (f *File) GenerateKey(e *entry.Entry) string {
	var key string
	last := e.LastNames()
	if _, ok := e.Value("author"); ok && len(last) > 0 {
		key = capitalize(ascii(last[0]))
		if len(last) == 2 {
			key += capitalize(ascii(last[1]))
		}
	} else {
		key = e.Type()
	}
	if year, ok := e.Raw("year"); ok {
		key += year
	}

	if key == "" || key == e.Key() {
		return key
	}

	// Suffixes run a..z, or A..Z after a lower case letter, and continue
	// with the following code points.
	base := []rune(key)
	suffix := 'a'
	if unicode.IsLower(base[len(base)-1]) {
		suffix = 'A'
	}
	for f.keyTaken(key, e) {
		key = string(append(base, suffix))
		suffix++
	}
	return key
}

var nonASCII = runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })

// ascii decomposes accents and drops whatever is left outside ASCII.
func ascii(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(nonASCII))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
