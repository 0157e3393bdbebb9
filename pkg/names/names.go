// Package names splits BibTeX author lists and parses individual names into
// their first, von, last and jr parts.
package names

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalid is returned for names that cannot be split into parts.
var ErrInvalid = errors.New("names: invalid name")

// Name holds the parts of a single person's name.
type Name struct {
	First []string
	Von   []string
	Last  []string
	Jr    []string
}

// Split separates an author list on the literal " and " delimiter at brace
// depth zero.
func Split(list string) []string {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil
	}
	var (
		out   []string
		depth int
		start int
	)
	lower := strings.ToLower(list)
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ' ':
			if depth == 0 && strings.HasPrefix(lower[i:], " and ") {
				out = append(out, strings.TrimSpace(list[start:i]))
				start = i + len(" and ")
				i = start - 1
			}
		}
	}
	return append(out, strings.TrimSpace(list[start:]))
}

// Parse splits one name. The accepted forms are "First von Last",
// "von Last, First" and "von Last, Jr, First".
func Parse(name string) (Name, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Name{}, ErrInvalid
	}
	parts, err := commaParts(name)
	if err != nil {
		return Name{}, err
	}

	var n Name
	switch len(parts) {
	case 1:
		words := parts[0]
		n.Last = words[len(words)-1:]
		rest := words[:len(words)-1]
		lo, hi := vonRange(rest)
		switch {
		case len(rest) == 0:
		case lo < 0:
			n.First = rest
		default:
			n.First = rest[:lo]
			n.Von = rest[lo : hi+1]
			// Capitalized words after the von part belong to the last name.
			n.Last = words[hi+1:]
		}
	case 2, 3:
		n.Von, n.Last = splitVonLast(parts[0])
		if len(parts) == 3 {
			n.Jr = parts[1]
			n.First = parts[2]
		} else {
			n.First = parts[1]
		}
	default:
		return Name{}, ErrInvalid
	}
	if len(n.Last) == 0 {
		return Name{}, ErrInvalid
	}
	return n, nil
}

// Family returns the last name parts joined without separators, the form
// used for keys and sorting.
func (n Name) Family() string {
	return strings.Join(n.Last, "")
}

// String formats the name as "von Last, Jr, First".
func (n Name) String() string {
	last := strings.Join(append(append([]string{}, n.Von...), n.Last...), " ")
	parts := []string{last}
	if len(n.Jr) > 0 {
		parts = append(parts, strings.Join(n.Jr, " "))
	}
	if len(n.First) > 0 {
		parts = append(parts, strings.Join(n.First, " "))
	}
	return strings.Join(parts, ", ")
}

// Pretty normalizes every name in list to "Last, First" form and joins them
// with " and ". Lists containing an unparsable name are returned unchanged.
func Pretty(list string) string {
	split := Split(list)
	out := make([]string, 0, len(split))
	for _, raw := range split {
		n, err := Parse(raw)
		if err != nil {
			return list
		}
		out = append(out, strings.TrimRight(n.String(), " ,"))
	}
	return strings.Join(out, " and ")
}

// Families returns the family name of every parsable name in list; names
// that fail to parse are skipped.
func Families(list string) []string {
	var out []string
	for _, raw := range Split(list) {
		n, err := Parse(raw)
		if err != nil {
			continue
		}
		out = append(out, n.Family())
	}
	return out
}

// commaParts splits name on top-level commas and each part into words.
func commaParts(name string) ([][]string, error) {
	var (
		parts [][]string
		words []string
		word  strings.Builder
		depth int
	)
	flushWord := func() {
		if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}
	for _, r := range name {
		switch {
		case r == '{':
			depth++
			word.WriteRune(r)
		case r == '}':
			if depth == 0 {
				return nil, ErrInvalid
			}
			depth--
			word.WriteRune(r)
		case depth == 0 && r == ',':
			flushWord()
			parts = append(parts, words)
			words = nil
		case depth == 0 && (unicode.IsSpace(r) || r == '~'):
			flushWord()
		default:
			word.WriteRune(r)
		}
	}
	if depth != 0 {
		return nil, ErrInvalid
	}
	flushWord()
	parts = append(parts, words)
	if len(parts) > 3 || len(parts[0]) == 0 {
		return nil, ErrInvalid
	}
	return parts, nil
}

// vonRange returns the first and last index of lower-case words, or -1.
func vonRange(words []string) (int, int) {
	lo, hi := -1, -1
	for i, w := range words {
		if isLower(w) {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
	}
	return lo, hi
}

// splitVonLast handles the part before the first comma: the von part is
// the leading run up to the last lower-case word, keeping at least one
// word for the last name.
func splitVonLast(words []string) ([]string, []string) {
	if len(words) == 1 {
		return nil, words
	}
	_, hi := vonRange(words[:len(words)-1])
	if hi < 0 {
		return nil, words
	}
	return words[:hi+1], words[hi+1:]
}

// isLower reports whether the first letter outside braces is lower case.
// Words starting with a brace group count as upper case.
func isLower(word string) bool {
	depth := 0
	for _, r := range word {
		switch {
		case r == '{':
			depth++
		case r == '}':
			depth--
		case depth == 0 && unicode.IsLetter(r):
			return unicode.IsLower(r)
		case depth > 0:
			return false
		}
	}
	return false
}
