// Package latex converts the LaTeX markup found in BibTeX fields into plain
// Unicode display text.
package latex

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// accents maps accent commands to the combining mark they add.
var accents = map[string]rune{
	"`":  '\u0300',
	"'":  '\u0301',
	"^":  '\u0302',
	"~":  '\u0303',
	"=":  '\u0304',
	"u":  '\u0306',
	".":  '\u0307',
	"\"": '\u0308',
	"r":  '\u030a',
	"H":  '\u030b',
	"v":  '\u030c',
	"d":  '\u0323',
	"c":  '\u0327',
	"k":  '\u0328',
	"b":  '\u0331',
}

var symbols = map[string]string{
	"ss": "ß",
	"o":  "ø",
	"O":  "Ø",
	"ae": "æ",
	"AE": "Æ",
	"oe": "œ",
	"OE": "Œ",
	"aa": "å",
	"AA": "Å",
	"l":  "ł",
	"L":  "Ł",
	"i":  "i",
	"j":  "j",
	"&":  "&",
	"%":  "%",
	"$":  "$",
	"#":  "#",
	"_":  "_",
	"{":  "{",
	"}":  "}",
	" ":  " ",
	"S":  "§",
	"P":  "¶",

	"dots":           "…",
	"ldots":          "…",
	"pounds":         "£",
	"copyright":      "©",
	"textendash":     "–",
	"textemdash":     "—",
	"textquoteleft":  "‘",
	"textquoteright": "’",
}

// ToUnicode strips grouping braces and resolves accent and symbol commands.
// Unknown commands are kept verbatim.
func ToUnicode(s string) string {
	if !strings.ContainsAny(s, "\\{}~") {
		return norm.NFC.String(s)
	}
	c := &converter{src: []rune(s)}
	return norm.NFC.String(c.run(false))
}

type converter struct {
	src []rune
	pos int
}

func (c *converter) eof() bool { return c.pos >= len(c.src) }

// run converts until the end of input, or until the closing brace of the
// current group when inGroup is set.
func (c *converter) run(inGroup bool) string {
	var b strings.Builder
	for !c.eof() {
		r := c.src[c.pos]
		switch r {
		case '{':
			c.pos++
			b.WriteString(c.run(true))
		case '}':
			c.pos++
			if inGroup {
				return b.String()
			}
		case '~':
			c.pos++
			b.WriteRune(' ')
		case '\\':
			c.pos++
			b.WriteString(c.command())
		default:
			c.pos++
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (c *converter) command() string {
	if c.eof() {
		return "\\"
	}
	start := c.pos
	if unicode.IsLetter(c.src[c.pos]) {
		for !c.eof() && unicode.IsLetter(c.src[c.pos]) {
			c.pos++
		}
	} else {
		c.pos++
	}
	name := string(c.src[start:c.pos])

	if mark, ok := accents[name]; ok {
		if unicode.IsLetter([]rune(name)[0]) {
			c.skipSpace()
		}
		arg := c.argument()
		if arg == "" {
			return string(mark)
		}
		runes := []rune(arg)
		return string(runes[0]) + string(mark) + string(runes[1:])
	}
	if sym, ok := symbols[name]; ok {
		if unicode.IsLetter([]rune(name)[0]) {
			c.emptyGroup()
		}
		return sym
	}
	return "\\" + name
}

func (c *converter) skipSpace() {
	for !c.eof() && c.src[c.pos] == ' ' {
		c.pos++
	}
}

// emptyGroup consumes a `{}` or a single space terminating a command word.
func (c *converter) emptyGroup() {
	if c.pos+1 < len(c.src) && c.src[c.pos] == '{' && c.src[c.pos+1] == '}' {
		c.pos += 2
		return
	}
	if !c.eof() && c.src[c.pos] == ' ' {
		c.pos++
	}
}

func (c *converter) argument() string {
	if c.eof() {
		return ""
	}
	switch r := c.src[c.pos]; r {
	case '{':
		c.pos++
		return c.run(true)
	case '\\':
		c.pos++
		return c.command()
	default:
		c.pos++
		return string(r)
	}
}

// Clean applies the display substitutions used for non-name fields: line
// breaks become spaces, math shifts are dropped and dashes are typeset.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "---", "⸺")
	s = strings.ReplaceAll(s, "--", "–")
	return s
}
