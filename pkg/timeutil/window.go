// Package timeutil parses and renders the short duration windows used to
// filter recently closed files, for example "2w" or "1d12h".
package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DefaultWindow is used when no window is given.
const DefaultWindow = "4w"

const (
	day  = 24 * time.Hour
	week = 7 * day
)

var ErrWindow = errors.New("timeutil: invalid window")

type unit struct {
	label   string
	aliases []string
	size    time.Duration
}

var units = []unit{
	{"w", []string{"wk", "wks", "week", "weeks"}, week},
	{"d", []string{"day", "days"}, day},
	{"h", []string{"hr", "hrs", "hour", "hours"}, time.Hour},
	{"m", []string{"min", "mins", "minute", "minutes"}, time.Minute},
	{"s", []string{"sec", "secs", "second", "seconds"}, time.Second},
}

func lookup(name string) (time.Duration, bool) {
	for _, u := range units {
		if name == u.label {
			return u.size, true
		}
		for _, a := range u.aliases {
			if name == a {
				return u.size, true
			}
		}
	}
	return 0, false
}

// ParseWindow parses a sequence of number and unit pairs such as "1w2d" or
// "3 days" and returns the total together with its compact label.
func ParseWindow(input string) (time.Duration, string, error) {
	rest := strings.ToLower(strings.TrimSpace(input))
	if rest == "" {
		rest = DefaultWindow
	}

	var total time.Duration
	for rest != "" {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		n := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsDigit(r) })
		if n <= 0 {
			return 0, "", fmt.Errorf("%w: expected a number at %q", ErrWindow, rest)
		}
		value, err := strconv.ParseInt(rest[:n], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("%w: %v", ErrWindow, err)
		}
		rest = strings.TrimLeftFunc(rest[n:], unicode.IsSpace)

		m := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })
		if m < 0 {
			m = len(rest)
		}
		size, ok := lookup(rest[:m])
		if !ok {
			return 0, "", fmt.Errorf("%w: unknown unit %q", ErrWindow, rest[:m])
		}
		total += time.Duration(value) * size
		rest = rest[m:]
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("%w: must be positive", ErrWindow)
	}
	return total, FormatWindow(total), nil
}

// FormatWindow renders d with the largest units first, dropping zero parts.
func FormatWindow(d time.Duration) string {
	var b strings.Builder
	for _, u := range units {
		if d < u.size {
			continue
		}
		n := d / u.size
		d -= n * u.size
		fmt.Fprintf(&b, "%d%s", n, u.label)
	}
	if b.Len() == 0 {
		return "0s"
	}
	return b.String()
}

// Ago describes how long before now t was, in its largest unit only.
func Ago(now, t time.Time) string {
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}
	for _, u := range units {
		if d >= u.size {
			return fmt.Sprintf("%d%s ago", d/u.size, u.label)
		}
	}
	return "just now"
}

// Within reports whether t lies no further than window before now.
func Within(now, t time.Time, window time.Duration) bool {
	return !t.Before(now.Add(-window))
}
