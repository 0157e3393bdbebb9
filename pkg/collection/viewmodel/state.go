package viewmodel

import (
	"strconv"
	"strings"

	"tableflip.dev/bib/pkg/collection"
)

// State encodes the sort field, direction and type filter as
// "key|descending|flag|flag...", flags in collection.AllTypes order.
func (v *View) State() string {
	parts := []string{v.SortKey, strconv.FormatBool(v.Descending)}
	for _, t := range collection.AllTypes() {
		parts = append(parts, strconv.FormatBool(v.typeEnabled(t)))
	}
	return strings.Join(parts, "|")
}

// ParseState restores a state string. Strings with fewer than two fields are
// ignored; missing filter flags default to enabled.
func (v *View) ParseState(s string) {
	values := strings.Split(s, "|")
	if len(values) < 2 {
		return
	}
	if key := strings.TrimSpace(values[0]); key != "" {
		v.SortKey = key
	}
	v.Descending = parseBool(values[1], false)
	flags := values[2:]
	v.Filter = make(map[collection.Type]bool, len(collection.AllTypes()))
	for i, t := range collection.AllTypes() {
		enabled := true
		if i < len(flags) {
			enabled = parseBool(flags[i], true)
		}
		v.Filter[t] = enabled
	}
}

// parseBool accepts true/false in any case.
func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true
	case "false":
		return false
	}
	return fallback
}
