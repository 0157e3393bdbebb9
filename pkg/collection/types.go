// Package collection holds the entries of one open BibTeX file together with
// its comments and @string macros.
package collection

import (
	"fmt"
	"strings"
)

// Type is a BibTeX entry type known to the editor.
type Type string

const (
	TypeArticle       Type = "article"
	TypeBook          Type = "book"
	TypeBooklet       Type = "booklet"
	TypeConference    Type = "conference"
	TypeInBook        Type = "inbook"
	TypeInCollection  Type = "incollection"
	TypeInProceedings Type = "inproceedings"
	TypeManual        Type = "manual"
	TypeMastersThesis Type = "mastersthesis"
	TypeMisc          Type = "misc"
	TypeOnline        Type = "online"
	TypePhDThesis     Type = "phdthesis"
	TypeProceedings   Type = "proceedings"
	TypeTechReport    Type = "techreport"
	TypeUnpublished   Type = "unpublished"
	// TypeOther stands for every type not listed above.
	TypeOther Type = "other"
)

// AllTypes returns the known types in display order, TypeOther last.
func AllTypes() []Type {
	return []Type{
		TypeArticle,
		TypeBook,
		TypeBooklet,
		TypeConference,
		TypeInBook,
		TypeInCollection,
		TypeInProceedings,
		TypeManual,
		TypeMastersThesis,
		TypeMisc,
		TypeOnline,
		TypePhDThesis,
		TypeProceedings,
		TypeTechReport,
		TypeUnpublished,
		TypeOther,
	}
}

// ParseType converts a string to a Type or returns an error for unknown values.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllTypes() {
		if candidate == t {
			return candidate, nil
		}
	}
	return TypeOther, fmt.Errorf("collection: unknown type %q", raw)
}

// Classify maps an entry type to its filter bucket, TypeOther for anything
// unrecognized.
func Classify(entryType string) Type {
	t, err := ParseType(entryType)
	if err != nil {
		return TypeOther
	}
	return t
}

// Description is the human readable name of t.
func (t Type) Description() string {
	switch t {
	case TypeInBook:
		return "Book chapter"
	case TypeInCollection:
		return "Part of a collection"
	case TypeInProceedings:
		return "Conference paper"
	case TypeMastersThesis:
		return "Master's thesis"
	case TypePhDThesis:
		return "PhD thesis"
	case TypeTechReport:
		return "Technical report"
	case TypeMisc:
		return "Miscellaneous"
	}
	s := string(t)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
