package word

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Folder normalizes terms for duplicate detection. Casing is locale-aware
// so that, e.g., the Turkish dotless i folds correctly under a "tr" locale.
type Folder struct {
	caser cases.Caser
}

// NewFolder builds a Folder for the given BCP-47 locale. Unparseable or
// empty locales fall back to the undetermined language, which applies
// default Unicode case mapping.
func NewFolder(locale string) Folder {
	tag := language.Und
	if locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			tag = parsed
		}
	}
	return Folder{caser: cases.Lower(tag)}
}

// Key returns the canonical comparison key for a term.
func (f Folder) Key(term string) string {
	return f.caser.String(strings.TrimSpace(term))
}

// TermSet tracks folded terms already in use.
type TermSet struct {
	folder Folder
	seen   map[string]struct{}
}

// NewTermSet builds a TermSet from the given existing terms.
func NewTermSet(folder Folder, terms ...string) TermSet {
	s := TermSet{folder: folder, seen: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Add records a term.
func (s TermSet) Add(term string) {
	s.seen[s.folder.Key(term)] = struct{}{}
}

// Has reports whether an equivalent term was already recorded.
func (s TermSet) Has(term string) bool {
	_, ok := s.seen[s.folder.Key(term)]
	return ok
}
