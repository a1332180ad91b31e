package module

import (
	"slices"
	"strings"

	"github.com/matzehuels/loadorder/pkg/semver"
)

// Spec names an acceptable dependency target: a module id and the range its
// version must fall in.
type Spec struct {
	ID    string
	Range semver.Range
}

// NewSpec returns a spec for id at any version.
func NewSpec(id string) Spec {
	return Spec{ID: id, Range: semver.Any()}
}

// ParseSpec parses ID[:RANGE]. A missing, empty or "*" range means any
// version.
func ParseSpec(text string) (Spec, error) {
	id, rangeText, _ := strings.Cut(text, ":")
	if id == "" {
		return Spec{}, &semver.FormatError{Field: "id", Fragment: id, Input: text, Reason: "dependency id must not be empty"}
	}
	if rangeText == "" || rangeText == "*" {
		return Spec{ID: id, Range: semver.Any()}, nil
	}
	r, err := semver.ParseRange(rangeText)
	if err != nil {
		return Spec{}, err
	}
	return Spec{ID: id, Range: r}, nil
}

// MustParseSpec is like [ParseSpec] but panics on error.
func MustParseSpec(text string) Spec {
	s, err := ParseSpec(text)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSpecList parses ENTRY (';' ENTRY)* and returns the first failure.
// Duplicate entries collapse.
func ParseSpecList(text string) (SpecSet, error) {
	var set SpecSet
	for _, entry := range strings.Split(text, ";") {
		s, err := ParseSpec(entry)
		if err != nil {
			return SpecSet{}, err
		}
		set.Add(s)
	}
	return set, nil
}

// String renders id:range.
func (s Spec) String() string {
	return s.ID + ":" + s.Range.String()
}

// Key returns the case-folded id used for matching.
func (s Spec) Key() string { return Fold(s.ID) }

// Matches reports whether a module with the given id and version satisfies
// s. Ids are compared case-insensitively.
func (s Spec) Matches(id string, v semver.Version) bool {
	return strings.EqualFold(s.ID, id) && s.Range.Contains(v)
}

// Equal reports whether both specs name the same id (case-insensitively)
// and the same range.
func (s Spec) Equal(o Spec) bool {
	return strings.EqualFold(s.ID, o.ID) && s.Range.Equal(o.Range)
}

// SpecSet is a set of [Spec] values. Iteration follows insertion order so
// that output built from a set is reproducible; membership ignores order.
// The zero value is an empty set ready to use.
type SpecSet struct {
	specs []Spec
}

// NewSpecSet returns a set holding specs with duplicates collapsed.
func NewSpecSet(specs ...Spec) SpecSet {
	var set SpecSet
	for _, s := range specs {
		set.Add(s)
	}
	return set
}

// Add inserts s unless an equal spec is present. It reports whether the set
// changed.
func (ss *SpecSet) Add(s Spec) bool {
	if ss.Contains(s) {
		return false
	}
	ss.specs = append(ss.specs, s)
	return true
}

// Contains reports whether an equal spec is in the set.
func (ss SpecSet) Contains(s Spec) bool {
	return slices.ContainsFunc(ss.specs, s.Equal)
}

// HasID reports whether any spec in the set targets id.
func (ss SpecSet) HasID(id string) bool {
	return slices.ContainsFunc(ss.specs, func(s Spec) bool { return strings.EqualFold(s.ID, id) })
}

// Len returns the number of specs.
func (ss SpecSet) Len() int { return len(ss.specs) }

// Specs returns a copy of the specs in insertion order.
func (ss SpecSet) Specs() []Spec { return slices.Clone(ss.specs) }

// Equal reports whether both sets hold the same specs, in any order.
func (ss SpecSet) Equal(o SpecSet) bool {
	if len(ss.specs) != len(o.specs) {
		return false
	}
	for _, s := range ss.specs {
		if !o.Contains(s) {
			return false
		}
	}
	return true
}

// String renders the set in list grammar, entries joined by ';'.
func (ss SpecSet) String() string {
	parts := make([]string, len(ss.specs))
	for i, s := range ss.specs {
		parts[i] = s.String()
	}
	return strings.Join(parts, ";")
}

// Fold returns the case-insensitive key for a module id.
func Fold(id string) string { return strings.ToLower(id) }
