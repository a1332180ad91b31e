package semver

import (
	"strings"
)

// BoundKind says whether a range endpoint is included.
type BoundKind int

const (
	// Open excludes the endpoint: '(' or ')'.
	Open BoundKind = iota
	// Closed includes the endpoint: '[' or ']'.
	Closed
)

func (k BoundKind) String() string {
	if k == Closed {
		return "closed"
	}
	return "open"
}

// Bound is one present endpoint of a [Range].
type Bound struct {
	Version Version
	Kind    BoundKind
}

// Range is an immutable interval over [Version]. Either bound may be absent,
// in which case that side is unbounded.
//
// The zero value has both bounds absent and contains every version; it is
// not produced by [ParseRange] but is accepted everywhere a Range is.
type Range struct {
	lower    Bound
	upper    Bound
	hasLower bool
	hasUpper bool
}

// Any returns the default "any version" range, [0.0.0,).
func Any() Range {
	return Range{lower: Bound{Version: Zero, Kind: Closed}, hasLower: true}
}

// AtLeast returns [v,).
func AtLeast(v Version) Range {
	return Range{lower: Bound{v, Closed}, hasLower: true}
}

// Above returns (v,).
func Above(v Version) Range {
	return Range{lower: Bound{v, Open}, hasLower: true}
}

// AtMost returns (,v].
func AtMost(v Version) Range {
	return Range{upper: Bound{v, Closed}, hasUpper: true}
}

// Below returns (,v).
func Below(v Version) Range {
	return Range{upper: Bound{v, Open}, hasUpper: true}
}

// Exactly returns [v,v].
func Exactly(v Version) Range {
	return Between(v, Closed, v, Closed)
}

// Between returns a range with both bounds present. It does not validate
// the bounds; use [ParseRange] for untrusted input. Only ranges that could
// contain some version (lo below hi, or lo equal to hi with both bounds
// closed) format to text that [ParseRange] accepts; an inverted or empty
// range such as Between(2.0.0, Open, 1.0.0, Closed) does not round-trip.
func Between(lo Version, loKind BoundKind, hi Version, hiKind BoundKind) Range {
	return Range{
		lower:    Bound{lo, loKind},
		upper:    Bound{hi, hiKind},
		hasLower: true,
		hasUpper: true,
	}
}

// ParseRange parses interval notation ('(' | '[') [version] ',' [version]
// (')' | ']'), or the literal "*" for [Any].
//
// At least one version must be present. An empty lower slot must use '(' and
// an empty upper slot must use ')'. Ranges that can never contain a version,
// a lower bound above the upper bound or (v,v), are rejected.
func ParseRange(text string) (Range, error) {
	if text == "*" {
		return Any(), nil
	}
	fail := func(fragment, reason string) (Range, error) {
		return Range{}, &FormatError{Field: "range", Fragment: fragment, Input: text, Reason: reason}
	}
	if len(text) < 3 {
		return fail(text, `expected interval notation such as "[1.0.0,2.0.0)" or "*"`)
	}

	var r Range
	var loKind, hiKind BoundKind
	switch text[0] {
	case '(':
		loKind = Open
	case '[':
		loKind = Closed
	default:
		return fail(text[:1], "range must start with '(' or '['")
	}
	switch text[len(text)-1] {
	case ')':
		hiKind = Open
	case ']':
		hiKind = Closed
	default:
		return fail(text[len(text)-1:], "range must end with ')' or ']'")
	}

	inner := text[1 : len(text)-1]
	if strings.Count(inner, ",") != 1 {
		return fail(inner, "range must contain exactly one ','")
	}
	loText, hiText, _ := strings.Cut(inner, ",")

	if loText == "" && hiText == "" {
		return fail(text, `a bound must have at least one version; use "[0.0.0,)" or "*" for any`)
	}
	if loText == "" {
		if loKind != Open {
			return fail(text, "must use '(' with no lower bound")
		}
	} else {
		v, err := Parse(loText)
		if err != nil {
			return Range{}, err
		}
		r.lower, r.hasLower = Bound{v, loKind}, true
	}
	if hiText == "" {
		if hiKind != Open {
			return fail(text, "must use ')' with no upper bound")
		}
	} else {
		v, err := Parse(hiText)
		if err != nil {
			return Range{}, err
		}
		r.upper, r.hasUpper = Bound{v, hiKind}, true
	}

	if r.hasLower && r.hasUpper {
		c := Compare(r.lower.Version, r.upper.Version)
		if c > 0 {
			return fail(text, "lower bound is above upper bound")
		}
		if c == 0 && loKind == Open && hiKind == Open {
			return fail(text, "open interval between equal bounds is empty")
		}
	}
	return r, nil
}

// MustParseRange is like [ParseRange] but panics on error.
func MustParseRange(text string) Range {
	r, err := ParseRange(text)
	if err != nil {
		panic(err)
	}
	return r
}

// Lower returns the lower bound and whether it is present.
func (r Range) Lower() (Bound, bool) { return r.lower, r.hasLower }

// Upper returns the upper bound and whether it is present.
func (r Range) Upper() (Bound, bool) { return r.upper, r.hasUpper }

// IsAny reports whether r is unbounded above and admits every version from
// 0.0.0 upward.
func (r Range) IsAny() bool {
	if r.hasUpper {
		return false
	}
	if !r.hasLower {
		return true
	}
	return r.lower.Kind == Closed && Compare(r.lower.Version, Zero) == 0
}

// Contains reports whether v lies inside r.
func (r Range) Contains(v Version) bool {
	if r.hasLower {
		c := Compare(v, r.lower.Version)
		if c < 0 || (c == 0 && r.lower.Kind == Open) {
			return false
		}
	}
	if r.hasUpper {
		c := Compare(v, r.upper.Version)
		if c > 0 || (c == 0 && r.upper.Kind == Open) {
			return false
		}
	}
	return true
}

// Equal reports whether both ranges have the same bounds. Bound versions
// are compared structurally.
func (r Range) Equal(o Range) bool { return r == o }

// String formats r in interval notation; it is the inverse of [ParseRange].
// An absent bound renders as an empty slot with its side's open marker.
func (r Range) String() string {
	var b strings.Builder
	if r.hasLower {
		if r.lower.Kind == Closed {
			b.WriteByte('[')
		} else {
			b.WriteByte('(')
		}
		b.WriteString(r.lower.Version.String())
	} else {
		b.WriteByte('(')
	}
	b.WriteByte(',')
	if r.hasUpper {
		b.WriteString(r.upper.Version.String())
		if r.upper.Kind == Closed {
			b.WriteByte(']')
		} else {
			b.WriteByte(')')
		}
	} else {
		b.WriteByte(')')
	}
	return b.String()
}

// MarshalText implements [encoding.TextMarshaler].
func (r Range) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (r *Range) UnmarshalText(text []byte) error {
	parsed, err := ParseRange(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
