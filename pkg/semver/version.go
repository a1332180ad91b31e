package semver

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"

	errs "github.com/matzehuels/loadorder/pkg/errors"
)

// ErrFormat is the sentinel wrapped by every [*FormatError].
var ErrFormat = errors.New("invalid format")

// FormatError reports text that could not be parsed as a version, a range
// or a dependency spec.
type FormatError struct {
	Field    string // "major", "minor", "patch", "version", "range", "id", ...
	Fragment string // the offending part of Input
	Input    string // the complete text handed to the parser
	Reason   string
}

func (e *FormatError) Error() string {
	if e.Fragment == e.Input {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q in %q: %s", e.Field, e.Fragment, e.Input, e.Reason)
}

// Unwrap returns [ErrFormat].
func (e *FormatError) Unwrap() error { return ErrFormat }

// Code returns the error code for this error type.
func (e *FormatError) Code() errs.Code { return errs.ErrCodeInvalidFormat }

// Version is an immutable major.minor.patch[-pre][+build] value.
//
// The zero value is 0.0.0 with neither prerelease nor build. Prerelease and
// build presence is tracked separately from their text, so "1.0.0-" has a
// present, empty prerelease and round-trips as such.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64

	pre      string
	build    string
	hasPre   bool
	hasBuild bool
}

// Zero is 0.0.0, the lower bound of [Any].
var Zero = Version{}

// New returns major.minor.patch without prerelease or build.
func New(major, minor, patch uint64) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

// Parse parses MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD].
//
// The build tail starts at the first '+'; the prerelease tail starts at the
// first '-' before it. Both tails may contain any text. A '-' can therefore
// never appear inside the numeric fields.
func Parse(text string) (Version, error) {
	var v Version

	core, build, hasBuild := strings.Cut(text, "+")
	core, pre, hasPre := strings.Cut(core, "-")
	v.pre, v.hasPre = pre, hasPre
	v.build, v.hasBuild = build, hasBuild

	fields := strings.Split(core, ".")
	names := [...]string{"major", "minor", "patch"}
	if len(fields) > len(names) {
		return Version{}, &FormatError{
			Field: "version", Fragment: core, Input: text,
			Reason: fmt.Sprintf("expected exactly three numeric fields, got %d", len(fields)),
		}
	}
	nums := [3]uint64{}
	for i, name := range names {
		if i >= len(fields) {
			return Version{}, &FormatError{Field: name, Fragment: core, Input: text, Reason: "missing"}
		}
		f := fields[i]
		if f == "" {
			return Version{}, &FormatError{Field: name, Fragment: f, Input: text, Reason: "missing"}
		}
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return Version{}, &FormatError{Field: name, Fragment: f, Input: text, Reason: "not a non-negative decimal integer"}
		}
		nums[i] = n
	}
	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	return v, nil
}

// MustParse is like [Parse] but panics on error.
// It is intended for constants and tests.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// String formats the version; it is the inverse of [Parse].
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(v.Major, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.Minor, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.Patch, 10))
	if v.hasPre {
		b.WriteByte('-')
		b.WriteString(v.pre)
	}
	if v.hasBuild {
		b.WriteByte('+')
		b.WriteString(v.build)
	}
	return b.String()
}

// PreRelease returns the prerelease text and whether one is present.
func (v Version) PreRelease() (string, bool) { return v.pre, v.hasPre }

// Build returns the build metadata and whether it is present.
func (v Version) Build() (string, bool) { return v.build, v.hasBuild }

// WithPreRelease returns a copy of v with the given prerelease tail.
// It panics if pre contains '+', which [String] would turn into build
// metadata; like [MustParse] it is meant for values known to be valid.
func (v Version) WithPreRelease(pre string) Version {
	if strings.Contains(pre, "+") {
		panic(&FormatError{Field: "prerelease", Fragment: pre, Input: pre, Reason: "must not contain '+'"})
	}
	v.pre, v.hasPre = pre, true
	return v
}

// WithoutPreRelease returns a copy of v without a prerelease tail.
func (v Version) WithoutPreRelease() Version {
	v.pre, v.hasPre = "", false
	return v
}

// WithBuild returns a copy of v with the given build metadata.
func (v Version) WithBuild(build string) Version {
	v.build, v.hasBuild = build, true
	return v
}

// WithoutBuild returns a copy of v without build metadata.
func (v Version) WithoutBuild() Version {
	v.build, v.hasBuild = "", false
	return v
}

// IncrementMajor returns a copy with Major advanced by one. Minor, patch,
// prerelease and build are left as they are.
func (v Version) IncrementMajor() Version {
	v.Major++
	return v
}

// IncrementMinor returns a copy with Minor advanced by one. Every other
// field is left as it is.
func (v Version) IncrementMinor() Version {
	v.Minor++
	return v
}

// IncrementPatch returns a copy with Patch advanced by one. Every other
// field is left as it is.
func (v Version) IncrementPatch() Version {
	v.Patch++
	return v
}

// Compare orders a and b by (major, minor, patch), then by prerelease
// presence with absence first. It returns -1, 0 or +1.
func Compare(a, b Version) int {
	if c := cmp.Compare(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Patch, b.Patch); c != 0 {
		return c
	}
	switch {
	case a.hasPre == b.hasPre:
		return 0
	case !a.hasPre:
		return -1
	default:
		return 1
	}
}

// Compare is shorthand for Compare(v, o).
func (v Version) Compare(o Version) int { return Compare(v, o) }

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return Compare(v, o) < 0 }

// Equal reports full structural equality, build metadata included.
func (v Version) Equal(o Version) bool { return v == o }

// MarshalText implements [encoding.TextMarshaler].
func (v Version) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
