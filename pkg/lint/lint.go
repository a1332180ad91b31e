// Package lint reports descriptor problems the solver would either reject
// late or accept silently.
//
// [Check] never fails; it returns findings graded by [Severity]. Strict
// SemVer 2.0 validation and precedence comparison use
// github.com/Masterminds/semver/v3, which lets the linter point out where
// the solver's own ordering (prerelease text ignored) disagrees with the
// SemVer specification.
package lint

import (
	"cmp"
	"fmt"
	"slices"

	mm "github.com/Masterminds/semver/v3"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/semver"
)

// Severity grades a finding.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the names
// produced by [Severity.String].
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unknown severity %q", text)
	}
	return nil
}

// Finding is one reported problem.
type Finding struct {
	Severity Severity `json:"severity"`
	Module   string   `json:"module"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Module, f.Message)
}

// HasErrors reports whether any finding is an [Error].
func HasErrors(findings []Finding) bool {
	return slices.ContainsFunc(findings, func(f Finding) bool { return f.Severity == Error })
}

// Check lints ds. Findings are grouped by module in input order.
func Check(ds []module.Descriptor) []Finding {
	c := &checker{present: make(map[string]module.Descriptor, len(ds))}
	for _, d := range ds {
		if prev, dup := c.present[d.Key()]; dup {
			c.add(Error, d, "id is also used by %s; only one of them can be loaded", prev)
			continue
		}
		c.present[d.Key()] = d
	}
	for _, d := range ds {
		c.version(d)
		for _, rel := range module.Relations {
			for _, s := range d.Specs(rel).Specs() {
				c.spec(d, rel, s)
			}
		}
	}
	slices.SortStableFunc(c.findings, func(a, b Finding) int {
		return cmp.Compare(module.Fold(a.Module), module.Fold(b.Module))
	})
	return c.findings
}

type checker struct {
	present  map[string]module.Descriptor
	findings []Finding
}

func (c *checker) add(sev Severity, d module.Descriptor, format string, args ...any) {
	c.findings = append(c.findings, Finding{Severity: sev, Module: d.ID(), Message: fmt.Sprintf(format, args...)})
}

func (c *checker) version(d module.Descriptor) {
	v := d.Version()
	if _, err := mm.StrictNewVersion(v.String()); err != nil {
		c.add(Warning, d, "version %s is not strict SemVer 2.0: %v", v, err)
	}
	if pre, ok := v.PreRelease(); ok {
		c.add(Info, d, "prerelease %q is ignored when versions are compared; %s sorts like any other %d.%d.%d prerelease",
			pre, v, v.Major, v.Minor, v.Patch)
	}
}

func (c *checker) spec(d module.Descriptor, rel module.Relation, s module.Spec) {
	for _, b := range bounds(s.Range) {
		if _, err := mm.StrictNewVersion(b.String()); err != nil {
			c.add(Warning, d, "%s spec %s: bound %s is not strict SemVer 2.0: %v", rel, s, b, err)
		}
	}

	if s.Key() == d.Key() {
		sev := Warning
		if rel == module.RelationRequired {
			sev = Error
		}
		c.add(sev, d, "%s spec %s names the module itself and is never satisfied", rel, s)
		return
	}

	target, ok := c.present[s.Key()]
	if !ok {
		if rel == module.RelationRequired {
			c.add(Error, d, "requires %s, which is not present", s)
		} else {
			c.add(Info, d, "%s spec %s names an absent module and is ignored", rel, s)
		}
		return
	}

	if !s.Range.Contains(target.Version()) {
		switch rel {
		case module.RelationRequired:
			c.add(Error, d, "requires %s, but %s is present", s, target)
		case module.RelationLoadAfter:
			c.add(Error, d, "loadAfter %s excludes present %s; the module can never load", s, target)
		default:
			c.add(Warning, d, "loadBefore %s excludes present %s and is ignored", s, target)
		}
		return
	}

	if strict, ok := containsStrict(s.Range, target.Version()); ok && !strict {
		c.add(Warning, d, "%s spec %s admits %s only because prerelease text is ignored; SemVer 2.0 precedence excludes it",
			rel, s, target.Version())
	}
}

func bounds(r semver.Range) []semver.Version {
	var out []semver.Version
	if lo, ok := r.Lower(); ok {
		out = append(out, lo.Version)
	}
	if hi, ok := r.Upper(); ok {
		out = append(out, hi.Version)
	}
	return out
}

// containsStrict evaluates r under SemVer 2.0 precedence. The second result
// is false when a version involved is not strict SemVer.
func containsStrict(r semver.Range, v semver.Version) (bool, bool) {
	mv, err := mm.StrictNewVersion(v.String())
	if err != nil {
		return false, false
	}
	if lo, ok := r.Lower(); ok {
		mlo, err := mm.StrictNewVersion(lo.Version.String())
		if err != nil {
			return false, false
		}
		c := mv.Compare(mlo)
		if c < 0 || (c == 0 && lo.Kind == semver.Open) {
			return false, true
		}
	}
	if hi, ok := r.Upper(); ok {
		mhi, err := mm.StrictNewVersion(hi.Version.String())
		if err != nil {
			return false, false
		}
		c := mv.Compare(mhi)
		if c > 0 || (c == 0 && hi.Kind == semver.Open) {
			return false, true
		}
	}
	return true, true
}
