package lint

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	errs "github.com/matzehuels/loadorder/pkg/errors"

	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/semver"
)

func desc(t *testing.T, id, version string, specs ...string) module.Descriptor {
	t.Helper()
	b := module.NewBuilder(id).Version(semver.MustParse(version))
	for _, s := range specs {
		kind, text, _ := strings.Cut(s, ":")
		spec := module.MustParseSpec(text)
		switch kind {
		case "after":
			b.LoadAfter(spec)
		case "before":
			b.LoadBefore(spec)
		case "req":
			b.Require(spec)
		default:
			t.Fatalf("bad spec kind %q", kind)
		}
	}
	d, err := b.Build()
	if err != nil {
		t.Fatalf("build %s: %v", id, err)
	}
	return d
}

func TestCheckClean(t *testing.T) {
	ds := []module.Descriptor{
		desc(t, "core", "1.2.0"),
		desc(t, "physics", "0.4.0", "req:core:[1.0.0,2.0.0)"),
		desc(t, "ui", "2.0.0", "after:physics", "before:hud"),
	}
	findings := Check(ds)
	for _, f := range findings {
		if f.Severity != Info {
			t.Errorf("unexpected finding %s", f)
		}
	}
	if HasErrors(findings) {
		t.Error("HasErrors = true, want false")
	}
}

func TestCheckFindings(t *testing.T) {
	tests := []struct {
		name     string
		ds       func(t *testing.T) []module.Descriptor
		severity Severity
		contains string
	}{
		{
			name: "missing required",
			ds: func(t *testing.T) []module.Descriptor {
				return []module.Descriptor{desc(t, "game", "1.0.0", "req:engine")}
			},
			severity: Error,
			contains: "requires engine",
		},
		{
			name: "absent soft dependency",
			ds: func(t *testing.T) []module.Descriptor {
				return []module.Descriptor{desc(t, "game", "1.0.0", "after:audio")}
			},
			severity: Info,
			contains: "absent module",
		},
		{
			name: "required self",
			ds: func(t *testing.T) []module.Descriptor {
				return []module.Descriptor{desc(t, "loop", "1.0.0", "req:LOOP")}
			},
			severity: Error,
			contains: "names the module itself",
		},
		{
			name: "required out of range",
			ds: func(t *testing.T) []module.Descriptor {
				return []module.Descriptor{
					desc(t, "lib", "1.0.0"),
					desc(t, "app", "1.0.0", "req:lib:[2.0.0,)"),
				}
			},
			severity: Error,
			contains: "but lib",
		},
		{
			name: "loadAfter out of range",
			ds: func(t *testing.T) []module.Descriptor {
				return []module.Descriptor{
					desc(t, "lib", "1.0.0"),
					desc(t, "app", "1.0.0", "after:lib:[2.0.0,)"),
				}
			},
			severity: Error,
			contains: "can never load",
		},
		{
			name: "loadBefore out of range",
			ds: func(t *testing.T) []module.Descriptor {
				return []module.Descriptor{
					desc(t, "lib", "1.0.0"),
					desc(t, "app", "1.0.0", "before:lib:[2.0.0,)"),
				}
			},
			severity: Warning,
			contains: "is ignored",
		},
		{
			name: "duplicate id",
			ds: func(t *testing.T) []module.Descriptor {
				return []module.Descriptor{desc(t, "lib", "1.0.0"), desc(t, "Lib", "2.0.0")}
			},
			severity: Error,
			contains: "also used by",
		},
		{
			name: "non-strict version",
			ds: func(t *testing.T) []module.Descriptor {
				return []module.Descriptor{desc(t, "lib", "1.0.0-01")}
			},
			severity: Warning,
			contains: "not strict SemVer",
		},
		{
			name: "prerelease precedence",
			ds: func(t *testing.T) []module.Descriptor {
				return []module.Descriptor{
					desc(t, "lib", "1.0.0-rc.1"),
					desc(t, "app", "1.0.0", "req:lib:[1.0.0,2.0.0)"),
				}
			},
			severity: Warning,
			contains: "SemVer 2.0 precedence excludes it",
		},
		{
			name: "prerelease note",
			ds: func(t *testing.T) []module.Descriptor {
				return []module.Descriptor{desc(t, "lib", "1.0.0-rc.1")}
			},
			severity: Info,
			contains: `prerelease "rc.1" is ignored`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := Check(tt.ds(t))
			for _, f := range findings {
				if f.Severity == tt.severity && strings.Contains(f.Message, tt.contains) {
					return
				}
			}
			t.Errorf("no %s finding containing %q in %v", tt.severity, tt.contains, findings)
		})
	}
}

func TestCheckGroupsByModule(t *testing.T) {
	ds := []module.Descriptor{
		desc(t, "zeta", "1.0.0", "req:missing"),
		desc(t, "alpha", "1.0.0", "req:gone"),
	}
	findings := Check(ds)
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2: %v", len(findings), findings)
	}
	if findings[0].Module != "alpha" || findings[1].Module != "zeta" {
		t.Errorf("modules = %s, %s; want alpha, zeta", findings[0].Module, findings[1].Module)
	}
}

func TestSeverityString(t *testing.T) {
	for sev, want := range map[Severity]string{Info: "info", Warning: "warning", Error: "error"} {
		if got := sev.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", sev, got, want)
		}
	}
}

func TestFindingJSON(t *testing.T) {
	findings := []Finding{
		{Severity: Info, Module: "lib", Message: "note"},
		{Severity: Warning, Module: "app", Message: "ignored"},
		{Severity: Error, Module: "game", Message: "missing"},
	}
	data, err := json.Marshal(findings)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"severity":"warning"`) {
		t.Errorf("severity should encode as text: %s", data)
	}

	var got []Finding
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !slices.Equal(got, findings) {
		t.Errorf("round trip = %v, want %v", got, findings)
	}
}

func TestSeverityUnmarshalUnknown(t *testing.T) {
	var s Severity
	if err := s.UnmarshalText([]byte("fatal")); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("UnmarshalText(fatal) = %v, want INVALID_FORMAT", err)
	}
}
