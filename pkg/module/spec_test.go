package module

import (
	"errors"
	"testing"

	"github.com/matzehuels/loadorder/pkg/semver"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		input string
		id    string
		rng   string
	}{
		{"core", "core", "[0.0.0,)"},
		{"core:*", "core", "[0.0.0,)"},
		{"core:", "core", "[0.0.0,)"},
		{"core:[1.0.0,2.0.0)", "core", "[1.0.0,2.0.0)"},
		{"core:(,1.0.0]", "core", "(,1.0.0]"},
		{"Core:[2.0.0,)", "Core", "[2.0.0,)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s, err := ParseSpec(tt.input)
			if err != nil {
				t.Fatalf("ParseSpec(%q) error: %v", tt.input, err)
			}
			if s.ID != tt.id {
				t.Errorf("ID = %q, want %q", s.ID, tt.id)
			}
			if s.Range.String() != tt.rng {
				t.Errorf("Range = %q, want %q", s.Range, tt.rng)
			}
		})
	}
}

func TestParseSpecErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"empty", "", "id"},
		{"empty id", ":[1.0.0,)", "id"},
		{"bad range", "core:1.0.0", "range"},
		{"bad range version", "core:[1.0,)", "patch"},
		{"closed empty upper", "core:[1.0.0,]", "range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec(tt.input)
			var fe *semver.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("ParseSpec(%q) error = %v, want *FormatError", tt.input, err)
			}
			if fe.Field != tt.field {
				t.Errorf("Field = %q, want %q", fe.Field, tt.field)
			}
		})
	}
}

func TestParseSpecList(t *testing.T) {
	set, err := ParseSpecList("a:[1.0.0,2.0.0);b")
	if err != nil {
		t.Fatalf("ParseSpecList error: %v", err)
	}
	specs := set.Specs()
	if len(specs) != 2 {
		t.Fatalf("got %d specs, want 2", len(specs))
	}

	a, b := specs[0], specs[1]
	if a.ID != "a" || b.ID != "b" {
		t.Fatalf("ids = %q, %q, want a, b", a.ID, b.ID)
	}
	hi, ok := a.Range.Upper()
	if !ok || hi.Kind != semver.Open || hi.Version.String() != "2.0.0" {
		t.Errorf("a upper = %v %v (present %v), want open 2.0.0", hi.Version, hi.Kind, ok)
	}
	if !b.Range.Equal(semver.Any()) {
		t.Errorf("b range = %v, want any", b.Range)
	}
}

func TestParseSpecListFirstFailure(t *testing.T) {
	_, err := ParseSpecList("a;b:[x,);c:[bad")
	var fe *semver.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want *FormatError", err)
	}
	if fe.Input != "x" {
		t.Errorf("first failure input = %q, want %q", fe.Input, "x")
	}

	if _, err := ParseSpecList(""); err == nil {
		t.Error("ParseSpecList(\"\") expected error for empty entry")
	}
	if _, err := ParseSpecList("a;;b"); err == nil {
		t.Error("ParseSpecList(a;;b) expected error for empty entry")
	}
}

func TestSpecSetCollapsesDuplicates(t *testing.T) {
	set, err := ParseSpecList("a;a:*;A;a:[1.0.0,)")
	if err != nil {
		t.Fatalf("ParseSpecList error: %v", err)
	}
	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (%s)", set.Len(), set)
	}
	if !set.HasID("A") {
		t.Error("HasID(A) = false")
	}

	other := NewSpecSet(MustParseSpec("a:[1.0.0,)"), NewSpec("a"))
	if !set.Equal(other) {
		t.Errorf("sets with same members in different order are not Equal: %s vs %s", set, other)
	}
}

func TestSpecString(t *testing.T) {
	s := MustParseSpec("core:[1.0.0,2.0.0)")
	if s.String() != "core:[1.0.0,2.0.0)" {
		t.Errorf("String() = %q", s.String())
	}
	again, err := ParseSpec(s.String())
	if err != nil || !again.Equal(s) {
		t.Errorf("round trip = %v, %v", again, err)
	}
	if NewSpec("x").String() != "x:[0.0.0,)" {
		t.Errorf("NewSpec String() = %q", NewSpec("x").String())
	}
}

func TestSpecMatches(t *testing.T) {
	s := MustParseSpec("core:[1.0.0,2.0.0)")
	tests := []struct {
		id      string
		version string
		want    bool
	}{
		{"core", "1.5.0", true},
		{"CORE", "1.5.0", true},
		{"core", "2.0.0", false},
		{"other", "1.5.0", false},
	}
	for _, tt := range tests {
		if got := s.Matches(tt.id, semver.MustParse(tt.version)); got != tt.want {
			t.Errorf("Matches(%s, %s) = %v, want %v", tt.id, tt.version, got, tt.want)
		}
	}
}
